package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/docuchat/backend/internal/api/middleware"
	"github.com/docuchat/backend/internal/api/response"
	"github.com/docuchat/backend/internal/models"
)

// ChatService defines the interface for question answering and history.
type ChatService interface {
	Ask(ctx context.Context, userID uuid.UUID, question string) (*models.Message, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.Message, error)
}

// ChatHandler handles HTTP requests for questions and conversation history.
type ChatHandler struct {
	service ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// QuestionRequest is the body for POST /v1/questions.
type QuestionRequest struct {
	Question string `json:"question"`
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Ask handles POST /v1/questions.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondUnauthorized(w, "Not authenticated")

		return
	}

	var req QuestionRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	message, err := h.service.Ask(r.Context(), userID, req.Question)
	if err != nil {
		response.RespondDomainError(w, err)

		return
	}

	response.RespondSuccess(w, http.StatusOK, message)
}

// History handles GET /v1/messages.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondUnauthorized(w, "Not authenticated")

		return
	}

	limit := defaultHistoryLimit

	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = min(n, maxHistoryLimit)
		}
	}

	messages, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		response.RespondDomainError(w, err)

		return
	}

	if messages == nil {
		messages = []models.Message{}
	}

	response.RespondSuccess(w, http.StatusOK, messages)
}
