// Package handlers contains the HTTP handlers for the public API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/docuchat/backend/internal/api/middleware"
	"github.com/docuchat/backend/internal/api/response"
	"github.com/docuchat/backend/internal/models"
)

// UsersService defines the interface for account management.
type UsersService interface {
	Signup(ctx context.Context, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthHandler handles signup, login, and profile requests.
type AuthHandler struct {
	service UsersService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service UsersService) *AuthHandler {
	return &AuthHandler{service: service}
}

// CredentialsRequest is the body for POST /v1/auth/signup and /v1/auth/login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the account and its bearer token.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Signup handles POST /v1/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, token, err := h.service.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondDomainError(w, err)

		return
	}

	response.RespondSuccess(w, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondDomainError(w, err)

		return
	}

	response.RespondSuccess(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Me handles GET /v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondUnauthorized(w, "Not authenticated")

		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		response.RespondDomainError(w, err)

		return
	}

	response.RespondSuccess(w, http.StatusOK, user)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return req, false
	}

	if req.Email == "" || req.Password == "" {
		response.RespondBadRequest(w, "email and password are required")

		return req, false
	}

	return req, true
}
