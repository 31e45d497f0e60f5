package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/docuchat/backend/internal/api/middleware"
	"github.com/docuchat/backend/internal/api/response"
	"github.com/docuchat/backend/internal/models"
)

// DocumentsService defines the interface for document upload and status.
type DocumentsService interface {
	Upload(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*models.Document, error)
	Status(ctx context.Context, userID uuid.UUID) (*models.Document, error)
}

// DocumentsHandler handles HTTP requests for document upload and status.
type DocumentsHandler struct {
	service DocumentsService
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(service DocumentsService) *DocumentsHandler {
	return &DocumentsHandler{service: service}
}

// multipartMemoryLimit bounds how much of the multipart form is held in
// memory before spilling to temp files.
const multipartMemoryLimit = 4 << 20

// Upload handles POST /v1/documents. The file is accepted and stored, and
// ingestion runs asynchronously; 202 signals the document is not yet queryable.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondUnauthorized(w, "Not authenticated")

		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.RespondError(w, http.StatusRequestEntityTooLarge,
				"Request Entity Too Large", "uploaded file exceeds maximum allowed size")

			return
		}

		response.RespondBadRequest(w, "Invalid multipart form")

		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.RespondBadRequest(w, "Form field 'file' is required")

		return
	}
	defer file.Close()

	doc, err := h.service.Upload(r.Context(), userID, header.Filename, file)
	if err != nil {
		response.RespondDomainError(w, err)

		return
	}

	response.RespondSuccess(w, http.StatusAccepted, doc)
}

// Status handles GET /v1/documents.
func (h *DocumentsHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondUnauthorized(w, "Not authenticated")

		return
	}

	doc, err := h.service.Status(r.Context(), userID)
	if err != nil {
		response.RespondDomainError(w, err)

		return
	}

	response.RespondSuccess(w, http.StatusOK, doc)
}
