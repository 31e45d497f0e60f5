// Package response writes JSON responses: RFC 7807 problems for errors and a
// {"data": ...} envelope for success payloads.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/docuchat/backend/internal/docerrors"
)

// ProblemDetails represents an RFC 7807 Problem Details error response
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// RespondError writes an RFC 7807 Problem Details error response
func RespondError(w http.ResponseWriter, statusCode int, title string, detail string) {
	problem := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: statusCode,
		Detail: detail,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(problem); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// RespondBadRequest writes a 400 Bad Request error response
func RespondBadRequest(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusBadRequest, "Bad Request", detail)
}

// RespondUnauthorized writes a 401 Unauthorized error response
func RespondUnauthorized(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusUnauthorized, "Unauthorized", detail)
}

// RespondNotFound writes a 404 Not Found error response
func RespondNotFound(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusNotFound, "Not Found", detail)
}

// RespondConflict writes a 409 Conflict error response
func RespondConflict(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusConflict, "Conflict", detail)
}

// RespondUnprocessableEntity writes a 422 Unprocessable Entity error response
func RespondUnprocessableEntity(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusUnprocessableEntity, "Validation Error", detail)
}

// RespondInternalServerError writes a 500 Internal Server Error response
func RespondInternalServerError(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusInternalServerError, "Internal Server Error", detail)
}

// RespondDomainError maps a typed domain error to its HTTP problem response.
// Unrecognized errors become a generic 500 without leaking internals.
func RespondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, docerrors.ErrValidation):
		RespondUnprocessableEntity(w, err.Error())
	case errors.Is(err, docerrors.ErrNotFound):
		RespondNotFound(w, err.Error())
	case errors.Is(err, docerrors.ErrConflict):
		RespondConflict(w, err.Error())
	case errors.Is(err, docerrors.ErrNotProcessed):
		RespondConflict(w, "document is still being processed")
	default:
		RespondInternalServerError(w, "Internal error")
	}
}

// DataResponse wraps a single data object in a consistent response format
type DataResponse struct {
	Data interface{} `json:"data"`
}

// RespondSuccess wraps the payload in a {"data": ...} structure
func RespondSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(DataResponse{Data: data}); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}
