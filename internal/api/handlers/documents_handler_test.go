package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/backend/internal/api/middleware"
	"github.com/docuchat/backend/internal/docerrors"
	"github.com/docuchat/backend/internal/models"
)

type mockDocumentsService struct {
	doc       *models.Document
	uploadErr error
	statusErr error

	uploadedName string
}

func (m *mockDocumentsService) Upload(_ context.Context, _ uuid.UUID, filename string, _ io.Reader) (*models.Document, error) {
	m.uploadedName = filename
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return m.doc, nil
}

func (m *mockDocumentsService) Status(_ context.Context, _ uuid.UUID) (*models.Document, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return m.doc, nil
}

func multipartUpload(t *testing.T, fieldName, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req.WithContext(middleware.WithUserID(req.Context(), uuid.Must(uuid.NewV7())))
}

func TestDocumentsHandler_Upload(t *testing.T) {
	doc := &models.Document{ID: uuid.Must(uuid.NewV7()), Filename: "report.pdf"}

	t.Run("accepts the upload with 202", func(t *testing.T) {
		svc := &mockDocumentsService{doc: doc}
		handler := NewDocumentsHandler(svc)

		rec := httptest.NewRecorder()
		handler.Upload(rec, multipartUpload(t, "file", "report.pdf", []byte("%PDF-1.4")))

		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "report.pdf", svc.uploadedName)
		assert.Contains(t, rec.Body.String(), doc.ID.String())
	})

	t.Run("missing file field is a 400", func(t *testing.T) {
		handler := NewDocumentsHandler(&mockDocumentsService{doc: doc})

		rec := httptest.NewRecorder()
		handler.Upload(rec, multipartUpload(t, "attachment", "report.pdf", []byte("%PDF-1.4")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejected file types map to 422", func(t *testing.T) {
		svc := &mockDocumentsService{uploadErr: docerrors.NewValidationError("file", "only PDF files are accepted")}
		handler := NewDocumentsHandler(svc)

		rec := httptest.NewRecorder()
		handler.Upload(rec, multipartUpload(t, "file", "notes.txt", []byte("plain text")))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("returns 401 without auth context", func(t *testing.T) {
		handler := NewDocumentsHandler(&mockDocumentsService{doc: doc})

		req := httptest.NewRequest(http.MethodPost, "/v1/documents", nil)
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDocumentsHandler_Status(t *testing.T) {
	t.Run("returns the document", func(t *testing.T) {
		doc := &models.Document{ID: uuid.Must(uuid.NewV7()), Filename: "report.pdf"}
		handler := NewDocumentsHandler(&mockDocumentsService{doc: doc})

		req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), uuid.Must(uuid.NewV7())))
		rec := httptest.NewRecorder()

		handler.Status(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "report.pdf")
	})

	t.Run("no upload yet is a 404", func(t *testing.T) {
		handler := NewDocumentsHandler(&mockDocumentsService{statusErr: docerrors.NewNotFoundError("document", "no document uploaded")})

		req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), uuid.Must(uuid.NewV7())))
		rec := httptest.NewRecorder()

		handler.Status(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
