package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/docuchat/backend/internal/docerrors"
	"github.com/docuchat/backend/internal/jobs"
	"github.com/docuchat/backend/internal/models"
)

// uploadStore is the repository surface the documents service needs.
type uploadStore interface {
	Upsert(ctx context.Context, userID uuid.UUID, filename, filePath string) (*models.Document, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Document, error)
}

// fileStore persists uploaded file contents.
type fileStore interface {
	Save(r io.Reader, originalName string) (string, error)
	Remove(path string) error
}

// DocumentsService accepts uploads and reports processing status. Each user
// has one active document; uploading again replaces it and re-runs ingestion.
type DocumentsService struct {
	documents uploadStore
	files     fileStore
	inserter  jobs.JobInserter
	logger    *slog.Logger
}

// NewDocumentsService creates the document upload service.
func NewDocumentsService(documents uploadStore, files fileStore, inserter jobs.JobInserter, logger *slog.Logger) *DocumentsService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DocumentsService{
		documents: documents,
		files:     files,
		inserter:  inserter,
		logger:    logger,
	}
}

// Upload stores the file, upserts the user's document row, and enqueues the
// ingestion job. The returned document is unprocessed until the job completes.
func (s *DocumentsService) Upload(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*models.Document, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, docerrors.NewValidationError("file", "only PDF files are accepted")
	}

	path, err := s.files.Save(r, filename)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc, err := s.documents.Upsert(ctx, userID, filepath.Base(filename), path)
	if err != nil {
		if removeErr := s.files.Remove(path); removeErr != nil {
			s.logger.Warn("upload: orphaned file cleanup failed", "path", path, "error", removeErr)
		}

		return nil, fmt.Errorf("upsert document: %w", err)
	}

	err = s.inserter.InsertDocumentIngestJob(ctx, jobs.DocumentIngestArgs{
		DocumentID: doc.ID,
		UserID:     userID,
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue ingestion: %w", err)
	}

	s.logger.Info("upload: accepted",
		"user_id", userID,
		"document_id", doc.ID,
		"filename", doc.Filename,
	)

	return doc, nil
}

// Status returns the user's document, including whether ingestion completed.
func (s *DocumentsService) Status(ctx context.Context, userID uuid.UUID) (*models.Document, error) {
	doc, err := s.documents.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}

	return doc, nil
}
