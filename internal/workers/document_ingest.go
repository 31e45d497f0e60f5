// Package workers provides River job workers for document ingestion.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/docuchat/backend/internal/docerrors"
	"github.com/docuchat/backend/internal/jobs"
	"github.com/docuchat/backend/internal/observability"
)

// DocumentIngestWorker runs the ingestion pipeline for uploaded documents.
type DocumentIngestWorker struct {
	river.WorkerDefaults[jobs.DocumentIngestArgs]

	ingestion ingestionService
	metrics   observability.IngestionMetrics
}

// ingestionService is the minimal interface needed by the worker.
type ingestionService interface {
	Ingest(ctx context.Context, documentID uuid.UUID) error
}

// NewDocumentIngestWorker creates a worker that processes one document per job.
// metrics may be nil when metrics are disabled.
func NewDocumentIngestWorker(ingestion ingestionService, metrics observability.IngestionMetrics) *DocumentIngestWorker {
	return &DocumentIngestWorker{
		ingestion: ingestion,
		metrics:   metrics,
	}
}

// Ingestion embeds every chunk of the document, so the budget is far wider
// than a single API call.
const documentIngestTimeout = 5 * time.Minute

// Timeout limits how long a single ingestion job can run.
func (w *DocumentIngestWorker) Timeout(*river.Job[jobs.DocumentIngestArgs]) time.Duration {
	return documentIngestTimeout
}

// Work runs the pipeline. Extraction failures and missing documents are
// permanent, so they complete without retry; embedding and storage failures
// retry until the attempt budget runs out.
func (w *DocumentIngestWorker) Work(ctx context.Context, job *river.Job[jobs.DocumentIngestArgs]) error {
	args := job.Args
	start := time.Now()

	err := w.ingestion.Ingest(ctx, args.DocumentID)
	if err == nil {
		if w.metrics != nil {
			w.metrics.RecordIngestionOutcome(ctx, "success")
			w.metrics.RecordIngestionDuration(ctx, time.Since(start), "success")
		}

		return nil
	}

	if errors.Is(err, docerrors.ErrExtraction) || errors.Is(err, docerrors.ErrNotFound) {
		if w.metrics != nil {
			w.metrics.RecordIngestionOutcome(ctx, "failed_final")
			w.metrics.RecordIngestionDuration(ctx, time.Since(start), "failed_final")
		}

		slog.Error("ingest: permanent failure",
			"document_id", args.DocumentID,
			"user_id", args.UserID,
			"error", err,
		)

		return nil // no retry for unreadable documents
	}

	isLastAttempt := job.Attempt >= job.MaxAttempts

	if w.metrics != nil {
		if isLastAttempt {
			w.metrics.RecordIngestionOutcome(ctx, "failed_final")
			w.metrics.RecordIngestionDuration(ctx, time.Since(start), "failed_final")
		} else {
			w.metrics.RecordIngestionOutcome(ctx, "retry")
			w.metrics.RecordIngestionDuration(ctx, time.Since(start), "retry")
		}
	}

	if isLastAttempt {
		slog.Error("ingest: failed (final attempt)",
			"document_id", args.DocumentID,
			"user_id", args.UserID,
			"error", err,
		)

		return nil
	}

	return fmt.Errorf("ingest document: %w", err)
}
