package jobs

import (
	"context"
)

// JobInserter is an interface for inserting jobs into the queue.
// This allows services to enqueue jobs without knowing about River directly.
type JobInserter interface {
	// InsertDocumentIngestJob enqueues a document ingestion job.
	// Returns an error if the job could not be inserted.
	InsertDocumentIngestJob(ctx context.Context, args DocumentIngestArgs) error
}
