// Package jobs defines River job arguments and queue plumbing.
package jobs

import "github.com/google/uuid"

// DocumentIngestArgs contains the arguments for a document ingestion job.
type DocumentIngestArgs struct {
	// DocumentID is the UUID of the document to ingest
	DocumentID uuid.UUID `json:"document_id"`

	// UserID is the owner of the document
	UserID uuid.UUID `json:"user_id"`
}

// Kind returns the job type identifier for River
func (DocumentIngestArgs) Kind() string { return "document_ingest" }
