package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one answered question. Append-only: created exactly once per
// answered question (fallback answers included), never mutated or deleted.
type Message struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	DocumentID      uuid.UUID `json:"document_id"`
	Question        string    `json:"question"`
	Answer          string    `json:"answer"`
	ContextSnapshot string    `json:"-"`
	QAMatchCount    int       `json:"qa_match_count"`
	ChunkMatchCount int       `json:"chunk_match_count"`
	CreatedAt       time.Time `json:"created_at"`
}
