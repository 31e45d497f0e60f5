// Package models contains the domain types shared across repositories, services, and handlers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is a user's uploaded PDF. Each user has at most one active document;
// re-upload replaces it. ProcessedAt is set only when ingestion completes, so a
// NULL value distinguishes "not yet processed" from "indexed but nothing relevant".
type Document struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Filename    string     `json:"filename"`
	FilePath    string     `json:"-"`
	TextLength  int        `json:"text_length"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Processed reports whether the document has a completed embedding index.
func (d *Document) Processed() bool {
	return d.ProcessedAt != nil
}

// Chunk is one bounded span of a document's text together with its embedding.
// Immutable once written; replaced wholesale on re-ingestion.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Position   int       `json:"position"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
}

// QAItem is a synthetic question/answer pair generated from document content.
// Its embedding is computed over the combined question+answer text.
type QAItem struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Position   int       `json:"position"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Embedding  []float32 `json:"-"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingText returns the text a QAItem is embedded over.
func (q *QAItem) EmbeddingText() string {
	return q.Question + "\n" + q.Answer
}
