// Package service contains the application services behind the HTTP handlers
// and job workers.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/docuchat/backend/internal/docerrors"
	"github.com/docuchat/backend/internal/models"
	"github.com/docuchat/backend/internal/observability"
	"github.com/docuchat/backend/internal/qagen"
)

// TextExtractor extracts plain text from a stored document file.
type TextExtractor interface {
	Text(path string) (string, error)
}

// EmbeddingClient produces an embedding vector for a piece of text.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}

// QAGenerator produces embedded question/answer pairs from document chunks.
// Implementations must degrade to an empty result rather than failing.
type QAGenerator interface {
	Generate(ctx context.Context, chunks []string) []qagen.Item
}

// Chunker splits extracted text into overlapping spans.
type Chunker interface {
	Collect(text string) []string
}

// ingestDocumentStore is the repository surface the ingestion service needs.
type ingestDocumentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ReplaceIndex(ctx context.Context, documentID uuid.UUID, textLength int, chunks []models.Chunk, qaItems []models.QAItem) error
}

// RateLimitedEmbedder wraps an EmbeddingClient with a token bucket so bulk
// ingestion cannot burst past the provider's rate limits.
type RateLimitedEmbedder struct {
	inner   EmbeddingClient
	limiter *rate.Limiter
}

// NewRateLimitedEmbedder wraps inner. limiter may be nil to disable limiting.
func NewRateLimitedEmbedder(inner EmbeddingClient, limiter *rate.Limiter) *RateLimitedEmbedder {
	return &RateLimitedEmbedder{inner: inner, limiter: limiter}
}

// CreateEmbedding waits for limiter capacity, then delegates.
func (e *RateLimitedEmbedder) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding rate limit: %w", err)
		}
	}

	return e.inner.CreateEmbedding(ctx, input)
}

// IngestionService runs the document processing pipeline: extract text, chunk
// it, embed each chunk, generate QA pairs, and atomically replace the
// document's index.
type IngestionService struct {
	documents      ingestDocumentStore
	extractor      TextExtractor
	chunker        Chunker
	embeddings     EmbeddingClient
	qaGenerator    QAGenerator
	embeddingModel string
	metrics        observability.IngestionMetrics
	logger         *slog.Logger
}

// NewIngestionService creates the ingestion pipeline service.
// metrics may be nil when metrics are disabled.
func NewIngestionService(
	documents ingestDocumentStore,
	extractor TextExtractor,
	chunker Chunker,
	embeddings EmbeddingClient,
	qaGenerator QAGenerator,
	embeddingModel string,
	metrics observability.IngestionMetrics,
	logger *slog.Logger,
) *IngestionService {
	if logger == nil {
		logger = slog.Default()
	}

	return &IngestionService{
		documents:      documents,
		extractor:      extractor,
		chunker:        chunker,
		embeddings:     embeddings,
		qaGenerator:    qaGenerator,
		embeddingModel: embeddingModel,
		metrics:        metrics,
		logger:         logger,
	}
}

// Ingest processes one document end to end. Extraction failures and documents
// with no embeddable content return typed errors; a chunk whose embedding call
// fails is dropped so one bad span does not sink the whole document. QA
// generation never fails the pipeline.
func (s *IngestionService) Ingest(ctx context.Context, documentID uuid.UUID) error {
	start := time.Now()

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	text, err := s.extractor.Text(doc.FilePath)
	if err != nil {
		return fmt.Errorf("extract %q: %w", doc.Filename, err)
	}

	spans := s.chunker.Collect(text)
	if len(spans) == 0 {
		return docerrors.NewExtractionError("document contains no usable text")
	}

	chunks := make([]models.Chunk, 0, len(spans))

	for position, span := range spans {
		embedding, err := s.embeddings.CreateEmbedding(ctx, span)
		if err != nil {
			s.logger.Warn("ingest: chunk embedding failed, dropping chunk",
				"document_id", documentID,
				"position", position,
				"error", err,
			)

			continue
		}

		if s.metrics != nil {
			s.metrics.RecordEmbeddingCall(ctx, "chunk")
		}

		chunks = append(chunks, models.Chunk{
			DocumentID: documentID,
			Position:   position,
			Content:    span,
			Embedding:  embedding,
			Model:      s.embeddingModel,
		})
	}

	if len(chunks) == 0 {
		return docerrors.NewEmbeddingError("no chunk could be embedded")
	}

	qaItems := s.buildQAItems(ctx, documentID, spans)

	textLength := utf8.RuneCountInString(text)

	if err := s.documents.ReplaceIndex(ctx, documentID, textLength, chunks, qaItems); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordChunksIndexed(ctx, int64(len(chunks)))
		s.metrics.RecordQAPairsIndexed(ctx, int64(len(qaItems)))
	}

	s.logger.Info("ingest: document processed",
		"document_id", documentID,
		"text_length", textLength,
		"chunks", len(chunks),
		"qa_items", len(qaItems),
		"dropped_chunks", len(spans)-len(chunks),
		"duration", time.Since(start),
	)

	return nil
}

// buildQAItems runs QA generation and converts the result to model rows.
// An empty result is a degraded but valid outcome.
func (s *IngestionService) buildQAItems(ctx context.Context, documentID uuid.UUID, spans []string) []models.QAItem {
	items := s.qaGenerator.Generate(ctx, spans)
	if len(items) == 0 {
		return nil
	}

	qaItems := make([]models.QAItem, 0, len(items))
	for _, item := range items {
		qaItems = append(qaItems, models.QAItem{
			DocumentID: documentID,
			Position:   item.Position,
			Question:   item.Question,
			Answer:     item.Answer,
			Embedding:  item.Embedding,
			Model:      s.embeddingModel,
		})
	}

	return qaItems
}
