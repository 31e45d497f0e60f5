package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/docuchat/backend/internal/docerrors"
	"github.com/docuchat/backend/internal/index"
	"github.com/docuchat/backend/internal/models"
	"github.com/docuchat/backend/internal/observability"
	"github.com/docuchat/backend/pkg/cache"
)

const (
	// MinQuestionLength is the minimum rune count for a question after trimming.
	MinQuestionLength = 3

	// chunkPreviewLength bounds how much of a chunk is quoted in the prompt.
	chunkPreviewLength = 300

	// contextSnapshotMax bounds the context snapshot stored on a Message.
	contextSnapshotMax = 2000

	// queryCacheSize is the max number of cached query embeddings.
	queryCacheSize = 256
)

// FallbackAnswer is returned when the completion call fails. Serving a fixed
// apology beats surfacing an upstream error to the person asking.
const FallbackAnswer = "I'm sorry, I couldn't generate an answer for that question right now. Please try again in a moment."

// noRelevantContent is substituted when no match clears its threshold so the
// model is not misled into inventing grounding.
const noRelevantContent = "No relevant content was found in the document for this question."

// CompletionClient obtains a natural-language completion for a prompt.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// chatDocumentStore is the repository surface the chat service needs.
type chatDocumentStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Document, error)
	LoadIndex(ctx context.Context, documentID uuid.UUID) ([]models.Chunk, []models.QAItem, error)
}

// messageStore appends and lists conversation history.
type messageStore interface {
	Append(ctx context.Context, message *models.Message) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Message, error)
}

// ChatService answers questions against the user's processed document using
// hybrid retrieval (QA pairs plus raw chunks) and a single completion call.
type ChatService struct {
	documents   chatDocumentStore
	messages    messageStore
	embeddings  EmbeddingClient
	completions CompletionClient
	retriever   *index.Retriever
	queryCache  *cache.LoaderCache[string, []float32]
	metrics     observability.ChatMetrics
	logger      *slog.Logger
}

// NewChatService creates the question answering service.
// metrics may be nil when metrics are disabled.
func NewChatService(
	documents chatDocumentStore,
	messages messageStore,
	embeddings EmbeddingClient,
	completions CompletionClient,
	retriever *index.Retriever,
	metrics observability.ChatMetrics,
	logger *slog.Logger,
) (*ChatService, error) {
	queryCache, err := cache.NewLoaderCache[string, []float32](queryCacheSize, func(k string) string { return k })
	if err != nil {
		return nil, fmt.Errorf("create query embedding cache: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ChatService{
		documents:   documents,
		messages:    messages,
		embeddings:  embeddings,
		completions: completions,
		retriever:   retriever,
		queryCache:  queryCache,
		metrics:     metrics,
		logger:      logger,
	}, nil
}

// Ask answers one question against the user's document. The question must be
// non-trivial, the document must exist and be processed. Completion failures
// produce the fallback answer instead of an error, and a Message is persisted
// either way.
func (s *ChatService) Ask(ctx context.Context, userID uuid.UUID, question string) (*models.Message, error) {
	start := time.Now()

	question = strings.TrimSpace(question)
	if utf8.RuneCountInString(question) < MinQuestionLength {
		s.recordOutcome(ctx, "rejected", start)

		return nil, docerrors.NewValidationError("question", "question is too short")
	}

	doc, err := s.documents.FindByUserID(ctx, userID)
	if err != nil {
		s.recordOutcome(ctx, "rejected", start)

		return nil, fmt.Errorf("find document: %w", err)
	}

	if !doc.Processed() {
		s.recordOutcome(ctx, "rejected", start)

		return nil, docerrors.NewNotProcessedError("document has not been processed yet")
	}

	docIndex, err := s.loadDocumentIndex(ctx, doc.ID)
	if err != nil {
		s.recordOutcome(ctx, "rejected", start)

		return nil, err
	}

	result := s.retrieve(ctx, docIndex, question)
	contextText := buildContext(result)

	status := "answered"

	answer, err := s.completions.Complete(ctx, buildPrompt(contextText, question))
	if err != nil || strings.TrimSpace(answer) == "" {
		s.logger.Warn("chat: completion failed, serving fallback",
			"user_id", userID,
			"document_id", doc.ID,
			"error", err,
		)

		if s.metrics != nil {
			s.metrics.RecordAnswerFallback(ctx, "completion_failed")
		}

		answer = FallbackAnswer
		status = "fallback"
	}

	message := &models.Message{
		UserID:          userID,
		DocumentID:      doc.ID,
		Question:        question,
		Answer:          answer,
		ContextSnapshot: truncateRunes(contextText, contextSnapshotMax),
		QAMatchCount:    len(result.QA),
		ChunkMatchCount: len(result.Chunks),
	}

	// History durability never outranks answer delivery.
	if err := s.messages.Append(ctx, message); err != nil {
		s.logger.Warn("chat: message persistence failed",
			"user_id", userID,
			"document_id", doc.ID,
			"error", err,
		)
	}

	s.recordOutcome(ctx, status, start)

	return message, nil
}

// History returns the user's past exchanges, newest first.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.Message, error) {
	messages, err := s.messages.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	return messages, nil
}

// loadDocumentIndex stages the document's full embedding set in memory.
// An empty set yields NotProcessedError.
func (s *ChatService) loadDocumentIndex(ctx context.Context, documentID uuid.UUID) (*index.DocumentIndex, error) {
	chunks, qaItems, err := s.documents.LoadIndex(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	docIndex := index.NewDocumentIndex()

	for i := range chunks {
		docIndex.Chunks.Add(chunks[i], chunks[i].Embedding)
	}

	for i := range qaItems {
		docIndex.QA.Add(qaItems[i], qaItems[i].Embedding)
	}

	if docIndex.Empty() {
		return nil, docerrors.NewNotProcessedError("document has no embedding index")
	}

	return docIndex, nil
}

// retrieve embeds the question (cached per question text) and ranks the index.
// A failed query embedding degrades to an empty result: the prompt then
// carries the no-relevant-content marker rather than the whole request failing.
func (s *ChatService) retrieve(ctx context.Context, docIndex *index.DocumentIndex, question string) index.RetrievalResult {
	queryVec, hit, err := s.queryCache.Get(ctx, question, func(ctx context.Context, q string) ([]float32, error) {
		return s.embeddings.CreateEmbedding(ctx, q)
	})
	if err != nil {
		s.logger.Warn("chat: query embedding failed, retrieval skipped", "error", err)

		return index.RetrievalResult{}
	}

	if !hit && s.metrics != nil {
		s.metrics.RecordEmbeddingCall(ctx, "query")
	}

	return s.retriever.Retrieve(docIndex, queryVec)
}

func (s *ChatService) recordOutcome(ctx context.Context, status string, start time.Time) {
	if s.metrics == nil {
		return
	}

	s.metrics.RecordQuestionOutcome(ctx, status)
	s.metrics.RecordQuestionDuration(ctx, time.Since(start), status)
}

// buildContext renders the retrieval result as a structured context block:
// qualifying QA matches first, then chunk excerpts, each annotated with its
// relevance score. Sections without matches are omitted entirely.
func buildContext(result index.RetrievalResult) string {
	if result.Empty() {
		return noRelevantContent
	}

	var b strings.Builder

	if len(result.QA) > 0 {
		b.WriteString("Known question/answer pairs from the document:\n")

		for _, match := range result.QA {
			fmt.Fprintf(&b, "[relevance %.2f] Q: %s\nA: %s\n", match.Score, match.Item.Question, match.Item.Answer)
		}
	}

	if len(result.Chunks) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}

		b.WriteString("Document excerpts:\n")

		for _, match := range result.Chunks {
			fmt.Fprintf(&b, "[relevance %.2f] %s\n", match.Score, truncateRunes(match.Item.Content, chunkPreviewLength))
		}
	}

	return b.String()
}

// buildPrompt wraps the context and question with instructions that bind the
// model to the supplied material.
func buildPrompt(contextText, question string) string {
	var b strings.Builder

	b.WriteString("You are an assistant answering questions about a document the user uploaded.\n")
	b.WriteString("Answer using only the context below. If the context does not contain the answer, ")
	b.WriteString("say that the document does not cover it instead of guessing.\n")
	b.WriteString("Answer in plain prose, briefly and to the point. Do not return JSON or lists.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)

	return b.String()
}

// truncateRunes shortens s to at most max runes, marking the cut.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)

	return string(runes[:max]) + "..."
}
