package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/backend/internal/docerrors"
	"github.com/docuchat/backend/internal/models"
	"github.com/docuchat/backend/internal/qagen"
)

type mockIngestStore struct {
	doc        *models.Document
	getErr     error
	replaceErr error

	replacedTextLength int
	replacedChunks     []models.Chunk
	replacedQAItems    []models.QAItem
	replaceCalls       int
}

func (m *mockIngestStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Document, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.doc, nil
}

func (m *mockIngestStore) ReplaceIndex(_ context.Context, _ uuid.UUID, textLength int, chunks []models.Chunk, qaItems []models.QAItem) error {
	m.replaceCalls++
	m.replacedTextLength = textLength
	m.replacedChunks = chunks
	m.replacedQAItems = qaItems
	return m.replaceErr
}

type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) Text(_ string) (string, error) {
	return m.text, m.err
}

type mockEmbedder struct {
	failOn map[string]bool
	calls  []string
}

func (m *mockEmbedder) CreateEmbedding(_ context.Context, input string) ([]float32, error) {
	m.calls = append(m.calls, input)
	if m.failOn[input] {
		return nil, errors.New("embedding unavailable")
	}
	return []float32{1, 0, 0}, nil
}

type mockChunker struct {
	spans []string
}

func (m *mockChunker) Collect(_ string) []string {
	return m.spans
}

type mockQAGenerator struct {
	items []qagen.Item
	calls int
}

func (m *mockQAGenerator) Generate(_ context.Context, _ []string) []qagen.Item {
	m.calls++
	return m.items
}

func newIngestionFixture(store *mockIngestStore, extractor *mockExtractor, ch *mockChunker, emb *mockEmbedder, gen *mockQAGenerator) *IngestionService {
	return NewIngestionService(store, extractor, ch, emb, gen, "text-embedding-3-small", nil, nil)
}

func TestIngestionService_Ingest(t *testing.T) {
	ctx := context.Background()
	docID := uuid.Must(uuid.NewV7())
	now := time.Now()

	doc := &models.Document{
		ID:        docID,
		Filename:  "report.pdf",
		FilePath:  "uploads/report.pdf",
		CreatedAt: now,
	}

	t.Run("indexes chunks and qa items with the configured model", func(t *testing.T) {
		store := &mockIngestStore{doc: doc}
		emb := &mockEmbedder{}
		gen := &mockQAGenerator{items: []qagen.Item{
			{Position: 0, Question: "What is it about?", Answer: "A report.", Embedding: []float32{0, 1, 0}},
		}}
		svc := newIngestionFixture(store, &mockExtractor{text: "héllo world"}, &mockChunker{spans: []string{"first span", "second span"}}, emb, gen)

		err := svc.Ingest(ctx, docID)
		require.NoError(t, err)

		require.Equal(t, 1, store.replaceCalls)
		assert.Equal(t, 11, store.replacedTextLength) // runes, not bytes

		require.Len(t, store.replacedChunks, 2)
		assert.Equal(t, 0, store.replacedChunks[0].Position)
		assert.Equal(t, "first span", store.replacedChunks[0].Content)
		assert.Equal(t, 1, store.replacedChunks[1].Position)
		assert.Equal(t, "text-embedding-3-small", store.replacedChunks[0].Model)

		require.Len(t, store.replacedQAItems, 1)
		assert.Equal(t, "What is it about?", store.replacedQAItems[0].Question)
		assert.Equal(t, "text-embedding-3-small", store.replacedQAItems[0].Model)
		assert.Equal(t, docID, store.replacedQAItems[0].DocumentID)

		assert.Equal(t, 1, gen.calls)
	})

	t.Run("extraction failure propagates and skips indexing", func(t *testing.T) {
		store := &mockIngestStore{doc: doc}
		svc := newIngestionFixture(store, &mockExtractor{err: docerrors.NewExtractionError("unreadable")}, &mockChunker{}, &mockEmbedder{}, &mockQAGenerator{})

		err := svc.Ingest(ctx, docID)
		require.Error(t, err)
		assert.ErrorIs(t, err, docerrors.ErrExtraction)
		assert.Equal(t, 0, store.replaceCalls)
	})

	t.Run("no usable chunks is an extraction failure", func(t *testing.T) {
		store := &mockIngestStore{doc: doc}
		svc := newIngestionFixture(store, &mockExtractor{text: "   "}, &mockChunker{spans: nil}, &mockEmbedder{}, &mockQAGenerator{})

		err := svc.Ingest(ctx, docID)
		assert.ErrorIs(t, err, docerrors.ErrExtraction)
		assert.Equal(t, 0, store.replaceCalls)
	})

	t.Run("a failed chunk embedding drops that chunk only", func(t *testing.T) {
		store := &mockIngestStore{doc: doc}
		emb := &mockEmbedder{failOn: map[string]bool{"second": true}}
		svc := newIngestionFixture(store, &mockExtractor{text: "text"}, &mockChunker{spans: []string{"first", "second", "third"}}, emb, &mockQAGenerator{})

		err := svc.Ingest(ctx, docID)
		require.NoError(t, err)

		require.Len(t, store.replacedChunks, 2)
		assert.Equal(t, "first", store.replacedChunks[0].Content)
		assert.Equal(t, 0, store.replacedChunks[0].Position)
		assert.Equal(t, "third", store.replacedChunks[1].Content)
		// position reflects the span's place in the document, not the surviving set
		assert.Equal(t, 2, store.replacedChunks[1].Position)
	})

	t.Run("every chunk embedding failing aborts the run", func(t *testing.T) {
		store := &mockIngestStore{doc: doc}
		emb := &mockEmbedder{failOn: map[string]bool{"only": true}}
		svc := newIngestionFixture(store, &mockExtractor{text: "text"}, &mockChunker{spans: []string{"only"}}, emb, &mockQAGenerator{})

		err := svc.Ingest(ctx, docID)
		assert.ErrorIs(t, err, docerrors.ErrEmbedding)
		assert.Equal(t, 0, store.replaceCalls)
	})

	t.Run("empty qa batch still indexes chunks", func(t *testing.T) {
		store := &mockIngestStore{doc: doc}
		svc := newIngestionFixture(store, &mockExtractor{text: "text"}, &mockChunker{spans: []string{"span"}}, &mockEmbedder{}, &mockQAGenerator{items: nil})

		err := svc.Ingest(ctx, docID)
		require.NoError(t, err)
		assert.Len(t, store.replacedChunks, 1)
		assert.Empty(t, store.replacedQAItems)
	})

	t.Run("replace failure propagates", func(t *testing.T) {
		store := &mockIngestStore{doc: doc, replaceErr: errors.New("db down")}
		svc := newIngestionFixture(store, &mockExtractor{text: "text"}, &mockChunker{spans: []string{"span"}}, &mockEmbedder{}, &mockQAGenerator{})

		err := svc.Ingest(ctx, docID)
		require.Error(t, err)
	})

	t.Run("missing document propagates not found", func(t *testing.T) {
		store := &mockIngestStore{getErr: docerrors.NewNotFoundError("document", "document not found")}
		svc := newIngestionFixture(store, &mockExtractor{}, &mockChunker{}, &mockEmbedder{}, &mockQAGenerator{})

		err := svc.Ingest(ctx, docID)
		assert.ErrorIs(t, err, docerrors.ErrNotFound)
	})
}

func TestRateLimitedEmbedder(t *testing.T) {
	t.Run("nil limiter delegates directly", func(t *testing.T) {
		inner := &mockEmbedder{}
		limited := NewRateLimitedEmbedder(inner, nil)

		vec, err := limited.CreateEmbedding(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0, 0}, vec)
		assert.Equal(t, []string{"hello"}, inner.calls)
	})
}
