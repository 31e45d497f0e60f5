package index

import "github.com/docuchat/backend/internal/models"

// Retrieval policy defaults. QA matches must clear a higher bar than raw
// chunks: chunks are noisier, so they get a lower threshold.
const (
	DefaultTopK          = 3
	DefaultQAScoreMin    = 0.5
	DefaultChunkScoreMin = 0.3
)

// DocumentIndex holds one document's complete embedding sets. It is staged
// fully in memory and swapped in as a unit, so readers never observe a
// half-built index.
type DocumentIndex struct {
	QA     *Index[models.QAItem]
	Chunks *Index[models.Chunk]
}

// NewDocumentIndex creates an empty document index.
func NewDocumentIndex() *DocumentIndex {
	return &DocumentIndex{
		QA:     New[models.QAItem](),
		Chunks: New[models.Chunk](),
	}
}

// Empty reports whether the document has no embeddings at all. Callers use
// this to distinguish "not yet processed" from "nothing relevant found".
func (d *DocumentIndex) Empty() bool {
	return d.QA.Len() == 0 && d.Chunks.Len() == 0
}

// Retriever ranks QA items and chunks independently for a query vector.
type Retriever struct {
	topK          int
	qaScoreMin    float64
	chunkScoreMin float64
}

// NewRetriever creates a Retriever. Non-positive topK and out-of-range
// thresholds fall back to the defaults.
func NewRetriever(topK int, qaScoreMin, chunkScoreMin float64) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}

	if qaScoreMin <= 0 || qaScoreMin > 1 {
		qaScoreMin = DefaultQAScoreMin
	}

	if chunkScoreMin <= 0 || chunkScoreMin > 1 {
		chunkScoreMin = DefaultChunkScoreMin
	}

	return &Retriever{topK: topK, qaScoreMin: qaScoreMin, chunkScoreMin: chunkScoreMin}
}

// RetrievalResult holds the two independent rankings for one query.
type RetrievalResult struct {
	QA     []Match[models.QAItem]
	Chunks []Match[models.Chunk]
}

// Empty reports whether neither ranking produced a qualifying match.
func (r RetrievalResult) Empty() bool {
	return len(r.QA) == 0 && len(r.Chunks) == 0
}

// Retrieve runs both rankings against the document index, each capped at topK
// and filtered by its own relevance threshold.
func (r *Retriever) Retrieve(doc *DocumentIndex, query []float32) RetrievalResult {
	return RetrievalResult{
		QA:     doc.QA.TopK(query, r.topK, r.qaScoreMin),
		Chunks: doc.Chunks.TopK(query, r.topK, r.chunkScoreMin),
	}
}
