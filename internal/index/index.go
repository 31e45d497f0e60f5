// Package index provides the in-memory vector index and cosine-similarity
// retrieval over a document's chunk and QA-item embeddings.
//
// Ranking is a brute-force scan: at single-document scale (low thousands of
// vectors) this is faster than maintaining an ANN structure, and the contract
// (query vector in, ranked matches out) leaves room to swap one in.
package index

import (
	"math"
	"sort"
)

// Entry is one labeled (item, vector) pair.
type Entry[T any] struct {
	Item   T
	Vector []float32
}

// Match pairs an indexed item with its cosine similarity score for one query.
type Match[T any] struct {
	Item  T
	Score float64
}

// Index is an in-memory collection of (item, vector) pairs supporting
// similarity ranking. Build it fully, then treat it as read-only; a document's
// index is replaced wholesale, never mutated in place.
type Index[T any] struct {
	entries []Entry[T]
}

// New creates an empty index.
func New[T any]() *Index[T] {
	return &Index[T]{}
}

// Add appends an (item, vector) pair. Insertion order is the tie-break order for ranking.
func (ix *Index[T]) Add(item T, vector []float32) {
	ix.entries = append(ix.entries, Entry[T]{Item: item, Vector: vector})
}

// Len returns the number of indexed entries.
func (ix *Index[T]) Len() int {
	return len(ix.entries)
}

// TopK returns up to k matches with score >= minScore, descending by score,
// ties broken by insertion order. Entries whose similarity is undefined
// (zero-norm vector on either side) are excluded rather than scored.
func (ix *Index[T]) TopK(query []float32, k int, minScore float64) []Match[T] {
	if k <= 0 || norm(query) == 0 {
		return nil
	}

	matches := make([]Match[T], 0, len(ix.entries))

	for _, entry := range ix.entries {
		if norm(entry.Vector) == 0 {
			continue
		}

		score := CosineSimilarity(query, entry.Vector)
		if score >= minScore {
			matches = append(matches, Match[T]{Item: entry.Item, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	return matches
}

// CosineSimilarity returns dot(a,b) / (norm(a) * norm(b)).
// Returns 0 when the vectors differ in length or either has zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// NormalizeL2 scales vector in place to unit length. Zero vectors are left unchanged.
func NormalizeL2(vector []float32) {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}

	if sumSquares == 0 {
		return
	}

	magnitude := math.Sqrt(sumSquares)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / magnitude)
	}
}

func norm(vector []float32) float64 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}

	return math.Sqrt(sumSquares)
}
