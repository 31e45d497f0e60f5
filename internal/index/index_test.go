package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/backend/internal/models"
)

const tolerance = 1e-9

func TestCosineSimilarity(t *testing.T) {
	t.Run("vector with itself is 1", func(t *testing.T) {
		v := []float32{0.3, -1.2, 4.5, 0.01}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
	})

	t.Run("is symmetric", func(t *testing.T) {
		a := []float32{1, 2, 3}
		b := []float32{-2, 0.5, 7}
		assert.InDelta(t, CosineSimilarity(a, b), CosineSimilarity(b, a), tolerance)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		assert.InDelta(t, 0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), tolerance)
	})

	t.Run("opposite vectors score -1", func(t *testing.T) {
		assert.InDelta(t, -1, CosineSimilarity([]float32{1, 1}, []float32{-1, -1}), 1e-6)
	})

	t.Run("zero norm yields 0 instead of NaN", func(t *testing.T) {
		score := CosineSimilarity([]float32{0, 0}, []float32{1, 2})
		assert.Equal(t, 0.0, score)
		assert.False(t, math.IsNaN(score))
	})

	t.Run("mismatched lengths yield 0", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	})
}

func TestNormalizeL2(t *testing.T) {
	t.Run("normalizes to unit length", func(t *testing.T) {
		v := []float32{3, 4}
		NormalizeL2(v)
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		v := []float32{0, 0, 0}
		NormalizeL2(v)
		assert.Equal(t, []float32{0, 0, 0}, v)
	})
}

func TestIndex_TopK(t *testing.T) {
	t.Run("returns matches descending by score", func(t *testing.T) {
		ix := New[string]()
		ix.Add("far", []float32{0, 1})
		ix.Add("near", []float32{1, 0.01})
		ix.Add("exact", []float32{1, 0})

		matches := ix.TopK([]float32{1, 0}, 3, 0)
		require.Len(t, matches, 3)
		assert.Equal(t, "exact", matches[0].Item)
		assert.Equal(t, "near", matches[1].Item)
		assert.Equal(t, "far", matches[2].Item)
	})

	t.Run("never returns more than k matches", func(t *testing.T) {
		ix := New[int]()
		for i := range 10 {
			ix.Add(i, []float32{1, float32(i) * 0.001})
		}

		assert.Len(t, ix.TopK([]float32{1, 0}, 3, 0), 3)
	})

	t.Run("never returns a match below the threshold", func(t *testing.T) {
		ix := New[string]()
		ix.Add("relevant", []float32{1, 0})
		ix.Add("irrelevant", []float32{0, 1})

		matches := ix.TopK([]float32{1, 0}, 5, 0.5)
		require.Len(t, matches, 1)
		assert.Equal(t, "relevant", matches[0].Item)

		for _, m := range matches {
			assert.GreaterOrEqual(t, m.Score, 0.5)
		}
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		ix := New[string]()
		ix.Add("first", []float32{2, 0})
		ix.Add("second", []float32{5, 0}) // same direction, same cosine score
		ix.Add("third", []float32{1, 0})

		matches := ix.TopK([]float32{1, 0}, 3, 0)
		require.Len(t, matches, 3)
		assert.Equal(t, "first", matches[0].Item)
		assert.Equal(t, "second", matches[1].Item)
		assert.Equal(t, "third", matches[2].Item)
	})

	t.Run("zero-norm entries are excluded not scored", func(t *testing.T) {
		ix := New[string]()
		ix.Add("dead", []float32{0, 0})
		ix.Add("alive", []float32{1, 0})

		matches := ix.TopK([]float32{1, 0}, 5, -1)
		require.Len(t, matches, 1)
		assert.Equal(t, "alive", matches[0].Item)
	})

	t.Run("zero-norm query returns nothing", func(t *testing.T) {
		ix := New[string]()
		ix.Add("a", []float32{1, 0})

		assert.Empty(t, ix.TopK([]float32{0, 0}, 5, 0))
	})
}

func TestRetriever_Retrieve(t *testing.T) {
	newDoc := func() *DocumentIndex {
		doc := NewDocumentIndex()
		doc.QA.Add(models.QAItem{Question: "What is photosynthesis?"}, []float32{1, 0})
		doc.QA.Add(models.QAItem{Question: "Unrelated"}, []float32{0, 1})
		doc.Chunks.Add(models.Chunk{Content: "Photosynthesis converts light."}, []float32{0.9, 0.1})
		doc.Chunks.Add(models.Chunk{Content: "Weather report."}, []float32{0.1, 0.9})

		return doc
	}

	t.Run("applies independent thresholds per category", func(t *testing.T) {
		r := NewRetriever(3, 0.5, 0.3)
		res := r.Retrieve(newDoc(), []float32{1, 0})

		require.Len(t, res.QA, 1)
		assert.Equal(t, "What is photosynthesis?", res.QA[0].Item.Question)

		require.Len(t, res.Chunks, 1)
		assert.Equal(t, "Photosynthesis converts light.", res.Chunks[0].Item.Content)
	})

	t.Run("chunk match between thresholds survives only in chunk ranking", func(t *testing.T) {
		doc := NewDocumentIndex()
		// cos(angle) ~ 0.35 against the query for both entries.
		v := []float32{0.35, float32(math.Sqrt(1 - 0.35*0.35))}
		doc.QA.Add(models.QAItem{Question: "borderline"}, v)
		doc.Chunks.Add(models.Chunk{Content: "borderline"}, v)

		r := NewRetriever(3, 0.5, 0.3)
		res := r.Retrieve(doc, []float32{1, 0})

		assert.Empty(t, res.QA)
		require.Len(t, res.Chunks, 1)
		assert.InDelta(t, 0.35, res.Chunks[0].Score, 0.01)
	})

	t.Run("empty result when nothing clears thresholds", func(t *testing.T) {
		r := NewRetriever(3, 0.5, 0.3)
		res := r.Retrieve(newDoc(), []float32{-1, 0})
		assert.True(t, res.Empty())
	})

	t.Run("defaults applied for invalid parameters", func(t *testing.T) {
		r := NewRetriever(0, 0, 2)
		assert.Equal(t, DefaultTopK, r.topK)
		assert.Equal(t, DefaultQAScoreMin, r.qaScoreMin)
		assert.Equal(t, DefaultChunkScoreMin, r.chunkScoreMin)
	})
}

func TestDocumentIndex_Empty(t *testing.T) {
	doc := NewDocumentIndex()
	assert.True(t, doc.Empty())

	doc.Chunks.Add(models.Chunk{Content: "text"}, []float32{1})
	assert.False(t, doc.Empty())
}
