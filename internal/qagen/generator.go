// Package qagen generates synthetic question/answer pairs from document chunks.
//
// QA pairs are an enhancement, not a correctness requirement: every failure
// mode here degrades to "fewer or no pairs" instead of failing the ingestion
// that invoked it.
package qagen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Defaults for the generation policy. The chunk sample is capped to respect
// the generative model's context limits.
const (
	DefaultSampleCap = 20
	DefaultPairCount = 10
)

// CompletionClient produces free-form text from a prompt.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// EmbeddingClient generates embedding vectors for text.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}

// Pair is the JSON schema the generative model is instructed to emit.
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Item is one surviving QA pair with its embedding, positioned within the batch.
type Item struct {
	Position  int
	Question  string
	Answer    string
	Embedding []float32
}

// Generator asks a generative model for QA pairs over sampled chunks and
// embeds each surviving pair independently.
type Generator struct {
	completions CompletionClient
	embeddings  EmbeddingClient
	sampleCap   int
	pairCount   int
	logger      *slog.Logger
}

// New creates a Generator. Non-positive sampleCap or pairCount fall back to
// the defaults; a nil logger falls back to slog.Default.
func New(completions CompletionClient, embeddings EmbeddingClient, sampleCap, pairCount int, logger *slog.Logger) *Generator {
	if sampleCap <= 0 {
		sampleCap = DefaultSampleCap
	}

	if pairCount <= 0 {
		pairCount = DefaultPairCount
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		completions: completions,
		embeddings:  embeddings,
		sampleCap:   sampleCap,
		pairCount:   pairCount,
		logger:      logger,
	}
}

// Generate produces embedded QA items from the given chunks. It never returns
// an error: if the model call fails or its output is not a valid JSON array,
// the whole step is skipped and nil is returned; if embedding one pair fails,
// that pair is dropped and the rest of the batch survives.
func (g *Generator) Generate(ctx context.Context, chunks []string) []Item {
	if len(chunks) == 0 {
		return nil
	}

	sample := chunks
	if len(sample) > g.sampleCap {
		sample = sample[:g.sampleCap]
	}

	raw, err := g.completions.Complete(ctx, g.buildPrompt(sample))
	if err != nil {
		g.logger.Warn("qa generation: model call failed, skipping QA pairs", "error", err)

		return nil
	}

	pairs, err := ParsePairs(raw)
	if err != nil {
		g.logger.Warn("qa generation: unparseable model output, skipping QA pairs", "error", err)

		return nil
	}

	items := make([]Item, 0, len(pairs))

	for _, pair := range pairs {
		question := strings.TrimSpace(pair.Question)
		answer := strings.TrimSpace(pair.Answer)

		if question == "" || answer == "" {
			continue
		}

		embedding, err := g.embeddings.CreateEmbedding(ctx, question+"\n"+answer)
		if err != nil {
			g.logger.Warn("qa generation: embedding failed, dropping pair",
				"question", question,
				"error", err,
			)

			continue
		}

		items = append(items, Item{
			Position:  len(items),
			Question:  question,
			Answer:    answer,
			Embedding: embedding,
		})
	}

	return items
}

func (g *Generator) buildPrompt(sample []string) string {
	var b strings.Builder

	b.WriteString("Based on the following document context:\n\n")

	for i, chunk := range sample {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, chunk)
	}

	fmt.Fprintf(&b, `Generate %d question-answer pairs covering the document above.
Respond with ONLY a JSON array, no prose and no code fences, in exactly this shape:
[{"question": "...", "answer": "..."}]
`, g.pairCount)

	return b.String()
}

// ParsePairs parses the model's output as a JSON array of {question, answer}
// objects, stripping Markdown code fences first: models routinely wrap JSON in
// ```json fences despite instructions not to.
func ParsePairs(raw string) ([]Pair, error) {
	cleaned := StripCodeFence(raw)

	var pairs []Pair
	if err := json.Unmarshal([]byte(cleaned), &pairs); err != nil {
		return nil, fmt.Errorf("parse qa pairs: %w", err)
	}

	return pairs, nil
}

// StripCodeFence removes a surrounding Markdown code fence (``` or ```json)
// from s, if present, and trims whitespace.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")

	// Drop a language tag on the opening fence line (e.g. "json").
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "[{") {
			s = s[idx+1:]
		}
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
