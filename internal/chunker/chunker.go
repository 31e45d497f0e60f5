// Package chunker splits raw text into overlapping fixed-size spans suitable for embedding.
package chunker

import (
	"iter"
	"strings"
)

// Defaults for the chunking policy. Sizes are in runes so multi-byte text is never split mid-character.
const (
	DefaultSize      = 800
	DefaultOverlap   = 100
	DefaultMinLength = 50
)

// Chunker slides a fixed-size window across text, advancing by size−overlap each step.
type Chunker struct {
	size      int
	overlap   int
	minLength int
}

// New creates a Chunker. Non-positive size or minLength and negative or
// too-large overlap fall back to the defaults.
func New(size, overlap, minLength int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}

	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = size / 8
		}
	}

	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	return &Chunker{size: size, overlap: overlap, minLength: minLength}
}

// Chunks returns a lazy, restartable sequence of (position, span) pairs.
// Spans are trimmed of surrounding whitespace; spans shorter than the minimum
// substantive length are discarded so near-empty fragments are never embedded.
// Text shorter than one window yields at most one span. Deterministic for
// identical inputs.
func (c *Chunker) Chunks(text string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		runes := []rune(text)
		step := c.size - c.overlap
		position := 0

		for start := 0; start < len(runes); start += step {
			end := start + c.size
			if end > len(runes) {
				end = len(runes)
			}

			span := strings.TrimSpace(string(runes[start:end]))
			if len([]rune(span)) >= c.minLength {
				if !yield(position, span) {
					return
				}

				position++
			}

			if end == len(runes) {
				return
			}
		}
	}
}

// Collect materializes the chunk sequence into a slice of spans.
func (c *Chunker) Collect(text string) []string {
	var spans []string
	for _, span := range c.Chunks(text) {
		spans = append(spans, span)
	}

	return spans
}
