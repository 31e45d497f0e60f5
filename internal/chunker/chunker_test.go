package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_Chunks(t *testing.T) {
	t.Run("short text produces exactly one chunk", func(t *testing.T) {
		c := New(800, 100, 10)
		spans := c.Collect("Photosynthesis converts light into chemical energy.")

		require.Len(t, spans, 1)
		assert.Equal(t, "Photosynthesis converts light into chemical energy.", spans[0])
	})

	t.Run("text below minimum length produces no chunks", func(t *testing.T) {
		c := New(800, 100, 50)
		assert.Empty(t, c.Collect("too short"))
	})

	t.Run("empty text produces no chunks", func(t *testing.T) {
		c := New(800, 100, 50)
		assert.Empty(t, c.Collect(""))
		assert.Empty(t, c.Collect("   \n\t  "))
	})

	t.Run("windows advance by size minus overlap", func(t *testing.T) {
		// 26 letters, size 10, overlap 4 -> starts at 0, 6, 12, 18; the last
		// window reaches the end of the text and iteration stops there.
		text := "abcdefghijklmnopqrstuvwxyz"
		c := New(10, 4, 1)

		spans := c.Collect(text)
		require.Len(t, spans, 4)
		assert.Equal(t, "abcdefghij", spans[0])
		assert.Equal(t, "ghijklmnop", spans[1])
		assert.Equal(t, "mnopqrstuv", spans[2])
		assert.Equal(t, "stuvwxyz", spans[3])
	})

	t.Run("chunks cover the original text with no gaps", func(t *testing.T) {
		text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 50)
		c := New(100, 20, 1)

		var rebuilt strings.Builder
		for _, span := range c.Collect(text) {
			rebuilt.WriteString(span)
		}

		// Overlapping windows re-emit characters; every non-space character of the
		// original must appear at least once in the concatenation.
		stripped := strings.ReplaceAll(text, " ", "")
		joined := strings.ReplaceAll(rebuilt.String(), " ", "")
		assert.GreaterOrEqual(t, len(joined), len(stripped))
	})

	t.Run("positions are sequential from zero", func(t *testing.T) {
		text := strings.Repeat("x", 500)
		c := New(100, 20, 1)

		want := 0
		for position, span := range c.Chunks(text) {
			assert.Equal(t, want, position)
			assert.NotEmpty(t, span)
			want++
		}

		assert.Greater(t, want, 1)
	})

	t.Run("sequence is restartable", func(t *testing.T) {
		text := strings.Repeat("abc ", 300)
		c := New(100, 20, 1)

		first := c.Collect(text)
		second := c.Collect(text)
		assert.Equal(t, first, second)
	})

	t.Run("early break stops iteration", func(t *testing.T) {
		text := strings.Repeat("x", 1000)
		c := New(100, 20, 1)

		count := 0
		for range c.Chunks(text) {
			count++
			if count == 2 {
				break
			}
		}

		assert.Equal(t, 2, count)
	})

	t.Run("does not split multi-byte runes", func(t *testing.T) {
		text := strings.Repeat("héllo wörld ", 40)
		c := New(50, 10, 1)

		for _, span := range c.Collect(text) {
			assert.True(t, utf8.ValidString(span), "span should be valid UTF-8: %q", span)
		}
	})
}

func TestNew_Defaults(t *testing.T) {
	t.Run("non-positive size falls back to defaults", func(t *testing.T) {
		c := New(0, -1, 0)
		assert.Equal(t, DefaultSize, c.size)
		assert.Equal(t, DefaultOverlap, c.overlap)
		assert.Equal(t, DefaultMinLength, c.minLength)
	})

	t.Run("overlap must stay below size", func(t *testing.T) {
		c := New(80, 200, 5)
		assert.Less(t, c.overlap, c.size)
	})
}
