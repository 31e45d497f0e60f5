package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/backend/internal/docerrors"
)

func TestPDFExtractor_Text(t *testing.T) {
	extractor := NewPDFExtractor()

	t.Run("missing file returns ExtractionError", func(t *testing.T) {
		_, err := extractor.Text(filepath.Join(t.TempDir(), "nope.pdf"))
		assert.ErrorIs(t, err, docerrors.ErrExtraction)
	})

	t.Run("non-PDF content returns ExtractionError", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "not-a.pdf")
		require.NoError(t, os.WriteFile(path, []byte("hello, I am plain text"), 0o644))

		_, err := extractor.Text(path)
		assert.ErrorIs(t, err, docerrors.ErrExtraction)
	})

	t.Run("truncated PDF header returns ExtractionError", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trunc.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644))

		_, err := extractor.Text(path)
		assert.ErrorIs(t, err, docerrors.ErrExtraction)
	})
}
