// Package extract pulls plain text out of uploaded documents.
package extract

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docuchat/backend/internal/docerrors"
)

// PDFExtractor extracts text from PDF files, concatenating page texts in order.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Text reads the PDF at path and returns the concatenated text of all pages.
// Returns an ExtractionError when the file cannot be parsed or yields no text.
func (e *PDFExtractor) Text(path string) (text string, err error) {
	// The parser panics on some malformed files; treat that as an extraction failure.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = docerrors.NewExtractionError("malformed PDF")
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", docerrors.NewExtractionError("cannot open PDF: " + err.Error())
	}
	defer f.Close()

	var b strings.Builder

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages; the document fails below only if nothing is readable.
			continue
		}

		b.WriteString(pageText)
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", docerrors.NewExtractionError("document yielded no text")
	}

	return b.String(), nil
}
