// Package extraction produces structured invoice data from uploaded
// documents. A rule-based parser over the PDF text layer handles the common
// invoice layouts; an optional AI fallback covers documents the rules cannot
// read.
package extraction

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// PDFTextReader extracts the text layer of a PDF document page by page.
type PDFTextReader struct {
	logger *zap.Logger
}

// NewPDFTextReader creates a new PDFTextReader.
func NewPDFTextReader(logger *zap.Logger) *PDFTextReader {
	return &PDFTextReader{logger: logger}
}

// Text returns the concatenated text of every page.
func (r *PDFTextReader) Text(fileBytes []byte) (string, error) {
	doc, err := fitz.NewFromMemory(fileBytes)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			r.logger.Warn("failed to read PDF page", zap.Int("page", n), zap.Error(err))
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("document has no extractable text layer")
	}
	return sb.String(), nil
}
