package extraction

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/motorsvc/invoice-tracker/internal/application/port"
	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// DocumentExtractor turns an uploaded invoice document into structured data.
// PDFs are read through their text layer and parsed with labelled-field
// rules; when the rules find nothing usable and an AI extractor is
// configured, the raw text is handed to it instead.
type DocumentExtractor struct {
	reader *PDFTextReader
	parser ruleParser
	ai     *AIExtractor
	logger *zap.Logger
}

var _ port.Extractor = (*DocumentExtractor)(nil)

// NewDocumentExtractor creates a new DocumentExtractor. ai may be nil, in
// which case only the rule parser runs.
func NewDocumentExtractor(reader *PDFTextReader, ai *AIExtractor, logger *zap.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		reader: reader,
		ai:     ai,
		logger: logger,
	}
}

// Extract implements port.Extractor.
func (e *DocumentExtractor) Extract(ctx context.Context, fileBytes []byte, filename string) (*entity.ExtractionResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" {
		return nil, fmt.Errorf("unsupported document type %q", ext)
	}

	text, err := e.reader.Text(fileBytes)
	if err != nil {
		return nil, err
	}

	result := e.parser.Parse(text)
	if result.Success {
		e.logger.Info("invoice parsed",
			zap.String("filename", filename),
			zap.String("invoice_no", result.Header.InvoiceNo),
			zap.Int("items", len(result.Items)))
		return result, nil
	}

	if e.ai == nil {
		result.Message = "Could not recognize invoice fields in document"
		return result, nil
	}

	e.logger.Warn("rule parser found no usable fields, falling back to AI",
		zap.String("filename", filename))
	aiResult, err := e.ai.ExtractFromText(ctx, text)
	if err != nil {
		e.logger.Error("AI extraction failed", zap.String("filename", filename), zap.Error(err))
		result.Message = "Could not recognize invoice fields in document"
		return result, nil
	}
	return aiResult, nil
}
