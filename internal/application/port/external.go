package port

import (
	"context"

	"github.com/motorsvc/invoice-tracker/internal/domain/entity"
)

// Extractor produces structured invoice data from raw document bytes. The
// extraction engine is an external collaborator: the pipeline consumes its
// result and never depends on how the text was obtained.
type Extractor interface {
	Extract(ctx context.Context, fileBytes []byte, filename string) (*entity.ExtractionResult, error)
}

// DocumentStore persists uploaded source documents and hands back an opaque
// path for later retrieval.
type DocumentStore interface {
	Save(filename string, data []byte) (string, error)
	Open(path string) ([]byte, error)
}
