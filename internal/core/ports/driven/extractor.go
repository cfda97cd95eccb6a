package driven

import (
	"context"

	"github.com/custodia-labs/foldrag/internal/core/domain"
)

// Extractor turns one supported file into chunk records.
// Records are returned with CitationTag already set.
type Extractor interface {
	// FileType returns the file family this extractor handles.
	FileType() domain.FileType

	// Extensions returns the lower-case extensions, with dot, it claims.
	Extensions() []string

	// CheckAvailable reports whether the extractor can run on this machine.
	// It must not touch any input file.
	CheckAvailable() error

	// Extract reads file and returns its records in document order.
	Extract(ctx context.Context, file domain.SourceFile) ([]domain.ChunkRecord, error)
}

// ExtensionChecker is implemented by extractors that support only some of
// the extensions they claim, for example legacy binary workbooks.
type ExtensionChecker interface {
	CheckExtension(ext string) error
}
