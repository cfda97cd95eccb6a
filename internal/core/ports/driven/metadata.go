package driven

import (
	"context"

	"github.com/custodia-labs/foldrag/internal/core/domain"
)

// MetadataStore persists the ordered chunk records of one index build.
// Position i of the stored sequence describes vector i of the index.
type MetadataStore interface {
	// ReplaceAll discards the previous build and stores records in order.
	ReplaceAll(ctx context.Context, runID string, records []domain.ChunkRecord) error

	// LoadAll returns every record in index order.
	LoadAll(ctx context.Context) ([]domain.ChunkRecord, error)

	// ListFiles returns per-file record counts in path order.
	ListFiles(ctx context.Context) ([]domain.FileSummary, error)

	// Close releases resources.
	Close() error
}

// ManifestStore loads and saves the content-hash manifest.
type ManifestStore interface {
	// Load returns the stored manifest, or an empty one if none exists.
	Load() (*domain.Manifest, error)

	// Save writes m, creating parent directories as needed.
	Save(m *domain.Manifest) error

	// Path returns the manifest file location.
	Path() string
}

// MetadataOpener opens the metadata artifact at path. With create false a
// missing artifact is reported as domain.ErrNotIndexed and nothing is
// written to disk.
type MetadataOpener func(path string, create bool) (MetadataStore, error)
