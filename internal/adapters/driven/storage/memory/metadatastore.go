package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataStore is an in-memory implementation of driven.MetadataStore.
type MetadataStore struct {
	mu      sync.RWMutex
	runID   string
	records []domain.ChunkRecord
	saved   bool
}

// NewMetadataStore creates an empty in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{}
}

// Opener returns a driven.MetadataOpener that always hands out s. Opening
// without create before anything was saved reports ErrNotIndexed.
func (s *MetadataStore) Opener() driven.MetadataOpener {
	return func(path string, create bool) (driven.MetadataStore, error) {
		s.mu.RLock()
		saved := s.saved
		s.mu.RUnlock()
		if !create && !saved {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotIndexed, path)
		}
		return s, nil
	}
}

// ReplaceAll discards the previous build and stores a copy of records.
func (s *MetadataStore) ReplaceAll(_ context.Context, runID string, records []domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.records = append([]domain.ChunkRecord(nil), records...)
	s.saved = true
	return nil
}

// LoadAll returns a copy of every record in order.
func (s *MetadataStore) LoadAll(_ context.Context) ([]domain.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ChunkRecord{}, s.records...), nil
}

// ListFiles returns per-file record counts ordered by path.
func (s *MetadataStore) ListFiles(_ context.Context) ([]domain.FileSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.SummariseFiles(s.records), nil
}

// RunID returns the identifier of the stored build.
func (s *MetadataStore) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Close is a no-op.
func (s *MetadataStore) Close() error {
	return nil
}
