// Package jsonfile persists the ingestion manifest as a JSON document.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ManifestStore = (*Store)(nil)

// Top-level keys owned by this store. Any other key found in an existing
// file is written back untouched.
const (
	keyFiles     = "files"
	keyRunID     = "run_id"
	keyUpdatedAt = "updated_at"
)

// Store reads and writes manifest.json.
type Store struct {
	mu    sync.Mutex
	path  string
	extra map[string]json.RawMessage
}

// NewStore creates a store for the file at path. Nothing is touched on disk.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the manifest file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored manifest, or an empty one if the file is missing.
func (s *Store) Load() (*domain.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.extra = nil
			return domain.NewManifest(), nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: manifest %s: %w", domain.ErrInput, s.path, err)
	}

	m := domain.NewManifest()
	if v, ok := raw[keyFiles]; ok {
		if err := json.Unmarshal(v, &m.Files); err != nil {
			return nil, fmt.Errorf("%w: manifest files: %w", domain.ErrInput, err)
		}
		if m.Files == nil {
			m.Files = make(map[string]domain.ManifestEntry)
		}
	}
	// A malformed run_id or updated_at is dropped with a warning.
	if v, ok := raw[keyRunID]; ok {
		var runID string
		if err := json.Unmarshal(v, &runID); err != nil {
			logger.Warn("manifest %s: ignoring malformed %s: %v", s.path, keyRunID, err)
		} else {
			m.RunID = runID
		}
	}
	if v, ok := raw[keyUpdatedAt]; ok {
		var at time.Time
		if err := json.Unmarshal(v, &at); err != nil {
			logger.Warn("manifest %s: ignoring malformed %s: %v", s.path, keyUpdatedAt, err)
		} else {
			m.UpdatedAt = at
		}
	}

	delete(raw, keyFiles)
	delete(raw, keyRunID)
	delete(raw, keyUpdatedAt)
	s.extra = raw
	return m, nil
}

// Save writes m through a temporary file and rename, creating the parent
// directory when needed.
func (s *Store) Save(m *domain.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := make(map[string]any, len(s.extra)+3)
	for k, v := range s.extra {
		doc[k] = v
	}
	files := m.Files
	if files == nil {
		files = map[string]domain.ManifestEntry{}
	}
	doc[keyFiles] = files
	if m.RunID != "" {
		doc[keyRunID] = m.RunID
	}
	if !m.UpdatedAt.IsZero() {
		doc[keyUpdatedAt] = m.UpdatedAt.UTC().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create manifest file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}
