package domain

import (
	"sort"
	"time"
)

// ChangeType describes how a file differs from the previous manifest.
type ChangeType int

const (
	// ChangeCreated indicates a file absent from the previous manifest.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a file whose content hash changed.
	ChangeUpdated

	// ChangeUnchanged indicates a file with an identical content hash.
	ChangeUnchanged

	// ChangeDeleted indicates a manifest entry with no file on disk.
	ChangeDeleted
)

// String returns a short label for reports.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeUnchanged:
		return "unchanged"
	case ChangeDeleted:
		return "deleted"
	default:
		return unknownDescription
	}
}

// ManifestEntry is the recorded state of one file.
type ManifestEntry struct {
	SHA256 string `json:"sha256"`
}

// Manifest maps relative file paths to their last ingested content hash.
// It is written on every successful ingestion but never used to skip work.
type Manifest struct {
	Files     map[string]ManifestEntry
	RunID     string
	UpdatedAt time.Time
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Files: make(map[string]ManifestEntry)}
}

// Classify compares hash against the entry recorded for rel.
func (m *Manifest) Classify(rel, hash string) ChangeType {
	prev, ok := m.Files[rel]
	switch {
	case !ok:
		return ChangeCreated
	case prev.SHA256 != hash:
		return ChangeUpdated
	default:
		return ChangeUnchanged
	}
}

// Record stores hash for rel, replacing any previous entry.
func (m *Manifest) Record(rel, hash string) {
	if m.Files == nil {
		m.Files = make(map[string]ManifestEntry)
	}
	m.Files[rel] = ManifestEntry{SHA256: hash}
}

// Paths returns the recorded relative paths in sorted order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a deep copy.
func (m *Manifest) Clone() *Manifest {
	c := &Manifest{
		Files:     make(map[string]ManifestEntry, len(m.Files)),
		RunID:     m.RunID,
		UpdatedAt: m.UpdatedAt,
	}
	for k, v := range m.Files {
		c.Files[k] = v
	}
	return c
}

// ChangeSet summarises one ingestion run against the previous manifest.
type ChangeSet struct {
	Created   []string
	Updated   []string
	Unchanged []string
	Deleted   []string
}

// Add files rel under the given change type.
func (c *ChangeSet) Add(rel string, change ChangeType) {
	switch change {
	case ChangeCreated:
		c.Created = append(c.Created, rel)
	case ChangeUpdated:
		c.Updated = append(c.Updated, rel)
	case ChangeUnchanged:
		c.Unchanged = append(c.Unchanged, rel)
	case ChangeDeleted:
		c.Deleted = append(c.Deleted, rel)
	}
}

// Total returns the number of files seen on disk.
func (c ChangeSet) Total() int {
	return len(c.Created) + len(c.Updated) + len(c.Unchanged)
}
