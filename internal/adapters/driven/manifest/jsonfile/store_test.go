package jsonfile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/logger"
)

func TestStore_LoadMissing(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "rag_store", "manifest.json"))

	m, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, m.Files)

	_, err = os.Stat(filepath.Join(dir, "rag_store"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store", "manifest.json")
	store := NewStore(path)

	m := domain.NewManifest()
	m.Record("a.txt", "aaa")
	m.Record("sub/b.pdf", "bbb")
	m.RunID = "run-1"
	m.UpdatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(m))

	var raw map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]any{"sha256": "aaa"}, raw["files"].(map[string]any)["a.txt"])
	assert.Equal(t, "run-1", raw["run_id"])
	assert.Equal(t, "2026-03-01T12:00:00Z", raw["updated_at"])

	loaded, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, m.Files, loaded.Files)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.True(t, m.UpdatedAt.Equal(loaded.UpdatedAt))
}

func TestStore_LoadOriginalFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"files": {"x.csv": {"sha256": "abc"}}}`), 0o600))

	m, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeUnchanged, m.Classify("x.csv", "abc"))
	assert.Empty(t, m.RunID)
}

func TestStore_PreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"files": {}, "note": {"owner": "ops"}}`), 0o600))

	store := NewStore(path)
	m, err := store.Load()
	require.NoError(t, err)
	m.Record("new.txt", "h")
	require.NoError(t, store.Save(m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]any{"owner": "ops"}, raw["note"])
	assert.Contains(t, raw["files"].(map[string]any), "new.txt")
}

func TestStore_LoadMalformedRunInfo(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	path := filepath.Join(t.TempDir(), "manifest.json")
	doc := `{"files": {"a.txt": {"sha256": "h"}}, "run_id": 42, "updated_at": "yesterday"}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	m, err := NewStore(path).Load()

	require.NoError(t, err)
	assert.Equal(t, domain.ChangeUnchanged, m.Classify("a.txt", "h"))
	assert.Empty(t, m.RunID)
	assert.True(t, m.UpdatedAt.IsZero())
	assert.Contains(t, buf.String(), "[WARN] manifest "+path+": ignoring malformed run_id")
	assert.Contains(t, buf.String(), "ignoring malformed updated_at")
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := NewStore(path).Load()
	assert.ErrorIs(t, err, domain.ErrInput)
}
