package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foldrag/internal/core/domain"
)

func TestMetadataStore_ReplaceAll(t *testing.T) {
	store := NewMetadataStore()
	ctx := context.Background()

	records := []domain.ChunkRecord{
		{RelativePath: "b.txt", FileType: domain.FileTypeText, CitationTag: "[file:b.txt c000]"},
		{RelativePath: "a.csv", FileType: domain.FileTypeCSV, Row: domain.RowRef(0)},
		{RelativePath: "a.csv", FileType: domain.FileTypeCSV, Row: domain.RowRef(1)},
	}
	require.NoError(t, store.ReplaceAll(ctx, "run-1", records))
	records[0].Text = "mutated"

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Empty(t, loaded[0].Text)
	assert.Equal(t, "run-1", store.RunID())

	files, err := store.ListFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.FileSummary{
		{RelativePath: "a.csv", FileType: domain.FileTypeCSV, Records: 2},
		{RelativePath: "b.txt", FileType: domain.FileTypeText, Records: 1},
	}, files)
}

func TestMetadataStore_Opener(t *testing.T) {
	store := NewMetadataStore()
	open := store.Opener()

	_, err := open("meta.db", false)
	assert.ErrorIs(t, err, domain.ErrNotIndexed)

	got, err := open("meta.db", true)
	require.NoError(t, err)
	require.NoError(t, got.ReplaceAll(context.Background(), "r", nil))

	got, err = open("meta.db", false)
	require.NoError(t, err)
	assert.Same(t, store, got)
	assert.NoError(t, got.Close())
}
