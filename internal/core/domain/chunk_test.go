package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRecord_BuildTag(t *testing.T) {
	tests := []struct {
		name     string
		record   ChunkRecord
		expected string
	}{
		{
			name:     "pdf",
			record:   ChunkRecord{RelativePath: "docs/a.pdf", FileType: FileTypePDF, Page: 3, ChunkIndex: 1},
			expected: "[file:docs/a.pdf p003 c001]",
		},
		{
			name:     "image",
			record:   ChunkRecord{RelativePath: "scan.png", FileType: FileTypeImage, ChunkIndex: 12},
			expected: "[file:scan.png c012]",
		},
		{
			name:     "text",
			record:   ChunkRecord{RelativePath: "notes.txt", FileType: FileTypeText},
			expected: "[file:notes.txt c000]",
		},
		{
			name:     "csv",
			record:   ChunkRecord{RelativePath: "t.csv", FileType: FileTypeCSV, Row: RowRef(7)},
			expected: "[file:t.csv row007 c000]",
		},
		{
			name: "excel",
			record: ChunkRecord{
				RelativePath: "book.xlsx", FileType: FileTypeExcel, Sheet: "Q1", Row: RowRef(12),
			},
			expected: "[file:book.xlsx sheet:Q1 row012 c000]",
		},
		{
			name:     "wide numbers are not truncated",
			record:   ChunkRecord{RelativePath: "big.pdf", FileType: FileTypePDF, Page: 1234, ChunkIndex: 5},
			expected: "[file:big.pdf p1234 c005]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.record.BuildTag())
			assert.Equal(t, tt.expected, tt.record.WithTag().CitationTag)
		})
	}
}

func TestFileType(t *testing.T) {
	for _, ft := range AllFileTypes() {
		assert.True(t, ft.IsValid(), ft)
	}
	assert.False(t, FileType("docx").IsValid())
	assert.True(t, FileTypeCSV.IsRowBased())
	assert.True(t, FileTypeExcel.IsRowBased())
	assert.False(t, FileTypePDF.IsRowBased())
	assert.Equal(t, "image", FileTypeImage.String())
}

func TestNewSourceFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "sub", "Report.PDF")

	sf, err := NewSourceFile(root, path, FileTypePDF)

	require.NoError(t, err)
	assert.Equal(t, "sub/Report.PDF", sf.RelativePath)
	assert.Equal(t, ".pdf", sf.Ext)
	assert.Equal(t, FileTypePDF, sf.Type)
	assert.True(t, filepath.IsAbs(sf.Path))
}

func TestSummariseFiles(t *testing.T) {
	records := []ChunkRecord{
		{RelativePath: "b.csv", FileType: FileTypeCSV},
		{RelativePath: "a.pdf", FileType: FileTypePDF},
		{RelativePath: "b.csv", FileType: FileTypeCSV},
	}

	got := SummariseFiles(records)

	assert.Equal(t, []FileSummary{
		{RelativePath: "a.pdf", FileType: FileTypePDF, Records: 1},
		{RelativePath: "b.csv", FileType: FileTypeCSV, Records: 2},
	}, got)
	assert.Empty(t, SummariseFiles(nil))
}
