package spreadsheet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/foldrag/internal/core/domain"
)

// writeWorkbook creates a workbook whose sheets hold the given rows.
func writeWorkbook(t *testing.T, path string, sheets map[string][][]any, order []string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			rowCopy := row
			require.NoError(t, f.SetSheetRow(name, cell, &rowCopy))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestExtractor_Metadata(t *testing.T) {
	e := New()
	assert.Equal(t, domain.FileTypeExcel, e.FileType())
	assert.ElementsMatch(t, []string{".xlsx", ".xlsm", ".xls"}, e.Extensions())
	assert.NoError(t, e.CheckAvailable())
	assert.NoError(t, e.CheckExtension(".xlsx"))
	assert.ErrorIs(t, e.CheckExtension(".XLS"), domain.ErrExtractorUnavailable)
}

func TestExtract_MultiSheet(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "book.xlsx")
	writeWorkbook(t, path, map[string][][]any{
		"Prices": {
			{"item", "price", ""},
			{"apple", "1.5", "x"},
			{"", "nan", "None"},
			{"pear", "", ""},
		},
		"Empty": {
			{"only header"},
		},
		"Staff": {
			{" name ", "role"},
			{"Ada", "eng"},
		},
	}, []string{"Prices", "Empty", "Staff"})

	sf, err := domain.NewSourceFile(root, path, domain.FileTypeExcel)
	require.NoError(t, err)

	records, err := New().Extract(context.Background(), sf)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "item=apple | price=1.5 | col2=x", records[0].Text)
	assert.Equal(t, "[file:book.xlsx sheet:Prices row000 c000]", records[0].CitationTag)
	assert.Equal(t, "Prices", records[0].Sheet)

	// The all-NaN row is skipped but keeps its number.
	assert.Equal(t, "item=pear", records[1].Text)
	assert.Equal(t, "[file:book.xlsx sheet:Prices row002 c000]", records[1].CitationTag)

	// Numbering restarts per sheet.
	assert.Equal(t, "name=Ada | role=eng", records[2].Text)
	assert.Equal(t, "[file:book.xlsx sheet:Staff row000 c000]", records[2].CitationTag)
	assert.Equal(t, domain.FileTypeExcel, records[2].FileType)
}

func TestExtract_SkipsBlankRows(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gaps.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "item"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "apple"))
	require.NoError(t, f.SetCellValue("Sheet1", "A5", "pear"))
	require.NoError(t, f.SetCellValue("Sheet1", "A6", "nan"))
	require.NoError(t, f.SetCellValue("Sheet1", "A7", "fig"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	sf, err := domain.NewSourceFile(root, path, domain.FileTypeExcel)
	require.NoError(t, err)

	records, err := New().Extract(context.Background(), sf)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "item=apple", records[0].Text)
	assert.Equal(t, "[file:gaps.xlsx sheet:Sheet1 row000 c000]", records[0].CitationTag)
	assert.Equal(t, "item=pear", records[1].Text)
	assert.Equal(t, "[file:gaps.xlsx sheet:Sheet1 row001 c000]", records[1].CitationTag)
	// The NaN-only row is kept and takes row002.
	assert.Equal(t, "item=fig", records[2].Text)
	assert.Equal(t, "[file:gaps.xlsx sheet:Sheet1 row003 c000]", records[2].CitationTag)
}

func TestDropBlankRows(t *testing.T) {
	rows := [][]string{{}, {"", ""}, {"a"}, {"", "nan"}, {" "}}
	assert.Equal(t, [][]string{{"a"}, {"", "nan"}, {" "}}, DropBlankRows(rows))
}

func TestExtract_LegacyRejected(t *testing.T) {
	_, err := New().Extract(context.Background(), domain.SourceFile{Path: "/x/old.xls", Ext: ".xls"})
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestExtract_Corrupt(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bad.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	_, err := New().Extract(context.Background(), domain.SourceFile{Path: path, RelativePath: "bad.xlsx", Ext: ".xlsx"})
	assert.Error(t, err)
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, []string{"a", "col1", "c"}, ColumnNames([]string{" a ", "  ", "c"}))
}

func TestFormatRow(t *testing.T) {
	tests := []struct {
		name     string
		cols     []string
		values   []string
		expected string
	}{
		{"all values", []string{"a", "b"}, []string{"1", "2"}, "a=1 | b=2"},
		{"skips empty", []string{"a", "b"}, []string{"", "2"}, "b=2"},
		{"skips nan", []string{"a", "b"}, []string{"NaN", "2"}, "b=2"},
		{"skips none", []string{"a", "b"}, []string{"1", "NONE"}, "a=1"},
		{"trims values", []string{"a"}, []string{"  x  "}, "a=x"},
		{"extra values", []string{"a"}, []string{"1", "2"}, "a=1 | col1=2"},
		{"nothing left", []string{"a"}, []string{" "}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatRow(tt.cols, tt.values))
		})
	}
}
