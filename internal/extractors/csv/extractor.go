// Package csv extracts one record per CSV row.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// CellSeparator joins the cells of a row.
const CellSeparator = " | "

const byteOrderMark = "\ufeff"

// Extractor reads CSV files. There is no header detection: the first row is
// row 0 like any other.
type Extractor struct{}

// New creates a CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// FileType returns the file family this extractor handles.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypeCSV
}

// Extensions returns the extensions this extractor claims.
func (e *Extractor) Extensions() []string {
	return []string{".csv"}
}

// CheckAvailable always succeeds.
func (e *Extractor) CheckAvailable() error {
	return nil
}

// Extract emits one record per non-blank row. Blank lines still consume a
// row number so numbering follows the physical file.
func (e *Extractor) Extract(_ context.Context, file domain.SourceFile) ([]domain.ChunkRecord, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.RelativePath, err)
	}
	content := strings.TrimPrefix(strings.ToValidUTF8(string(data), ""), byteOrderMark)

	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records []domain.ChunkRecord
	row := 0
	nextLine := 1
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file.RelativePath, err)
		}

		line, _ := r.FieldPos(0)
		row += line - nextLine
		nextLine = recordEndLine(r, fields) + 1

		text := JoinCells(fields)
		if text != "" {
			records = append(records, extractors.RowRecord(file, "", row, text))
		}
		row++
	}

	return records, nil
}

// recordEndLine returns the last physical line the record occupies.
func recordEndLine(r *csv.Reader, fields []string) int {
	last := len(fields) - 1
	line, _ := r.FieldPos(last)
	return line + strings.Count(fields[last], "\n")
}

// JoinCells trims each cell and joins them with CellSeparator. A row whose
// joined text is blank yields "".
func JoinCells(cells []string) string {
	trimmed := make([]string, len(cells))
	for i, c := range cells {
		trimmed[i] = strings.TrimSpace(c)
	}
	line := strings.Join(trimmed, CellSeparator)
	if strings.TrimSpace(line) == "" {
		return ""
	}
	return line
}
