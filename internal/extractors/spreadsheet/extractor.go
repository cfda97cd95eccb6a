// Package spreadsheet extracts one record per data row of every sheet in an
// Excel workbook.
package spreadsheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/extractors"
	"github.com/custodia-labs/foldrag/internal/logger"
)

// Ensure Extractor implements the interfaces.
var (
	_ driven.Extractor        = (*Extractor)(nil)
	_ driven.ExtensionChecker = (*Extractor)(nil)
)

// PairSeparator joins the col=value pairs of a row.
const PairSeparator = " | "

// legacyExt is claimed so that folders holding it fail the capability check
// instead of silently dropping the workbook.
const legacyExt = ".xls"

// Extractor reads .xlsx and .xlsm workbooks.
type Extractor struct{}

// New creates a spreadsheet extractor.
func New() *Extractor {
	return &Extractor{}
}

// FileType returns the file family this extractor handles.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypeExcel
}

// Extensions returns the extensions this extractor claims.
func (e *Extractor) Extensions() []string {
	return []string{".xlsx", ".xlsm", legacyExt}
}

// CheckAvailable always succeeds; the OOXML reader is compiled in.
func (e *Extractor) CheckAvailable() error {
	return nil
}

// CheckExtension rejects legacy binary workbooks, which have no reader.
func (e *Extractor) CheckExtension(ext string) error {
	if strings.EqualFold(ext, legacyExt) {
		return fmt.Errorf("%w: legacy %s workbooks are not supported, save them as .xlsx",
			domain.ErrExtractorUnavailable, legacyExt)
	}
	return nil
}

// Extract reads every sheet. Fully blank rows are dropped first, then the
// first remaining row names the columns and the rest are numbered from 0.
// Rows holding only NaN-like values keep their number but emit nothing.
func (e *Extractor) Extract(_ context.Context, file domain.SourceFile) ([]domain.ChunkRecord, error) {
	if err := e.CheckExtension(file.Ext); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.RelativePath, err)
	}
	defer f.Close()

	var records []domain.ChunkRecord
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, file.RelativePath, err)
		}
		rows = DropBlankRows(rows)
		if len(rows) < 2 {
			logger.Debug("sheet %q of %s has no data rows", sheet, file.RelativePath)
			continue
		}

		cols := ColumnNames(rows[0])
		for i, values := range rows[1:] {
			line := FormatRow(cols, values)
			if line == "" {
				continue
			}
			records = append(records, extractors.RowRecord(file, sheet, i, line))
		}
	}

	return records, nil
}

// DropBlankRows removes rows in which every cell is empty.
func DropBlankRows(rows [][]string) [][]string {
	kept := rows[:0:0]
	for _, row := range rows {
		if !blankRow(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

func blankRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// ColumnNames trims header cells and names blank ones col{j}.
func ColumnNames(header []string) []string {
	cols := make([]string, len(header))
	for j, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("col%d", j)
		}
		cols[j] = h
	}
	return cols
}

// FormatRow renders col=value pairs, omitting empty and NaN-like values.
// Values past the end of cols are named col{j}.
func FormatRow(cols, values []string) string {
	parts := make([]string, 0, len(values))
	for j, v := range values {
		s := strings.TrimSpace(v)
		if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
			continue
		}
		name := fmt.Sprintf("col%d", j)
		if j < len(cols) {
			name = cols[j]
		}
		parts = append(parts, name+"="+s)
	}
	return strings.TrimSpace(strings.Join(parts, PairSeparator))
}
