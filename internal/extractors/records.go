package extractors

import (
	"github.com/custodia-labs/foldrag/internal/core/domain"
)

// ChunkRecords builds tagged records for the chunks of one text unit.
// Page is 1-based for pdf pages and 0 otherwise.
func ChunkRecords(file domain.SourceFile, page int, chunks []string) []domain.ChunkRecord {
	records := make([]domain.ChunkRecord, 0, len(chunks))
	for i, text := range chunks {
		rec := domain.ChunkRecord{
			SourcePath:   file.Path,
			RelativePath: file.RelativePath,
			FileType:     file.Type,
			Page:         page,
			ChunkIndex:   i,
			Text:         text,
		}
		records = append(records, rec.WithTag())
	}
	return records
}

// RowRecord builds the tagged record for one table row.
func RowRecord(file domain.SourceFile, sheet string, row int, text string) domain.ChunkRecord {
	rec := domain.ChunkRecord{
		SourcePath:   file.Path,
		RelativePath: file.RelativePath,
		FileType:     file.Type,
		Sheet:        sheet,
		Row:          domain.RowRef(row),
		Text:         text,
	}
	return rec.WithTag()
}
