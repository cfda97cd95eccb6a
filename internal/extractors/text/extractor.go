// Package text extracts plain-text formats: text, markdown, logs, JSON, XML
// and HTML are all read verbatim and normalised.
package text

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/extractors"
	"github.com/custodia-labs/foldrag/internal/normalisers/whitespace"
	"github.com/custodia-labs/foldrag/internal/postprocessors/chunker"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads text files.
type Extractor struct {
	chunker *chunker.Processor
}

// New creates a text extractor.
func New(c *chunker.Processor) *Extractor {
	return &Extractor{chunker: c}
}

// FileType returns the file family this extractor handles.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypeText
}

// Extensions returns the extensions this extractor claims.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".md", ".log", ".json", ".xml", ".html"}
}

// CheckAvailable always succeeds; text needs nothing external.
func (e *Extractor) CheckAvailable() error {
	return nil
}

// Extract reads the file, drops invalid UTF-8, normalises and chunks it.
func (e *Extractor) Extract(_ context.Context, file domain.SourceFile) ([]domain.ChunkRecord, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.RelativePath, err)
	}

	content := whitespace.Normalize(strings.ToValidUTF8(string(data), ""))
	return extractors.ChunkRecords(file, 0, e.chunker.Chunk(content)), nil
}
