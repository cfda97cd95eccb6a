// Package pdf extracts text from PDFs by rasterising each page and running
// OCR on the bitmap. Scanned and born-digital documents are treated alike.
package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/extractors"
	"github.com/custodia-labs/foldrag/internal/logger"
	"github.com/custodia-labs/foldrag/internal/postprocessors/chunker"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor OCRs PDF pages.
type Extractor struct {
	rasteriser driven.PageRasteriser
	ocr        driven.OCRService
	chunker    *chunker.Processor
}

// New creates a PDF extractor.
func New(rasteriser driven.PageRasteriser, ocr driven.OCRService, c *chunker.Processor) *Extractor {
	return &Extractor{rasteriser: rasteriser, ocr: ocr, chunker: c}
}

// FileType returns the file family this extractor handles.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypePDF
}

// Extensions returns the extensions this extractor claims.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// CheckAvailable verifies both the rasteriser and the OCR service.
func (e *Extractor) CheckAvailable() error {
	if e.ocr == nil {
		return fmt.Errorf("%w: PDFs need an OCR model", domain.ErrExtractorUnavailable)
	}
	if e.rasteriser == nil {
		return fmt.Errorf("%w: no PDF rasteriser configured", domain.ErrExtractorUnavailable)
	}
	return e.rasteriser.CheckAvailable()
}

// Extract OCRs every page in order. Chunk numbering restarts on each page.
func (e *Extractor) Extract(ctx context.Context, file domain.SourceFile) ([]domain.ChunkRecord, error) {
	var records []domain.ChunkRecord

	err := e.rasteriser.Rasterise(ctx, file.Path, func(page int, img image.Image) error {
		text, err := e.ocr.Recognise(ctx, img)
		if err != nil {
			return fmt.Errorf("ocr page %d: %w", page, err)
		}
		chunks := e.chunker.Chunk(text)
		logger.Debug("%s page %d: %d chars, %d chunks", file.RelativePath, page, len(text), len(chunks))
		records = append(records, extractors.ChunkRecords(file, page, chunks)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.RelativePath, err)
	}

	return records, nil
}
