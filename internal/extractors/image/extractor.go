// Package image extracts text from raster images through OCR.
package image

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder for image.Decode
	_ "image/jpeg" // JPEG decoder for image.Decode
	_ "image/png"  // PNG decoder for image.Decode
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder for image.Decode
	_ "golang.org/x/image/tiff" // TIFF decoder for image.Decode
	_ "golang.org/x/image/webp" // WebP decoder for image.Decode

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/extractors"
	"github.com/custodia-labs/foldrag/internal/postprocessors/chunker"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor OCRs whole image files.
type Extractor struct {
	ocr     driven.OCRService
	chunker *chunker.Processor
}

// New creates an image extractor.
func New(ocr driven.OCRService, c *chunker.Processor) *Extractor {
	return &Extractor{ocr: ocr, chunker: c}
}

// FileType returns the file family this extractor handles.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypeImage
}

// Extensions returns the extensions this extractor claims.
func (e *Extractor) Extensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}
}

// CheckAvailable fails when no OCR service is wired in.
func (e *Extractor) CheckAvailable() error {
	if e.ocr == nil {
		return fmt.Errorf("%w: images need an OCR model", domain.ErrExtractorUnavailable)
	}
	return nil
}

// Extract decodes the image, OCRs it and chunks the text.
func (e *Extractor) Extract(ctx context.Context, file domain.SourceFile) ([]domain.ChunkRecord, error) {
	img, err := Decode(file.Path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", file.RelativePath, err)
	}

	text, err := e.ocr.Recognise(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("ocr %s: %w", file.RelativePath, err)
	}

	return extractors.ChunkRecords(file, 0, e.chunker.Chunk(text)), nil
}

// Decode reads any image format registered with the image package.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
