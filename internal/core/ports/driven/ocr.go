package driven

import (
	"context"
	"image"
)

// OCRService extracts text from a decoded bitmap.
type OCRService interface {
	// Recognise returns the normalised text found in img.
	Recognise(ctx context.Context, img image.Image) (string, error)
}

// PageRasteriser renders each page of a PDF to a bitmap.
type PageRasteriser interface {
	// CheckAvailable reports whether rasterisation can run on this machine.
	CheckAvailable() error

	// Rasterise calls fn once per page, in order, with the 1-based page number.
	Rasterise(ctx context.Context, path string, fn func(page int, img image.Image) error) error
}
