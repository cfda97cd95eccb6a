// Package vision implements OCR by sending page images to a vision-capable
// chat model.
package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"golang.org/x/image/draw"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/logger"
	"github.com/custodia-labs/foldrag/internal/normalisers/whitespace"
)

// Ensure OCR implements the interface.
var _ driven.OCRService = (*OCR)(nil)

// DefaultMaxSide caps the longest image side sent to the model.
const DefaultMaxSide = 1600

// Prompt is the instruction sent with every image.
const Prompt = "You are an OCR engine. Extract ALL readable text from the image.\n" +
	"Rules:\n" +
	"- Output only the extracted text.\n" +
	"- Preserve paragraphs and line breaks when reasonable.\n" +
	"- Do not add commentary.\n"

// OCR extracts text from images with a vision model.
type OCR struct {
	llm     driven.LLMService
	maxSide int
	timeout time.Duration
}

// New creates a vision OCR client. A zero timeout disables the per-call deadline.
func New(llm driven.LLMService, maxSide int, timeout time.Duration) *OCR {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	return &OCR{llm: llm, maxSide: maxSide, timeout: timeout}
}

// Recognise downscales img, encodes it as PNG and asks the model for its text.
// There is no retry: any model failure is returned to the caller.
func (o *OCR) Recognise(ctx context.Context, img image.Image) (string, error) {
	scaled := Downscale(img, o.maxSide)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	logger.Debug("ocr: %dx%d image, %d bytes png, model %s",
		scaled.Bounds().Dx(), scaled.Bounds().Dy(), buf.Len(), o.llm.ModelName())

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	reply, err := o.llm.Chat(ctx, []driven.ChatMessage{{
		Role:    driven.RoleUser,
		Content: Prompt,
		Images:  []driven.ImageAttachment{{MIMEType: "image/png", Data: buf.Bytes()}},
	}}, driven.ChatOptions{})
	if err != nil {
		return "", domain.ClassifyExternal("ocr model "+o.llm.ModelName(), err)
	}

	return whitespace.Normalize(reply), nil
}

// Downscale returns an RGBA copy of img whose longest side is at most
// maxSide, preserving aspect ratio. Smaller images are copied unscaled.
func Downscale(img image.Image, maxSide int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)

	if longest <= maxSide || maxSide <= 0 {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	scale := float64(maxSide) / float64(longest)
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
