package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

// normEpsilon is added to the norm so a zero vector stays zero.
const normEpsilon = 1e-12

// Embedder turns texts into unit-length vectors, one model call per text.
type Embedder struct {
	svc     driven.EmbeddingService
	timeout time.Duration
}

// NewEmbedder creates an embedder. A zero timeout disables the per-call
// deadline.
func NewEmbedder(svc driven.EmbeddingService, timeout time.Duration) *Embedder {
	return &Embedder{svc: svc, timeout: timeout}
}

// EmbedOne embeds and normalises a single text.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	vec, err := e.svc.Embed(ctx, text)
	if err != nil {
		return nil, domain.ClassifyExternal("embedding model "+e.svc.ModelName(), err)
	}
	return Normalize(vec), nil
}

// EmbedAll embeds texts sequentially, preserving order. The first failure
// aborts the batch.
func (e *Embedder) EmbedAll(ctx context.Context, texts []string, progress driven.ProgressReporter) ([][]float32, error) {
	if progress == nil {
		progress = driven.NopProgress{}
	}
	progress.Start("Embedding chunks", len(texts))
	defer progress.Done()

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.EmbedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d of %d: %w", i+1, len(texts), err)
		}
		vectors[i] = vec
		progress.Advance(1, "")
	}
	return vectors, nil
}

// Normalize returns v divided by its L2 norm plus a small epsilon.
func Normalize(v []float32) []float32 {
	var sq float64
	for _, f := range v {
		sq += float64(f) * float64(f)
	}
	norm := math.Sqrt(sq) + normEpsilon

	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}
