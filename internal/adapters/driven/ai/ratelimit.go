package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

// Ensure the limited clients implement the interfaces.
var (
	_ driven.LLMService       = (*RateLimitedLLM)(nil)
	_ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)
)

// RateLimitedLLM waits on a limiter before every chat call.
type RateLimitedLLM struct {
	driven.LLMService
	limiter *rate.Limiter
}

// NewRateLimitedLLM wraps inner with limiter.
func NewRateLimitedLLM(inner driven.LLMService, limiter *rate.Limiter) *RateLimitedLLM {
	return &RateLimitedLLM{LLMService: inner, limiter: limiter}
}

// Chat blocks until the limiter allows a request or ctx ends.
func (r *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.LLMService.Chat(ctx, messages, opts)
}

// RateLimitedEmbedding waits on a limiter before every embedding call.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimitedEmbedding wraps inner with limiter.
func NewRateLimitedEmbedding(inner driven.EmbeddingService, limiter *rate.Limiter) *RateLimitedEmbedding {
	return &RateLimitedEmbedding{EmbeddingService: inner, limiter: limiter}
}

// Embed blocks until the limiter allows a request or ctx ends.
func (r *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.Embed(ctx, text)
}
