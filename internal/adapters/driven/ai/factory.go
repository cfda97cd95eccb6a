// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	ollamaembed "github.com/custodia-labs/foldrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/foldrag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/foldrag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/foldrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/foldrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

// Services holds one client per model role.
type Services struct {
	OCR   driven.LLMService
	QA    driven.LLMService
	Embed driven.EmbeddingService
}

// Close releases all clients.
func (s *Services) Close() error {
	var errs []error
	if s.OCR != nil {
		errs = append(errs, s.OCR.Close())
	}
	if s.QA != nil {
		errs = append(errs, s.QA.Close())
	}
	if s.Embed != nil {
		errs = append(errs, s.Embed.Close())
	}
	return errors.Join(errs...)
}

// NewServices creates the OCR, QA and embedding clients for cfg. When
// cfg.RequestsPerSecond is positive all three share one limiter.
func NewServices(cfg domain.Config) (*Services, error) {
	ocr, err := CreateLLMService(domain.RoleOCR, cfg.OCR)
	if err != nil {
		return nil, err
	}
	qa, err := CreateLLMService(domain.RoleQA, cfg.QA)
	if err != nil {
		return nil, err
	}
	embed, err := CreateEmbeddingService(cfg.Embed)
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
		ocr = NewRateLimitedLLM(ocr, limiter)
		qa = NewRateLimitedLLM(qa, limiter)
		embed = NewRateLimitedEmbedding(embed, limiter)
	}

	return &Services{OCR: ocr, QA: qa, Embed: embed}, nil
}

// CreateLLMService creates the chat client for role. An empty model name
// falls back to the provider default for the role.
func CreateLLMService(role domain.ModelRole, m domain.ModelSettings) (driven.LLMService, error) {
	if err := checkSettings(role, m); err != nil {
		return nil, err
	}
	model := modelOrDefault(role, m)

	switch m.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{BaseURL: m.BaseURL, Model: model}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{APIKey: m.APIKey, BaseURL: m.BaseURL, Model: model})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{APIKey: m.APIKey, BaseURL: m.BaseURL, Model: model})

	default:
		return nil, fmt.Errorf("%w: %s provider %q", domain.ErrUnknownProvider, role, m.Provider)
	}
}

// CreateEmbeddingService creates the embedding client.
func CreateEmbeddingService(m domain.ModelSettings) (driven.EmbeddingService, error) {
	if err := checkSettings(domain.RoleEmbed, m); err != nil {
		return nil, err
	}
	model := modelOrDefault(domain.RoleEmbed, m)

	switch m.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{BaseURL: m.BaseURL, Model: model}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{APIKey: m.APIKey, BaseURL: m.BaseURL, Model: model})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use ollama or openai", domain.ErrConfig)

	default:
		return nil, fmt.Errorf("%w: embed provider %q", domain.ErrUnknownProvider, m.Provider)
	}
}

func checkSettings(role domain.ModelRole, m domain.ModelSettings) error {
	if !m.Provider.IsValid() {
		return fmt.Errorf("%w: %s provider %q", domain.ErrUnknownProvider, role, m.Provider)
	}
	if m.Provider.RequiresAPIKey() && m.APIKey == "" {
		return fmt.Errorf("%w: %s provider %s", domain.ErrMissingAPIKey, role, m.Provider)
	}
	return nil
}

func modelOrDefault(role domain.ModelRole, m domain.ModelSettings) string {
	if m.Model != "" {
		return m.Model
	}
	return domain.DefaultModel(role, m.Provider)
}
