package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies a model-serving provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if the provider exposes an embedding endpoint.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ModelRole names the job a model performs in the pipeline.
type ModelRole string

// Model roles.
const (
	RoleOCR   ModelRole = "ocr"
	RoleQA    ModelRole = "qa"
	RoleEmbed ModelRole = "embed"
)

// Default model names.
const (
	DefaultOCRModel   = "qwen3-vl:8b-instruct-q4_K_M"
	DefaultQAModel    = "gemma3:12b-it-q4_K_M"
	DefaultEmbedModel = "qwen3-embedding:8b-q4_K_M"
)

// DefaultModel returns the model used for role when provider has no
// explicit model configured.
func DefaultModel(role ModelRole, provider AIProvider) string {
	switch provider {
	case AIProviderOpenAI:
		if role == RoleEmbed {
			return "text-embedding-3-small"
		}
		return "gpt-4o-mini"
	case AIProviderAnthropic:
		return "claude-3-5-sonnet-latest"
	default:
		switch role {
		case RoleOCR:
			return DefaultOCRModel
		case RoleQA:
			return DefaultQAModel
		default:
			return DefaultEmbedModel
		}
	}
}

// ModelSettings configures one model endpoint.
type ModelSettings struct {
	// Provider is the model-serving provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is required by cloud providers.
	APIKey string
}

// IsConfigured returns true if the provider is set up.
func (m ModelSettings) IsConfigured() bool {
	if !m.Provider.IsValid() {
		return false
	}
	if m.Provider.RequiresAPIKey() && m.APIKey == "" {
		return false
	}
	return true
}

// Timeouts bounds each kind of external call.
type Timeouts struct {
	OCR    time.Duration
	Embed  time.Duration
	Answer time.Duration
}

// Config is the full pipeline configuration. It is passed explicitly to
// every component constructor.
type Config struct {
	OCR   ModelSettings
	QA    ModelSettings
	Embed ModelSettings

	// PopplerPath is the directory holding pdftoppm when it is not on PATH.
	PopplerPath string

	// DPI is the PDF rasterisation resolution.
	DPI int

	// MaxOCRImageSide caps the longest image side sent to the OCR model.
	MaxOCRImageSide int

	ChunkSize    int
	ChunkOverlap int

	TopK int

	WorkDir      string
	IndexName    string
	MetaName     string
	ManifestName string

	Timeouts Timeouts

	// RequestsPerSecond limits model calls. Zero means unlimited.
	RequestsPerSecond float64
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		OCR:             ModelSettings{Provider: AIProviderOllama, Model: DefaultOCRModel},
		QA:              ModelSettings{Provider: AIProviderOllama, Model: DefaultQAModel},
		Embed:           ModelSettings{Provider: AIProviderOllama, Model: DefaultEmbedModel},
		DPI:             220,
		MaxOCRImageSide: 1600,
		ChunkSize:       1200,
		ChunkOverlap:    200,
		TopK:            10,
		WorkDir:         "rag_store",
		IndexName:       "vectors.index",
		MetaName:        "meta.db",
		ManifestName:    "manifest.json",
		Timeouts: Timeouts{
			OCR:    300 * time.Second,
			Embed:  60 * time.Second,
			Answer: 300 * time.Second,
		},
	}
}

// Environment variables consulted by ApplyEnv.
const (
	EnvOllamaHost      = "OLLAMA_HOST"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// ApplyEnv fills unset endpoints and API keys from the environment.
// Values already present in the config win.
func (c *Config) ApplyEnv(getenv func(string) string) {
	host := OllamaBaseURL(getenv(EnvOllamaHost))
	for _, m := range []*ModelSettings{&c.OCR, &c.QA, &c.Embed} {
		switch m.Provider {
		case AIProviderOllama:
			if m.BaseURL == "" {
				m.BaseURL = host
			}
		case AIProviderOpenAI:
			if m.APIKey == "" {
				m.APIKey = getenv(EnvOpenAIAPIKey)
			}
		case AIProviderAnthropic:
			if m.APIKey == "" {
				m.APIKey = getenv(EnvAnthropicAPIKey)
			}
		}
	}
}

// OllamaBaseURL turns an OLLAMA_HOST value into a base URL. Bare host:port
// values get an http scheme. Empty input stays empty.
func OllamaBaseURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}

// IndexPath returns the vector index artifact location.
func (c Config) IndexPath() string {
	return filepath.Join(c.WorkDir, c.IndexName)
}

// MetaPath returns the metadata artifact location.
func (c Config) MetaPath() string {
	return filepath.Join(c.WorkDir, c.MetaName)
}

// ManifestPath returns the manifest artifact location.
func (c Config) ManifestPath() string {
	return filepath.Join(c.WorkDir, c.ManifestName)
}

// Validate reports configuration that can never work.
// Overlap at or above chunk size is allowed; the chunker guards it.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrConfig, c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrConfig, c.TopK)
	}
	if c.WorkDir == "" {
		return fmt.Errorf("%w: store directory is empty", ErrConfig)
	}
	roles := []struct {
		role ModelRole
		m    ModelSettings
	}{{RoleOCR, c.OCR}, {RoleQA, c.QA}, {RoleEmbed, c.Embed}}
	for _, r := range roles {
		if !r.m.Provider.IsValid() {
			return fmt.Errorf("%w: %s provider %q", ErrUnknownProvider, r.role, r.m.Provider)
		}
		if r.m.Provider.RequiresAPIKey() && r.m.APIKey == "" {
			return fmt.Errorf("%w: %s provider %s", ErrMissingAPIKey, r.role, r.m.Provider)
		}
	}
	if !c.Embed.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: %s has no embedding endpoint", ErrConfig, c.Embed.Provider)
	}
	return nil
}
