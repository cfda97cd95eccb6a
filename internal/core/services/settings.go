package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyModelOCR          = "models.ocr"
	KeyModelQA           = "models.qa"
	KeyModelEmbed        = "models.embed"
	KeyProviderOCR       = "providers.ocr"
	KeyProviderQA        = "providers.qa"
	KeyProviderEmbed     = "providers.embed"
	KeyEndpointOCR       = "endpoints.ocr"
	KeyEndpointQA        = "endpoints.qa"
	KeyEndpointEmbed     = "endpoints.embed"
	KeyPDFDPI            = "pdf.dpi"
	KeyPopplerPath       = "pdf.poppler_path"
	KeyOCRMaxSide        = "ocr.max_side"
	KeyChunkSize         = "chunking.size"
	KeyChunkOverlap      = "chunking.overlap"
	KeyTopK              = "retrieval.top_k"
	KeyStoreDir          = "store.dir"
	KeyStoreIndex        = "store.index"
	KeyStoreMeta         = "store.meta"
	KeyStoreManifest     = "store.manifest"
	KeyTimeoutOCR        = "timeouts.ocr"
	KeyTimeoutEmbed      = "timeouts.embed"
	KeyTimeoutAnswer     = "timeouts.answer"
	KeyRequestsPerSecond = "limits.requests_per_second"
)

// setting binds one key to a Config field.
type setting struct {
	read  func(c *domain.Config) string
	write func(c *domain.Config, v string) error
	// stored converts validated text to the value persisted in the file.
	stored func(v string) any
}

func stringSetting(field func(c *domain.Config) *string) setting {
	return setting{
		read:   func(c *domain.Config) string { return *field(c) },
		write:  func(c *domain.Config, v string) error { *field(c) = v; return nil },
		stored: func(v string) any { return v },
	}
}

func intSetting(field func(c *domain.Config) *int, allowZero bool) setting {
	return setting{
		read: func(c *domain.Config) string { return strconv.Itoa(*field(c)) },
		write: func(c *domain.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("not an integer: %q", v)
			}
			if n < 0 || (n == 0 && !allowZero) {
				return fmt.Errorf("must be positive, got %d", n)
			}
			*field(c) = n
			return nil
		},
		stored: func(v string) any { n, _ := strconv.Atoi(v); return n },
	}
}

func durationSetting(field func(c *domain.Config) *time.Duration) setting {
	return setting{
		read: func(c *domain.Config) string { return field(c).String() },
		write: func(c *domain.Config, v string) error {
			d, err := parseDuration(v)
			if err != nil {
				return err
			}
			*field(c) = d
			return nil
		},
		stored: func(v string) any { d, _ := parseDuration(v); return d.String() },
	}
}

func providerSetting(field func(c *domain.Config) *domain.ModelSettings) setting {
	return setting{
		read: func(c *domain.Config) string { return field(c).Provider.String() },
		write: func(c *domain.Config, v string) error {
			p := domain.AIProvider(v)
			if !p.IsValid() {
				return fmt.Errorf("%w %q", domain.ErrUnknownProvider, v)
			}
			field(c).Provider = p
			return nil
		},
		stored: func(v string) any { return v },
	}
}

// parseDuration accepts Go durations ("90s", "5m") and bare seconds ("300").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("must be positive, got %s", v)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("not a duration: %q", v)
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", v)
	}
	return d, nil
}

var settings = map[string]setting{
	KeyModelOCR:      stringSetting(func(c *domain.Config) *string { return &c.OCR.Model }),
	KeyModelQA:       stringSetting(func(c *domain.Config) *string { return &c.QA.Model }),
	KeyModelEmbed:    stringSetting(func(c *domain.Config) *string { return &c.Embed.Model }),
	KeyProviderOCR:   providerSetting(func(c *domain.Config) *domain.ModelSettings { return &c.OCR }),
	KeyProviderQA:    providerSetting(func(c *domain.Config) *domain.ModelSettings { return &c.QA }),
	KeyProviderEmbed: providerSetting(func(c *domain.Config) *domain.ModelSettings { return &c.Embed }),
	KeyEndpointOCR:   stringSetting(func(c *domain.Config) *string { return &c.OCR.BaseURL }),
	KeyEndpointQA:    stringSetting(func(c *domain.Config) *string { return &c.QA.BaseURL }),
	KeyEndpointEmbed: stringSetting(func(c *domain.Config) *string { return &c.Embed.BaseURL }),
	KeyPDFDPI:        intSetting(func(c *domain.Config) *int { return &c.DPI }, false),
	KeyPopplerPath:   stringSetting(func(c *domain.Config) *string { return &c.PopplerPath }),
	KeyOCRMaxSide:    intSetting(func(c *domain.Config) *int { return &c.MaxOCRImageSide }, false),
	KeyChunkSize:     intSetting(func(c *domain.Config) *int { return &c.ChunkSize }, false),
	KeyChunkOverlap:  intSetting(func(c *domain.Config) *int { return &c.ChunkOverlap }, true),
	KeyTopK:          intSetting(func(c *domain.Config) *int { return &c.TopK }, false),
	KeyStoreDir:      stringSetting(func(c *domain.Config) *string { return &c.WorkDir }),
	KeyStoreIndex:    stringSetting(func(c *domain.Config) *string { return &c.IndexName }),
	KeyStoreMeta:     stringSetting(func(c *domain.Config) *string { return &c.MetaName }),
	KeyStoreManifest: stringSetting(func(c *domain.Config) *string { return &c.ManifestName }),
	KeyTimeoutOCR:    durationSetting(func(c *domain.Config) *time.Duration { return &c.Timeouts.OCR }),
	KeyTimeoutEmbed:  durationSetting(func(c *domain.Config) *time.Duration { return &c.Timeouts.Embed }),
	KeyTimeoutAnswer: durationSetting(func(c *domain.Config) *time.Duration { return &c.Timeouts.Answer }),
	KeyRequestsPerSecond: {
		read: func(c *domain.Config) string { return strconv.FormatFloat(c.RequestsPerSecond, 'g', -1, 64) },
		write: func(c *domain.Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("must be a non-negative number, got %q", v)
			}
			c.RequestsPerSecond = f
			return nil
		},
		stored: func(v string) any { f, _ := strconv.ParseFloat(v, 64); return f },
	},
}

// SettingsService resolves pipeline configuration from the config store
// and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithGetenv replaces the environment lookup.
func WithGetenv(getenv func(string) string) SettingsOption {
	return func(s *SettingsService) {
		s.getenv = getenv
	}
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns defaults overlaid with stored values, then environment
// values for endpoints and API keys.
func (s *SettingsService) Get() (domain.Config, error) {
	cfg := domain.DefaultConfig()
	for _, key := range s.configStore.Keys() {
		st, ok := settings[key]
		if !ok {
			continue
		}
		raw, _ := s.configStore.Get(key)
		if err := st.write(&cfg, formatValue(raw)); err != nil {
			return cfg, fmt.Errorf("%w: %s in %s: %w", domain.ErrConfig, key, s.configStore.Path(), err)
		}
	}
	cfg.ApplyEnv(s.getenv)
	return cfg, nil
}

// Set validates value against key and persists it.
func (s *SettingsService) Set(key, value string) error {
	st, ok := settings[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrConfig, key)
	}
	cfg := domain.DefaultConfig()
	if err := st.write(&cfg, value); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrConfig, key, err)
	}
	if err := s.configStore.Set(key, st.stored(value)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Lookup returns the effective value for key.
func (s *SettingsService) Lookup(key string) (string, error) {
	st, ok := settings[key]
	if !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrConfig, key)
	}
	cfg, err := s.Get()
	if err != nil {
		return "", err
	}
	return st.read(&cfg), nil
}

// Keys returns every recognised setting key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
