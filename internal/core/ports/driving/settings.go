package driving

import "github.com/custodia-labs/foldrag/internal/core/domain"

// SettingsService resolves pipeline configuration from persisted settings.
type SettingsService interface {
	// Get returns the configuration with defaults applied.
	Get() (domain.Config, error)

	// Set stores a single setting by key after validating it.
	Set(key, value string) error

	// Lookup returns the effective value for key as text.
	Lookup(key string) (string, error)

	// Keys returns every recognised setting key.
	Keys() []string

	// Path returns where settings are persisted.
	Path() string
}
