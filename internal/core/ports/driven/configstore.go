package driven

// ConfigStore persists raw settings. Keys use dot notation matching the
// nesting of the backing file, e.g. "chunking.size" for [chunking] size = 1200.
// Values keep the type the backend decoded; the settings service parses them.
type ConfigStore interface {
	// Get returns the value for key and whether it is set.
	Get(key string) (any, bool)

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Keys returns every stored key in sorted order.
	Keys() []string

	// Load re-reads the backing storage.
	Load() error

	// Path returns where the settings are persisted.
	Path() string
}
