package driven

import "time"

// ConfigStore holds the daemon's settings as flat dotted keys
// ("daemon.port", "embedding.backend"). Implementations handle
// persistence (e.g., a TOML file in the state directory) and type
// conversion; the settings service layers defaults and validation on
// top.
type ConfigStore interface {
	// Get retrieves a raw value by key.
	// Returns the value and whether the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value.
	// Returns "" if the key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer value.
	// Returns 0 if the key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean value.
	// Returns false if the key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// GetFloat retrieves a float value.
	// Returns 0 if the key doesn't exist or isn't numeric.
	GetFloat(key string) float64

	// GetDuration retrieves a duration stored as a string (e.g., "30s").
	// Returns 0 if the key doesn't exist or doesn't parse.
	GetDuration(key string) time.Duration

	// GetStringSlice retrieves a string slice value.
	// Returns nil if the key doesn't exist or isn't a slice.
	GetStringSlice(key string) []string

	// Set stores a value. The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
