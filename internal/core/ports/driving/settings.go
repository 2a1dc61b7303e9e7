package driving

import "github.com/okets/folder-mcp-sub010/internal/core/domain"

// SettingsService manages daemon configuration.
type SettingsService interface {
	// Get retrieves current settings with defaults filled in for unset keys.
	Get() (*domain.AppSettings, error)

	// Save persists settings.
	Save(settings *domain.AppSettings) error

	// SetKey updates one configuration key from its string form.
	// Unknown keys and unparseable values are rejected.
	SetKey(key, value string) error

	// GetKey returns one key's effective value, defaults applied.
	GetKey(key string) (string, error)

	// Keys lists every known configuration key in display order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration
	// by pinging the backend.
	ValidateEmbeddingConfig() error
}
