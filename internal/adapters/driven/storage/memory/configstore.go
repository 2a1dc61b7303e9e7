package memory

import (
	"sync"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for
// testing. Its type coercions mirror the file-backed store so tests see
// the same conversion behaviour the daemon does.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

// Get retrieves a raw value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString retrieves a string value.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt retrieves an integer value.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	return coerceInt(val)
}

// GetBool retrieves a boolean value.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// GetFloat retrieves a float value.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	return coerceFloat(val)
}

// GetDuration retrieves a duration stored as a string.
func (s *ConfigStore) GetDuration(key string) time.Duration {
	val, _ := s.Get(key)
	return coerceDuration(val)
}

// GetStringSlice retrieves a string slice value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	return coerceStringSlice(val)
}

// Set stores a value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op for the memory store.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op for the memory store.
func (s *ConfigStore) Load() error { return nil }

// Path returns a placeholder path.
func (s *ConfigStore) Path() string { return ":memory:" }

func coerceInt(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func coerceFloat(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func coerceDuration(val any) time.Duration {
	switch v := val.(type) {
	case time.Duration:
		return v
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0
		}
		return d
	default:
		return 0
	}
}

func coerceStringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
