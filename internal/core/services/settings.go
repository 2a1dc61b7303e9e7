package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDaemonHost       = "daemon.host"
	keyDaemonPort       = "daemon.port"
	keyEmbedBackend     = "embedding.backend"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDimensions  = "embedding.dimensions"
	keyEmbedMaxConc     = "embedding.max_concurrent"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyVectorBackend    = "vector_index.backend"
	keyVectorPrecision  = "vector_index.precision"
	keyIndexWorkers     = "indexing.workers"
	keyIndexMaxFileMB   = "indexing.max_file_size_mb"
	keyRetryMaxAttempts = "retry.max_attempts"
	keyRetryBaseDelay   = "retry.base_delay"
	keyRetryMaxDelay    = "retry.max_delay"
	keyRetryMultiplier  = "retry.multiplier"
	keySchedulerEnabled = "scheduler.enabled"
	keyAgentsKnown      = "agents.known"
)

// schedulerTaskKeys maps task IDs to their config key segment
// (underscore version for TOML).
var schedulerTaskKeys = map[string]string{
	domain.TaskIDFolderRescan:     "folder_rescan",
	domain.TaskIDConsistencyAudit: "consistency_audit",
}

// SettingsService manages daemon configuration.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingConfigValidator
}

// NewSettingsService creates a new settings service. The validator is
// optional; without it ValidateEmbeddingConfig always succeeds.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves current settings with defaults filled in for unset keys.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Daemon: domain.DaemonSettings{
			Host: s.getString(keyDaemonHost, defaults.Daemon.Host),
			// An explicit zero means "pick a free port", so the default
			// applies only while the key is absent.
			Port: s.getIntExplicit(keyDaemonPort, defaults.Daemon.Port),
		},
		Embedding: domain.EmbeddingSettings{
			Backend: s.getEmbeddingBackend(defaults.Embedding.Backend),
			Model:   s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL: s.configStore.GetString(keyEmbedBaseURL), // No default - adapters carry their own
			APIKey:  s.configStore.GetString(keyEmbedAPIKey),
			// Zero defers to model-based resolution and adapter defaults.
			Dimensions:        s.configStore.GetInt(keyEmbedDimensions),
			MaxConcurrent:     s.configStore.GetInt(keyEmbedMaxConc),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:   s.getVectorBackend(defaults.VectorIndex.Backend),
			Precision: s.getVectorPrecision(defaults.VectorIndex.Precision),
		},
		Indexing: domain.IndexingSettings{
			Workers:       s.configStore.GetInt(keyIndexWorkers),
			MaxFileSizeMB: s.configStore.GetInt(keyIndexMaxFileMB),
		},
		Retry:     s.getRetryPolicy(defaults.Retry),
		Scheduler: s.GetSchedulerConfig(),
		Agents:    s.getAgents(),
	}

	return settings, nil
}

// getAgents reads the agent registry. Agent IDs are declared in
// agents.known; each ID then carries its own path and format keys.
func (s *SettingsService) getAgents() []domain.AgentRegistration {
	ids := s.configStore.GetStringSlice(keyAgentsKnown)
	if len(ids) == 0 {
		return nil
	}

	agents := make([]domain.AgentRegistration, 0, len(ids))
	for _, id := range ids {
		path := s.configStore.GetString("agents." + id + ".path")
		if path == "" {
			continue
		}
		agents = append(agents, domain.AgentRegistration{
			ID:         id,
			ConfigPath: path,
			Format:     s.getString("agents."+id+".format", "json"),
		})
	}
	return agents
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyDaemonHost, settings.Daemon.Host); err != nil {
		return fmt.Errorf("save daemon host: %w", err)
	}
	if err := s.configStore.Set(keyDaemonPort, settings.Daemon.Port); err != nil {
		return fmt.Errorf("save daemon port: %w", err)
	}

	if err := s.configStore.Set(keyEmbedBackend, settings.Embedding.Backend.String()); err != nil {
		return fmt.Errorf("save embedding backend: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyEmbedDimensions, settings.Embedding.Dimensions); err != nil {
		return fmt.Errorf("save embedding dimensions: %w", err)
	}

	if err := s.configStore.Set(keyVectorBackend, settings.VectorIndex.Backend.String()); err != nil {
		return fmt.Errorf("save vector backend: %w", err)
	}
	if err := s.configStore.Set(keyVectorPrecision, settings.VectorIndex.Precision.String()); err != nil {
		return fmt.Errorf("save vector precision: %w", err)
	}

	return nil
}

// SetKey updates one configuration key from its string form.
func (s *SettingsService) SetKey(key, value string) error {
	switch key {
	case keyDaemonHost, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey:
		return s.configStore.Set(key, value)

	case keyDaemonPort:
		port, err := strconv.Atoi(value)
		if err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("%w: %q is not a valid port", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, port)

	case keyEmbedDimensions, keyEmbedMaxConc, keyIndexWorkers, keyIndexMaxFileMB, keyRetryMaxAttempts:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %q is not a valid count", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, n)

	case keyEmbedRPS, keyRetryMultiplier:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %q is not a valid number", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, f)

	case keyEmbedBackend:
		if !domain.EmbeddingBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown embedding backend %q", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, value)

	case keyVectorBackend:
		if !domain.VectorIndexBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown vector index backend %q", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, value)

	case keyVectorPrecision:
		if !domain.VectorPrecision(value).IsValid() {
			return fmt.Errorf("%w: unknown vector precision %q", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, value)

	case keyRetryBaseDelay, keyRetryMaxDelay:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %q is not a duration", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, value)

	case keySchedulerEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, b)

	case keyAgentsKnown:
		ids := splitList(value)
		if len(ids) == 0 {
			return fmt.Errorf("%w: agent list is empty", domain.ErrInvalidInput)
		}
		return s.configStore.Set(key, ids)
	}

	// Per-agent registry keys.
	if id, field, ok := agentKey(key); ok {
		switch field {
		case "path":
			return s.configStore.Set(key, value)
		case "format":
			if value != "json" && value != "yaml" {
				return fmt.Errorf("%w: agent format must be json or yaml, got %q", domain.ErrInvalidInput, value)
			}
			return s.configStore.Set(key, value)
		default:
			return fmt.Errorf("%w: unknown agent setting %q for %s", domain.ErrInvalidInput, field, id)
		}
	}

	// Per-task scheduler keys.
	for _, segment := range schedulerTaskKeys {
		prefix := "scheduler." + segment + "."
		switch key {
		case prefix + "enabled":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%w: %q is not a boolean", domain.ErrInvalidInput, value)
			}
			return s.configStore.Set(key, b)
		case prefix + "interval":
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("%w: %q is not a duration", domain.ErrInvalidInput, value)
			}
			return s.configStore.Set(key, value)
		}
	}

	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// GetKey returns one key's effective value, defaults applied.
func (s *SettingsService) GetKey(key string) (string, error) {
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case keyDaemonHost:
		return settings.Daemon.Host, nil
	case keyDaemonPort:
		return strconv.Itoa(settings.Daemon.Port), nil
	case keyEmbedBackend:
		return settings.Embedding.Backend.String(), nil
	case keyEmbedModel:
		return settings.Embedding.Model, nil
	case keyEmbedBaseURL:
		return settings.Embedding.BaseURL, nil
	case keyEmbedAPIKey:
		return settings.Embedding.APIKey, nil
	case keyEmbedDimensions:
		return strconv.Itoa(settings.Embedding.Dimensions), nil
	case keyEmbedMaxConc:
		return strconv.Itoa(settings.Embedding.MaxConcurrent), nil
	case keyEmbedRPS:
		return strconv.FormatFloat(settings.Embedding.RequestsPerSecond, 'f', -1, 64), nil
	case keyVectorBackend:
		return settings.VectorIndex.Backend.String(), nil
	case keyVectorPrecision:
		return settings.VectorIndex.Precision.String(), nil
	case keyIndexWorkers:
		return strconv.Itoa(settings.Indexing.Workers), nil
	case keyIndexMaxFileMB:
		return strconv.Itoa(settings.Indexing.MaxFileSizeMB), nil
	case keyRetryMaxAttempts:
		return strconv.Itoa(settings.Retry.MaxAttempts), nil
	case keyRetryBaseDelay:
		return settings.Retry.BaseDelay.String(), nil
	case keyRetryMaxDelay:
		return settings.Retry.MaxDelay.String(), nil
	case keyRetryMultiplier:
		return strconv.FormatFloat(settings.Retry.Multiplier, 'f', -1, 64), nil
	case keySchedulerEnabled:
		return strconv.FormatBool(settings.Scheduler.Enabled), nil
	case keyAgentsKnown:
		ids := make([]string, 0, len(settings.Agents))
		for _, a := range settings.Agents {
			ids = append(ids, a.ID)
		}
		return strings.Join(ids, ","), nil
	}

	if _, field, ok := agentKey(key); ok {
		switch field {
		case "path":
			return s.configStore.GetString(key), nil
		case "format":
			return s.getString(key, "json"), nil
		}
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	for taskID, segment := range schedulerTaskKeys {
		prefix := "scheduler." + segment + "."
		cfg := settings.Scheduler.Tasks[taskID]
		switch key {
		case prefix + "enabled":
			return strconv.FormatBool(cfg.Enabled), nil
		case prefix + "interval":
			return cfg.Interval.String(), nil
		}
	}

	return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// Keys lists every known configuration key in display order.
func (s *SettingsService) Keys() []string {
	keys := []string{
		keyDaemonHost,
		keyDaemonPort,
		keyEmbedBackend,
		keyEmbedModel,
		keyEmbedBaseURL,
		keyEmbedAPIKey,
		keyEmbedDimensions,
		keyEmbedMaxConc,
		keyEmbedRPS,
		keyVectorBackend,
		keyVectorPrecision,
		keyIndexWorkers,
		keyIndexMaxFileMB,
		keyRetryMaxAttempts,
		keyRetryBaseDelay,
		keyRetryMaxDelay,
		keyRetryMultiplier,
		keySchedulerEnabled,
	}
	for _, taskID := range []string{domain.TaskIDFolderRescan, domain.TaskIDConsistencyAudit} {
		segment := schedulerTaskKeys[taskID]
		keys = append(keys, "scheduler."+segment+".enabled", "scheduler."+segment+".interval")
	}
	keys = append(keys, keyAgentsKnown)
	for _, id := range s.configStore.GetStringSlice(keyAgentsKnown) {
		keys = append(keys, "agents."+id+".path", "agents."+id+".format")
	}
	return keys
}

// agentKey splits an agents.<id>.<field> key. agents.known is not an
// agent key.
func agentKey(key string) (id, field string, ok bool) {
	parts := strings.Split(key, ".")
	if len(parts) < 3 || parts[0] != "agents" {
		return "", "", false
	}
	return strings.Join(parts[1:len(parts)-1], "."), parts[len(parts)-1], true
}

// splitList parses a comma-separated list, trimming blanks.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by
// pinging the backend.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(&settings.Embedding)
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	// Per-task config
	for taskID, segment := range schedulerTaskKeys {
		prefix := "scheduler." + segment + "."

		taskCfg := defaults.Tasks[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}

		// Interval is a duration string like "45m" or "1h"
		if interval := s.configStore.GetDuration(prefix + "interval"); interval > 0 {
			taskCfg.Interval = interval
		}

		defaults.Tasks[taskID] = taskCfg
	}

	return defaults
}

// getRetryPolicy reads the retry schedule, keeping defaults for unset keys.
func (s *SettingsService) getRetryPolicy(defaults domain.RetryPolicy) domain.RetryPolicy {
	policy := defaults
	if n := s.configStore.GetInt(keyRetryMaxAttempts); n > 0 {
		policy.MaxAttempts = n
	}
	if d := s.configStore.GetDuration(keyRetryBaseDelay); d > 0 {
		policy.BaseDelay = d
	}
	if d := s.configStore.GetDuration(keyRetryMaxDelay); d > 0 {
		policy.MaxDelay = d
	}
	if f := s.configStore.GetFloat(keyRetryMultiplier); f > 0 {
		policy.Multiplier = f
	}
	return policy
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getIntExplicit(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getEmbeddingBackend(defaultVal domain.EmbeddingBackend) domain.EmbeddingBackend {
	val := s.configStore.GetString(keyEmbedBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.EmbeddingBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getVectorBackend(defaultVal domain.VectorIndexBackend) domain.VectorIndexBackend {
	val := s.configStore.GetString(keyVectorBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.VectorIndexBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getVectorPrecision(defaultVal domain.VectorPrecision) domain.VectorPrecision {
	val := s.configStore.GetString(keyVectorPrecision)
	if val == "" {
		return defaultVal
	}
	precision := domain.VectorPrecision(val)
	if !precision.IsValid() {
		return defaultVal
	}
	return precision
}
