package ai

import (
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.EmbeddingConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates embedding backend configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new embedding config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates an embedding configuration by pinging the backend.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}
