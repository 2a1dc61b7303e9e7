package driven

import "github.com/okets/folder-mcp-sub010/internal/core/domain"

// EmbeddingConfigValidator validates embedding backend configurations.
// Implementations verify a configuration by testing connectivity to the
// underlying service.
type EmbeddingConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging
	// the backend. Returns nil if the configuration is valid.
	ValidateEmbedding(config *domain.EmbeddingSettings) error
}
