// Package ai builds embedding service adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/embedding/ollama"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/embedding/openaicompat"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/embedding/synthetic"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service the settings select.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("embedding settings are nil")
	}

	switch settings.Backend {
	case domain.EmbeddingOllama:
		return createOllamaEmbedding(settings), nil

	case domain.EmbeddingOpenAICompat:
		return createOpenAICompatEmbedding(settings)

	case domain.EmbeddingSynthetic:
		return synthetic.NewEmbeddingService(settings.ResolvedDimensions()), nil

	default:
		return nil, fmt.Errorf("unsupported embedding backend: %s", settings.Backend)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity. A reachable backend is not required to hold
// folder data, so callers that can keep serving indexed folders should
// treat the returned error as an environment problem, not a stop.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w). Start it or run 'folder-mcp config set embedding.backend synthetic'",
			domain.ErrEmbeddingUnavailable, settings.Backend, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating
// a service and pinging it. Used when a configuration change should be
// checked before the daemon relies on it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollama.NewEmbeddingService(ollama.Config{
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Dimensions:        settings.ResolvedDimensions(),
		MaxConcurrent:     settings.MaxConcurrent,
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}

// createOpenAICompatEmbedding creates a service for any OpenAI-compatible
// embeddings endpoint.
func createOpenAICompatEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaicompat.NewEmbeddingService(openaicompat.Config{
		BaseURL:    settings.BaseURL,
		APIKey:     settings.APIKey,
		Model:      settings.Model,
		Dimensions: settings.ResolvedDimensions(),
	})
}
