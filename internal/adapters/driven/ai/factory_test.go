package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantErr     bool
		errContains string
		wantDims    int
	}{
		{
			name:        "nil settings returns error",
			settings:    nil,
			wantErr:     true,
			errContains: "nil",
		},
		{
			name: "ollama backend creates service",
			settings: &domain.EmbeddingSettings{
				Backend: domain.EmbeddingOllama,
				Model:   "nomic-embed-text",
			},
			wantDims: 768,
		},
		{
			name: "ollama resolves dimensions from model",
			settings: &domain.EmbeddingSettings{
				Backend: domain.EmbeddingOllama,
				Model:   "mxbai-embed-large",
			},
			wantDims: 1024,
		},
		{
			name: "explicit dimensions win",
			settings: &domain.EmbeddingSettings{
				Backend:    domain.EmbeddingOllama,
				Model:      "nomic-embed-text",
				Dimensions: 512,
			},
			wantDims: 512,
		},
		{
			name: "openai backend creates service",
			settings: &domain.EmbeddingSettings{
				Backend: domain.EmbeddingOpenAICompat,
				Model:   "text-embedding-3-small",
				APIKey:  "test-key",
			},
			wantDims: 1536,
		},
		{
			name: "openai backend requires model",
			settings: &domain.EmbeddingSettings{
				Backend: domain.EmbeddingOpenAICompat,
			},
			wantErr:     true,
			errContains: "model is required",
		},
		{
			name: "synthetic backend creates service",
			settings: &domain.EmbeddingSettings{
				Backend: domain.EmbeddingSynthetic,
			},
			wantDims: 768,
		},
		{
			name: "unknown backend returns error",
			settings: &domain.EmbeddingSettings{
				Backend: domain.EmbeddingBackend("cohere"),
			},
			wantErr:     true,
			errContains: "unsupported embedding backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.errContains)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			defer svc.Close()

			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("synthetic validates offline", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Backend: domain.EmbeddingSynthetic,
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		svc.Close()
	})

	t.Run("unreachable backend reports embedding unavailable", func(t *testing.T) {
		_, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Backend: domain.EmbeddingOllama,
			Model:   "nomic-embed-text",
			BaseURL: "http://127.0.0.1:1",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.ErrorContains(t, err, "unreachable")
	})
}

func TestValidateEmbeddingConfig(t *testing.T) {
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{
		Backend: domain.EmbeddingSynthetic,
	}))

	assert.Error(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{
		Backend: domain.EmbeddingBackend("cohere"),
	}))
}

func TestConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{
		Backend: domain.EmbeddingSynthetic,
	}))
}
