package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// newTestServer returns a server that answers /api/embeddings with a
// one-dimensional vector encoding the prompt length, so batch tests can
// verify ordering, and /api/tags with 200.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := embedResponse{Embedding: []float64{float64(len(req.Prompt))}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestEmbed(t *testing.T) {
	server := newTestServer(t)
	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, vec, 1)
	assert.Equal(t, float32(5), vec[0])
}

func TestEmbed_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing listens on the URL anymore

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)

	var envErr *domain.EnvironmentError
	require.ErrorAs(t, err, &envErr)
	assert.Contains(t, envErr.Remediation, "start the Ollama server")
}

func TestEmbed_ModelMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	svc := NewEmbeddingService(Config{BaseURL: server.URL, Model: "missing-model"})

	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)

	var envErr *domain.EnvironmentError
	require.ErrorAs(t, err, &envErr)
	assert.Contains(t, envErr.Remediation, "ollama pull missing-model")
}

func TestEmbed_ServerFailureIsNotEnvironmental(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)

	var envErr *domain.EnvironmentError
	assert.False(t, errors.As(err, &envErr))
	assert.Contains(t, err.Error(), "status 500")
}

func TestEmbed_RateLimiterHonoursCancellation(t *testing.T) {
	server := newTestServer(t)
	svc := NewEmbeddingService(Config{
		BaseURL:           server.URL,
		RequestsPerSecond: 0.001,
	})

	// First call spends the limiter's only burst token.
	_, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Embed(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	server := newTestServer(t)
	svc := NewEmbeddingService(Config{BaseURL: server.URL, MaxConcurrent: 3})

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff"}
	embeddings, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, embeddings, len(texts))

	for i, text := range texts {
		require.Len(t, embeddings[i], 1)
		assert.Equal(t, float32(len(text)), embeddings[i][0])
	}
}

func TestEmbedBatch_PropagatesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	server := newTestServer(t)
	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	err := svc.Ping(context.Background())
	require.Error(t, err)

	var envErr *domain.EnvironmentError
	assert.ErrorAs(t, err, &envErr)
}
