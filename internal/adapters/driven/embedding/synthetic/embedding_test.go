package synthetic

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	first, err := svc.Embed(ctx, "quarterly revenue forecast")
	require.NoError(t, err)
	second, err := svc.Embed(ctx, "quarterly revenue forecast")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, DefaultDimensions)
}

func TestEmbed_UnitLength(t *testing.T) {
	svc := NewEmbeddingService(64)

	vec, err := svc.Embed(context.Background(), "some text with several words")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestEmbed_EmptyText(t *testing.T) {
	svc := NewEmbeddingService(64)

	vec, err := svc.Embed(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, vec, 64)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbed_SharedWordsScoreCloser(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	query, err := svc.Embed(ctx, "revenue forecast for the third quarter")
	require.NoError(t, err)
	related, err := svc.Embed(ctx, "third quarter revenue numbers")
	require.NoError(t, err)
	unrelated, err := svc.Embed(ctx, "hiking boots and camping gear")
	require.NoError(t, err)

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
}

func TestEmbed_CaseAndPunctuationInsensitive(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	plain, err := svc.Embed(ctx, "revenue forecast")
	require.NoError(t, err)
	shouty, err := svc.Embed(ctx, "Revenue, FORECAST!")
	require.NoError(t, err)

	assert.Equal(t, plain, shouty)
}

func TestEmbedBatch_MatchesSingles(t *testing.T) {
	svc := NewEmbeddingService(128)
	ctx := context.Background()

	texts := []string{"alpha beta", "gamma delta", "epsilon"}
	batch, err := svc.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for i, text := range texts {
		single, err := svc.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

func TestServiceMetadata(t *testing.T) {
	svc := NewEmbeddingService(256)

	assert.Equal(t, 256, svc.Dimensions())
	assert.Equal(t, ModelName, svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
