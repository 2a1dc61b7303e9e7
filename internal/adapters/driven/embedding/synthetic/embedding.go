// Package synthetic provides a deterministic embedding service that needs
// no model runtime. Vectors are hashed bags of words: the same text always
// produces the same vector, and texts sharing words land closer together
// than texts sharing none. That is enough structure for tests and for
// offline operation where no embedding server is available.
package synthetic

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions matches the size of small sentence-embedding models.
const DefaultDimensions = 384

// ModelName identifies synthetic vectors. Vectors from different models
// are not comparable, so the name must never collide with a real model.
const ModelName = "synthetic-hash"

// EmbeddingService generates deterministic hash-based embeddings.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a synthetic embedding service. A
// non-positive dimensions falls back to DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed generates a deterministic vector for the given text.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)

	for _, token := range tokenize(text) {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		// Each token contributes to one dimension; the hash's high bit
		// picks the sign so unrelated tokens cancel rather than pile up.
		idx := int(sum % uint64(s.dimensions))
		sign := float32(1)
		if sum&(1<<63) != 0 {
			sign = -1
		}
		vec[idx] += sign
	}

	normalize(vec)
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the synthetic model identifier.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds; there is no runtime to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// tokenize splits text into lowercased word tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize scales vec to unit length in place. The zero vector (empty
// text) is left as is.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
