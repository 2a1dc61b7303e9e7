package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex using
// exhaustive cosine search.
type VectorIndex struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		vectors: make(map[string][]float32),
	}
}

// Add inserts or replaces the vector for the given chunk ID.
func (v *VectorIndex) Add(_ context.Context, chunkID string, embedding []float32) error {
	if chunkID == "" || len(embedding) == 0 {
		return domain.ErrInvalidInput
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vectors[chunkID] = append([]float32(nil), embedding...)
	return nil
}

// Delete removes a vector from the index.
func (v *VectorIndex) Delete(_ context.Context, chunkID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.vectors, chunkID)
	return nil
}

// Search finds the k nearest neighbours to the query vector.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) == 0 || k <= 0 {
		return nil, domain.ErrInvalidInput
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	var hits []driven.VectorHit
	for chunkID, embedding := range v.vectors {
		if len(embedding) != len(query) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    chunkID,
			Similarity: domain.CosineSimilarity(query, embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases resources (no-op for the memory index).
func (v *VectorIndex) Close() error {
	return nil
}
