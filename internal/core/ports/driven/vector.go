package driven

import "context"

// VectorIndex provides semantic similarity search over chunk embeddings.
// The default implementation scans embeddings held in the document store;
// an HNSW-backed implementation can be swapped in for large corpora.
type VectorIndex interface {
	// Add inserts or replaces the vector for the given chunk ID.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Delete removes a vector from the index.
	Delete(ctx context.Context, chunkID string) error

	// Search finds the k nearest neighbours to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score.
	Similarity float64
}
