package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// A chunk's stored vector must always correspond to the text its
// coordinates reconstruct at embedding time, so the same service (and
// model) used at indexing must be used for queries against that folder.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - Deterministic local hashing (tests, offline operation)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used before a folder commits to indexing.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
