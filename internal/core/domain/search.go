package domain

import "math"

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// FolderIDs filters to specific monitored folders. Empty means all
	// active folders.
	FolderIDs []string

	// MIMETypes filters results to documents of these types. Empty means
	// all types.
	MIMETypes []string

	// MinScore drops results below this similarity. Zero keeps all.
	MinScore float64

	// ContextChunks widens each result's snippet by reconstructing this
	// many neighbouring chunks on each side.
	ContextChunks int
}

// SearchResult represents a single search hit. Snippet text is
// reconstructed from coordinates at query time; nothing in a result is
// served from stored text.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Chunk is the specific chunk that matched. Its Embedding field is
	// left nil in results.
	Chunk Chunk

	// Score is the cosine similarity to the query, in [-1, 1].
	Score float64

	// Snippet is the reconstructed chunk text, with any requested
	// context chunks included.
	Snippet string

	// FolderPath is the monitored folder the document belongs to.
	FolderPath string
}

// CosineSimilarity computes the cosine similarity between two
// equal-length vectors. Zero-length or zero-magnitude input yields 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
