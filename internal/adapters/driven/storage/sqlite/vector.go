package sqlite

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex by exhaustively scanning the
// embeddings held in the chunks table. No separate index structure is
// maintained, so the index can never drift from the store.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Add stores the vector on the chunk's row. The chunk must already exist.
func (v *vectorIndex) Add(ctx context.Context, chunkID string, embedding []float32) error {
	res, err := v.store.db.ExecContext(ctx,
		"UPDATE chunks SET embedding = ? WHERE id = ?",
		float32SliceToBytes(embedding), chunkID)
	if err != nil {
		return fmt.Errorf("storing embedding: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storing embedding: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("chunk %s: %w", chunkID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the vector from the chunk's row. Deleting a vector that
// does not exist is not an error.
func (v *vectorIndex) Delete(ctx context.Context, chunkID string) error {
	_, err := v.store.db.ExecContext(ctx,
		"UPDATE chunks SET embedding = NULL WHERE id = ?", chunkID)
	if err != nil {
		return fmt.Errorf("removing embedding: %w", err)
	}
	return nil
}

// Search scans all stored embeddings and returns the k most similar.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) == 0 || k <= 0 {
		return nil, domain.ErrInvalidInput
	}

	rows, err := v.store.db.QueryContext(ctx,
		"SELECT id, embedding FROM chunks WHERE embedding IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var chunkID string
		var blob []byte
		if err := rows.Scan(&chunkID, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}

		embedding := bytesToFloat32Slice(blob)
		if len(embedding) != len(query) {
			// Vectors from a different model are not comparable.
			continue
		}

		hits = append(hits, driven.VectorHit{
			ChunkID:    chunkID,
			Similarity: cosineSimilarity(query, embedding),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close is a no-op; the database connection is owned by the Store.
func (v *vectorIndex) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for zero-length vectors.
func cosineSimilarity(a, b []float32) float64 {
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
