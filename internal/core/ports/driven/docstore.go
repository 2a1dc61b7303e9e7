package driven

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// DocumentStore persists documents and their chunk coordinates.
// Backed by SQLite. Chunk rows never carry text; they hold coordinates,
// semantic metadata and the embedding vector only.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// ReplaceChunks atomically swaps a document's chunk set: the document
	// row is upserted and all existing chunks deleted and the given chunks
	// inserted in one transaction. A reader never sees the new content hash
	// next to stale chunks, or a partial chunk set.
	ReplaceChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByPath retrieves a document by folder and relative path.
	GetDocumentByPath(ctx context.Context, folderID, path string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by ordinal.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunkRange retrieves a document's chunks with ordinal in the
	// half-open range [from, to), ordered by ordinal. Used for context
	// expansion around a search hit.
	GetChunkRange(ctx context.Context, documentID string, from, to int) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents in a folder's partition.
	ListDocuments(ctx context.Context, folderID string) ([]domain.Document, error)

	// DeleteFolderDocuments removes a folder's entire partition, documents
	// and chunks both. Called only during confirmed cleanup.
	DeleteFolderDocuments(ctx context.Context, folderID string) error

	// CountDocuments returns the number of documents in a folder's partition.
	CountDocuments(ctx context.Context, folderID string) (int, error)

	// CountChunks returns the number of chunks in a folder's partition.
	CountChunks(ctx context.Context, folderID string) (int, error)
}
