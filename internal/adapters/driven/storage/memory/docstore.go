package memory

import (
	"context"
	"sync"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// ReplaceChunks atomically swaps a document's chunk set. The document row
// is written under the same lock as the chunk swap, matching the SQLite
// store's single-transaction behaviour.
func (s *DocumentStore) ReplaceChunks(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	if len(chunks) == 0 {
		delete(s.chunks, doc.ID)
		return nil
	}
	s.chunks[doc.ID] = append([]domain.Chunk(nil), chunks...)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByPath retrieves a document by folder and relative path.
func (s *DocumentStore) GetDocumentByPath(_ context.Context, folderID, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.documents {
		doc := s.documents[id]
		if doc.FolderID == folderID && doc.Path == path {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves all chunks for a document, ordered by ordinal.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	return append([]domain.Chunk(nil), chunks...), nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if chunk.ID == id {
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunkRange retrieves a document's chunks with ordinal in [from, to).
func (s *DocumentStore) GetChunkRange(_ context.Context, documentID string, from, to int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, chunk := range s.chunks[documentID] {
		if chunk.Ordinal >= from && chunk.Ordinal < to {
			result = append(result, chunk)
		}
	}
	return result, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// ListDocuments returns all documents in a folder's partition.
func (s *DocumentStore) ListDocuments(_ context.Context, folderID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.FolderID == folderID {
			result = append(result, doc)
		}
	}
	return result, nil
}

// DeleteFolderDocuments removes a folder's entire partition.
func (s *DocumentStore) DeleteFolderDocuments(_ context.Context, folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.documents {
		if doc.FolderID == folderID {
			delete(s.documents, id)
			delete(s.chunks, id)
		}
	}
	return nil
}

// CountDocuments returns the number of documents in a folder's partition.
func (s *DocumentStore) CountDocuments(_ context.Context, folderID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, doc := range s.documents {
		if doc.FolderID == folderID {
			count++
		}
	}
	return count, nil
}

// CountChunks returns the number of chunks in a folder's partition.
func (s *DocumentStore) CountChunks(_ context.Context, folderID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for id, doc := range s.documents {
		if doc.FolderID == folderID {
			count += len(s.chunks[id])
		}
	}
	return count, nil
}
