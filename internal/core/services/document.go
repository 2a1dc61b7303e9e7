package services

import (
	"context"
	"strings"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentReader = (*DocumentService)(nil)

// DocumentService serves indexed documents and rebuilds their text on
// demand. Chunk rows carry no text, so every read goes back through the
// stored coordinates to the source file.
type DocumentService struct {
	docStore      driven.DocumentStore
	folderStore   driven.FolderStore
	reconstructor *Reconstructor
}

// NewDocumentService creates a document reader.
func NewDocumentService(
	docStore driven.DocumentStore,
	folderStore driven.FolderStore,
	reconstructor *Reconstructor,
) *DocumentService {
	return &DocumentService{
		docStore:      docStore,
		folderStore:   folderStore,
		reconstructor: reconstructor,
	}
}

// ListDocuments returns the documents in one folder's partition.
func (s *DocumentService) ListDocuments(ctx context.Context, folderID string) ([]domain.Document, error) {
	if _, err := s.folderStore.Get(ctx, folderID); err != nil {
		return nil, err
	}
	return s.docStore.ListDocuments(ctx, folderID)
}

// GetDocument retrieves a document by ID.
func (s *DocumentService) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// GetDocumentText rebuilds a document's text chunk by chunk, in ordinal
// order, separated by blank lines. A chunk whose coordinates no longer
// resolve fails the whole read; partial text would be worse than none.
func (s *DocumentService) GetDocumentText(ctx context.Context, documentID string) (string, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i := range chunks {
		text, err := s.reconstructor.ReconstructChunk(ctx, doc, &chunks[i])
		if err != nil {
			return "", err
		}
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(text)
	}

	return builder.String(), nil
}
