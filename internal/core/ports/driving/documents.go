package driving

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// DocumentReader serves indexed documents and their reconstructed text.
type DocumentReader interface {
	// ListDocuments returns the documents in one folder's partition.
	ListDocuments(ctx context.Context, folderID string) ([]domain.Document, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, documentID string) (*domain.Document, error)

	// GetDocumentText rebuilds a document's text from its chunk
	// coordinates. The text is read from the source file at call time;
	// coordinates that no longer resolve surface as
	// CoordinateMismatchError, never as silently truncated text.
	GetDocumentText(ctx context.Context, documentID string) (string, error)
}
