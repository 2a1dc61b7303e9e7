package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// Reconstructor regenerates chunk text from stored coordinates. The store
// keeps no text, so this is the only way chunk content ever reaches a
// caller. Reconstruction is deterministic: the same coordinates against an
// unchanged file produce the same bytes that were embedded at indexing
// time.
type Reconstructor struct {
	folderStore driven.FolderStore
	registry    driven.ExtractorRegistry
}

// NewReconstructor creates a text reconstructor.
func NewReconstructor(folderStore driven.FolderStore, registry driven.ExtractorRegistry) *Reconstructor {
	return &Reconstructor{
		folderStore: folderStore,
		registry:    registry,
	}
}

// Reconstruct resolves the document's source file and re-extracts the text
// addressed by coords. Coordinates that no longer resolve (file changed,
// truncated, page gone) surface a domain.CoordinateMismatchError; stale
// coordinates are never papered over with empty text.
func (r *Reconstructor) Reconstruct(ctx context.Context, doc *domain.Document, coords domain.ExtractionCoordinates) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if err := coords.Validate(); err != nil {
		return "", err
	}

	folder, err := r.folderStore.Get(ctx, doc.FolderID)
	if err != nil {
		return "", fmt.Errorf("resolve folder %s: %w", doc.FolderID, err)
	}

	extractor, err := r.registry.ForMIME(doc.MIME)
	if err != nil {
		return "", err
	}

	absPath := filepath.Join(folder.Path, filepath.FromSlash(doc.Path))
	return extractor.Extract(ctx, absPath, coords)
}

// ReconstructChunk is a convenience wrapper for reconstructing a stored
// chunk against its own document.
func (r *Reconstructor) ReconstructChunk(ctx context.Context, doc *domain.Document, chunk *domain.Chunk) (string, error) {
	if chunk == nil {
		return "", fmt.Errorf("%w: chunk is nil", domain.ErrInvalidInput)
	}
	return r.Reconstruct(ctx, doc, chunk.Coordinates)
}
