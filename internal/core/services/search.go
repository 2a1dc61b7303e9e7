package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
	"github.com/okets/folder-mcp-sub010/internal/logger"
)

// Ensure SearchOrchestrator implements the interface.
var _ driving.SearchService = (*SearchOrchestrator)(nil)

// DefaultSearchLimit is used when the caller does not set a limit.
const DefaultSearchLimit = 10

// searchOverfetch widens the vector lookup so folder, type and score
// filtering still leaves enough hits to fill the requested limit.
const searchOverfetch = 4

// SearchOrchestrator answers semantic queries: it embeds the query text,
// finds the nearest stored vectors and rebuilds each hit's snippet from
// extraction coordinates. No text is ever served from the store itself.
type SearchOrchestrator struct {
	folderStore   driven.FolderStore
	docStore      driven.DocumentStore
	embedder      driven.EmbeddingService
	vectorIndex   driven.VectorIndex
	reconstructor *Reconstructor
}

// NewSearchOrchestrator creates a new search orchestrator.
func NewSearchOrchestrator(
	folderStore driven.FolderStore,
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	reconstructor *Reconstructor,
) *SearchOrchestrator {
	return &SearchOrchestrator{
		folderStore:   folderStore,
		docStore:      docStore,
		embedder:      embedder,
		vectorIndex:   vectorIndex,
		reconstructor: reconstructor,
	}
}

// Search performs semantic search across the selected folders.
func (s *SearchOrchestrator) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	// Return empty for empty query
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	logger.Debug("Search query %q, limit %d", query, limit)

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vectorIndex == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	// 1. RESOLVE THE FOLDERS IN SCOPE
	folders, err := s.resolveFolders(ctx, opts.FolderIDs)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		logger.Debug("No searchable folders in scope")
		return []domain.SearchResult{}, nil
	}

	// 2. EMBED THE QUERY
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// 3. NEAREST NEIGHBOURS, OVERFETCHED FOR FILTERING
	hits, err := s.vectorIndex.Search(ctx, queryVec, limit*searchOverfetch)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector index returned %d hits", len(hits))

	// 4. HYDRATE, FILTER AND RECONSTRUCT SNIPPETS
	results, err := s.hydrateResults(ctx, hits, folders, opts, limit)
	if err != nil {
		return nil, err
	}

	logger.Debug("Search produced %d results", len(results))
	return results, nil
}

// resolveFolders returns the folders eligible for this query, keyed by ID.
// Without an explicit filter every active folder is in scope. Folders
// embedded with a different model than the current service are excluded:
// their vectors are not comparable to the query vector.
func (s *SearchOrchestrator) resolveFolders(ctx context.Context, folderIDs []string) (map[string]*domain.MonitoredFolder, error) {
	inScope := make(map[string]*domain.MonitoredFolder)

	if len(folderIDs) > 0 {
		for _, id := range folderIDs {
			folder, err := s.folderStore.Get(ctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("get folder %s: %w", id, err)
			}
			inScope[folder.ID] = folder
		}
	} else {
		folders, err := s.folderStore.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list folders: %w", err)
		}
		for i := range folders {
			if folders[i].State == domain.FolderStateActive {
				inScope[folders[i].ID] = &folders[i]
			}
		}
	}

	model := s.embedder.ModelName()
	for id, folder := range inScope {
		if folder.Config.EmbeddingModel != "" && folder.Config.EmbeddingModel != model {
			logger.Debug("Folder %s embedded with %q, query model is %q; excluded",
				id, folder.Config.EmbeddingModel, model)
			delete(inScope, id)
		}
	}
	return inScope, nil
}

// hydrateResults turns raw vector hits into full results. Hits whose chunk
// or document has been deleted since the vector was indexed are skipped;
// hits whose coordinates no longer resolve surface the mismatch instead of
// returning wrong text.
func (s *SearchOrchestrator) hydrateResults(
	ctx context.Context,
	hits []driven.VectorHit,
	folders map[string]*domain.MonitoredFolder,
	opts domain.SearchOptions,
	limit int,
) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, limit)

	for _, hit := range hits {
		if len(results) >= limit {
			break
		}
		if opts.MinScore > 0 && hit.Similarity < opts.MinScore {
			// Hits arrive ordered by similarity; everything after this
			// one scores lower still.
			break
		}

		chunk, err := s.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Vector outlived its chunk, skip it
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", hit.ChunkID, err)
		}

		doc, err := s.docStore.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get document %s: %w", chunk.DocumentID, err)
		}

		folder, ok := folders[doc.FolderID]
		if !ok {
			continue
		}
		if !matchesMIME(doc.MIME, opts.MIMETypes) {
			continue
		}

		snippet, err := s.buildSnippet(ctx, doc, chunk, opts.ContextChunks)
		if err != nil {
			return nil, err
		}

		chunk.Embedding = nil
		results = append(results, domain.SearchResult{
			Document:   *doc,
			Chunk:      *chunk,
			Score:      hit.Similarity,
			Snippet:    snippet,
			FolderPath: folder.Path,
		})
	}

	return results, nil
}

// matchesMIME reports whether mime passes the filter. An empty filter
// passes everything.
func matchesMIME(mime string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, m := range filter {
		if m == mime {
			return true
		}
	}
	return false
}

// buildSnippet reconstructs the matched chunk's text, widened by up to
// contextChunks neighbours on each side.
func (s *SearchOrchestrator) buildSnippet(ctx context.Context, doc *domain.Document, chunk *domain.Chunk, contextChunks int) (string, error) {
	if contextChunks <= 0 {
		return s.reconstructor.ReconstructChunk(ctx, doc, chunk)
	}

	from := chunk.Ordinal - contextChunks
	if from < 0 {
		from = 0
	}
	to := chunk.Ordinal + contextChunks + 1

	neighbours, err := s.docStore.GetChunkRange(ctx, doc.ID, from, to)
	if err != nil {
		return "", fmt.Errorf("get chunk range for %s: %w", doc.ID, err)
	}

	parts := make([]string, 0, len(neighbours))
	for i := range neighbours {
		text, err := s.reconstructor.ReconstructChunk(ctx, doc, &neighbours[i])
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}
