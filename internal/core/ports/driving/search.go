package driving

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// SearchService provides semantic search over indexed folders.
type SearchService interface {
	// Search embeds the query, finds the nearest chunks and reconstructs
	// each hit's snippet from its coordinates.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
