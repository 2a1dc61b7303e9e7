package mcp

import (
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides semantic search over indexed folders.
	Search driving.SearchService

	// Folders manages the monitored folder set.
	Folders driving.FolderService

	// Documents serves reconstructed document text for resources.
	Documents driving.DocumentReader
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Folders == nil {
		return ErrMissingFolderService
	}
	// Documents is optional; the document resources degrade without it
	return nil
}
