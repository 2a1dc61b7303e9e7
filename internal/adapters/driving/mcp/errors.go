// Package mcp provides the MCP (Model Context Protocol) server adapter.
// It lets AI agents search the indexed folders and manage the monitored
// set, over stdio for the primary client or streamable HTTP for everyone
// else.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingFolderService is returned when the folder service is not provided.
var ErrMissingFolderService = errors.New("mcp: folder service is required")
