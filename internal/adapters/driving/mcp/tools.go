package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query         string   `json:"query" jsonschema:"the search query to find relevant content"`
	Limit         int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	FolderIDs     []string `json:"folder_ids,omitempty" jsonschema:"restrict the search to these folder IDs"`
	MIMETypes     []string `json:"mime_types,omitempty" jsonschema:"restrict results to documents of these MIME types"`
	MinScore      float64  `json:"min_score,omitempty" jsonschema:"drop results scoring below this similarity"`
	ContextChunks int      `json:"context_chunks,omitempty" jsonschema:"neighbouring chunks to include around each hit"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Path       string  `json:"path"`
	FolderPath string  `json:"folder_path"`
	Score      float64 `json:"score"`
	Snippet    string  `json:"snippet"`
}

// FolderOutput is the agent-facing view of one monitored folder.
type FolderOutput struct {
	ID             string `json:"id"`
	Path           string `json:"path"`
	State          string `json:"state"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	LastIndexedAt  string `json:"last_indexed_at,omitempty"`
}

// ListFoldersOutput is the output schema for the list_folders tool.
type ListFoldersOutput struct {
	Folders []FolderOutput `json:"folders"`
	Count   int            `json:"count"`
}

// AddFolderInput is the input schema for the add_folder tool.
type AddFolderInput struct {
	Path            string   `json:"path" jsonschema:"absolute path of the folder to index"`
	EmbeddingModel  string   `json:"embedding_model,omitempty" jsonschema:"embedding model for this folder (daemon default when empty)"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty" jsonschema:"glob patterns to skip during scanning"`
}

// FolderIDInput addresses one monitored folder.
type FolderIDInput struct {
	ID string `json:"id" jsonschema:"the folder ID"`
}

// AckOutput reports a folder operation that runs in the background.
type AckOutput struct {
	ID    string `json:"id"`
	State string `json:"state,omitempty"`
}

// ErrorInfo describes a folder's most recent failure.
type ErrorInfo struct {
	Class       string `json:"class"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
	At          string `json:"at"`
}

// RunInfo summarises the most recent indexing run.
type RunInfo struct {
	StartedAt     string `json:"started_at"`
	EndedAt       string `json:"ended_at"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	FilesSeen     int    `json:"files_seen"`
	FilesIndexed  int    `json:"files_indexed"`
	ChunksWritten int    `json:"chunks_written"`
}

// FolderStatusOutput is the output schema for the get_folder_status tool.
type FolderStatusOutput struct {
	FolderOutput
	DocumentCount int        `json:"document_count"`
	ChunkCount    int        `json:"chunk_count"`
	LastError     *ErrorInfo `json:"last_error,omitempty"`
	LastRun       *RunInfo   `json:"last_run,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search across all indexed folders",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_folders",
		Description: "List the folders under index management",
	}, s.handleListFolders)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_folder",
		Description: "Add a folder to the index; indexing proceeds in the background",
	}, s.handleAddFolder)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove_folder",
		Description: "Remove a folder and delete its indexed data",
	}, s.handleRemoveFolder)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rescan_folder",
		Description: "Trigger a rescan of a folder to pick up file changes",
	}, s.handleRescanFolder)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_folder_status",
		Description: "Get a folder's lifecycle state, counts and last indexing run",
	}, s.handleGetFolderStatus)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	opts := domain.SearchOptions{
		Limit:         limit,
		FolderIDs:     input.FolderIDs,
		MIMETypes:     input.MIMETypes,
		MinScore:      input.MinScore,
		ContextChunks: input.ContextChunks,
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].Document.ID,
			Path:       results[i].Document.Path,
			FolderPath: results[i].FolderPath,
			Score:      results[i].Score,
			Snippet:    results[i].Snippet,
		}
	}

	return nil, output, nil
}

// handleListFolders handles the list_folders tool invocation.
func (s *Server) handleListFolders(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListFoldersOutput, error) {
	folders, err := s.ports.Folders.ListFolders(ctx)
	if err != nil {
		return nil, ListFoldersOutput{}, err
	}

	output := ListFoldersOutput{
		Folders: make([]FolderOutput, len(folders)),
		Count:   len(folders),
	}
	for i := range folders {
		output.Folders[i] = folderOutput(&folders[i])
	}

	return nil, output, nil
}

// handleAddFolder handles the add_folder tool invocation.
func (s *Server) handleAddFolder(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddFolderInput,
) (*mcp.CallToolResult, FolderOutput, error) {
	config := domain.FolderConfig{
		EmbeddingModel:  input.EmbeddingModel,
		ExcludePatterns: input.ExcludePatterns,
	}
	folder, err := s.ports.Folders.AddFolder(ctx, input.Path, config)
	if err != nil {
		return nil, FolderOutput{}, err
	}
	return nil, folderOutput(folder), nil
}

// handleRemoveFolder handles the remove_folder tool invocation.
func (s *Server) handleRemoveFolder(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FolderIDInput,
) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.ports.Folders.RemoveFolder(ctx, input.ID); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{ID: input.ID, State: string(domain.FolderStateRemoved)}, nil
}

// handleRescanFolder handles the rescan_folder tool invocation.
func (s *Server) handleRescanFolder(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FolderIDInput,
) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.ports.Folders.RescanFolder(ctx, input.ID); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{ID: input.ID, State: string(domain.FolderStateScanning)}, nil
}

// handleGetFolderStatus handles the get_folder_status tool invocation.
func (s *Server) handleGetFolderStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FolderIDInput,
) (*mcp.CallToolResult, FolderStatusOutput, error) {
	status, err := s.ports.Folders.GetStatus(ctx, input.ID)
	if err != nil {
		return nil, FolderStatusOutput{}, err
	}

	output := FolderStatusOutput{
		FolderOutput:  folderOutput(&status.Folder),
		DocumentCount: status.DocumentCount,
		ChunkCount:    status.ChunkCount,
	}
	if lastErr := status.Folder.LastError; lastErr != nil {
		output.LastError = &ErrorInfo{
			Class:       string(lastErr.Class),
			Message:     lastErr.Message,
			Remediation: lastErr.Remediation,
			At:          lastErr.At.Format(time.RFC3339),
		}
	}
	if run := status.LastRun; run != nil {
		output.LastRun = &RunInfo{
			StartedAt:     run.StartedAt.Format(time.RFC3339),
			EndedAt:       run.EndedAt.Format(time.RFC3339),
			Success:       run.Success,
			Error:         run.Error,
			FilesSeen:     run.FilesSeen,
			FilesIndexed:  run.FilesIndexed,
			ChunksWritten: run.ChunksWritten,
		}
	}

	return nil, output, nil
}

// folderOutput converts a folder record to its agent-facing view.
func folderOutput(folder *domain.MonitoredFolder) FolderOutput {
	out := FolderOutput{
		ID:             folder.ID,
		Path:           folder.Path,
		State:          string(folder.State),
		EmbeddingModel: folder.Config.EmbeddingModel,
	}
	if !folder.LastIndexedAt.IsZero() {
		out.LastIndexedAt = folder.LastIndexedAt.Format(time.RFC3339)
	}
	return out
}
