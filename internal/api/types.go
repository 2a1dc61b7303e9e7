// Package api defines the wire types of the daemon's REST surface.
// The HTTP adapter encodes them and the daemon client decodes them, so
// both sides of the socket share one vocabulary.
package api

import "time"

// BasePath prefixes every REST route. The MCP endpoint lives outside it
// at /mcp, and the health probe at /healthz.
const BasePath = "/api/v1"

// Error codes carried by ErrorResponse. Clients branch on the code,
// never on message text.
const (
	CodeNotFound             = "not_found"
	CodeAlreadyExists        = "already_exists"
	CodeInvalidInput         = "invalid_input"
	CodeInvalidPath          = "invalid_path"
	CodeFolderRemoved        = "folder_removed"
	CodeIndexingInProgress   = "indexing_in_progress"
	CodeEmbeddingUnavailable = "embedding_unavailable"
	CodeInternal             = "internal"
)

// ErrorResponse is the body of every non-2xx REST response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse reports daemon liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	PID     int    `json:"pid"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query         string   `json:"query"`
	Limit         int      `json:"limit,omitempty"`
	FolderIDs     []string `json:"folder_ids,omitempty"`
	MIMETypes     []string `json:"mime_types,omitempty"`
	MinScore      float64  `json:"min_score,omitempty"`
	ContextChunks int      `json:"context_chunks,omitempty"`
}

// SearchResult is one hit in a SearchResponse.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Path       string  `json:"path"`
	FolderPath string  `json:"folder_path"`
	Score      float64 `json:"score"`
	Snippet    string  `json:"snippet"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// AddFolderRequest is the body of POST /api/v1/folders.
type AddFolderRequest struct {
	Path            string   `json:"path"`
	EmbeddingModel  string   `json:"embedding_model,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
}

// FolderError mirrors a folder's most recent classified failure.
type FolderError struct {
	Class       string    `json:"class"`
	Message     string    `json:"message"`
	Remediation string    `json:"remediation,omitempty"`
	At          time.Time `json:"at"`
}

// Folder is the wire view of one monitored folder.
type Folder struct {
	ID              string       `json:"id"`
	Path            string       `json:"path"`
	State           string       `json:"state"`
	EmbeddingModel  string       `json:"embedding_model,omitempty"`
	ExcludePatterns []string     `json:"exclude_patterns,omitempty"`
	LastIndexedAt   time.Time    `json:"last_indexed_at,omitzero"`
	LastError       *FolderError `json:"last_error,omitempty"`
	CreatedAt       time.Time    `json:"created_at,omitzero"`
}

// FolderList is the body of GET /api/v1/folders.
type FolderList struct {
	Folders []Folder `json:"folders"`
	Count   int      `json:"count"`
}

// IndexRun summarises one indexing run over a folder.
type IndexRun struct {
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	FilesSeen     int       `json:"files_seen"`
	FilesIndexed  int       `json:"files_indexed"`
	ChunksWritten int       `json:"chunks_written"`
}

// FolderStatus is the body of GET /api/v1/folders/{id}/status.
type FolderStatus struct {
	Folder        Folder    `json:"folder"`
	DocumentCount int       `json:"document_count"`
	ChunkCount    int       `json:"chunk_count"`
	LastRun       *IndexRun `json:"last_run,omitempty"`
}

// Document is the wire view of one indexed document.
type Document struct {
	ID        string    `json:"id"`
	FolderID  string    `json:"folder_id"`
	Path      string    `json:"path"`
	MIME      string    `json:"mime"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	IndexedAt time.Time `json:"indexed_at,omitzero"`
}

// DocumentList is the body of GET /api/v1/folders/{id}/documents.
type DocumentList struct {
	Documents []Document `json:"documents"`
	Count     int        `json:"count"`
}

// ClaimRequest is the body of POST /api/v1/connection/claim and
// POST /api/v1/connection/release.
type ClaimRequest struct {
	ClientID string `json:"client_id"`
}

// SetPrimaryRequest is the body of POST /api/v1/connection/primary.
type SetPrimaryRequest struct {
	ClientID string `json:"client_id"`
}

// ConfigRewrite reports one client config file written during a
// primary change. Error is empty on success.
type ConfigRewrite struct {
	ClientID string `json:"client_id"`
	Mode     string `json:"mode"`
	Error    string `json:"error,omitempty"`
}

// SetPrimaryResponse is the body of a successful primary change.
type SetPrimaryResponse struct {
	PrimaryID string          `json:"primary_id"`
	Rewrites  []ConfigRewrite `json:"rewrites"`
}
