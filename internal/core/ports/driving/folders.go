package driving

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// FolderStatus is the operator-facing view of one monitored folder.
type FolderStatus struct {
	// Folder is the folder record including lifecycle state and last error.
	Folder domain.MonitoredFolder

	// DocumentCount is the number of documents in the folder's partition.
	DocumentCount int

	// ChunkCount is the number of chunks in the folder's partition.
	ChunkCount int

	// LastRun is the most recent indexing run, or nil when the folder has
	// never been indexed or run history is not recorded.
	LastRun *domain.IndexRun
}

// FolderService manages the set of monitored folders and their lifecycle.
type FolderService interface {
	// AddFolder registers a folder for indexing. The path must be an
	// existing absolute directory not already monitored. The folder is
	// created in the pending state; indexing proceeds in the background.
	AddFolder(ctx context.Context, path string, config domain.FolderConfig) (*domain.MonitoredFolder, error)

	// RemoveFolder stops monitoring, cancels any in-flight indexing for
	// the folder, deletes its store partition and removes its
	// configuration entry.
	RemoveFolder(ctx context.Context, id string) error

	// RescanFolder triggers a rescan of an active or errored folder.
	RescanFolder(ctx context.Context, id string) error

	// GetFolder retrieves a folder by ID.
	GetFolder(ctx context.Context, id string) (*domain.MonitoredFolder, error)

	// ListFolders returns all monitored folders.
	ListFolders(ctx context.Context) ([]domain.MonitoredFolder, error)

	// GetStatus returns a folder with its partition counts.
	GetStatus(ctx context.Context, id string) (*FolderStatus, error)
}
