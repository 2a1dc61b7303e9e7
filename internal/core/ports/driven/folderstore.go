package driven

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// FolderStore persists monitored folder configurations and lifecycle state.
// The store must survive daemon restarts; a folder's record is removed only
// through Delete, never as a side effect of a failed save.
type FolderStore interface {
	// Save stores or updates a folder record.
	Save(ctx context.Context, folder *domain.MonitoredFolder) error

	// Get retrieves a folder by ID.
	Get(ctx context.Context, id string) (*domain.MonitoredFolder, error)

	// GetByPath retrieves a folder by its absolute path.
	GetByPath(ctx context.Context, path string) (*domain.MonitoredFolder, error)

	// Delete removes a folder record.
	Delete(ctx context.Context, id string) error

	// List returns all folders, removed ones excluded.
	List(ctx context.Context) ([]domain.MonitoredFolder, error)
}
