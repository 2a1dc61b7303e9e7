package driven

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// IndexRunStore persists the per-folder history of indexing runs.
type IndexRunStore interface {
	// RecordRun appends a completed run to the log.
	RecordRun(ctx context.Context, run *domain.IndexRun) error

	// GetRunHistory returns recent runs for a folder, most recent first.
	GetRunHistory(ctx context.Context, folderID string, limit int) ([]domain.IndexRun, error)

	// LastRun returns the most recent run for a folder, or nil and no
	// error when the folder has never been indexed.
	LastRun(ctx context.Context, folderID string) (*domain.IndexRun, error)

	// PruneRuns keeps the most recent 'keep' runs per folder and removes
	// the rest.
	PruneRuns(ctx context.Context, keep int) error
}
