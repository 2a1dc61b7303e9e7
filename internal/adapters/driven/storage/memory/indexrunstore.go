package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// Ensure IndexRunStore implements the interface.
var _ driven.IndexRunStore = (*IndexRunStore)(nil)

// IndexRunStore is an in-memory implementation of driven.IndexRunStore.
type IndexRunStore struct {
	mu   sync.RWMutex
	runs map[string][]domain.IndexRun
}

// NewIndexRunStore creates a new in-memory index run store.
func NewIndexRunStore() *IndexRunStore {
	return &IndexRunStore{
		runs: make(map[string][]domain.IndexRun),
	}
}

// RecordRun appends a completed run to the log.
func (s *IndexRunStore) RecordRun(_ context.Context, run *domain.IndexRun) error {
	if run == nil || run.FolderID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.FolderID] = append(s.runs[run.FolderID], *run)
	return nil
}

// GetRunHistory returns recent runs for a folder, most recent first.
func (s *IndexRunStore) GetRunHistory(_ context.Context, folderID string, limit int) ([]domain.IndexRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := append([]domain.IndexRun(nil), s.runs[folderID]...)
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// LastRun returns the most recent run for a folder, or nil when the
// folder has never been indexed.
func (s *IndexRunStore) LastRun(ctx context.Context, folderID string) (*domain.IndexRun, error) {
	runs, err := s.GetRunHistory(ctx, folderID, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// PruneRuns keeps the most recent 'keep' runs per folder.
func (s *IndexRunStore) PruneRuns(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for folderID, runs := range s.runs {
		if len(runs) <= keep {
			continue
		}
		sorted := append([]domain.IndexRun(nil), runs...)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].StartedAt.After(sorted[j].StartedAt)
		})
		s.runs[folderID] = sorted[:keep]
	}
	return nil
}
