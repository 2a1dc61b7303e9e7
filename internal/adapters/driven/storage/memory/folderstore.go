package memory

import (
	"context"
	"sync"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// Ensure FolderStore implements the interface.
var _ driven.FolderStore = (*FolderStore)(nil)

// FolderStore is an in-memory implementation of driven.FolderStore.
type FolderStore struct {
	mu      sync.RWMutex
	folders map[string]domain.MonitoredFolder
}

// NewFolderStore creates a new in-memory folder store.
func NewFolderStore() *FolderStore {
	return &FolderStore{
		folders: make(map[string]domain.MonitoredFolder),
	}
}

// Save stores or updates a folder record.
func (s *FolderStore) Save(_ context.Context, folder *domain.MonitoredFolder) error {
	if folder == nil || folder.ID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[folder.ID] = *folder
	return nil
}

// Get retrieves a folder by ID.
func (s *FolderStore) Get(_ context.Context, id string) (*domain.MonitoredFolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	folder, ok := s.folders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &folder, nil
}

// GetByPath retrieves a folder by its absolute path.
func (s *FolderStore) GetByPath(_ context.Context, path string) (*domain.MonitoredFolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.folders {
		folder := s.folders[id]
		if folder.Path == path {
			return &folder, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Delete removes a folder record.
func (s *FolderStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.folders, id)
	return nil
}

// List returns all folders, removed ones excluded.
func (s *FolderStore) List(_ context.Context) ([]domain.MonitoredFolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.MonitoredFolder, 0, len(s.folders))
	for _, folder := range s.folders {
		if folder.State == domain.FolderStateRemoved {
			continue
		}
		result = append(result, folder)
	}
	return result, nil
}
