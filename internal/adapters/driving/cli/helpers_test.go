package cli

import (
	"context"
	"errors"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/storage/memory"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
	"github.com/okets/folder-mcp-sub010/internal/core/services"
)

// setupTestServices swaps every package-level service for a fake and
// returns a cleanup restoring the previous wiring.
func setupTestServices() func() {
	oldSettings := settingsService
	oldSearch := searchService
	oldFolders := folderService
	oldDocuments := documentService
	oldArbiter := arbiterService
	oldAction := actionService

	settingsService = services.NewSettingsService(memory.NewConfigStore(), nil)
	searchService = &mockSearchService{}
	folderService = &mockFolderService{}
	documentService = &mockDocumentReader{}
	arbiterService = &mockArbiterService{}
	actionService = &mockActionService{path: "/data/vault/notes/today.md"}

	return func() {
		settingsService = oldSettings
		searchService = oldSearch
		folderService = oldFolders
		documentService = oldDocuments
		arbiterService = oldArbiter
		actionService = oldAction
	}
}

type mockSearchService struct {
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return []domain.SearchResult{
		{
			Document:   domain.Document{ID: "doc-1", Path: "notes/today.md"},
			Score:      0.92,
			Snippet:    "a snippet about the query",
			FolderPath: "/data/vault",
		},
	}, nil
}

type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(_ context.Context, _ string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, errors.New("store unavailable")
}

type mockFolderService struct {
	folders   []domain.MonitoredFolder
	status    *driving.FolderStatus
	addedPath string
	addedCfg  domain.FolderConfig
	removedID string
	rescanID  string
	err       error
}

func (m *mockFolderService) AddFolder(_ context.Context, path string, config domain.FolderConfig) (*domain.MonitoredFolder, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.addedPath = path
	m.addedCfg = config
	return &domain.MonitoredFolder{ID: "folder-1", Path: path, Config: config, State: domain.FolderStatePending}, nil
}

func (m *mockFolderService) RemoveFolder(_ context.Context, id string) error {
	m.removedID = id
	return m.err
}

func (m *mockFolderService) RescanFolder(_ context.Context, id string) error {
	m.rescanID = id
	return m.err
}

func (m *mockFolderService) GetFolder(_ context.Context, id string) (*domain.MonitoredFolder, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.MonitoredFolder{ID: id, Path: "/data/vault"}, nil
}

func (m *mockFolderService) ListFolders(_ context.Context) ([]domain.MonitoredFolder, error) {
	return m.folders, m.err
}

func (m *mockFolderService) GetStatus(_ context.Context, id string) (*driving.FolderStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.status != nil {
		return m.status, nil
	}
	return &driving.FolderStatus{
		Folder: domain.MonitoredFolder{
			ID:            id,
			Path:          "/data/vault",
			State:         domain.FolderStateActive,
			LastIndexedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		DocumentCount: 4,
		ChunkCount:    37,
	}, nil
}

type mockDocumentReader struct{}

func (m *mockDocumentReader) ListDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, nil
}

func (m *mockDocumentReader) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	return &domain.Document{ID: id, FolderID: "folder-1", Path: "notes/today.md"}, nil
}

func (m *mockDocumentReader) GetDocumentText(_ context.Context, _ string) (string, error) {
	return "reconstructed text", nil
}

type mockArbiterService struct {
	decision domain.ConnectionDecision
	state    *domain.ClientConnectionState
	rewrites []driving.ConfigRewrite
	released string
	err      error
}

func (m *mockArbiterService) RequestLowLatencyChannel(_ context.Context, clientID string) (domain.ConnectionDecision, error) {
	if m.err != nil {
		return domain.ConnectionDecision{}, m.err
	}
	if m.decision.PrimaryID == "" && !m.decision.Granted {
		return domain.ConnectionDecision{Granted: true, PrimaryID: clientID}, nil
	}
	return m.decision, nil
}

func (m *mockArbiterService) Release(_ context.Context, clientID string) error {
	m.released = clientID
	return m.err
}

func (m *mockArbiterService) SetPrimary(_ context.Context, _ string) ([]driving.ConfigRewrite, error) {
	return m.rewrites, m.err
}

func (m *mockArbiterService) State(_ context.Context) (*domain.ClientConnectionState, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.state != nil {
		return m.state, nil
	}
	return domain.NewClientConnectionState(), nil
}

type mockActionService struct {
	path   string
	opened string
	err    error
}

func (m *mockActionService) OpenDocument(_ context.Context, documentID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.opened = documentID
	return m.path, nil
}
