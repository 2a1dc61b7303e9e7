package mcp

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	_ domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return m.results, m.err
}

// mockFolderService is a mock implementation of driving.FolderService.
type mockFolderService struct {
	folders []domain.MonitoredFolder
	folder  *domain.MonitoredFolder
	status  *driving.FolderStatus
	err     error
}

func (m *mockFolderService) AddFolder(
	_ context.Context,
	_ string,
	_ domain.FolderConfig,
) (*domain.MonitoredFolder, error) {
	return m.folder, m.err
}

func (m *mockFolderService) RemoveFolder(_ context.Context, _ string) error {
	return m.err
}

func (m *mockFolderService) RescanFolder(_ context.Context, _ string) error {
	return m.err
}

func (m *mockFolderService) GetFolder(_ context.Context, _ string) (*domain.MonitoredFolder, error) {
	return m.folder, m.err
}

func (m *mockFolderService) ListFolders(_ context.Context) ([]domain.MonitoredFolder, error) {
	return m.folders, m.err
}

func (m *mockFolderService) GetStatus(_ context.Context, _ string) (*driving.FolderStatus, error) {
	return m.status, m.err
}

// mockDocumentReader is a mock implementation of driving.DocumentReader.
type mockDocumentReader struct {
	documents []domain.Document
	document  *domain.Document
	text      string
	err       error
}

func (m *mockDocumentReader) ListDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentReader) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentReader) GetDocumentText(_ context.Context, _ string) (string, error) {
	return m.text, m.err
}
