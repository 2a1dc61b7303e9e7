package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
)

type actionMockDocs struct {
	doc *domain.Document
	err error
}

func (m *actionMockDocs) ListDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, nil
}

func (m *actionMockDocs) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *actionMockDocs) GetDocumentText(_ context.Context, _ string) (string, error) {
	return "", nil
}

type actionMockFolders struct {
	folder *domain.MonitoredFolder
	err    error
}

func (m *actionMockFolders) AddFolder(_ context.Context, _ string, _ domain.FolderConfig) (*domain.MonitoredFolder, error) {
	return nil, nil
}
func (m *actionMockFolders) RemoveFolder(_ context.Context, _ string) error { return nil }
func (m *actionMockFolders) RescanFolder(_ context.Context, _ string) error { return nil }
func (m *actionMockFolders) GetFolder(_ context.Context, _ string) (*domain.MonitoredFolder, error) {
	return m.folder, m.err
}
func (m *actionMockFolders) ListFolders(_ context.Context) ([]domain.MonitoredFolder, error) {
	return nil, nil
}
func (m *actionMockFolders) GetStatus(_ context.Context, _ string) (*driving.FolderStatus, error) {
	return nil, nil
}

func TestActionService_OpenDocument(t *testing.T) {
	docs := &actionMockDocs{doc: &domain.Document{ID: "doc-1", FolderID: "folder-1", Path: "notes/today.md"}}
	folders := &actionMockFolders{folder: &domain.MonitoredFolder{ID: "folder-1", Path: "/data/vault"}}
	svc := NewActionService(docs, folders)

	var launched []string
	svc.launch = func(name string, args ...string) error {
		launched = append([]string{name}, args...)
		return nil
	}

	path, err := svc.OpenDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "/data/vault/notes/today.md", path)
	require.NotEmpty(t, launched)
	assert.Contains(t, launched, "/data/vault/notes/today.md")
}

func TestActionService_OpenDocument_UnknownDocument(t *testing.T) {
	docs := &actionMockDocs{err: domain.ErrNotFound}
	svc := NewActionService(docs, &actionMockFolders{})

	_, err := svc.OpenDocument(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActionService_OpenDocument_UnknownFolder(t *testing.T) {
	docs := &actionMockDocs{doc: &domain.Document{ID: "doc-1", FolderID: "gone", Path: "a.txt"}}
	folders := &actionMockFolders{err: domain.ErrNotFound}
	svc := NewActionService(docs, folders)

	_, err := svc.OpenDocument(context.Background(), "doc-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActionService_OpenDocument_LaunchFailure(t *testing.T) {
	docs := &actionMockDocs{doc: &domain.Document{ID: "doc-1", FolderID: "folder-1", Path: "a.txt"}}
	folders := &actionMockFolders{folder: &domain.MonitoredFolder{ID: "folder-1", Path: "/data/vault"}}
	svc := NewActionService(docs, folders)
	svc.launch = func(_ string, _ ...string) error {
		return assert.AnError
	}

	_, err := svc.OpenDocument(context.Background(), "doc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/data/vault/a.txt")
}
