package services

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure ActionService implements the interface.
var _ driving.ActionService = (*ActionService)(nil)

// ActionService performs operator actions on indexed documents. It works
// against the driving ports, so it runs equally well inside the daemon
// or remotely through the daemon client.
type ActionService struct {
	documents driving.DocumentReader
	folders   driving.FolderService

	// launch starts an OS command without waiting for it, replaceable
	// in tests.
	launch func(name string, args ...string) error
}

// NewActionService creates a new action service.
func NewActionService(documents driving.DocumentReader, folders driving.FolderService) *ActionService {
	return &ActionService{
		documents: documents,
		folders:   folders,
		launch: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// OpenDocument opens the document's source file in the default
// application and returns the path it opened.
func (s *ActionService) OpenDocument(ctx context.Context, documentID string) (string, error) {
	doc, err := s.documents.GetDocument(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("resolving document: %w", err)
	}

	folder, err := s.folders.GetFolder(ctx, doc.FolderID)
	if err != nil {
		return "", fmt.Errorf("resolving folder: %w", err)
	}

	path := filepath.Join(folder.Path, doc.Path)
	if err := s.openPath(path); err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	return path, nil
}

// openPath launches the platform's opener for path.
func (s *ActionService) openPath(path string) error {
	switch runtime.GOOS {
	case osDarwin:
		return s.launch("open", path)
	case osLinux:
		return s.launch("xdg-open", path)
	case osWindows:
		return s.launch("cmd", "/c", "start", "", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
