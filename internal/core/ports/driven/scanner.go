package driven

import (
	"context"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// FileEntry describes one indexable file found during a scan.
type FileEntry struct {
	// Path is relative to the folder root, slash-separated.
	Path string

	// AbsPath is the absolute filesystem path.
	AbsPath string

	// MIME is the detected content type.
	MIME string

	// Hash is the hex-encoded SHA-256 of the file bytes.
	Hash string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the file modification time.
	ModTime time.Time
}

// FolderScanner enumerates a monitored folder's indexable files, applying
// the folder's exclusion patterns and skipping unsupported content types.
type FolderScanner interface {
	// Scan walks the folder and returns every indexable file with its
	// current content hash. A missing or unreadable folder root returns
	// a domain.FolderError.
	Scan(ctx context.Context, folder *domain.MonitoredFolder) ([]FileEntry, error)
}

// ChangeEvent reports filesystem activity under a watched folder root.
type ChangeEvent struct {
	// FolderID is the monitored folder the event belongs to.
	FolderID string

	// Path is the affected path, absolute.
	Path string
}

// ChangeWatcher streams debounced filesystem events for watched folders.
// Events are coalesced: a burst of writes to one folder yields a single
// event once the folder settles.
type ChangeWatcher interface {
	// Watch registers a folder root. Events arrive on the channel
	// returned by Events.
	Watch(folderID, path string) error

	// Unwatch removes a folder root.
	Unwatch(folderID string) error

	// Events returns the shared event channel. Closed by Close.
	Events() <-chan ChangeEvent

	// Close stops watching and releases resources.
	Close() error
}
