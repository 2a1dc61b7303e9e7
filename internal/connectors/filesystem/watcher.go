package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/logger"
)

// DefaultDebounce is how long a folder must stay quiet before a change
// event is emitted for it.
const DefaultDebounce = 2 * time.Second

// Ensure Watcher implements the interface.
var _ driven.ChangeWatcher = (*Watcher)(nil)

// Watcher streams folder-level change events backed by fsnotify.
// Raw filesystem events are coalesced per folder: a burst of writes
// yields one event once the folder settles, since the consumer responds
// by rescanning the whole folder anyway.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	events   chan driven.ChangeEvent
	done     chan struct{}

	mu      sync.Mutex
	roots   map[string]string // folderID -> root path
	dirs    map[string]string // watched dir -> folderID
	pending map[string]*time.Timer
	closed  bool
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before an event is emitted.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a change watcher.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		events:   make(chan driven.ChangeEvent, 16),
		done:     make(chan struct{}),
		roots:    make(map[string]string),
		dirs:     make(map[string]string),
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.loop()
	return w, nil
}

// Watch registers a folder root and all its subdirectories.
func (w *Watcher) Watch(folderID, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("watcher closed")
	}

	w.roots[folderID] = path
	return w.addTreeLocked(folderID, path)
}

// Unwatch removes a folder root and its subdirectories.
func (w *Watcher) Unwatch(folderID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.roots, folderID)
	for dir, id := range w.dirs {
		if id != folderID {
			continue
		}
		delete(w.dirs, dir)
		// Removing an already-deleted directory is fine.
		_ = w.fsw.Remove(dir)
	}
	if timer, ok := w.pending[folderID]; ok {
		timer.Stop()
		delete(w.pending, folderID)
	}
	return nil
}

// Events returns the shared event channel.
func (w *Watcher) Events() <-chan driven.ChangeEvent {
	return w.events
}

// Close stops watching and closes the event channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.fsw.Close()
}

// addTreeLocked watches dir and every non-hidden subdirectory under it.
func (w *Watcher) addTreeLocked(folderID, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir {
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if _, skip := alwaysSkippedDirs[name]; skip {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			logger.Warn("watch %s: %v", path, err)
			return nil
		}
		w.dirs[path] = folderID
		return nil
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	folderID, root := w.ownerLocked(event.Name)
	if folderID == "" {
		return
	}

	// New directories join the watch set immediately so files created
	// inside them are seen before the debounce fires.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addTreeLocked(folderID, event.Name)
		}
	}

	if timer, ok := w.pending[folderID]; ok {
		timer.Stop()
	}
	id, rootCopy := folderID, root
	w.pending[folderID] = time.AfterFunc(w.debounce, func() {
		w.emit(id, rootCopy)
	})
}

// ownerLocked finds the folder whose root contains the given path.
func (w *Watcher) ownerLocked(path string) (folderID, root string) {
	for id, r := range w.roots {
		if path == r || strings.HasPrefix(path, r+string(os.PathSeparator)) {
			return id, r
		}
	}
	return "", ""
}

func (w *Watcher) emit(folderID, root string) {
	w.mu.Lock()
	delete(w.pending, folderID)
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	select {
	case w.events <- driven.ChangeEvent{FolderID: folderID, Path: root}:
	case <-w.done:
	default:
		logger.Warn("event channel full, dropping change for folder %s", folderID)
	}
}
