package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
	"github.com/okets/folder-mcp-sub010/internal/logger"
	"github.com/okets/folder-mcp-sub010/internal/semantic"
)

// Ensure LifecycleService implements the interface.
var _ driving.FolderService = (*LifecycleService)(nil)

// DefaultIndexWorkers is the per-folder file processing parallelism.
const DefaultIndexWorkers = 4

// keepRunHistory bounds the per-folder indexing run log.
const keepRunHistory = 100

// folderRun tracks one folder's in-flight background indexing.
type folderRun struct {
	cancel context.CancelFunc
	done   chan struct{}

	// rescan is set when a change arrives while the run is busy; the run
	// loop goes around once more instead of starting a competing run.
	rescan bool
}

// LifecycleService owns monitored folders and drives each one through the
// pending, scanning, indexing and active states. All state transitions for
// a folder happen on its single run goroutine, so transitions are
// serialised per folder by construction.
type LifecycleService struct {
	folderStore driven.FolderStore
	docStore    driven.DocumentStore
	scanner     driven.FolderScanner
	watcher     driven.ChangeWatcher
	registry    driven.ExtractorRegistry
	embedder    driven.EmbeddingService
	vectorIndex driven.VectorIndex
	runStore    driven.IndexRunStore

	analyzer *semantic.Analyzer
	retry    domain.RetryPolicy
	workers  int

	mu       sync.Mutex
	runs     map[string]*folderRun
	removing map[string]bool
	baseCtx  context.Context
	baseStop context.CancelFunc
	wg       sync.WaitGroup
	started  bool
}

// LifecycleOption configures the lifecycle service.
type LifecycleOption func(*LifecycleService)

// WithRetryPolicy overrides the transient folder failure retry policy.
func WithRetryPolicy(policy domain.RetryPolicy) LifecycleOption {
	return func(s *LifecycleService) {
		s.retry = policy
	}
}

// WithIndexWorkers overrides the per-folder file processing parallelism.
func WithIndexWorkers(workers int) LifecycleOption {
	return func(s *LifecycleService) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// NewLifecycleService creates a new folder lifecycle service.
// The watcher, vectorIndex and runStore are optional; without a watcher
// folders reindex only on explicit rescan, without a runStore no run
// history is kept.
func NewLifecycleService(
	folderStore driven.FolderStore,
	docStore driven.DocumentStore,
	scanner driven.FolderScanner,
	watcher driven.ChangeWatcher,
	registry driven.ExtractorRegistry,
	embedder driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	runStore driven.IndexRunStore,
	opts ...LifecycleOption,
) *LifecycleService {
	s := &LifecycleService{
		folderStore: folderStore,
		docStore:    docStore,
		scanner:     scanner,
		watcher:     watcher,
		registry:    registry,
		embedder:    embedder,
		vectorIndex: vectorIndex,
		runStore:    runStore,
		analyzer:    semantic.NewAnalyzer(),
		retry:       domain.DefaultRetryPolicy(),
		workers:     DefaultIndexWorkers,
		runs:        make(map[string]*folderRun),
		removing:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start resumes monitoring for every stored folder: folders interrupted
// mid-index pick up where the daemon left off, active folders rescan to
// catch changes made while the daemon was down. Start does not block;
// background runs derive from ctx and stop when it is cancelled or Stop
// is called.
func (s *LifecycleService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.baseCtx, s.baseStop = context.WithCancel(ctx)
	s.mu.Unlock()

	folders, err := s.folderStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list folders: %w", err)
	}

	for i := range folders {
		folder := &folders[i]
		s.watchFolder(folder.ID, folder.Path)

		switch folder.State {
		case domain.FolderStateScanning, domain.FolderStateIndexing:
			// Interrupted mid-run by a daemon restart; start the run over
			// from pending.
			folder.State = domain.FolderStatePending
			if err := s.folderStore.Save(ctx, folder); err != nil {
				return fmt.Errorf("reset folder %s: %w", folder.ID, err)
			}
			s.requestRescan(folder.ID)
		case domain.FolderStatePending, domain.FolderStateActive:
			s.requestRescan(folder.ID)
		case domain.FolderStateError:
			// Needs remediation or an explicit rescan; resuming
			// automatically would just repeat the failure.
			logger.Info("Folder %s remains in error state: %s", folder.ID, folder.Path)
		case domain.FolderStateRemoved:
		}
	}

	if s.watcher != nil {
		s.wg.Add(1)
		go s.watchLoop()
	}

	return nil
}

// Stop cancels all in-flight indexing and waits for run goroutines to
// finish. The watcher itself is closed by its owner.
func (s *LifecycleService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.baseStop()
	s.mu.Unlock()

	s.wg.Wait()
}

// AddFolder registers a folder and starts indexing it in the background.
func (s *LifecycleService) AddFolder(ctx context.Context, path string, config domain.FolderConfig) (*domain.MonitoredFolder, error) {
	path = strings.TrimSpace(path)
	if path == "" || !filepath.IsAbs(path) {
		return nil, fmt.Errorf("%w: path must be absolute", domain.ErrInvalidPath)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPath, path)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidPath, path)
	}

	// Adding a path twice hands back the folder that already monitors it.
	existing, err := s.folderStore.GetByPath(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing folder: %w", err)
	}
	if existing != nil && existing.State != domain.FolderStateRemoved {
		return existing, nil
	}

	if config.EmbeddingModel == "" && s.embedder != nil {
		config.EmbeddingModel = s.embedder.ModelName()
	}

	folder := &domain.MonitoredFolder{
		ID:     uuid.New().String(),
		Path:   path,
		Config: config,
		State:  domain.FolderStatePending,
	}
	if err := s.folderStore.Save(ctx, folder); err != nil {
		return nil, fmt.Errorf("save folder: %w", err)
	}

	logger.Info("Added folder %s: %s", folder.ID, path)

	s.watchFolder(folder.ID, folder.Path)
	s.requestRescan(folder.ID)

	return folder, nil
}

// RemoveFolder cancels any in-flight indexing, waits for it to release
// the partition, then deletes the folder's data and record. A folder
// whose own run completed the removal in the meantime is treated as
// already removed, not as an error.
func (s *LifecycleService) RemoveFolder(ctx context.Context, id string) error {
	folder, err := s.folderStore.Get(ctx, id)
	if err != nil {
		return err
	}

	// Cancel the in-flight run and wait for it; cleanup must not race
	// with an in-progress write to the same partition. The removing mark
	// keeps watcher events from starting a fresh run mid-removal.
	s.mu.Lock()
	s.removing[id] = true
	run := s.runs[id]
	if run != nil {
		run.cancel()
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.removing, id)
		s.mu.Unlock()
	}()
	if run != nil {
		<-run.done
	}

	// The run may have finished the removal itself (terminal failure).
	folder, err = s.folderStore.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	if s.watcher != nil {
		if err := s.watcher.Unwatch(id); err != nil {
			logger.Debug("Unwatch %s: %v", id, err)
		}
	}

	if err := s.cleanupPartition(ctx, id); err != nil {
		return fmt.Errorf("cleanup partition: %w", err)
	}

	if folder.State != domain.FolderStateRemoved {
		folder.State = domain.FolderStateRemoved
		if err := s.folderStore.Save(ctx, folder); err != nil {
			return fmt.Errorf("save folder: %w", err)
		}
	}
	if err := s.folderStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	logger.Info("Removed folder %s: %s", id, folder.Path)
	return nil
}

// RescanFolder triggers a rescan of an active or errored folder.
func (s *LifecycleService) RescanFolder(ctx context.Context, id string) error {
	folder, err := s.folderStore.Get(ctx, id)
	if err != nil {
		return err
	}

	switch folder.State {
	case domain.FolderStateRemoved:
		return domain.ErrFolderRemoved
	case domain.FolderStateScanning, domain.FolderStateIndexing:
		return domain.ErrIndexingInProgress
	case domain.FolderStatePending, domain.FolderStateActive, domain.FolderStateError:
	}

	s.mu.Lock()
	if s.removing[id] {
		s.mu.Unlock()
		return domain.ErrFolderRemoved
	}
	if s.runs[id] != nil {
		s.mu.Unlock()
		return domain.ErrIndexingInProgress
	}
	s.startRunLocked(id)
	s.mu.Unlock()
	return nil
}

// GetFolder retrieves a folder by ID.
func (s *LifecycleService) GetFolder(ctx context.Context, id string) (*domain.MonitoredFolder, error) {
	return s.folderStore.Get(ctx, id)
}

// ListFolders returns all monitored folders.
func (s *LifecycleService) ListFolders(ctx context.Context) ([]domain.MonitoredFolder, error) {
	return s.folderStore.List(ctx)
}

// GetStatus returns a folder with its partition counts and last run.
func (s *LifecycleService) GetStatus(ctx context.Context, id string) (*driving.FolderStatus, error) {
	folder, err := s.folderStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	docCount, err := s.docStore.CountDocuments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	chunkCount, err := s.docStore.CountChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	status := &driving.FolderStatus{
		Folder:        *folder,
		DocumentCount: docCount,
		ChunkCount:    chunkCount,
	}
	if s.runStore != nil {
		run, err := s.runStore.LastRun(ctx, id)
		if err != nil {
			logger.Debug("Last run for %s: %v", id, err)
		} else {
			status.LastRun = run
		}
	}
	return status, nil
}

// ==================== Background runs ====================

// watchLoop forwards debounced change events into rescans.
func (s *LifecycleService) watchLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.baseCtx.Done():
			return
		case ev, ok := <-s.watcher.Events():
			if !ok {
				return
			}
			logger.Debug("Change detected in folder %s: %s", ev.FolderID, ev.Path)
			s.requestRescan(ev.FolderID)
		}
	}
}

// watchFolder registers the folder root with the change watcher.
func (s *LifecycleService) watchFolder(id, path string) {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Watch(id, path); err != nil {
		logger.Warn("Watch %s (%s): %v", id, path, err)
	}
}

// requestRescan starts a run for the folder, or marks an in-flight run to
// go around again. Safe to call from any goroutine.
func (s *LifecycleService) requestRescan(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removing[id] {
		return
	}
	if run := s.runs[id]; run != nil {
		run.rescan = true
		return
	}
	s.startRunLocked(id)
}

// startRunLocked spawns the folder's run goroutine. Caller holds s.mu.
func (s *LifecycleService) startRunLocked(id string) {
	base := s.baseCtx
	if base == nil {
		// Not started yet (or running under tests without Start); runs
		// still need a cancellable lifetime.
		base = context.Background()
	}
	runCtx, cancel := context.WithCancel(base)
	run := &folderRun{cancel: cancel, done: make(chan struct{})}
	s.runs[id] = run

	s.wg.Add(1)
	go s.runLoop(runCtx, id, run)
}

// runLoop owns one folder's indexing until no more rescans are pending.
func (s *LifecycleService) runLoop(ctx context.Context, id string, run *folderRun) {
	defer s.wg.Done()
	defer close(run.done)
	defer run.cancel()

	for {
		s.runWithRetry(ctx, id)

		s.mu.Lock()
		if !run.rescan || ctx.Err() != nil {
			delete(s.runs, id)
			s.mu.Unlock()
			return
		}
		run.rescan = false
		s.mu.Unlock()
	}
}

// runWithRetry executes one indexing run, retrying transient folder
// failures with capped exponential backoff. Classification happens here,
// once, on the raw error; everything after branches on the class.
func (s *LifecycleService) runWithRetry(ctx context.Context, id string) {
	failures := 0
	for {
		stats, err := s.indexOnce(ctx, id)
		if err == nil {
			return
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			logger.Debug("Indexing of %s cancelled", id)
			return
		}
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrFolderRemoved) {
			// Folder disappeared under the run (concurrent removal).
			return
		}

		s.recordRun(id, stats, err)

		switch domain.ClassifyFailure(err) {
		case domain.FailureEnvironment:
			// Environment failures preserve all indexed data and are
			// surfaced immediately; retrying cannot help until the host
			// is fixed.
			s.markEnvironmentFailure(ctx, id, err)
			return

		case domain.FailureFolder:
			failures++
			var folderErr *domain.FolderError
			terminal := errors.As(err, &folderErr) && folderErr.Terminal
			if terminal || failures >= s.retry.MaxAttempts {
				s.terminalFolderFailure(ctx, id, err)
				return
			}

			delay := s.retry.Delay(failures - 1)
			logger.Debug("Folder %s failed (attempt %d/%d), retrying in %s: %v",
				id, failures, s.retry.MaxAttempts, delay, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}
}

// runStats counts one indexing run's work for the run log.
type runStats struct {
	filesSeen     int
	filesIndexed  int
	filesFailed   int
	chunksWritten int
	startedAt     time.Time
}

// indexOnce performs a single scan-diff-index pass over the folder.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *LifecycleService) indexOnce(ctx context.Context, id string) (*runStats, error) {
	stats := &runStats{startedAt: time.Now().UTC()}

	folder, err := s.folderStore.Get(ctx, id)
	if err != nil {
		return stats, err
	}
	if folder.State == domain.FolderStateRemoved {
		return stats, domain.ErrFolderRemoved
	}

	// 1. ENTER SCANNING
	if err := s.transition(ctx, folder, domain.FolderStateScanning); err != nil {
		return stats, err
	}
	logger.Info("Scanning folder %s: %s", folder.ID, folder.Path)

	// 2. CHECK THE EMBEDDING RUNTIME BEFORE TOUCHING ANY DATA
	if s.embedder == nil {
		return stats, &domain.EnvironmentError{
			Op:          "index folder",
			Remediation: "configure an embedding service",
			Err:         domain.ErrEmbeddingUnavailable,
		}
	}
	if err := s.embedder.Ping(ctx); err != nil {
		return stats, err
	}

	// 3. SCAN
	entries, err := s.scanner.Scan(ctx, folder)
	if err != nil {
		return stats, err
	}
	stats.filesSeen = len(entries)

	// 4. DIFF AGAINST THE STORE
	existing, err := s.docStore.ListDocuments(ctx, id)
	if err != nil {
		return stats, fmt.Errorf("list documents: %w", err)
	}
	byPath := make(map[string]*domain.Document, len(existing))
	for i := range existing {
		byPath[existing[i].Path] = &existing[i]
	}

	var toIndex []driven.FileEntry
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		seen[entry.Path] = true
		doc := byPath[entry.Path]
		if doc == nil || doc.ContentHash != entry.Hash {
			toIndex = append(toIndex, entry)
		}
	}
	var toDelete []*domain.Document
	for i := range existing {
		if !seen[existing[i].Path] {
			toDelete = append(toDelete, &existing[i])
		}
	}

	// 5. NOTHING CHANGED: STRAIGHT TO ACTIVE
	if len(toIndex) == 0 && len(toDelete) == 0 {
		if err := s.finishRun(ctx, folder, stats); err != nil {
			return stats, err
		}
		return stats, nil
	}

	// 6. ENTER INDEXING
	if err := s.transition(ctx, folder, domain.FolderStateIndexing); err != nil {
		return stats, err
	}
	logger.Info("Indexing folder %s: %d changed, %d deleted", folder.ID, len(toIndex), len(toDelete))

	// 7. DROP DOCUMENTS THAT LEFT THE FOLDER
	for _, doc := range toDelete {
		if err := s.deleteDocument(ctx, doc); err != nil {
			return stats, fmt.Errorf("delete document %s: %w", doc.Path, err)
		}
	}

	// 8. INDEX CHANGED FILES WITH BOUNDED PARALLELISM
	var statsMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, entry := range toIndex {
		g.Go(func() error {
			written, indexed, err := s.indexFile(gctx, folder, entry, byPath[entry.Path])
			statsMu.Lock()
			defer statsMu.Unlock()
			if err != nil {
				return err
			}
			if indexed {
				stats.filesIndexed++
				stats.chunksWritten += written
			} else {
				stats.filesFailed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	// 9. ACTIVE
	if err := s.finishRun(ctx, folder, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// indexFile processes one file: segment, analyse, embed, persist, index.
// A file whose content cannot be extracted is skipped (indexed=false)
// rather than failing the folder; only systemic failures return an error.
func (s *LifecycleService) indexFile(
	ctx context.Context,
	folder *domain.MonitoredFolder,
	entry driven.FileEntry,
	existing *domain.Document,
) (chunksWritten int, indexed bool, err error) {
	extractor, err := s.registry.ForMIME(entry.MIME)
	if err != nil {
		logger.Debug("Skipping %s: %v", entry.Path, err)
		return 0, false, nil
	}

	segments, err := extractor.Segment(ctx, entry.AbsPath)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		logger.Warn("Failed to extract %s: %v", entry.Path, err)
		return 0, false, nil
	}

	// Embed all segment texts in one batch before anything is written,
	// so an embedding failure leaves the document untouched.
	texts := make([]string, len(segments))
	var docText strings.Builder
	for i, seg := range segments {
		texts[i] = seg.Text
		docText.WriteString(seg.Text)
		docText.WriteString("\n")
	}
	var embeddings [][]float32
	if len(texts) > 0 {
		embeddings, err = s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, false, fmt.Errorf("embed %s: %w", entry.Path, err)
		}
	}

	docID := uuid.New().String()
	var oldChunks []domain.Chunk
	if existing != nil {
		docID = existing.ID
		oldChunks, err = s.docStore.GetChunks(ctx, docID)
		if err != nil {
			return 0, false, fmt.Errorf("get chunks for %s: %w", entry.Path, err)
		}
	}

	doc := &domain.Document{
		ID:          docID,
		FolderID:    folder.ID,
		Path:        entry.Path,
		ContentHash: entry.Hash,
		MIME:        entry.MIME,
		ModTime:     entry.ModTime,
		Size:        entry.Size,
		IndexedAt:   time.Now().UTC(),
	}

	topics := s.analyzer.Topics(docText.String())
	chunks := make([]domain.Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = domain.Chunk{
			ID:            uuid.New().String(),
			DocumentID:    docID,
			Ordinal:       i,
			Coordinates:   seg.Coordinates,
			TokenEstimate: semantic.EstimateTokens(seg.Text),
			Semantic: domain.SemanticMetadata{
				KeyPhrases:  s.analyzer.KeyPhrases(seg.Text, semantic.DefaultMaxKeyPhrases),
				Topics:      topics,
				Readability: s.analyzer.Readability(seg.Text),
			},
			Embedding: embeddings[i],
		}
	}

	// Document row and chunks land in one atomic swap; the store never
	// holds the new content hash next to stale coordinates.
	if err := s.docStore.ReplaceChunks(ctx, doc, chunks); err != nil {
		return 0, false, fmt.Errorf("replace chunks for %s: %w", entry.Path, err)
	}

	if s.vectorIndex != nil {
		for i := range oldChunks {
			if err := s.vectorIndex.Delete(ctx, oldChunks[i].ID); err != nil {
				logger.Debug("Delete vector %s: %v", oldChunks[i].ID, err)
			}
		}
		for i := range chunks {
			if err := s.vectorIndex.Add(ctx, chunks[i].ID, chunks[i].Embedding); err != nil {
				return 0, false, fmt.Errorf("add vector for %s: %w", entry.Path, err)
			}
		}
	}

	logger.Debug("Indexed %s: %d chunks", entry.Path, len(chunks))
	return len(chunks), true, nil
}

// deleteDocument removes a document, its chunks and its vectors.
func (s *LifecycleService) deleteDocument(ctx context.Context, doc *domain.Document) error {
	if s.vectorIndex != nil {
		chunks, err := s.docStore.GetChunks(ctx, doc.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get chunks: %w", err)
		}
		for i := range chunks {
			if err := s.vectorIndex.Delete(ctx, chunks[i].ID); err != nil {
				logger.Debug("Delete vector %s: %v", chunks[i].ID, err)
			}
		}
	}
	return s.docStore.DeleteDocument(ctx, doc.ID)
}

// finishRun moves the folder to active and records the successful run.
func (s *LifecycleService) finishRun(ctx context.Context, folder *domain.MonitoredFolder, stats *runStats) error {
	folder.LastIndexedAt = time.Now().UTC()
	folder.LastError = nil
	if err := s.transition(ctx, folder, domain.FolderStateActive); err != nil {
		return err
	}
	s.recordRun(folder.ID, stats, nil)
	logger.Info("Folder %s active: %d files seen, %d indexed, %d chunks",
		folder.ID, stats.filesSeen, stats.filesIndexed, stats.chunksWritten)
	return nil
}

// markEnvironmentFailure surfaces a host failure without touching the
// folder's data: the partition, configuration and vectors all survive.
func (s *LifecycleService) markEnvironmentFailure(ctx context.Context, id string, cause error) {
	folder, err := s.folderStore.Get(ctx, id)
	if err != nil {
		logger.Error("Environment failure for %s, and loading the folder failed too: %v", id, err)
		return
	}

	var envErr *domain.EnvironmentError
	remediation := ""
	if errors.As(cause, &envErr) {
		remediation = envErr.Remediation
	}
	folder.LastError = &domain.LastError{
		Class:       domain.FailureEnvironment,
		Message:     cause.Error(),
		Remediation: remediation,
		At:          time.Now().UTC(),
	}
	if err := s.transition(ctx, folder, domain.FolderStateError); err != nil {
		logger.Error("Recording environment failure for %s: %v", id, err)
		return
	}
	logger.Error("Environment failure for folder %s: %v", id, cause)
	if remediation != "" {
		logger.Error("Remediation: %s", remediation)
	}
}

// terminalFolderFailure performs full cleanup after the retry budget is
// exhausted or the failure is confirmed permanent: the partition is
// dropped and the configuration entry removed.
func (s *LifecycleService) terminalFolderFailure(ctx context.Context, id string, cause error) {
	folder, err := s.folderStore.Get(ctx, id)
	if err != nil {
		logger.Error("Terminal failure for %s, and loading the folder failed too: %v", id, err)
		return
	}

	logger.Warn("Folder %s failed terminally, cleaning up: %v", id, cause)

	folder.LastError = &domain.LastError{
		Class:   domain.FailureFolder,
		Message: cause.Error(),
		At:      time.Now().UTC(),
	}
	if err := s.transition(ctx, folder, domain.FolderStateError); err != nil {
		logger.Error("Recording terminal failure for %s: %v", id, err)
	}

	if s.watcher != nil {
		if err := s.watcher.Unwatch(id); err != nil {
			logger.Debug("Unwatch %s: %v", id, err)
		}
	}
	if err := s.cleanupPartition(ctx, id); err != nil {
		logger.Error("Cleanup partition for %s: %v", id, err)
		return
	}

	folder.State = domain.FolderStateRemoved
	if err := s.folderStore.Save(ctx, folder); err != nil {
		logger.Error("Saving removed state for %s: %v", id, err)
	}
	if err := s.folderStore.Delete(ctx, id); err != nil {
		logger.Error("Deleting folder record %s: %v", id, err)
	}
}

// cleanupPartition drops every document, chunk and vector in the
// folder's partition.
func (s *LifecycleService) cleanupPartition(ctx context.Context, id string) error {
	if s.vectorIndex != nil {
		docs, err := s.docStore.ListDocuments(ctx, id)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		for i := range docs {
			chunks, err := s.docStore.GetChunks(ctx, docs[i].ID)
			if err != nil {
				continue
			}
			for j := range chunks {
				if err := s.vectorIndex.Delete(ctx, chunks[j].ID); err != nil {
					logger.Debug("Delete vector %s: %v", chunks[j].ID, err)
				}
			}
		}
	}
	return s.docStore.DeleteFolderDocuments(ctx, id)
}

// recordRun appends to the folder's run history. Best effort; a run log
// failure never fails the run.
func (s *LifecycleService) recordRun(id string, stats *runStats, runErr error) {
	if s.runStore == nil || stats == nil {
		return
	}
	run := &domain.IndexRun{
		FolderID:      id,
		StartedAt:     stats.startedAt,
		EndedAt:       time.Now().UTC(),
		Success:       runErr == nil,
		FilesSeen:     stats.filesSeen,
		FilesIndexed:  stats.filesIndexed,
		ChunksWritten: stats.chunksWritten,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	// Run bookkeeping must survive a cancelled run context.
	ctx := context.Background()
	if err := s.runStore.RecordRun(ctx, run); err != nil {
		logger.Debug("Record run for %s: %v", id, err)
		return
	}
	if err := s.runStore.PruneRuns(ctx, keepRunHistory); err != nil {
		logger.Debug("Prune runs: %v", err)
	}
}

// transition moves the folder to next and persists it. Already being in
// next is a no-op, anything else not permitted by the state machine is
// an error.
func (s *LifecycleService) transition(ctx context.Context, folder *domain.MonitoredFolder, next domain.FolderState) error {
	if folder.State == next {
		return nil
	}
	if !folder.State.CanTransitionTo(next) {
		return fmt.Errorf("invalid folder state transition %s -> %s", folder.State, next)
	}
	logger.Debug("Folder %s: %s -> %s", folder.ID, folder.State, next)
	folder.State = next
	return s.folderStore.Save(ctx, folder)
}
