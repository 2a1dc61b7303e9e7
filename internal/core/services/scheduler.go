package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
)

// Scheduler manages background task execution.
// It is a pure core service with no external control API.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	folders driving.FolderService
	auditor driving.ConsistencyAuditor

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	folders driving.FolderService,
	auditor driving.ConsistencyAuditor,
) *Scheduler {
	return &Scheduler{
		config:  config,
		store:   store,
		folders: folders,
		auditor: auditor,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is
// called. When the scheduler is disabled by configuration it returns
// immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Initialise tasks in store
	if err := s.initialiseTasks(ctx); err != nil {
		log.Printf("scheduler: failed to initialise tasks: %v", err)
	}

	// Run the main scheduler loop
	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDFolderRescan); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDFolderRescan, "Folder Rescan", taskCfg); err != nil {
			return err
		}
	}

	if taskCfg := s.config.GetTaskConfig(domain.TaskIDConsistencyAudit); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDConsistencyAudit, "Consistency Audit", taskCfg); err != nil {
			return err
		}
	}

	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		// Create new task
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		// Update interval if changed
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			// Recalculate next run from now
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	// Use a 1-minute ticker to check for due tasks
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || task.NextRun.Before(now) || task.NextRun.Equal(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDFolderRescan:
			result.ItemsProcessed, err = s.runFolderRescan(ctx)
		case domain.TaskIDConsistencyAudit:
			result.ItemsProcessed, err = s.runConsistencyAudit(ctx)
		default:
			log.Printf("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		// Update task state
		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			log.Printf("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}

		// Record result for history
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			log.Printf("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}

		// Prune old history (keep last 100 results per task)
		if pruneErr := s.store.PruneHistory(ctx, 100); pruneErr != nil {
			log.Printf("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runFolderRescan requests a rescan of every active folder, catching
// changes the filesystem watcher missed. Folders already mid-run are
// skipped; the next due run picks them up.
func (s *Scheduler) runFolderRescan(ctx context.Context) (int, error) {
	if s.folders == nil {
		return 0, nil
	}

	folders, err := s.folders.ListFolders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list folders: %w", err)
	}

	requested := 0
	for i := range folders {
		folder := &folders[i]
		if folder.State != domain.FolderStateActive {
			continue
		}
		err := s.folders.RescanFolder(ctx, folder.ID)
		switch {
		case err == nil:
			requested++
		case errors.Is(err, domain.ErrIndexingInProgress),
			errors.Is(err, domain.ErrFolderRemoved),
			errors.Is(err, domain.ErrNotFound):
			// Busy, or gone since the listing. Nothing to do.
		default:
			log.Printf("scheduler: rescan %s: %v", folder.Path, err)
		}
	}
	return requested, nil
}

// runConsistencyAudit re-embeds a sample of stored chunks and compares
// them against the stored vectors.
func (s *Scheduler) runConsistencyAudit(ctx context.Context) (int, error) {
	if s.auditor == nil {
		return 0, nil
	}

	report, err := s.auditor.Audit(ctx)
	if err != nil {
		return 0, err
	}
	if !report.Clean() {
		log.Printf("scheduler: consistency audit found %d drifted chunks across %d folders",
			len(report.Mismatches), report.FoldersAudited)
	}
	return report.ChunksSampled, nil
}
