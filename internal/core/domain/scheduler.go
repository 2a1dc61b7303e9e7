package domain

import "time"

// Task IDs for the built-in background tasks.
const (
	// TaskIDFolderRescan periodically rescans every active folder to pick
	// up changes the watcher missed.
	TaskIDFolderRescan = "folder-rescan"

	// TaskIDConsistencyAudit periodically samples stored chunks and
	// verifies reconstruction still matches the indexed vectors.
	TaskIDConsistencyAudit = "consistency-audit"
)

// TaskConfig configures one background task.
type TaskConfig struct {
	// Interval is how often the task runs.
	Interval time.Duration

	// Enabled turns the task on or off.
	Enabled bool
}

// SchedulerConfig holds per-task scheduling configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// Tasks holds per-task configuration keyed by task ID.
	Tasks map[string]TaskConfig
}

// DefaultSchedulerConfig returns the default task schedule.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		Tasks: map[string]TaskConfig{
			TaskIDFolderRescan:     {Interval: 1 * time.Hour, Enabled: true},
			TaskIDConsistencyAudit: {Interval: 24 * time.Hour, Enabled: true},
		},
	}
}

// GetTaskConfig returns the configuration for a task ID, or a disabled
// zero config when the task is unknown.
func (c SchedulerConfig) GetTaskConfig(id string) TaskConfig {
	if cfg, ok := c.Tasks[id]; ok {
		return cfg
	}
	return TaskConfig{}
}

// ScheduledTask is the persisted state of one background task.
type ScheduledTask struct {
	// ID identifies the task (TaskIDFolderRescan, ...).
	ID string

	// Name is the human-readable task name.
	Name string

	// Interval is how often the task runs.
	Interval time.Duration

	// Enabled turns the task on or off.
	Enabled bool

	// LastRun is when the task last started.
	LastRun time.Time

	// LastSuccess is when the task last completed without error.
	LastSuccess time.Time

	// LastError is the last failure message, empty after a success.
	LastError string

	// NextRun is when the task is due again.
	NextRun time.Time
}

// TaskResult records one completed task execution.
type TaskResult struct {
	// TaskID identifies the task that ran.
	TaskID string

	// StartedAt is when execution began.
	StartedAt time.Time

	// EndedAt is when execution finished.
	EndedAt time.Time

	// Success is false when the task returned an error.
	Success bool

	// Error is the failure message, if any.
	Error string

	// ItemsProcessed counts the task's work (folders rescanned, chunks
	// audited).
	ItemsProcessed int
}
