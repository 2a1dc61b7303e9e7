package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// GetTask retrieves a scheduled task by ID. Returns nil and no error if
// the task does not exist.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, interval_ns, enabled, last_run, last_success, last_error, next_run
		FROM scheduled_tasks
		WHERE id = ?
	`, taskID)

	task, err := scanTask(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("getting task %s: %w", taskID, err)
	}
	return task, nil
}

// ListTasks returns all scheduled tasks.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, interval_ns, enabled, last_run, last_success, last_error, next_run
		FROM scheduled_tasks
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduledTask //nolint:prealloc // size unknown from query
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// SaveTask persists a task's state.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (id, name, interval_ns, enabled, last_run, last_success, last_error, next_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			interval_ns = excluded.interval_ns,
			enabled = excluded.enabled,
			last_run = excluded.last_run,
			last_success = excluded.last_success,
			last_error = excluded.last_error,
			next_run = excluded.next_run
	`, task.ID, task.Name, int64(task.Interval), boolToInt(task.Enabled),
		nullRFC3339(task.LastRun), nullRFC3339(task.LastSuccess),
		nullString(task.LastError), nullRFC3339(task.NextRun))

	if err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask removes a task from storage.
func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM scheduled_tasks WHERE id = ?", taskID)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", taskID, err)
	}
	return nil
}

// RecordResult logs a task execution result.
func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil || result.TaskID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO task_results (task_id, started_at, ended_at, success, error, items_processed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.TaskID,
		result.StartedAt.Format(time.RFC3339),
		result.EndedAt.Format(time.RFC3339),
		boolToInt(result.Success),
		nullString(result.Error),
		result.ItemsProcessed)

	if err != nil {
		return fmt.Errorf("recording task result: %w", err)
	}
	return nil
}

// GetTaskHistory returns recent results for a task, most recent first.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT task_id, started_at, ended_at, success, error, items_processed
		FROM task_results
		WHERE task_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying task history: %w", err)
	}
	defer rows.Close()

	var results []domain.TaskResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var result domain.TaskResult
		var startedAt string
		var endedAt, errMsg sql.NullString
		var success int

		if err := rows.Scan(&result.TaskID, &startedAt, &endedAt,
			&success, &errMsg, &result.ItemsProcessed); err != nil {
			return nil, fmt.Errorf("scanning task result: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			result.StartedAt = t
		}
		if endedAt.Valid {
			if t, err := time.Parse(time.RFC3339, endedAt.String); err == nil {
				result.EndedAt = t
			}
		}
		result.Success = success == 1
		if errMsg.Valid {
			result.Error = errMsg.String
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task history: %w", err)
	}
	return results, nil
}

// PruneHistory keeps the most recent 'keep' results per task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM task_results
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_at DESC) as rn
				FROM task_results
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning task history: %w", err)
	}
	return nil
}

// scanTask scans one task row via the given scan function.
func scanTask(scan func(dest ...any) error) (*domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	var intervalNS int64
	var enabled int
	var lastRun, lastSuccess, lastError, nextRun sql.NullString

	if err := scan(&task.ID, &task.Name, &intervalNS, &enabled,
		&lastRun, &lastSuccess, &lastError, &nextRun); err != nil {
		return nil, err
	}

	task.Interval = time.Duration(intervalNS)
	task.Enabled = enabled == 1
	if lastRun.Valid {
		if t, err := time.Parse(time.RFC3339, lastRun.String); err == nil {
			task.LastRun = t
		}
	}
	if lastSuccess.Valid {
		if t, err := time.Parse(time.RFC3339, lastSuccess.String); err == nil {
			task.LastSuccess = t
		}
	}
	if lastError.Valid {
		task.LastError = lastError.String
	}
	if nextRun.Valid {
		if t, err := time.Parse(time.RFC3339, nextRun.String); err == nil {
			task.NextRun = t
		}
	}
	return &task, nil
}

// nullRFC3339 returns nil for zero times, otherwise the RFC3339 string.
func nullRFC3339(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}
