package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// indexRunStore implements driven.IndexRunStore.
type indexRunStore struct {
	store *Store
}

var _ driven.IndexRunStore = (*indexRunStore)(nil)

// RecordRun appends a completed run to the log.
func (s *indexRunStore) RecordRun(ctx context.Context, run *domain.IndexRun) error {
	if run == nil || run.FolderID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO index_runs (folder_id, started_at, ended_at, success, error, files_seen, files_indexed, chunks_written)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.FolderID,
		run.StartedAt.Format(time.RFC3339),
		run.EndedAt.Format(time.RFC3339),
		boolToInt(run.Success),
		nullString(run.Error),
		run.FilesSeen, run.FilesIndexed, run.ChunksWritten)

	if err != nil {
		return fmt.Errorf("recording index run: %w", err)
	}
	return nil
}

// GetRunHistory returns recent runs for a folder, most recent first.
func (s *indexRunStore) GetRunHistory(ctx context.Context, folderID string, limit int) ([]domain.IndexRun, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT folder_id, started_at, ended_at, success, error, files_seen, files_indexed, chunks_written
		FROM index_runs
		WHERE folder_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, folderID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var runs []domain.IndexRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanIndexRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run history: %w", err)
	}

	return runs, nil
}

// LastRun returns the most recent run for a folder.
func (s *indexRunStore) LastRun(ctx context.Context, folderID string) (*domain.IndexRun, error) {
	runs, err := s.GetRunHistory(ctx, folderID, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil // Per interface: never indexed is not an error
	}
	return &runs[0], nil
}

// PruneRuns keeps the most recent 'keep' runs per folder.
func (s *indexRunStore) PruneRuns(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM index_runs
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY folder_id ORDER BY started_at DESC) as rn
				FROM index_runs
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning index runs: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanIndexRun scans an index run from *sql.Rows.
func scanIndexRun(rows *sql.Rows) (*domain.IndexRun, error) {
	var run domain.IndexRun
	var startedAt string
	var endedAt sql.NullString
	var success int
	var errMsg sql.NullString

	if err := rows.Scan(&run.FolderID, &startedAt, &endedAt,
		&success, &errMsg, &run.FilesSeen, &run.FilesIndexed, &run.ChunksWritten); err != nil {
		return nil, fmt.Errorf("scanning index run: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		run.StartedAt = t
	}
	if endedAt.Valid {
		if t, err := time.Parse(time.RFC3339, endedAt.String); err == nil {
			run.EndedAt = t
		}
	}
	run.Success = success == 1
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	return &run, nil
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
