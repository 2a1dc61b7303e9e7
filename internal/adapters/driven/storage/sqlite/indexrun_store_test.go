package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// recordTestRuns inserts n runs for a folder, most recent first at base.
func recordTestRuns(t *testing.T, store *Store, folderID string, n int, base time.Time) {
	t.Helper()
	ctx := context.Background()
	runStore := store.IndexRunStore()
	for i := 0; i < n; i++ {
		started := base.Add(-time.Duration(i) * time.Minute)
		run := &domain.IndexRun{
			FolderID:      folderID,
			StartedAt:     started,
			EndedAt:       started.Add(10 * time.Second),
			Success:       true,
			FilesSeen:     100,
			FilesIndexed:  10 + i,
			ChunksWritten: 50,
		}
		require.NoError(t, runStore.RecordRun(ctx, run))
	}
}

func TestIndexRunStore_RecordAndHistory(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runStore := store.IndexRunStore()

	base := time.Now().UTC().Truncate(time.Second)
	recordTestRuns(t, store, "folder-1", 3, base)

	runs, err := runStore.GetRunHistory(ctx, "folder-1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Most recent first
	assert.WithinDuration(t, base, runs[0].StartedAt, time.Second)
	assert.WithinDuration(t, base.Add(-time.Minute), runs[1].StartedAt, time.Second)
	assert.WithinDuration(t, base.Add(-2*time.Minute), runs[2].StartedAt, time.Second)

	assert.Equal(t, 10, runs[0].FilesIndexed)
	assert.True(t, runs[0].Success)
	assert.Equal(t, 100, runs[0].FilesSeen)
	assert.Equal(t, 50, runs[0].ChunksWritten)
}

func TestIndexRunStore_RecordFailedRun(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runStore := store.IndexRunStore()

	started := time.Now().UTC().Truncate(time.Second)
	run := &domain.IndexRun{
		FolderID:  "folder-1",
		StartedAt: started,
		EndedAt:   started.Add(time.Second),
		Success:   false,
		Error:     "scan folder /data/reports: permission denied",
	}
	require.NoError(t, runStore.RecordRun(ctx, run))

	runs, err := runStore.GetRunHistory(ctx, "folder-1", 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Success)
	assert.Equal(t, "scan folder /data/reports: permission denied", runs[0].Error)
}

func TestIndexRunStore_RecordRun_Invalid(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runStore := store.IndexRunStore()

	assert.ErrorIs(t, runStore.RecordRun(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, runStore.RecordRun(ctx, &domain.IndexRun{}), domain.ErrInvalidInput)
}

func TestIndexRunStore_HistoryLimit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	base := time.Now().UTC().Truncate(time.Second)
	recordTestRuns(t, store, "folder-1", 5, base)

	runs, err := store.IndexRunStore().GetRunHistory(context.Background(), "folder-1", 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestIndexRunStore_HistoryIsolatedPerFolder(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	base := time.Now().UTC().Truncate(time.Second)
	recordTestRuns(t, store, "folder-1", 2, base)
	recordTestRuns(t, store, "folder-2", 3, base)

	runs, err := store.IndexRunStore().GetRunHistory(context.Background(), "folder-1", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, "folder-1", run.FolderID)
	}
}

func TestIndexRunStore_LastRun(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runStore := store.IndexRunStore()

	// No runs yet: nil, no error
	last, err := runStore.LastRun(ctx, "folder-1")
	require.NoError(t, err)
	assert.Nil(t, last)

	base := time.Now().UTC().Truncate(time.Second)
	recordTestRuns(t, store, "folder-1", 3, base)

	last, err = runStore.LastRun(ctx, "folder-1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.WithinDuration(t, base, last.StartedAt, time.Second)
}

func TestIndexRunStore_PruneRuns(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	runStore := store.IndexRunStore()

	base := time.Now().UTC().Truncate(time.Second)
	recordTestRuns(t, store, "folder-1", 5, base)
	recordTestRuns(t, store, "folder-2", 3, base)

	require.NoError(t, runStore.PruneRuns(ctx, 2))

	// Each folder keeps its 2 most recent runs
	runs, err := runStore.GetRunHistory(ctx, "folder-1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.WithinDuration(t, base, runs[0].StartedAt, time.Second)
	assert.WithinDuration(t, base.Add(-time.Minute), runs[1].StartedAt, time.Second)

	runs, err = runStore.GetRunHistory(ctx, "folder-2", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
