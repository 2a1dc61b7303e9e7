package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestFolderState_CanTransitionTo tests the full lifecycle transition matrix
func TestFolderState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    FolderState
		to      FolderState
		allowed bool
	}{
		{"pending to scanning", FolderStatePending, FolderStateScanning, true},
		{"pending to error", FolderStatePending, FolderStateError, true},
		{"pending to removed", FolderStatePending, FolderStateRemoved, true},
		{"pending to active skips indexing", FolderStatePending, FolderStateActive, false},
		{"pending to indexing skips scanning", FolderStatePending, FolderStateIndexing, false},
		{"scanning to indexing", FolderStateScanning, FolderStateIndexing, true},
		{"scanning to active when nothing changed", FolderStateScanning, FolderStateActive, true},
		{"scanning to error", FolderStateScanning, FolderStateError, true},
		{"scanning back to pending", FolderStateScanning, FolderStatePending, false},
		{"indexing to active", FolderStateIndexing, FolderStateActive, true},
		{"indexing to error", FolderStateIndexing, FolderStateError, true},
		{"indexing to removed", FolderStateIndexing, FolderStateRemoved, true},
		{"indexing back to scanning", FolderStateIndexing, FolderStateScanning, false},
		{"active to scanning on change", FolderStateActive, FolderStateScanning, true},
		{"active to error", FolderStateActive, FolderStateError, true},
		{"active to removed", FolderStateActive, FolderStateRemoved, true},
		{"active to indexing skips scanning", FolderStateActive, FolderStateIndexing, false},
		{"error to scanning on retry", FolderStateError, FolderStateScanning, true},
		{"error to removed on cleanup", FolderStateError, FolderStateRemoved, true},
		{"error to active directly", FolderStateError, FolderStateActive, false},
		{"error to indexing directly", FolderStateError, FolderStateIndexing, false},
		{"removed is terminal for scanning", FolderStateRemoved, FolderStateScanning, false},
		{"removed is terminal for active", FolderStateRemoved, FolderStateActive, false},
		{"removed is terminal for error", FolderStateRemoved, FolderStateError, false},
		{"self transition not allowed", FolderStateActive, FolderStateActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// TestFolderState_IsTerminal tests that only removed is terminal
func TestFolderState_IsTerminal(t *testing.T) {
	assert.True(t, FolderStateRemoved.IsTerminal())

	for _, s := range []FolderState{
		FolderStatePending,
		FolderStateScanning,
		FolderStateIndexing,
		FolderStateActive,
		FolderStateError,
	} {
		assert.False(t, s.IsTerminal(), "state %s should not be terminal", s)
	}
}

// TestFolderState_Valid tests state validity checks
func TestFolderState_Valid(t *testing.T) {
	for _, s := range []FolderState{
		FolderStatePending,
		FolderStateScanning,
		FolderStateIndexing,
		FolderStateActive,
		FolderStateError,
		FolderStateRemoved,
	} {
		assert.True(t, s.Valid(), "state %s should be valid", s)
	}

	assert.False(t, FolderState("").Valid())
	assert.False(t, FolderState("archived").Valid())
}

// TestMonitoredFolder_Fields tests MonitoredFolder structure fields
func TestMonitoredFolder_Fields(t *testing.T) {
	now := time.Now()
	folder := MonitoredFolder{
		ID:   "folder-123",
		Path: "/home/user/docs",
		Config: FolderConfig{
			EmbeddingModel:  "nomic-embed-text",
			ExcludePatterns: []string{"*.tmp", "node_modules"},
		},
		State:     FolderStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	assert.Equal(t, "folder-123", folder.ID)
	assert.Equal(t, "/home/user/docs", folder.Path)
	assert.Equal(t, "nomic-embed-text", folder.Config.EmbeddingModel)
	assert.Len(t, folder.Config.ExcludePatterns, 2)
	assert.Equal(t, FolderStatePending, folder.State)
	assert.Nil(t, folder.LastError)
	assert.True(t, folder.LastIndexedAt.IsZero())
}

// TestMonitoredFolder_LastError tests the error annotation
func TestMonitoredFolder_LastError(t *testing.T) {
	now := time.Now()
	folder := MonitoredFolder{
		ID:    "folder-123",
		Path:  "/home/user/docs",
		State: FolderStateError,
		LastError: &LastError{
			Class:       FailureEnvironment,
			Message:     "cannot open shared object file",
			Remediation: "reinstall the native vector index library",
			At:          now,
		},
	}

	assert.NotNil(t, folder.LastError)
	assert.Equal(t, FailureEnvironment, folder.LastError.Class)
	assert.Equal(t, now, folder.LastError.At)
	assert.NotEmpty(t, folder.LastError.Remediation)
}

// TestDefaultRetryPolicy tests the default retry schedule
func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 1*time.Second, p.BaseDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
	assert.Equal(t, 2.0, p.Multiplier)
}

// TestRetryPolicy_Delay tests the capped exponential schedule
func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // capped
		{6, 30 * time.Second}, // stays capped
		{-1, 1 * time.Second}, // clamped to base
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

// TestRetryPolicy_DelayNeverExceedsMax tests the cap for large attempts
func TestRetryPolicy_DelayNeverExceedsMax(t *testing.T) {
	p := DefaultRetryPolicy()

	for attempt := 0; attempt < 64; attempt++ {
		d := p.Delay(attempt)
		assert.LessOrEqual(t, d, p.MaxDelay, "attempt %d", attempt)
		assert.GreaterOrEqual(t, d, p.BaseDelay, "attempt %d", attempt)
	}
}
