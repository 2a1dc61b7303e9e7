package domain

import "time"

// FolderState is the lifecycle state of a monitored folder.
type FolderState string

const (
	// FolderStatePending means the folder is registered but not yet scanned.
	FolderStatePending FolderState = "pending"

	// FolderStateScanning means the folder's files are being enumerated and hashed.
	FolderStateScanning FolderState = "scanning"

	// FolderStateIndexing means new or changed documents are being chunked and embedded.
	FolderStateIndexing FolderState = "indexing"

	// FolderStateActive means the folder is fully indexed and serving queries.
	FolderStateActive FolderState = "active"

	// FolderStateError means the last scan or indexing run failed.
	// The store partition is preserved unless the failure was a terminal
	// folder failure.
	FolderStateError FolderState = "error"

	// FolderStateRemoved means the folder was removed and its data cleaned up.
	FolderStateRemoved FolderState = "removed"
)

// validTransitions encodes the folder lifecycle state machine.
// A transition not listed here is rejected.
var validTransitions = map[FolderState][]FolderState{
	FolderStatePending:  {FolderStateScanning, FolderStateError, FolderStateRemoved},
	FolderStateScanning: {FolderStateIndexing, FolderStateActive, FolderStateError, FolderStateRemoved},
	FolderStateIndexing: {FolderStateActive, FolderStateError, FolderStateRemoved},
	FolderStateActive:   {FolderStateScanning, FolderStateError, FolderStateRemoved},
	FolderStateError:    {FolderStateScanning, FolderStateRemoved},
	FolderStateRemoved:  nil,
}

// CanTransitionTo reports whether the state machine permits moving
// from s to next.
func (s FolderState) CanTransitionTo(next FolderState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s FolderState) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Valid reports whether s is a known lifecycle state.
func (s FolderState) Valid() bool {
	switch s {
	case FolderStatePending, FolderStateScanning, FolderStateIndexing,
		FolderStateActive, FolderStateError, FolderStateRemoved:
		return true
	}
	return false
}

// FolderConfig holds per-folder indexing configuration.
type FolderConfig struct {
	// EmbeddingModel is the identifier of the embedding model used for
	// this folder's chunks. Vectors from different models are not comparable,
	// so a folder is always embedded with a single model.
	EmbeddingModel string

	// ExcludePatterns are glob patterns (matched against paths relative to
	// the folder root) that are skipped during scanning.
	ExcludePatterns []string
}

// LastError records the most recent failure for a folder.
type LastError struct {
	// Class is the classified failure category.
	Class FailureClass

	// Message is the human-readable error text.
	Message string

	// Remediation describes the fix action for environment failures
	// (e.g., rebuild the native vector index library). Empty otherwise.
	Remediation string

	// At is when the failure occurred.
	At time.Time
}

// MonitoredFolder is a folder under index management.
// It is owned exclusively by the folder lifecycle orchestrator: created when
// a user adds a folder, destroyed only on explicit removal or a confirmed
// terminal folder failure, and never implicitly destroyed on an environment
// failure.
type MonitoredFolder struct {
	// ID is the unique identifier for the folder.
	ID string

	// Path is the absolute filesystem path of the folder root.
	Path string

	// Config holds the folder's indexing configuration.
	Config FolderConfig

	// State is the current lifecycle state.
	State FolderState

	// LastIndexedAt is when the folder last reached the active state.
	LastIndexedAt time.Time

	// LastError is the most recent failure, if any.
	LastError *LastError

	// CreatedAt is when the folder was added.
	CreatedAt time.Time

	// UpdatedAt is when the folder record last changed.
	UpdatedAt time.Time
}

// RetryPolicy bounds the retry loop for transient folder failures.
// The backoff schedule is delay(n) = min(BaseDelay * Multiplier^n, MaxDelay);
// once MaxAttempts consecutive attempts have failed the failure is declared
// terminal.
type RetryPolicy struct {
	// MaxAttempts is the number of consecutive failures tolerated before a
	// transient folder failure is declared terminal.
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration

	// Multiplier is the backoff growth factor per attempt.
	Multiplier float64
}

// DefaultRetryPolicy returns the default transient-failure retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}
}

// Delay returns the backoff delay before retry attempt n (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		d *= p.Multiplier
		if d >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}
