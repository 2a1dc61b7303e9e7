package driven

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// ConnectionStateStore persists the arbiter's client connection state so
// channel assignments survive daemon restarts.
type ConnectionStateStore interface {
	// Load returns the persisted state, or a fresh empty state when none
	// has been saved yet.
	Load(ctx context.Context) (*domain.ClientConnectionState, error)

	// Save persists the state. Must be atomic: a crash mid-save leaves
	// either the old or the new state, never a torn one.
	Save(ctx context.Context, state *domain.ClientConnectionState) error
}
