package memory

import (
	"context"
	"sync"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// Ensure ConnectionStateStore implements the interface.
var _ driven.ConnectionStateStore = (*ConnectionStateStore)(nil)

// ConnectionStateStore is an in-memory implementation of driven.ConnectionStateStore.
type ConnectionStateStore struct {
	mu    sync.Mutex
	state *domain.ClientConnectionState
}

// NewConnectionStateStore creates a new in-memory connection state store.
func NewConnectionStateStore() *ConnectionStateStore {
	return &ConnectionStateStore{}
}

// Load returns the persisted state, or a fresh empty state when none
// has been saved yet.
func (s *ConnectionStateStore) Load(_ context.Context) (*domain.ClientConnectionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return domain.NewClientConnectionState(), nil
	}
	return cloneState(s.state), nil
}

// Save persists the state.
func (s *ConnectionStateStore) Save(_ context.Context, state *domain.ClientConnectionState) error {
	if state == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = cloneState(state)
	return nil
}

// cloneState copies the state so the store and its callers never alias.
func cloneState(state *domain.ClientConnectionState) *domain.ClientConnectionState {
	clone := *state
	clone.FallbackClients = make(map[string]string, len(state.FallbackClients))
	for id, addr := range state.FallbackClients {
		clone.FallbackClients[id] = addr
	}
	if state.LastConflict != nil {
		conflict := *state.LastConflict
		clone.LastConflict = &conflict
	}
	clone.Denials = append([]domain.ConflictRecord(nil), state.Denials...)
	return &clone
}
