package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// connectionStateStore implements driven.ConnectionStateStore.
// The arbiter state is a single JSON document in a one-row table; the
// upsert makes each save atomic.
type connectionStateStore struct {
	store *Store
}

var _ driven.ConnectionStateStore = (*connectionStateStore)(nil)

// Load returns the persisted state, or a fresh empty state when none
// has been saved yet.
func (s *connectionStateStore) Load(ctx context.Context) (*domain.ClientConnectionState, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT state FROM connection_state WHERE id = 1")

	var stateJSON string
	if err := row.Scan(&stateJSON); err != nil {
		if err == sql.ErrNoRows {
			return domain.NewClientConnectionState(), nil
		}
		return nil, fmt.Errorf("loading connection state: %w", err)
	}

	state := domain.NewClientConnectionState()
	if err := json.Unmarshal([]byte(stateJSON), state); err != nil {
		return nil, fmt.Errorf("unmarshalling connection state: %w", err)
	}
	if state.FallbackClients == nil {
		state.FallbackClients = make(map[string]string)
	}
	return state, nil
}

// Save persists the state atomically.
func (s *connectionStateStore) Save(ctx context.Context, state *domain.ClientConnectionState) error {
	if state == nil {
		return domain.ErrInvalidInput
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling connection state: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO connection_state (id, state, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`, string(stateJSON), time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving connection state: %w", err)
	}
	return nil
}
