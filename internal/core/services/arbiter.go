package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
	"github.com/okets/folder-mcp-sub010/internal/logger"
)

// Ensure ConnectionArbiterService implements the interface.
var _ driving.ConnectionArbiter = (*ConnectionArbiterService)(nil)

// ConnectionArbiterService owns the single low-latency channel. Every
// decision happens inside one critical section and is persisted before it
// is answered, so two clients racing for the channel can never both see a
// grant, and assignments survive daemon restarts.
type ConnectionArbiterService struct {
	store        driven.ConnectionStateStore
	configWriter driven.AgentConfigWriter
	fallbackAddr string

	mu    sync.Mutex
	state *domain.ClientConnectionState
}

// NewConnectionArbiter creates the arbiter. fallbackAddr is the HTTP
// endpoint denied clients are redirected to. The configWriter is optional;
// without it SetPrimary reassigns the channel but rewrites no agent files.
func NewConnectionArbiter(
	store driven.ConnectionStateStore,
	configWriter driven.AgentConfigWriter,
	fallbackAddr string,
) *ConnectionArbiterService {
	return &ConnectionArbiterService{
		store:        store,
		configWriter: configWriter,
		fallbackAddr: fallbackAddr,
	}
}

// RequestLowLatencyChannel claims the stdio channel for clientID.
func (a *ConnectionArbiterService) RequestLowLatencyChannel(ctx context.Context, clientID string) (domain.ConnectionDecision, error) {
	if clientID == "" {
		return domain.ConnectionDecision{}, fmt.Errorf("%w: client id is empty", domain.ErrInvalidInput)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := a.loadLocked(ctx)
	if err != nil {
		return domain.ConnectionDecision{}, err
	}

	// The current holder re-requesting after a daemon restart is a grant,
	// not a conflict.
	if state.PrimaryID == "" || state.PrimaryID == clientID {
		state.PrimaryID = clientID
		delete(state.FallbackClients, clientID)
		if err := a.saveLocked(ctx, state); err != nil {
			return domain.ConnectionDecision{}, err
		}
		logger.Info("Low-latency channel granted to %s", clientID)
		return domain.ConnectionDecision{Granted: true, PrimaryID: clientID}, nil
	}

	// Denied. The requester is remembered as a fallback client and the
	// denial logged; the decision carries everything the client needs
	// to self-redirect.
	state.FallbackClients[clientID] = a.fallbackAddr
	state.RecordDenial(domain.ConflictRecord{RequesterID: clientID, At: time.Now().UTC()})
	if err := a.saveLocked(ctx, state); err != nil {
		return domain.ConnectionDecision{}, err
	}
	logger.Info("Low-latency channel denied to %s (held by %s), redirecting to %s",
		clientID, state.PrimaryID, a.fallbackAddr)
	return domain.ConnectionDecision{
		Granted:         false,
		PrimaryID:       state.PrimaryID,
		Reason:          domain.DenialPrimaryHeld,
		FallbackAddress: a.fallbackAddr,
	}, nil
}

// Release frees the channel if clientID holds it. Releasing a channel
// held by someone else is a no-op: a stale release from a crashed client
// must not evict the current holder.
func (a *ConnectionArbiterService) Release(ctx context.Context, clientID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := a.loadLocked(ctx)
	if err != nil {
		return err
	}
	if state.PrimaryID != clientID {
		return nil
	}

	state.PrimaryID = ""
	if err := a.saveLocked(ctx, state); err != nil {
		return err
	}
	logger.Info("Low-latency channel released by %s", clientID)
	return nil
}

// SetPrimary reassigns the channel to clientID and rewrites every known
// client's agent configuration. The assignment is persisted first; config
// rewrites are independent per file and a failed write never rolls back a
// succeeded one.
func (a *ConnectionArbiterService) SetPrimary(ctx context.Context, clientID string) ([]driving.ConfigRewrite, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id is empty", domain.ErrInvalidInput)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := a.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	previous := state.PrimaryID
	state.PrimaryID = clientID
	delete(state.FallbackClients, clientID)
	if previous != "" && previous != clientID {
		state.FallbackClients[previous] = a.fallbackAddr
	}
	if err := a.saveLocked(ctx, state); err != nil {
		return nil, err
	}
	logger.Info("Primary set to %s (was %q)", clientID, previous)

	if a.configWriter == nil {
		return []driving.ConfigRewrite{}, nil
	}

	rewrites := make([]driving.ConfigRewrite, 0, len(state.FallbackClients)+1)
	for _, id := range state.KnownClients() {
		mode := domain.TransportHTTP
		address := a.fallbackAddr
		if id == clientID {
			mode = domain.TransportStdio
			address = ""
		}
		err := a.configWriter.WriteConfig(ctx, id, mode, address)
		if err != nil {
			logger.Warn("Rewriting %s config to %s failed: %v", id, mode, err)
		}
		rewrites = append(rewrites, driving.ConfigRewrite{ClientID: id, Mode: mode, Err: err})
	}
	return rewrites, nil
}

// State returns a copy of the current connection state.
func (a *ConnectionArbiterService) State(ctx context.Context) (*domain.ClientConnectionState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := a.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	out := &domain.ClientConnectionState{
		PrimaryID:       state.PrimaryID,
		FallbackClients: make(map[string]string, len(state.FallbackClients)),
		Denials:         append([]domain.ConflictRecord(nil), state.Denials...),
		UpdatedAt:       state.UpdatedAt,
	}
	for id, addr := range state.FallbackClients {
		out.FallbackClients[id] = addr
	}
	if state.LastConflict != nil {
		conflict := *state.LastConflict
		out.LastConflict = &conflict
	}
	return out, nil
}

// loadLocked returns the cached state, loading it from the store on first
// use. Caller holds a.mu.
func (a *ConnectionArbiterService) loadLocked(ctx context.Context) (*domain.ClientConnectionState, error) {
	if a.state != nil {
		return a.state, nil
	}
	state, err := a.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load connection state: %w", err)
	}
	if state.FallbackClients == nil {
		state.FallbackClients = make(map[string]string)
	}
	a.state = state
	return state, nil
}

// saveLocked persists the state. Caller holds a.mu.
func (a *ConnectionArbiterService) saveLocked(ctx context.Context, state *domain.ClientConnectionState) error {
	state.UpdatedAt = time.Now().UTC()
	if err := a.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save connection state: %w", err)
	}
	return nil
}
