package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/storage/memory"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

const arbFallbackAddr = "http://127.0.0.1:9876/mcp"

// ==================== Mocks ====================
// Mock implementations are prefixed with arb to avoid conflicts with the
// mocks in the other service test files.

type arbConfigWrite struct {
	clientID string
	mode     domain.TransportMode
	address  string
}

type arbMockConfigWriter struct {
	mu      sync.Mutex
	writes  []arbConfigWrite
	failFor map[string]error
}

func newArbMockConfigWriter() *arbMockConfigWriter {
	return &arbMockConfigWriter{failFor: make(map[string]error)}
}

func (m *arbMockConfigWriter) failClient(clientID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[clientID] = err
}

func (m *arbMockConfigWriter) WriteConfig(_ context.Context, clientID string, mode domain.TransportMode, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[clientID]; err != nil {
		return err
	}
	m.writes = append(m.writes, arbConfigWrite{clientID: clientID, mode: mode, address: address})
	return nil
}

func (m *arbMockConfigWriter) writtenMode(clientID string) (domain.TransportMode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.writes) - 1; i >= 0; i-- {
		if m.writes[i].clientID == clientID {
			return m.writes[i].mode, true
		}
	}
	return "", false
}

// ==================== Tests ====================

func TestArbiter_FirstClaimGranted(t *testing.T) {
	store := memory.NewConnectionStateStore()
	arbiter := NewConnectionArbiter(store, nil, arbFallbackAddr)
	ctx := context.Background()

	decision, err := arbiter.RequestLowLatencyChannel(ctx, "claude-desktop")
	require.NoError(t, err)
	assert.True(t, decision.Granted)
	assert.Equal(t, "claude-desktop", decision.PrimaryID)
	assert.Empty(t, decision.Reason)
	assert.Empty(t, decision.FallbackAddress)

	state, err := arbiter.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "claude-desktop", state.PrimaryID)
	assert.Nil(t, state.LastConflict)
}

func TestArbiter_SecondClaimDeniedWithRedirect(t *testing.T) {
	store := memory.NewConnectionStateStore()
	arbiter := NewConnectionArbiter(store, nil, arbFallbackAddr)
	ctx := context.Background()

	_, err := arbiter.RequestLowLatencyChannel(ctx, "claude-desktop")
	require.NoError(t, err)

	// A denial is a decision, not an error.
	decision, err := arbiter.RequestLowLatencyChannel(ctx, "cursor")
	require.NoError(t, err)
	assert.False(t, decision.Granted)
	assert.Equal(t, "claude-desktop", decision.PrimaryID)
	assert.Equal(t, domain.DenialPrimaryHeld, decision.Reason)
	assert.Equal(t, arbFallbackAddr, decision.FallbackAddress)

	state, err := arbiter.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "claude-desktop", state.PrimaryID)
	assert.Equal(t, arbFallbackAddr, state.FallbackClients["cursor"])
	require.NotNil(t, state.LastConflict)
	assert.Equal(t, "cursor", state.LastConflict.RequesterID)
	assert.False(t, state.LastConflict.At.IsZero())
}

func TestArbiter_DenialHistoryAccumulates(t *testing.T) {
	store := memory.NewConnectionStateStore()
	arbiter := NewConnectionArbiter(store, nil, arbFallbackAddr)
	ctx := context.Background()

	_, err := arbiter.RequestLowLatencyChannel(ctx, "claude-desktop")
	require.NoError(t, err)
	_, err = arbiter.RequestLowLatencyChannel(ctx, "cursor")
	require.NoError(t, err)
	_, err = arbiter.RequestLowLatencyChannel(ctx, "vscode")
	require.NoError(t, err)

	// Every denial is in the log, oldest first, not just the latest.
	state, err := arbiter.State(ctx)
	require.NoError(t, err)
	require.Len(t, state.Denials, 2)
	assert.Equal(t, "cursor", state.Denials[0].RequesterID)
	assert.Equal(t, "vscode", state.Denials[1].RequesterID)

	// The log is part of the persisted state and survives a restart.
	restarted := NewConnectionArbiter(store, nil, arbFallbackAddr)
	state, err = restarted.State(ctx)
	require.NoError(t, err)
	require.Len(t, state.Denials, 2)
	assert.Equal(t, "vscode", state.LastConflict.RequesterID)
}

func TestArbiter_HolderReclaimIsGranted(t *testing.T) {
	store := memory.NewConnectionStateStore()
	arbiter := NewConnectionArbiter(store, nil, arbFallbackAddr)
	ctx := context.Background()

	_, err := arbiter.RequestLowLatencyChannel(ctx, "claude-desktop")
	require.NoError(t, err)

	decision, err := arbiter.RequestLowLatencyChannel(ctx, "claude-desktop")
	require.NoError(t, err)
	assert.True(t, decision.Granted)

	// The assignment survives a daemon restart: a fresh arbiter over the
	// same store still recognises the holder.
	restarted := NewConnectionArbiter(store, nil, arbFallbackAddr)
	decision, err = restarted.RequestLowLatencyChannel(ctx, "claude-desktop")
	require.NoError(t, err)
	assert.True(t, decision.Granted)

	decision, err = restarted.RequestLowLatencyChannel(ctx, "cursor")
	require.NoError(t, err)
	assert.False(t, decision.Granted)
}

func TestArbiter_Release(t *testing.T) {
	store := memory.NewConnectionStateStore()
	arbiter := NewConnectionArbiter(store, nil, arbFallbackAddr)
	ctx := context.Background()

	_, err := arbiter.RequestLowLatencyChannel(ctx, "claude-desktop")
	require.NoError(t, err)

	// A stale release from a non-holder must not evict the holder.
	require.NoError(t, arbiter.Release(ctx, "cursor"))
	state, err := arbiter.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "claude-desktop", state.PrimaryID)

	require.NoError(t, arbiter.Release(ctx, "claude-desktop"))
	state, err = arbiter.State(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.PrimaryID)

	decision, err := arbiter.RequestLowLatencyChannel(ctx, "cursor")
	require.NoError(t, err)
	assert.True(t, decision.Granted)
}

func TestArbiter_SetPrimaryRewritesEveryKnownClient(t *testing.T) {
	store := memory.NewConnectionStateStore()
	writer := newArbMockConfigWriter()
	arbiter := NewConnectionArbiter(store, writer, arbFallbackAddr)
	ctx := context.Background()

	_, err := arbiter.RequestLowLatencyChannel(ctx, "claude-desktop")
	require.NoError(t, err)
	_, err = arbiter.RequestLowLatencyChannel(ctx, "cursor")
	require.NoError(t, err)
	_, err = arbiter.RequestLowLatencyChannel(ctx, "continue")
	require.NoError(t, err)

	rewrites, err := arbiter.SetPrimary(ctx, "cursor")
	require.NoError(t, err)
	require.Len(t, rewrites, 3)
	for _, rw := range rewrites {
		assert.NoError(t, rw.Err)
		if rw.ClientID == "cursor" {
			assert.Equal(t, domain.TransportStdio, rw.Mode)
		} else {
			assert.Equal(t, domain.TransportHTTP, rw.Mode)
		}
	}

	mode, ok := writer.writtenMode("cursor")
	require.True(t, ok)
	assert.Equal(t, domain.TransportStdio, mode)
	mode, ok = writer.writtenMode("claude-desktop")
	require.True(t, ok)
	assert.Equal(t, domain.TransportHTTP, mode)

	state, err := arbiter.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cursor", state.PrimaryID)
	assert.Contains(t, state.FallbackClients, "claude-desktop")
	assert.Contains(t, state.FallbackClients, "continue")
	assert.NotContains(t, state.FallbackClients, "cursor")
}

func TestArbiter_SetPrimaryPartialFailureIsIndependent(t *testing.T) {
	store := memory.NewConnectionStateStore()
	writer := newArbMockConfigWriter()
	writer.failClient("continue", fmt.Errorf("config file locked"))
	arbiter := NewConnectionArbiter(store, writer, arbFallbackAddr)
	ctx := context.Background()

	_, err := arbiter.RequestLowLatencyChannel(ctx, "claude-desktop")
	require.NoError(t, err)
	_, err = arbiter.RequestLowLatencyChannel(ctx, "continue")
	require.NoError(t, err)

	rewrites, err := arbiter.SetPrimary(ctx, "cursor")
	require.NoError(t, err)
	require.Len(t, rewrites, 3)

	failed := 0
	for _, rw := range rewrites {
		if rw.ClientID == "continue" {
			assert.ErrorContains(t, rw.Err, "config file locked")
			failed++
		} else {
			assert.NoError(t, rw.Err)
		}
	}
	assert.Equal(t, 1, failed)

	// One failed file neither aborts the others nor the assignment.
	_, ok := writer.writtenMode("claude-desktop")
	assert.True(t, ok)
	state, err := arbiter.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cursor", state.PrimaryID)
}

func TestArbiter_SetPrimaryWithoutWriter(t *testing.T) {
	store := memory.NewConnectionStateStore()
	arbiter := NewConnectionArbiter(store, nil, arbFallbackAddr)
	ctx := context.Background()

	rewrites, err := arbiter.SetPrimary(ctx, "cursor")
	require.NoError(t, err)
	assert.Empty(t, rewrites)

	state, err := arbiter.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cursor", state.PrimaryID)
}

func TestArbiter_EmptyClientID(t *testing.T) {
	store := memory.NewConnectionStateStore()
	arbiter := NewConnectionArbiter(store, nil, arbFallbackAddr)
	ctx := context.Background()

	_, err := arbiter.RequestLowLatencyChannel(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = arbiter.SetPrimary(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestArbiter_ConcurrentClaimsGrantExactlyOne(t *testing.T) {
	store := memory.NewConnectionStateStore()
	arbiter := NewConnectionArbiter(store, nil, arbFallbackAddr)
	ctx := context.Background()

	const claimers = 16
	decisions := make([]domain.ConnectionDecision, claimers)
	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := arbiter.RequestLowLatencyChannel(ctx, fmt.Sprintf("client-%d", i))
			assert.NoError(t, err)
			decisions[i] = decision
		}()
	}
	wg.Wait()

	granted := 0
	var winner string
	for _, d := range decisions {
		if d.Granted {
			granted++
			winner = d.PrimaryID
		}
	}
	assert.Equal(t, 1, granted, "exactly one concurrent claim wins")
	for _, d := range decisions {
		assert.Equal(t, winner, d.PrimaryID, "every decision names the same holder")
		if !d.Granted {
			assert.Equal(t, domain.DenialPrimaryHeld, d.Reason)
			assert.Equal(t, arbFallbackAddr, d.FallbackAddress)
		}
	}
}
