package driving

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// ConfigRewrite reports the outcome of rewriting one client's
// configuration file during a primary change. Writes are independent;
// one client's failure never rolls back another's success.
type ConfigRewrite struct {
	// ClientID is the client whose file was written.
	ClientID string

	// Mode is the transport the client was configured to use.
	Mode domain.TransportMode

	// Err is the write failure, if any.
	Err error
}

// ConnectionArbiter grants and reassigns the single low-latency channel.
type ConnectionArbiter interface {
	// RequestLowLatencyChannel claims the channel for clientID. Grants
	// when no primary is assigned or when clientID already holds it;
	// otherwise returns a denial carrying the fallback address and a
	// machine-readable reason. A denial is a decision, not an error.
	RequestLowLatencyChannel(ctx context.Context, clientID string) (domain.ConnectionDecision, error)

	// Release frees the channel if clientID currently holds it.
	// Releasing a channel held by another client is a no-op.
	Release(ctx context.Context, clientID string) error

	// SetPrimary reassigns the channel to clientID and rewrites every
	// known client's configuration file: the new primary gets the
	// low-latency transport, everyone else the fallback address. Per-file
	// outcomes are reported individually.
	SetPrimary(ctx context.Context, clientID string) ([]ConfigRewrite, error)

	// State returns a copy of the current connection state.
	State(ctx context.Context) (*domain.ClientConnectionState, error)
}
