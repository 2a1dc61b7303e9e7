package driven

import (
	"context"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// AgentConfigWriter rewrites an agent's local MCP configuration file to
// point at the given transport. Location and schema are agent-specific;
// the arbiter only needs this write contract.
//
// Each client's file is self-contained, so writes are independent: a
// failure for one client must not prevent or roll back writes for others.
type AgentConfigWriter interface {
	// WriteConfig updates the named client's configuration to use the
	// given transport mode and address.
	WriteConfig(ctx context.Context, clientID string, mode domain.TransportMode, address string) error
}
