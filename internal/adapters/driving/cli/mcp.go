package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okets/folder-mcp-sub010/internal/adapters/driving/mcp"
)

// releaseTimeout bounds returning the channel on shutdown.
const releaseTimeout = 2 * time.Second

var mcpClientID string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio for one agent",
	Long: `Serve the Model Context Protocol over stdio, proxying to the daemon.

Only one agent at a time gets this low-latency channel. When another
client already holds it, a denial is printed as JSON carrying the
daemon's HTTP address, and the command exits non-zero; the agent should
connect to that address instead.

Agent configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "folder-mcp": {
        "command": "/path/to/folder-mcp",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpClientID, "client-id", "", "claimant identity (default: derived from the invoking agent's pid)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if arbiterService == nil {
		return errors.New("connection service not configured")
	}
	if searchService == nil || folderService == nil || documentService == nil {
		return errors.New("daemon services not configured")
	}

	clientID := mcpClientID
	if clientID == "" {
		// The parent process is the agent; its pid keeps reconnects of
		// the same agent claiming as the same client.
		clientID = fmt.Sprintf("stdio-%d", os.Getppid())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	decision, err := arbiterService.RequestLowLatencyChannel(ctx, clientID)
	if err != nil {
		return fmt.Errorf("claiming low-latency channel: %w", err)
	}

	if !decision.Granted {
		// The denial goes to stdout where the invoking agent reads it.
		payload, merr := json.Marshal(decision)
		if merr != nil {
			return fmt.Errorf("encoding denial: %w", merr)
		}
		cmd.Println(string(payload))
		return fmt.Errorf("low-latency channel held by %s; connect to %s instead",
			decision.PrimaryID, decision.FallbackAddress)
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := arbiterService.Release(releaseCtx, clientID); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "releasing low-latency channel: %v\n", err)
		}
	}()

	server, err := mcp.NewServer(&mcp.Ports{
		Search:    searchService,
		Folders:   folderService,
		Documents: documentService,
	})
	if err != nil {
		return err
	}

	return server.Run(ctx)
}
