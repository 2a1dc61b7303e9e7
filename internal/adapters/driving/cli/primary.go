package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// maxShownDenials caps how much of the denial log the summary prints.
const maxShownDenials = 5

var primaryCmd = &cobra.Command{
	Use:   "primary [client-id]",
	Short: "Show or reassign the low-latency channel",
	Long: `Only one MCP client at a time gets the low-latency stdio channel;
everyone else is redirected to the daemon's HTTP address.

Without arguments this shows who holds the channel. With a client id it
reassigns the channel to that client and rewrites every registered
agent's configuration file to match.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrimary,
}

func init() {
	rootCmd.AddCommand(primaryCmd)
}

func runPrimary(cmd *cobra.Command, args []string) error {
	if arbiterService == nil {
		return errors.New("connection service not configured")
	}

	if len(args) == 0 {
		return showPrimary(cmd)
	}
	return setPrimary(cmd, args[0])
}

func showPrimary(cmd *cobra.Command) error {
	state, err := arbiterService.State(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read connection state: %w", err)
	}

	if state.PrimaryID == "" {
		cmd.Println("Low-latency channel: unclaimed")
	} else {
		cmd.Printf("Low-latency channel: held by %s\n", state.PrimaryID)
	}

	if len(state.FallbackClients) > 0 {
		ids := make([]string, 0, len(state.FallbackClients))
		for id := range state.FallbackClients {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		cmd.Println("Fallback clients:")
		for _, id := range ids {
			cmd.Printf("  %s -> %s\n", id, state.FallbackClients[id])
		}
	}

	if len(state.Denials) > 0 {
		cmd.Printf("Denied claims (%d total):\n", len(state.Denials))
		start := len(state.Denials) - maxShownDenials
		if start < 0 {
			start = 0
		}
		for _, rec := range state.Denials[start:] {
			cmd.Printf("  %s at %s\n", rec.RequesterID, rec.At.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

func setPrimary(cmd *cobra.Command, clientID string) error {
	rewrites, err := arbiterService.SetPrimary(context.Background(), clientID)
	if err != nil {
		return fmt.Errorf("failed to set primary: %w", err)
	}

	cmd.Printf("Primary client is now %s.\n", clientID)

	if len(rewrites) == 0 {
		cmd.Println("No agent config files are registered; clients pick up the change on their next claim.")
		return nil
	}

	// Rewrites are independent: report each outcome, fail none.
	for _, rw := range rewrites {
		if rw.Err != nil {
			cmd.Printf("  %s: config rewrite failed: %v\n", rw.ClientID, rw.Err)
			continue
		}
		cmd.Printf("  %s: configured for %s\n", rw.ClientID, rw.Mode)
	}
	return nil
}
