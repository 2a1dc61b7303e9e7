package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/daemonclient"
	"github.com/okets/folder-mcp-sub010/internal/daemon"
)

const versionProbeTimeout = 2 * time.Second

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long: `Print the CLI version. When the daemon is running its version is
reported too; the two can differ right after an upgrade until the
daemon is restarted.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("folder-mcp version %s\n", version)

		// Report the daemon's version only when one is already running.
		// A version check must never boot the daemon.
		pid, err := daemon.RunningPID(stateDir)
		if err != nil || pid == 0 {
			return
		}
		addr, err := daemon.ReadAddrFile(stateDir)
		if err != nil || addr == "" {
			return
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), versionProbeTimeout)
		defer cancel()
		health, err := daemonclient.New("http://" + addr).Health(ctx)
		if err != nil {
			return
		}
		cmd.Printf("daemon version %s (pid %d)\n", health.Version, pid)
		if health.Version != version {
			cmd.Println("Daemon predates this CLI; restart it to finish the upgrade.")
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
