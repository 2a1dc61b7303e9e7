package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/daemonclient"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/daemon"
)

const (
	daemonStartTimeout = 15 * time.Second
	daemonStopTimeout  = 15 * time.Second
	daemonPollInterval = 200 * time.Millisecond
	statusTimeout      = 3 * time.Second
)

var daemonForeground bool

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the background daemon",
	Long:  `Start, stop and inspect the indexing daemon.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	Long: `Start the indexing daemon.

By default the daemon detaches and logs to the state directory. With
--foreground it runs in this terminal until interrupted.`,
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runDaemonStatus,
}

func init() {
	daemonStartCmd.Flags().BoolVar(&daemonForeground, "foreground", false, "run in the foreground")
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemonStart(cmd *cobra.Command, _ []string) error {
	pid, err := daemon.RunningPID(stateDir)
	if err != nil {
		return fmt.Errorf("checking daemon state: %w", err)
	}
	if pid != 0 {
		cmd.Printf("Daemon already running (pid %d).\n", pid)
		return nil
	}

	if daemonForeground || os.Getenv(daemon.BackgroundEnv) != "" {
		return runDaemonForeground(cmd)
	}

	childPID, exited, err := daemon.SpawnBackground(stateDir, []string{"daemon", "start", "--foreground"})
	if err != nil {
		return fmt.Errorf("starting daemon: %w", err)
	}

	// "Started" means "answering": wait for the daemon to record its
	// address and respond on it, not just for the process to exist.
	addr, err := waitDaemonReady(cmd, exited)
	if err != nil {
		return fmt.Errorf("%w (see %s)", err, daemon.LogPath(stateDir))
	}

	cmd.Printf("Daemon started (pid %d), listening on http://%s\n", childPID, addr)
	return nil
}

// waitDaemonReady polls for the spawned daemon's address file and a
// passing health check, failing fast when the child exits.
func waitDaemonReady(cmd *cobra.Command, exited <-chan struct{}) (string, error) {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	deadline := time.After(daemonStartTimeout)
	tick := time.NewTicker(daemonPollInterval)
	defer tick.Stop()

	for {
		select {
		case <-exited:
			return "", errors.New("daemon exited during startup")
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline:
			return "", fmt.Errorf("daemon not answering after %s", daemonStartTimeout)
		case <-tick.C:
			addr, err := daemon.ReadAddrFile(stateDir)
			if err != nil || addr == "" {
				continue
			}
			client := daemonclient.New("http://" + addr)
			if client.Healthy(ctx) {
				return addr, nil
			}
		}
	}
}

func runDaemonForeground(cmd *cobra.Command) error {
	rt, err := daemon.NewRuntime(stateDir, version)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Daemon starting on http://%s (state in %s)\n", rt.Addr(), stateDir)
	return rt.Run(ctx)
}

func runDaemonStop(cmd *cobra.Command, _ []string) error {
	pid, err := daemon.RunningPID(stateDir)
	if err != nil {
		return fmt.Errorf("checking daemon state: %w", err)
	}
	if pid == 0 {
		cmd.Println("Daemon is not running.")
		return nil
	}

	if err := daemon.StopProcess(pid); err != nil {
		return fmt.Errorf("stopping daemon: %w", err)
	}

	deadline := time.Now().Add(daemonStopTimeout)
	for time.Now().Before(deadline) {
		if !daemon.IsProcessRunning(pid) {
			cmd.Printf("Daemon stopped (pid %d).\n", pid)
			return nil
		}
		time.Sleep(daemonPollInterval)
	}
	return fmt.Errorf("daemon (pid %d) did not stop within %s", pid, daemonStopTimeout)
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	pid, err := daemon.RunningPID(stateDir)
	if err != nil {
		return fmt.Errorf("checking daemon state: %w", err)
	}
	if pid == 0 {
		cmd.Println("Daemon: not running")
		return nil
	}
	cmd.Printf("Daemon: running (pid %d)\n", pid)

	addr, err := daemon.ReadAddrFile(stateDir)
	if err != nil || addr == "" {
		cmd.Println("Address: unknown")
		return nil
	}
	cmd.Printf("Address: http://%s\n", addr)

	// Status must never start the daemon, so it gets its own client
	// without a starter.
	client := daemonclient.New("http://" + addr)
	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	folders, err := client.ListFolders(ctx)
	if err != nil {
		cmd.Printf("Health: unreachable (%v)\n", err)
		return nil
	}
	cmd.Println("Health: ok")
	cmd.Printf("Folders: %s\n", summarizeFolderStates(folders))

	state, err := client.State(ctx)
	if err != nil {
		return nil
	}
	if state.PrimaryID == "" {
		cmd.Println("Low-latency channel: unclaimed")
	} else {
		cmd.Printf("Low-latency channel: held by %s\n", state.PrimaryID)
	}
	if state.LastConflict != nil {
		cmd.Printf("Denied claims: %d, last %s at %s\n",
			len(state.Denials),
			state.LastConflict.RequesterID,
			state.LastConflict.At.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// summarizeFolderStates renders "3 (2 active, 1 indexing)".
func summarizeFolderStates(folders []domain.MonitoredFolder) string {
	if len(folders) == 0 {
		return "0"
	}

	counts := make(map[domain.FolderState]int)
	for i := range folders {
		counts[folders[i].State]++
	}

	states := make([]string, 0, len(counts))
	for state := range counts {
		states = append(states, string(state))
	}
	sort.Strings(states)

	parts := make([]string, 0, len(states))
	for _, state := range states {
		parts = append(parts, fmt.Sprintf("%d %s", counts[domain.FolderState(state)], state))
	}
	return fmt.Sprintf("%d (%s)", len(folders), strings.Join(parts, ", "))
}
