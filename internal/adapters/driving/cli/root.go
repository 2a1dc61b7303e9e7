// Package cli wires the cobra command tree. Data commands talk to the
// daemon through the resilient client, which starts the daemon on
// demand; configuration commands operate on the local store directly.
package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/ai"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/config/file"
	"github.com/okets/folder-mcp-sub010/internal/adapters/driven/daemonclient"
	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driving"
	"github.com/okets/folder-mcp-sub010/internal/core/services"
	"github.com/okets/folder-mcp-sub010/internal/daemon"
)

// StateDirEnv overrides the daemon state directory, mainly for tests
// and packaging.
const StateDirEnv = "FOLDER_MCP_HOME"

// version is injected by Execute.
var version = "dev"

// stateDir is where the daemon keeps its PID file, log, configuration
// and store.
var stateDir string

// Services are package level so commands stay thin and tests can swap
// in fakes.
var (
	settingsService driving.SettingsService
	searchService   driving.SearchService
	folderService   driving.FolderService
	documentService driving.DocumentReader
	arbiterService  driving.ConnectionArbiter
	actionService   driving.ActionService
)

var rootCmd = &cobra.Command{
	Use:   "folder-mcp",
	Short: "Index local folders and search them from AI agents",
	Long: `folder-mcp keeps local folders indexed in a background daemon and
serves semantic search to AI agents over the Model Context Protocol.

The daemon owns the index. This CLI and any MCP clients are frontends
talking to it; data commands start the daemon on demand, so there is no
setup order to get wrong. State lives under ~/.folder-mcp (override
with FOLDER_MCP_HOME).`,
	SilenceUsage: true,
}

// Execute wires the services and runs the command tree. v is the build
// version stamped into the binary.
func Execute(v string) error {
	version = v
	if err := initServices(); err != nil {
		return err
	}
	return rootCmd.Execute()
}

// initServices builds the default service wiring. Anything already set,
// by a test or an embedding caller, is left alone.
func initServices() error {
	if stateDir == "" {
		if env := os.Getenv(StateDirEnv); env != "" {
			stateDir = env
		} else {
			dir, err := daemon.DefaultStateDir()
			if err != nil {
				return err
			}
			stateDir = dir
		}
	}

	if settingsService == nil {
		configStore, err := file.NewConfigStore(stateDir)
		if err != nil {
			return fmt.Errorf("opening config store: %w", err)
		}
		settingsService = services.NewSettingsService(configStore, ai.NewConfigValidator())
	}

	if searchService == nil {
		client := daemonclient.New(daemonBaseURL(),
			daemonclient.WithStarter(daemonclient.StarterFunc(autoStartDaemon)))
		searchService = client
		folderService = client
		documentService = client
		arbiterService = client
	}

	if actionService == nil {
		actionService = services.NewActionService(documentService, folderService)
	}
	return nil
}

// daemonBaseURL resolves where the daemon listens: the address it
// recorded when it bound, else the configured one.
func daemonBaseURL() string {
	if addr, err := daemon.ReadAddrFile(stateDir); err == nil && addr != "" {
		return "http://" + addr
	}

	host := "127.0.0.1"
	port := domain.DefaultDaemonPort
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			host = settings.Daemon.Host
			if settings.Daemon.Port != 0 {
				port = settings.Daemon.Port
			}
		}
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// autoStartDaemon brings the daemon up for a data command that found it
// down. The caller health-polls, so spawning is all that happens here.
func autoStartDaemon(_ context.Context) error {
	if pid, err := daemon.RunningPID(stateDir); err == nil && pid != 0 {
		return nil
	}
	_, _, err := daemon.SpawnBackground(stateDir, []string{"daemon", "start", "--foreground"})
	return err
}
