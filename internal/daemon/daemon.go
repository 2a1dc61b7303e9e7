// Package daemon manages the background daemon process: PID file
// bookkeeping, detached spawning and stop signalling. The daemon's
// state lives in the same directory as its configuration, so one
// directory carries everything a reinstall must preserve.
//
// The PID file holds a single line with the process ID as a decimal
// integer. Writes are serialized with a file lock so two concurrent
// starts cannot both win.
package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	pidFileName  = "daemon.pid"
	addrFileName = "daemon.addr"
	logFileName  = "daemon.log"

	// BackgroundEnv marks a spawned daemon process so it can tell it
	// was started detached rather than in the foreground.
	BackgroundEnv = "FOLDER_MCP_DAEMON"
)

// DefaultStateDir returns the directory holding the daemon's PID file,
// log file, configuration and store, ~/.folder-mcp by default.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".folder-mcp"), nil
}

// LogPath returns the daemon log file path under stateDir.
func LogPath(stateDir string) string {
	return filepath.Join(stateDir, logFileName)
}

// WritePIDFile records the current process ID under stateDir. A file
// lock serializes concurrent starts; the lock is held for the life of
// the process and released by the OS on exit.
func WritePIDFile(stateDir string) error {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	pidPath := filepath.Join(stateDir, pidFileName)
	lockPath := pidPath + ".lock"

	lockFh, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("creating lock file: %w", err)
	}

	if err := lockFile(lockFh); err != nil {
		lockFh.Close()
		return fmt.Errorf("another daemon is starting: %w", err)
	}

	// Write atomically so a reader never sees a partial PID.
	content := fmt.Sprintf("%d\n", os.Getpid())
	tmpPath := pidPath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
		lockFh.Close()
		return fmt.Errorf("writing PID file: %w", err)
	}
	if err := os.Rename(tmpPath, pidPath); err != nil {
		os.Remove(tmpPath)
		lockFh.Close()
		return fmt.Errorf("replacing PID file: %w", err)
	}

	// The lock file handle stays open on purpose; closing it would
	// release the lock while the daemon is still running.
	return nil
}

// ReadPIDFile returns the recorded PID, or 0 when no PID file exists.
// It does not check whether the process is alive; use RunningPID for
// that.
func ReadPIDFile(stateDir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(stateDir, pidFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file: %w", err)
	}
	return pid, nil
}

// RemovePIDFile removes the PID file and its lock file.
func RemovePIDFile(stateDir string) error {
	pidPath := filepath.Join(stateDir, pidFileName)
	_ = os.Remove(pidPath + ".lock")
	if err := os.Remove(pidPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing PID file: %w", err)
	}
	return nil
}

// WriteAddrFile records the address the daemon is listening on, so
// clients can find it when the configured port is 0 (pick a free one).
func WriteAddrFile(stateDir, addr string) error {
	addrPath := filepath.Join(stateDir, addrFileName)
	tmpPath := addrPath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(addr+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing address file: %w", err)
	}
	if err := os.Rename(tmpPath, addrPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing address file: %w", err)
	}
	return nil
}

// ReadAddrFile returns the recorded listen address, or "" when no
// daemon has written one.
func ReadAddrFile(stateDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(stateDir, addrFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading address file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// RemoveAddrFile removes the address file.
func RemoveAddrFile(stateDir string) error {
	if err := os.Remove(filepath.Join(stateDir, addrFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing address file: %w", err)
	}
	return nil
}

// RunningPID returns the PID of the live daemon, or 0 when none runs.
// A PID file left behind by a dead process is cleaned up on the way.
func RunningPID(stateDir string) (int, error) {
	pid, err := ReadPIDFile(stateDir)
	if err != nil {
		return 0, err
	}
	if pid == 0 {
		return 0, nil
	}

	if !IsProcessRunning(pid) {
		_ = RemovePIDFile(stateDir)
		return 0, nil
	}
	return pid, nil
}

// SpawnBackground re-executes the current binary detached, with stdout
// and stderr appended to the daemon log. It returns the child PID and a
// channel closed when the child exits, so a caller can notice a child
// that died during startup instead of waiting out a health timeout.
func SpawnBackground(stateDir string, args []string) (int, <-chan struct{}, error) {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return 0, nil, fmt.Errorf("creating state directory: %w", err)
	}

	executable, err := os.Executable()
	if err != nil {
		return 0, nil, fmt.Errorf("locating executable: %w", err)
	}

	logFile, err := os.OpenFile(LogPath(stateDir), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, nil, fmt.Errorf("opening daemon log: %w", err)
	}

	liveness, err := newLivenessCheck()
	if err != nil {
		logFile.Close()
		return 0, nil, err
	}

	cmd := exec.Command(executable, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
	cmd.Env = append(os.Environ(), BackgroundEnv+"=1")
	cmd.SysProcAttr = sysProcAttr()
	liveness.configureCmd(cmd)

	if err := cmd.Start(); err != nil {
		logFile.Close()
		liveness.cleanup()
		return 0, nil, fmt.Errorf("starting daemon process: %w", err)
	}

	logFile.Close()
	return cmd.Process.Pid, liveness.start(cmd.Process.Pid), nil
}
