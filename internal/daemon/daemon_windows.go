//go:build windows

package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
	"unsafe"
)

var (
	kernel32                = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess         = kernel32.NewProc("OpenProcess")
	procCloseHandle         = kernel32.NewProc("CloseHandle")
	procLockFileEx          = kernel32.NewProc("LockFileEx")
	processQueryLimitedInfo = uint32(0x1000)
)

const (
	lockfileExclusiveLock   = 0x00000002
	lockfileFailImmediately = 0x00000001

	stopFilePrefix   = "stop-"
	stopPollInterval = 500 * time.Millisecond
)

// IsProcessRunning reports whether a process with the given PID exists.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	handle, _, _ := procOpenProcess.Call(
		uintptr(processQueryLimitedInfo),
		uintptr(0),
		uintptr(pid),
	)
	if handle == 0 {
		return false
	}
	procCloseHandle.Call(handle)
	return true
}

// lockFile takes a non-blocking exclusive lock on f via LockFileEx.
func lockFile(f *os.File) error {
	var overlapped syscall.Overlapped

	ret, _, err := procLockFileEx.Call(
		f.Fd(),
		uintptr(lockfileExclusiveLock|lockfileFailImmediately),
		0,
		1,
		0,
		uintptr(unsafe.Pointer(&overlapped)),
	)
	if ret == 0 {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	return nil
}

// sysProcAttr needs no special attributes on Windows.
func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

// livenessCheck polls on Windows; ExtraFiles is not supported and
// Windows has no zombies, so IsProcessRunning is reliable.
type livenessCheck struct{}

func newLivenessCheck() (*livenessCheck, error) {
	return &livenessCheck{}, nil
}

func (l *livenessCheck) configureCmd(_ *exec.Cmd) {}

func (l *livenessCheck) start(pid int) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		for {
			time.Sleep(250 * time.Millisecond)
			if !IsProcessRunning(pid) {
				close(ch)
				return
			}
		}
	}()
	return ch
}

func (l *livenessCheck) cleanup() {}

// stopFilePath returns the sentinel stop file path for the given PID.
func stopFilePath(pid int) (string, error) {
	stateDir, err := DefaultStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, fmt.Sprintf("%s%d", stopFilePrefix, pid)), nil
}

// StopProcess writes a sentinel stop file the daemon polls for.
// os.Interrupt cannot cross consoles on Windows.
func StopProcess(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID: %d", pid)
	}
	if !IsProcessRunning(pid) {
		return fmt.Errorf("process %d is not running", pid)
	}

	path, err := stopFilePath(pid)
	if err != nil {
		return fmt.Errorf("locating stop file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n", pid)), 0o600); err != nil {
		return fmt.Errorf("writing stop file: %w", err)
	}
	return nil
}

// StopChannel polls for this process's stop file and closes the
// returned channel when it appears. Stale files from previous runs are
// cleared on the first poll.
func StopChannel() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		path, err := stopFilePath(os.Getpid())
		if err != nil {
			return
		}
		_ = os.Remove(path)
		for {
			time.Sleep(stopPollInterval)
			if _, err := os.Stat(path); err == nil {
				_ = os.Remove(path)
				close(ch)
				return
			}
		}
	}()
	return ch
}
