//go:build !windows

package daemon

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// IsProcessRunning reports whether a process with the given PID exists.
// Signal 0 probes existence without delivering anything.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// lockFile takes a non-blocking exclusive flock on f. The OS releases
// the lock when the holding process exits.
func lockFile(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	return nil
}

// sysProcAttr detaches the child into its own process group so a
// Ctrl-C in the parent's terminal does not take the daemon down.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// livenessCheck detects child exit through an inherited pipe: when the
// child dies the kernel closes its end and the parent's read unblocks
// with EOF. This works even for zombies, which kill(0) reports as alive.
type livenessCheck struct {
	pr, pw *os.File
}

func newLivenessCheck() (*livenessCheck, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating liveness pipe: %w", err)
	}
	return &livenessCheck{pr: pr, pw: pw}, nil
}

func (l *livenessCheck) configureCmd(cmd *exec.Cmd) {
	cmd.ExtraFiles = []*os.File{l.pw}
}

// start closes the parent's write end and returns a channel closed
// when the child exits.
func (l *livenessCheck) start(_ int) <-chan struct{} {
	l.pw.Close()
	ch := make(chan struct{})
	go func() {
		buf := make([]byte, 1)
		if _, err := l.pr.Read(buf); err != nil && err != io.EOF {
			// Any unblocking counts; the error itself is irrelevant.
			_ = err
		}
		l.pr.Close()
		close(ch)
	}()
	return ch
}

func (l *livenessCheck) cleanup() {
	l.pr.Close()
	l.pw.Close()
}

// StopProcess asks the daemon to shut down by sending SIGINT. It does
// not wait; poll IsProcessRunning to confirm the exit.
func StopProcess(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID: %d", pid)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process: %w", err)
	}
	if err := process.Signal(os.Interrupt); err != nil {
		return fmt.Errorf("signalling process: %w", err)
	}
	return nil
}

// StopChannel never fires on Unix; shutdown arrives through os/signal.
func StopChannel() <-chan struct{} {
	return make(chan struct{})
}
