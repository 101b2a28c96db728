package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrNotRunning is returned when no live daemon owns the PID file
var ErrNotRunning = errors.New("daemon is not running")

// PIDFile keeps a single simulation daemon per PID file
type PIDFile struct {
	path string
}

// New creates a new PIDFile manager
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current pid. Fails if a live process already owns the
// file; stale or garbled files are replaced.
func (p *PIDFile) Acquire() error {
	pid, err := p.readPID()
	switch {
	case err == nil && isProcessRunning(pid):
		return fmt.Errorf("daemon is already running (PID %d)", pid)
	case err != nil && !errors.Is(err, os.ErrNotExist) && !errors.Is(err, strconv.ErrSyntax):
		return fmt.Errorf("failed to read existing PID file: %w", err)
	}

	data := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(p.path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Running returns the pid of the live daemon, or ErrNotRunning
func (p *PIDFile) Running() (int, error) {
	pid, err := p.readPID()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, strconv.ErrSyntax) {
			return 0, ErrNotRunning
		}
		return 0, err
	}
	if !isProcessRunning(pid) {
		return 0, ErrNotRunning
	}
	return pid, nil
}

// Stop sends SIGTERM to the live daemon
func (p *PIDFile) Stop() (int, error) {
	pid, err := p.Running()
	if err != nil {
		return 0, err
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("failed to find daemon process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return 0, fmt.Errorf("failed to signal daemon: %w", err)
	}
	return pid, nil
}

// Release removes the PID file
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

func (p *PIDFile) readPID() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// isProcessRunning sends signal 0 to the pid
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM: exists but owned by someone else
	return errors.Is(err, syscall.EPERM)
}
