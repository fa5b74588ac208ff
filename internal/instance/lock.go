// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "projpal.lock"
	pidFileName  = "projpal.pid"
)

// ErrAlreadyRunning is returned when another TUI holds the lock.
var ErrAlreadyRunning = errors.New("another projpal instance is already running")

// Lock acquires an exclusive file lock for single-instance enforcement and
// records the holder's pid. The caller must defer Release.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		if pid, ok := HolderPID(dataDir); ok {
			return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
		}
		return nil, ErrAlreadyRunning
	}

	pidPath := filepath.Join(dataDir, pidFileName)
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("writing pid file: %w", err)
	}
	return fl, nil
}

// HolderPID returns the pid recorded by the last lock holder.
func HolderPID(dataDir string) (int, bool) {
	data, err := os.ReadFile(filepath.Join(dataDir, pidFileName))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// Release removes the pid file and releases the file lock.
func Release(dataDir string, fl *flock.Flock) {
	_ = os.Remove(filepath.Join(dataDir, pidFileName))
	if fl != nil {
		_ = fl.Unlock()
	}
}

// RemoveStale deletes lock and pid files left behind by an instance that
// did not exit cleanly. It refuses while a live instance holds the lock and
// reports whether anything was removed.
func RemoveStale(dataDir string) (bool, error) {
	lockPath := filepath.Join(dataDir, lockFileName)
	pidPath := filepath.Join(dataDir, pidFileName)

	_, lockErr := os.Stat(lockPath)
	_, pidErr := os.Stat(pidPath)
	if os.IsNotExist(lockErr) && os.IsNotExist(pidErr) {
		return false, nil
	}

	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("checking lock: %w", err)
	}
	if !locked {
		return false, ErrAlreadyRunning
	}
	defer func() { _ = fl.Unlock() }()

	for _, p := range []string{pidPath, lockPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return false, fmt.Errorf("removing %s: %w", filepath.Base(p), err)
		}
	}
	return true, nil
}
