// Package lock provides the cross-process run lock that keeps two indexing
// runs from working on the same database at once.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the run lock.
var ErrLocked = errors.New("another indexing run holds the lock")

// RetryDelay is the polling interval of Acquire.
const RetryDelay = 250 * time.Millisecond

// RunLock is an advisory lock file shared by relterms processes.
type RunLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New creates a run lock backed by the file at path.
// The file is created on first acquisition.
func New(path string) *RunLock {
	return &RunLock{
		path:  path,
		flock: flock.New(path),
	}
}

// TryAcquire takes the lock without blocking. It returns ErrLocked when
// another process holds it.
func (l *RunLock) TryAcquire() error {
	if err := l.ensureDir(); err != nil {
		return err
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
	}
	if !acquired {
		return fmt.Errorf("%w (%s)", ErrLocked, l.path)
	}

	l.locked = true
	return nil
}

// Acquire waits for the lock until ctx is done.
func (l *RunLock) Acquire(ctx context.Context) error {
	if err := l.ensureDir(); err != nil {
		return err
	}

	acquired, err := l.flock.TryLockContext(ctx, RetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
	}
	if !acquired {
		return fmt.Errorf("%w (%s)", ErrLocked, l.path)
	}

	l.locked = true
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *RunLock) Release() error {
	if !l.locked {
		return nil
	}

	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.path
}

// Held reports whether this RunLock currently holds the lock.
func (l *RunLock) Held() bool {
	return l.locked
}

func (l *RunLock) ensureDir() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	return nil
}
