package lock

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "relterms.lock")
	l := New(path)

	require.NoError(t, l.TryAcquire())
	assert.True(t, l.Held())

	_, err := os.Stat(l.Path())
	assert.NoError(t, err, "lock file should exist")

	require.NoError(t, l.Release())
	assert.False(t, l.Held())
}

func TestRunLock_ReleaseWithoutAcquire(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "relterms.lock"))

	assert.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}

func TestRunLock_SecondHolderFailsFast(t *testing.T) {
	// Given: one holder of the lock
	path := filepath.Join(t.TempDir(), "relterms.lock")
	first := New(path)
	require.NoError(t, first.TryAcquire())
	defer first.Release()

	// When: another handle tries to take it
	second := New(path)
	err := second.TryAcquire()

	// Then: it fails with ErrLocked
	assert.ErrorIs(t, err, ErrLocked)
	assert.False(t, second.Held())
}

func TestRunLock_AcquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relterms.lock")
	first := New(path)
	require.NoError(t, first.TryAcquire())
	require.NoError(t, first.Release())

	second := New(path)
	require.NoError(t, second.TryAcquire())
	assert.NoError(t, second.Release())
}

func TestRunLock_AcquireWaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relterms.lock")
	first := New(path)
	require.NoError(t, first.TryAcquire())

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = first.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	second := New(path)
	require.NoError(t, second.Acquire(ctx))
	assert.NoError(t, second.Release())
}

func TestRunLock_AcquireTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relterms.lock")
	first := New(path)
	require.NoError(t, first.TryAcquire())
	defer first.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := New(path).Acquire(ctx)

	assert.Error(t, err)
}
