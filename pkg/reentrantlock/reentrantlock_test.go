package reentrantlock_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/gobytes/pkg/fs"
	"github.com/calvinalkan/gobytes/pkg/reentrantlock"
)

func TestReentrantLockSameOwnerNests(t *testing.T) {
	t.Parallel()

	reg := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))
	path := filepath.Join(t.TempDir(), "file.lock")

	owner := "writer-1"

	require.NoError(t, reg.Lock(path, owner))
	require.NoError(t, reg.Lock(path, owner))

	held, depth := reg.HeldBy(path, owner)
	require.True(t, held)
	require.Equal(t, 2, depth)

	require.NoError(t, reg.Unlock(path, owner))
	held, depth = reg.HeldBy(path, owner)
	require.True(t, held)
	require.Equal(t, 1, depth)

	require.NoError(t, reg.Unlock(path, owner))
	held, _ = reg.HeldBy(path, owner)
	require.False(t, held)
}

func TestReentrantLockDifferentOwnerBlocks(t *testing.T) {
	t.Parallel()

	reg := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))
	path := filepath.Join(t.TempDir(), "file.lock")

	require.NoError(t, reg.Lock(path, "owner-a"))

	err := reg.TryLock(path, "owner-b")
	require.ErrorIs(t, err, fs.ErrWouldBlock)

	released := make(chan struct{})
	go func() {
		require.NoError(t, reg.Lock(path, "owner-b"))
		close(released)
	}()

	select {
	case <-released:
		t.Fatal("owner-b should not acquire lock while owner-a holds it")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, reg.Unlock(path, "owner-a"))

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("owner-b never acquired lock after owner-a released")
	}

	require.NoError(t, reg.Unlock(path, "owner-b"))
}

func TestUnlockWithoutHoldingFails(t *testing.T) {
	t.Parallel()

	reg := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))
	path := filepath.Join(t.TempDir(), "file.lock")

	err := reg.Unlock(path, "nobody")
	require.ErrorIs(t, err, reentrantlock.ErrNotHeld)
}
