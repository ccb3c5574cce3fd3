package mmapfile_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/gobytes/pkg/bioerrors"
	"github.com/calvinalkan/gobytes/pkg/fs"
	"github.com/calvinalkan/gobytes/pkg/mmapfile"
	"github.com/calvinalkan/gobytes/pkg/reentrantlock"
)

func TestAcquireChunkGrowsAndZeroFills(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.bin")
	locks := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))

	mf, err := mmapfile.Open(fs.NewReal(), locks, path, mmapfile.Options{ChunkSize: 4096})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mf.Close() })

	store, err := mf.AcquireChunkFor(0, "writer")
	require.NoError(t, err)
	require.GreaterOrEqual(t, store.Capacity(), int64(4096))

	b, err := store.ReadByte(100)
	require.NoError(t, err)
	require.Equal(t, byte(0), b)

	require.NoError(t, store.WriteUint32(0, 0xCAFEBABE))
	require.Equal(t, int64(1), mf.ChunkCount())
}

func TestReadOnlyFileRejectsWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.bin")
	locks := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))

	writable, err := mmapfile.Open(fs.NewReal(), locks, path, mmapfile.Options{ChunkSize: 4096})
	require.NoError(t, err)

	seed, err := writable.AcquireChunkFor(0, "seed")
	require.NoError(t, err)
	require.NoError(t, seed.WriteUint32(0, 0xCAFEBABE))
	require.NoError(t, writable.Close())

	readOnly, err := mmapfile.Open(fs.NewReal(), locks, path, mmapfile.Options{ChunkSize: 4096, ReadOnly: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = readOnly.Close() })

	store, err := readOnly.AcquireChunkFor(0, "reader")
	require.NoError(t, err)

	got, err := store.ReadUint32(0)
	require.NoError(t, err)
	require.Equal(t, uint32(0xCAFEBABE), got)

	err = store.WriteUint32(0, 0)
	require.ErrorIs(t, err, bioerrors.IllegalState)

	err = store.WriteByte(0, 0)
	require.ErrorIs(t, err, bioerrors.IllegalState)
}

func TestAcquireChunkSameIndexShared(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.bin")
	locks := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))

	mf, err := mmapfile.Open(fs.NewReal(), locks, path, mmapfile.Options{ChunkSize: 4096})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mf.Close() })

	a, err := mf.AcquireChunkFor(10, "a")
	require.NoError(t, err)

	b, err := mf.AcquireChunkFor(20, "b")
	require.NoError(t, err)

	require.NoError(t, a.WriteUint32(10, 42))
	got, err := b.ReadUint32(10)
	require.NoError(t, err)
	require.Equal(t, uint32(42), got)

	// The File itself holds a reservation on every chunk it maps (released
	// only in Close), in addition to each caller's own reservation: mf, a,
	// and b all hold a stake in this chunk.
	require.Equal(t, 3, a.Refcount().Refcount())
}

func TestLockExcludesOtherOwner(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.bin")
	locks := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))

	mf, err := mmapfile.Open(fs.NewReal(), locks, path, mmapfile.Options{ChunkSize: 4096})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mf.Close() })

	require.NoError(t, mf.Lock("owner-a", 0, 10, false))

	err = mf.TryLock("owner-b", 0, 10, false)
	require.ErrorIs(t, err, fs.ErrWouldBlock)

	require.NoError(t, mf.Unlock("owner-a"))
}
