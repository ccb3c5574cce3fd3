package bytesstore_test

import (
	"testing"

	"github.com/calvinalkan/gobytes/pkg/bioerrors"
	"github.com/calvinalkan/gobytes/pkg/bytesstore"
	"github.com/stretchr/testify/require"
)

func TestHeapStoreReadWriteRoundTrip(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 64)
	s := bytesstore.NewHeap(buf, "owner")

	require.NoError(t, s.WriteUint64(0, 0x0102030405060708))

	got, err := s.ReadUint64(0)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), got)

	require.NoError(t, s.WriteFloat64(8, 3.1415926535))

	gotF, err := s.ReadFloat64(8)
	require.NoError(t, err)
	require.InDelta(t, 3.1415926535, gotF, 1e-12)
}

func TestNativeStoreAllocAndCAS(t *testing.T) {
	t.Parallel()

	s, err := bytesstore.AllocNative(4096, "owner")
	require.NoError(t, err)

	require.NoError(t, s.WriteUint32(0, 10))

	ok, err := s.CompareAndSwapUint32(0, 10, 20)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.CompareAndSwapUint32(0, 10, 30)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := s.ReadUint32(0)
	require.NoError(t, err)
	require.Equal(t, uint32(20), got)
}

func TestOutOfBoundsFails(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 4)
	s := bytesstore.NewHeap(buf, "owner")

	err := s.WriteByte(4, 1)
	require.ErrorIs(t, err, bioerrors.BufferOverflow)

	_, err = s.ReadByte(4)
	require.ErrorIs(t, err, bioerrors.BufferUnderflow)
}

func TestNoopSentinel(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(0), bytesstore.Noop.Capacity())
	require.Equal(t, -1, bytesstore.Noop.PeekUnsignedByte(0))

	_, err := bytesstore.Noop.ReadByte(0)
	require.Error(t, err)
}

func TestReleasedSentinelRejectsEverything(t *testing.T) {
	t.Parallel()

	_, err := bytesstore.Released.ReadByte(0)
	require.ErrorIs(t, err, bioerrors.ClosedState)

	err = bytesstore.Released.WriteByte(0, 1)
	require.ErrorIs(t, err, bioerrors.ClosedState)
}

func TestStoreClosedAfterReleaseLast(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)
	s := bytesstore.NewHeap(buf, "owner")

	require.NoError(t, s.Refcount().ReleaseLast("owner"))

	err := s.WriteByte(0, 1)
	require.ErrorIs(t, err, bioerrors.ClosedState)
}

func TestCompareBytes(t *testing.T) {
	t.Parallel()

	a := bytesstore.NewHeap([]byte{1, 2, 3, 4}, "a")
	b := bytesstore.NewHeap([]byte{1, 2, 3, 9}, "b")

	eq, err := a.CompareBytes(b, 3)
	require.NoError(t, err)
	require.True(t, eq)

	eq, err = a.CompareBytes(b, 4)
	require.NoError(t, err)
	require.False(t, eq)
}

func TestMoveOverlapSafe(t *testing.T) {
	t.Parallel()

	buf := []byte{1, 2, 3, 4, 5, 0, 0}
	s := bytesstore.NewHeap(buf, "owner")

	require.NoError(t, s.Move(0, 2, 5))

	want := []byte{1, 2, 1, 2, 3, 4, 5}
	require.Equal(t, want, buf)
}
