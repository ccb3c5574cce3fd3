package bytes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	gobytes "github.com/calvinalkan/gobytes/pkg/bytes"
)

func TestStreamingVolatileOrderedReadWrite(t *testing.T) {
	t.Parallel()

	c := gobytes.NewHeap(make([]byte, 32), "owner")
	defer func() { require.NoError(t, c.Close()) }()

	require.NoError(t, c.WriteOrderedUint32(0xdeadbeef))
	require.NoError(t, c.WriteOrderedUint64(42))

	require.NoError(t, c.SetReadPosition(c.Start()))

	v32, err := c.ReadVolatileUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), v32)

	v64, err := c.ReadVolatileUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(42), v64)
}

func TestStreamingCompareAndSwapAdvancesWritePositionRegardlessOfOutcome(t *testing.T) {
	t.Parallel()

	c := gobytes.NewHeap(make([]byte, 32), "owner")
	defer func() { require.NoError(t, c.Close()) }()

	require.NoError(t, c.WriteUint32(7))
	require.NoError(t, c.WriteUint64(7))
	start := c.WritePosition()

	require.NoError(t, c.SetWritePosition(c.Start()))

	ok, err := c.CompareAndSwapUint32(0, 99)
	require.NoError(t, err)
	require.False(t, ok)
	require.EqualValues(t, 4, c.WritePosition())

	ok, err = c.CompareAndSwapUint64(7, 100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, start, c.WritePosition())

	require.NoError(t, c.SetReadPosition(4))

	v64, err := c.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(100), v64)
}
