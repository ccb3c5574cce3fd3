package guarded_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	gobytes "github.com/calvinalkan/gobytes/pkg/bytes"
	"github.com/calvinalkan/gobytes/pkg/bytes/guarded"
)

func TestGuardedRoundTrip(t *testing.T) {
	t.Parallel()

	g := guarded.New(gobytes.NewElasticHeap(16, "owner"))
	defer func() { require.NoError(t, g.Close()) }()

	require.NoError(t, g.WriteInt32(7))
	require.NoError(t, g.WriteStopBit(-99))
	require.NoError(t, g.WriteFloat64(3.5))

	require.NoError(t, g.SetReadPosition(g.Start()))

	i, err := g.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(7), i)

	s, err := g.ReadStopBit()
	require.NoError(t, err)
	require.Equal(t, int64(-99), s)

	f, err := g.ReadFloat64()
	require.NoError(t, err)
	require.InDelta(t, 3.5, f, 1e-9)
}

func TestGuardedMismatchFails(t *testing.T) {
	t.Parallel()

	g := guarded.New(gobytes.NewElasticHeap(16, "owner"))
	defer func() { require.NoError(t, g.Close()) }()

	require.NoError(t, g.WriteInt64(1))

	require.NoError(t, g.SetReadPosition(g.Start()))

	_, err := g.ReadInt32()
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected INT32 but was INT64")
}
