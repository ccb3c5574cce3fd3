package hexdump_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	gobytes "github.com/calvinalkan/gobytes/pkg/bytes"
	"github.com/calvinalkan/gobytes/pkg/bytes/hexdump"
)

func TestToHexStringRendersBytesAndAnnotations(t *testing.T) {
	t.Parallel()

	h := hexdump.New(gobytes.NewElasticHeap(32, "owner"))
	defer func() { require.NoError(t, h.Close()) }()

	require.NoError(t, h.WriteBytes([]byte("hello world, this line wraps")))
	h.Annotate(0, 0, "header")
	h.Annotate(20, 1, "tail section")

	out, err := h.ToHexString()
	require.NoError(t, err)

	require.Contains(t, out, "header")
	require.Contains(t, out, "tail section")
	require.Contains(t, out, "68 65 6c 6c 6f") // "hello" in hex
	require.Contains(t, out, "|hello world")
}

func TestToHexStringEmptyBuffer(t *testing.T) {
	t.Parallel()

	h := hexdump.New(gobytes.NewElasticHeap(8, "owner"))
	defer func() { require.NoError(t, h.Close()) }()

	out, err := h.ToHexString()
	require.NoError(t, err)
	require.Empty(t, out)
}
