package stopbit_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/gobytes/pkg/bioerrors"
	"github.com/calvinalkan/gobytes/pkg/stopbit"
)

func TestEncodeDecodeLongRoundTrip(t *testing.T) {
	t.Parallel()

	values := []int64{0, 1, -1, 63, 64, -64, -65, 127, 128, 1 << 20, -(1 << 20),
		math.MaxInt64, math.MinInt64, math.MaxInt32, math.MinInt32}

	for _, v := range values {
		var buf bytes.Buffer

		require.NoError(t, stopbit.EncodeLong(&buf, v))
		require.Equal(t, stopbit.EncodedLen(v), buf.Len())

		got, err := stopbit.DecodeLong(&buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestEncodeSmallValuesFitOneByte(t *testing.T) {
	t.Parallel()

	for _, v := range []int64{0, 1, -1, 10, -10, 63, -64} {
		require.Equal(t, 1, stopbit.EncodedLen(v), "value %d", v)
	}
}

func TestEncodeDecodeDoubleRoundTrip(t *testing.T) {
	t.Parallel()

	values := []float64{0, 1, -1, 3.1415926535, math.Pi, -2.5, 1e300, -1e-300,
		math.Inf(1), math.Inf(-1)}

	for _, v := range values {
		var buf bytes.Buffer

		require.NoError(t, stopbit.EncodeDouble(&buf, v))

		got, err := stopbit.DecodeDouble(&buf)
		require.NoError(t, err)

		if math.IsInf(v, 0) {
			require.Equal(t, v, got)
			continue
		}

		require.Equal(t, v, got)
	}
}

func TestDecodeLongOverflowsOnTooManyContinuationBytes(t *testing.T) {
	t.Parallel()

	garbage := bytes.Repeat([]byte{0xFF}, 16)

	_, err := stopbit.DecodeLong(bytes.NewReader(garbage))
	require.ErrorIs(t, err, bioerrors.ArithmeticError)
}
