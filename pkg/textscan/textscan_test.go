package textscan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/gobytes/pkg/textscan"
)

type sliceSource struct {
	data []byte
	pos  int
}

func (s *sliceSource) ReadByte() (byte, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}

	b := s.data[s.pos]
	s.pos++

	return b, true
}

func TestIsSpaceAndComma(t *testing.T) {
	t.Parallel()

	require.True(t, textscan.IsSpace(' '))
	require.True(t, textscan.IsSpace('\t'))
	require.False(t, textscan.IsSpace('a'))

	require.True(t, textscan.IsComma(','))
	require.True(t, textscan.IsComma(' '))
	require.False(t, textscan.IsComma('x'))
}

func TestIsNewlineHandlesCRLF(t *testing.T) {
	t.Parallel()

	require.True(t, textscan.IsNewline('\n', 0))
	require.True(t, textscan.IsNewline('\r', '\n'))
	require.False(t, textscan.IsNewline('\r', 'x'))
}

func TestParseIntStopsAtTester(t *testing.T) {
	t.Parallel()

	src := &sliceSource{data: []byte("-1234,rest")}

	v, n, ok := textscan.ParseInt(src, textscan.IsComma)
	require.True(t, ok)
	require.Equal(t, int64(-1234), v)
	require.Equal(t, 5, n)
}

func TestParseIntNoDigitsFails(t *testing.T) {
	t.Parallel()

	src := &sliceSource{data: []byte(",rest")}

	_, _, ok := textscan.ParseInt(src, textscan.IsComma)
	require.False(t, ok)
}

func TestParseDoubleWithFraction(t *testing.T) {
	t.Parallel()

	src := &sliceSource{data: []byte("3.125 tail")}

	v, n, ok := textscan.ParseDouble(src, textscan.IsSpace)
	require.True(t, ok)
	require.InDelta(t, 3.125, v, 1e-9)
	require.Equal(t, 5, n)
}

func TestParseDoubleNegative(t *testing.T) {
	t.Parallel()

	src := &sliceSource{data: []byte("-42")}

	v, _, ok := textscan.ParseDouble(src, textscan.IsSpace)
	require.True(t, ok)
	require.InDelta(t, -42.0, v, 1e-9)
}
