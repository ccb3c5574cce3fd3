// Package stopbit implements the 7-bit-per-byte, high-bit-continuation
// variable-length integer encoding used throughout the cursor and
// method-dispatch layers (spec §4.5/§4.9): EncodeLong/DecodeLong for
// integers, EncodeDouble/DecodeDouble for a compact IEEE-754 encoding that
// drops trailing zero bytes.
//
// Every function here works over [io.ByteWriter]/[io.ByteReader] so the
// cursor layer, the guarded cursor, and the method writer/reader can all
// share one codec without a direct dependency between them.
package stopbit

import (
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/calvinalkan/gobytes/pkg/bioerrors"
)

// maxContinuationBytes bounds a decode at 10 bytes (70 bits of payload),
// more than a zigzag-encoded 64-bit value ever needs. An 11th continuation
// byte means the stream is corrupt or not really a stop-bit value.
const maxContinuationBytes = 10

// EncodeLong writes v using stop-bit encoding: v is zigzag-mapped to an
// unsigned value (protobuf's sint64 scheme), which is then written as a
// little-endian base-128 varint. The mapping applies to every value, so a
// non-negative v is encoded as 2*v: 300 is written as 0xD8 0x04, not as
// the plain base-128 form 0xAC 0x02, while small negative values stay
// one byte long.
func EncodeLong(w io.ByteWriter, v int64) error {
	u := zigzagEncode(v)

	for u >= 0x80 {
		if err := w.WriteByte(byte(u) | 0x80); err != nil {
			return err
		}
		u >>= 7
	}

	return w.WriteByte(byte(u))
}

// DecodeLong reads a stop-bit encoded value written by [EncodeLong].
func DecodeLong(r io.ByteReader) (int64, error) {
	var u uint64

	var shift uint

	for i := 0; ; i++ {
		if i >= maxContinuationBytes {
			return 0, fmt.Errorf("%w: stop-bit value exceeds %d continuation bytes", bioerrors.ArithmeticError, maxContinuationBytes)
		}

		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		u |= uint64(b&0x7f) << shift

		if b&0x80 == 0 {
			break
		}

		shift += 7
	}

	return zigzagDecode(u), nil
}

func zigzagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// EncodeDouble writes v using the compact stop-bit double encoding: a
// leading byte records how many whole trailing zero bytes were dropped
// from v's raw bit pattern, followed by the remaining bits as a stop-bit
// long.
func EncodeDouble(w io.ByteWriter, v float64) error {
	raw := math.Float64bits(v)

	shift := trailingZeroBytes(raw)
	reduced := raw >> (shift * 8)

	if err := w.WriteByte(byte(shift)); err != nil {
		return err
	}

	return EncodeLong(w, int64(reduced))
}

// DecodeDouble reads a value written by [EncodeDouble].
func DecodeDouble(r io.ByteReader) (float64, error) {
	shift, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	reduced, err := DecodeLong(r)
	if err != nil {
		return 0, err
	}

	raw := uint64(reduced) << (uint64(shift) * 8)

	return math.Float64frombits(raw), nil
}

func trailingZeroBytes(raw uint64) uint64 {
	if raw == 0 {
		return 0
	}

	n := uint64(bits.TrailingZeros64(raw)) / 8
	if n > 7 {
		n = 7
	}

	return n
}

// EncodedLen reports how many bytes [EncodeLong] would write for v,
// without writing anything. Used by the cursor layer's prepend bookkeeping
// (spec §4.5's clear_and_pad/prepend_*), which must know a value's encoded
// width before it can reserve room for it ahead of the write position.
func EncodedLen(v int64) int {
	var counter countingWriter

	_ = EncodeLong(&counter, v)

	return int(counter)
}

type countingWriter int

func (c *countingWriter) WriteByte(byte) error {
	*c++
	return nil
}
