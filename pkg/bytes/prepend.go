package bytes

import (
	"github.com/calvinalkan/gobytes/pkg/bioerrors"
	"github.com/calvinalkan/gobytes/pkg/stopbit"
)

// PrependByte, PrependUint32, PrependUint64, PrependStopBit fill the
// reserved prefix [Cursor.ClearAndPad] set up, writing backwards from
// prependPosition toward start() and moving prependPosition left by the
// amount written each time. This lets a framed record reserve a
// length-prefix slot, write its body forward normally from the same
// starting point, and then come back to fill the prefix in once the
// final length is known — spec §4.5 names prepend_* as a collaborator of
// clear_and_pad without spelling out the backwards-fill bookkeeping
// itself.
//
// Prepending past the start of the reserved prefix fails with
// [bioerrors.BufferUnderflow]; it never extends the buffer, unlike the
// forward Write* calls.

func (c *Cursor) PrependByte(v byte) error {
	pos := c.prependPosition - 1
	if pos < c.globalStart() {
		return bioerrors.BufferUnderflow
	}

	if err := c.store.WriteByte(c.storeOffset(pos), v); err != nil {
		return err
	}

	c.prependPosition = pos

	return nil
}

func (c *Cursor) PrependUint32(v uint32) error {
	pos := c.prependPosition - 4
	if pos < c.globalStart() {
		return bioerrors.BufferUnderflow
	}

	if err := c.store.WriteUint32(c.storeOffset(pos), v); err != nil {
		return err
	}

	c.prependPosition = pos

	return nil
}

func (c *Cursor) PrependUint64(v uint64) error {
	pos := c.prependPosition - 8
	if pos < c.globalStart() {
		return bioerrors.BufferUnderflow
	}

	if err := c.store.WriteUint64(c.storeOffset(pos), v); err != nil {
		return err
	}

	c.prependPosition = pos

	return nil
}

// PrependStopBit writes v's stop-bit encoding immediately before
// prependPosition, backing prependPosition up by the encoded length
// computed via [stopbit.EncodedLen]. Unlike the fixed-width Prepend*
// calls this needs to know how many bytes it will write before it writes
// them, since stop-bit encoding is itself forward-only (each byte
// depends on the remaining high bits of the value, low byte first).
func (c *Cursor) PrependStopBit(v int64) error {
	n := int64(stopbit.EncodedLen(v))

	pos := c.prependPosition - n
	if pos < c.globalStart() {
		return bioerrors.BufferUnderflow
	}

	tmp := make([]byte, 0, n)
	w := &sliceByteWriter{buf: &tmp}

	if err := stopbit.EncodeLong(w, v); err != nil {
		return err
	}

	if err := c.store.WriteBytes(c.storeOffset(pos), tmp); err != nil {
		return err
	}

	c.prependPosition = pos

	return nil
}

type sliceByteWriter struct{ buf *[]byte }

func (w *sliceByteWriter) WriteByte(b byte) error {
	*w.buf = append(*w.buf, b)
	return nil
}
