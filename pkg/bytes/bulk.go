package bytes

import "github.com/calvinalkan/gobytes/pkg/bioerrors"

// WriteBytes copies src into the cursor starting at writePosition,
// growing the buffer first if elastic, and advances writePosition by
// len(src).
func (c *Cursor) WriteBytes(src []byte) error {
	if err := c.writeCheckOffset(c.writePosition, int64(len(src))); err != nil {
		return err
	}

	if err := c.store.WriteBytes(c.storeOffset(c.writePosition), src); err != nil {
		return err
	}

	c.writePosition += int64(len(src))
	c.advanceReadLimit(c.writePosition)

	return nil
}

// ReadBytes fills dst from readPosition and advances readPosition by
// len(dst).
func (c *Cursor) ReadBytes(dst []byte) error {
	n := int64(len(dst))
	if c.readPosition+n > c.readLimit {
		return bioerrors.BufferUnderflow
	}

	if err := c.store.ReadBytes(c.storeOffset(c.readPosition), dst); err != nil {
		return err
	}

	c.readPosition += n

	return nil
}

// NativeWrite copies length bytes from a raw address, starting at
// writePosition.
func (c *Cursor) NativeWrite(addr uintptr, length int64) error {
	if err := c.writeCheckOffset(c.writePosition, length); err != nil {
		return err
	}

	if err := c.store.NativeWrite(c.storeOffset(c.writePosition), addr, length); err != nil {
		return err
	}

	c.writePosition += length
	c.advanceReadLimit(c.writePosition)

	return nil
}

// NativeRead copies length bytes to a raw address, starting at
// readPosition.
func (c *Cursor) NativeRead(addr uintptr, length int64) error {
	if c.readPosition+length > c.readLimit {
		return bioerrors.BufferUnderflow
	}

	if err := c.store.NativeRead(c.storeOffset(c.readPosition), addr, length); err != nil {
		return err
	}

	c.readPosition += length

	return nil
}

// ZeroOut fills [from, to) (absolute offsets) with zero bytes, growing
// the buffer first if elastic and to exceeds the current safe limit.
func (c *Cursor) ZeroOut(from, to int64) error {
	if err := c.writeCheckOffset(from, to-from); err != nil {
		return err
	}

	return c.store.ZeroOut(c.storeOffset(from), c.storeOffset(to))
}

// Move copies length bytes from offset `from` to offset `to` (absolute),
// correctly handling overlap. Does not move either cursor position.
func (c *Cursor) Move(from, to, length int64) error {
	if err := c.writeCheckOffset(maxInt64(from, to), length); err != nil {
		return err
	}

	return c.store.Move(c.storeOffset(from), c.storeOffset(to), length)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}

// Equal reports whether this cursor and other have bitwise-identical
// content over [start, writePosition), per spec §4.3's content-equality
// contract (positions and limits are not compared, only the bytes
// actually written).
func (c *Cursor) Equal(other *Cursor) (bool, error) {
	length := c.writePosition - c.globalStart()
	if otherLength := other.writePosition - other.globalStart(); otherLength != length {
		return false, nil
	}

	return c.store.CompareBytes(other.store, length)
}
