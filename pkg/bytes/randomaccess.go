package bytes

import (
	"github.com/calvinalkan/gobytes/pkg/bioerrors"
)

// storeOffset translates an absolute (chunk-spanning) offset into the
// offset local to the cursor's currently-mapped store.
func (c *Cursor) storeOffset(global int64) int64 { return global - c.chunkBase }

// ReadByteAt, WriteByteAt, ... are the random-access (position-independent)
// accessors of spec §4.3/§4.5: they neither consult nor move readPosition
// or writePosition. Only WriteByteAt-class calls grow a native/heap
// buffer; reads that go through readCheckOffset (every Read*At except
// ReadByteAt, which checks only readLimit) migrate a mapped cursor to the
// covering chunk when they run past its current chunk.

func (c *Cursor) ReadByteAt(offset int64) (byte, error) {
	if offset+1 > c.readLimit {
		return 0, bioerrors.BufferUnderflow
	}

	return c.store.ReadByte(c.storeOffset(offset))
}

func (c *Cursor) WriteByteAt(offset int64, v byte) error {
	if err := c.writeCheckOffset(offset, 1); err != nil {
		return err
	}

	if err := c.store.WriteByte(c.storeOffset(offset), v); err != nil {
		return err
	}

	c.advanceReadLimit(offset + 1)

	return nil
}

func (c *Cursor) ReadUint16At(offset int64) (uint16, error) {
	if err := c.readCheckOffset(offset, 2); err != nil {
		return 0, err
	}

	return c.store.ReadUint16(c.storeOffset(offset))
}

func (c *Cursor) WriteUint16At(offset int64, v uint16) error {
	if err := c.writeCheckOffset(offset, 2); err != nil {
		return err
	}

	if err := c.store.WriteUint16(c.storeOffset(offset), v); err != nil {
		return err
	}

	c.advanceReadLimit(offset + 2)

	return nil
}

func (c *Cursor) ReadUint32At(offset int64) (uint32, error) {
	if err := c.readCheckOffset(offset, 4); err != nil {
		return 0, err
	}

	return c.store.ReadUint32(c.storeOffset(offset))
}

func (c *Cursor) WriteUint32At(offset int64, v uint32) error {
	if err := c.writeCheckOffset(offset, 4); err != nil {
		return err
	}

	if err := c.store.WriteUint32(c.storeOffset(offset), v); err != nil {
		return err
	}

	c.advanceReadLimit(offset + 4)

	return nil
}

func (c *Cursor) ReadUint64At(offset int64) (uint64, error) {
	if err := c.readCheckOffset(offset, 8); err != nil {
		return 0, err
	}

	return c.store.ReadUint64(c.storeOffset(offset))
}

func (c *Cursor) WriteUint64At(offset int64, v uint64) error {
	if err := c.writeCheckOffset(offset, 8); err != nil {
		return err
	}

	if err := c.store.WriteUint64(c.storeOffset(offset), v); err != nil {
		return err
	}

	c.advanceReadLimit(offset + 8)

	return nil
}

func (c *Cursor) ReadFloat32At(offset int64) (float32, error) {
	if err := c.readCheckOffset(offset, 4); err != nil {
		return 0, err
	}

	return c.store.ReadFloat32(c.storeOffset(offset))
}

func (c *Cursor) WriteFloat32At(offset int64, v float32) error {
	if err := c.writeCheckOffset(offset, 4); err != nil {
		return err
	}

	if err := c.store.WriteFloat32(c.storeOffset(offset), v); err != nil {
		return err
	}

	c.advanceReadLimit(offset + 4)

	return nil
}

func (c *Cursor) ReadFloat64At(offset int64) (float64, error) {
	if err := c.readCheckOffset(offset, 8); err != nil {
		return 0, err
	}

	return c.store.ReadFloat64(c.storeOffset(offset))
}

func (c *Cursor) WriteFloat64At(offset int64, v float64) error {
	if err := c.writeCheckOffset(offset, 8); err != nil {
		return err
	}

	if err := c.store.WriteFloat64(c.storeOffset(offset), v); err != nil {
		return err
	}

	c.advanceReadLimit(offset + 8)

	return nil
}

// ReadVolatileUint32At/WriteOrderedUint32At and the 64-bit equivalents give
// the cursor layer the acquire/release pair spec §4.5 names for
// cross-goroutine visibility without a lock.
func (c *Cursor) ReadVolatileUint32At(offset int64) (uint32, error) {
	if err := c.readCheckOffset(offset, 4); err != nil {
		return 0, err
	}

	return c.store.ReadVolatileUint32(c.storeOffset(offset))
}

func (c *Cursor) WriteOrderedUint32At(offset int64, v uint32) error {
	if err := c.writeCheckOffset(offset, 4); err != nil {
		return err
	}

	if err := c.store.WriteOrderedUint32(c.storeOffset(offset), v); err != nil {
		return err
	}

	c.advanceReadLimit(offset + 4)

	return nil
}

func (c *Cursor) ReadVolatileUint64At(offset int64) (uint64, error) {
	if err := c.readCheckOffset(offset, 8); err != nil {
		return 0, err
	}

	return c.store.ReadVolatileUint64(c.storeOffset(offset))
}

func (c *Cursor) WriteOrderedUint64At(offset int64, v uint64) error {
	if err := c.writeCheckOffset(offset, 8); err != nil {
		return err
	}

	if err := c.store.WriteOrderedUint64(c.storeOffset(offset), v); err != nil {
		return err
	}

	c.advanceReadLimit(offset + 8)

	return nil
}

// CompareAndSwapUint32At/CompareAndSwapUint64At expose the store's CAS
// directly; spec §4.3 defines CAS only at a caller-chosen fixed offset, so
// unlike the other Write*At methods these never grow the buffer — a CAS
// race over memory that doesn't exist yet is a caller bug, not something
// elastic growth should paper over.
func (c *Cursor) CompareAndSwapUint32At(offset int64, old, new uint32) (bool, error) {
	if offset+4 > c.globalSafeLimit() {
		return false, bioerrors.BufferOverflow
	}

	return c.store.CompareAndSwapUint32(c.storeOffset(offset), old, new)
}

func (c *Cursor) CompareAndSwapUint64At(offset int64, old, new uint64) (bool, error) {
	if offset+8 > c.globalSafeLimit() {
		return false, bioerrors.BufferOverflow
	}

	return c.store.CompareAndSwapUint64(c.storeOffset(offset), old, new)
}

// advanceReadLimit is called after every write — streaming or
// random-access — so that a subsequent sequential read sees the data just
// written, matching spec §4.5's note that read_limit tracks the
// high-water mark of what has actually been written. It never touches
// writePosition: streaming callers (streaming.go) advance that
// themselves by the width written, and random-access Write*At calls
// intentionally leave it alone.
func (c *Cursor) advanceReadLimit(end int64) {
	if end > c.readLimit {
		c.readLimit = end
	}
}
