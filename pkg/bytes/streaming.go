package bytes

// WriteByte, WriteUint16, ... advance writePosition by the width written,
// per spec §4.5's streaming (sequential) write API. Each delegates to the
// corresponding *At method so the elastic growth check only needs to live
// in one place.

func (c *Cursor) WriteByte(v byte) error {
	if err := c.WriteByteAt(c.writePosition, v); err != nil {
		return err
	}

	c.writePosition++

	return nil
}

func (c *Cursor) WriteUint16(v uint16) error {
	if err := c.WriteUint16At(c.writePosition, v); err != nil {
		return err
	}

	c.writePosition += 2

	return nil
}

func (c *Cursor) WriteUint32(v uint32) error {
	if err := c.WriteUint32At(c.writePosition, v); err != nil {
		return err
	}

	c.writePosition += 4

	return nil
}

func (c *Cursor) WriteUint64(v uint64) error {
	if err := c.WriteUint64At(c.writePosition, v); err != nil {
		return err
	}

	c.writePosition += 8

	return nil
}

// WriteOrderedUint32, WriteOrderedUint64 are the streaming counterparts of
// randomaccess.go's Write*At release-store variants: same acquire/release
// semantics as [Cursor.WriteOrderedUint32At], advancing writePosition like
// every other streaming write.

func (c *Cursor) WriteOrderedUint32(v uint32) error {
	if err := c.WriteOrderedUint32At(c.writePosition, v); err != nil {
		return err
	}

	c.writePosition += 4

	return nil
}

func (c *Cursor) WriteOrderedUint64(v uint64) error {
	if err := c.WriteOrderedUint64At(c.writePosition, v); err != nil {
		return err
	}

	c.writePosition += 8

	return nil
}

// CompareAndSwapUint32, CompareAndSwapUint64 run the CAS at writePosition
// and advance it by the width regardless of whether the swap took effect —
// per spec §4.5 the streaming group advances write_position on every
// completed operation, not just ones that mutate memory.

func (c *Cursor) CompareAndSwapUint32(old, new uint32) (bool, error) {
	ok, err := c.CompareAndSwapUint32At(c.writePosition, old, new)
	if err != nil {
		return false, err
	}

	c.writePosition += 4

	return ok, nil
}

func (c *Cursor) CompareAndSwapUint64(old, new uint64) (bool, error) {
	ok, err := c.CompareAndSwapUint64At(c.writePosition, old, new)
	if err != nil {
		return false, err
	}

	c.writePosition += 8

	return ok, nil
}

func (c *Cursor) WriteFloat32(v float32) error {
	if err := c.WriteFloat32At(c.writePosition, v); err != nil {
		return err
	}

	c.writePosition += 4

	return nil
}

func (c *Cursor) WriteFloat64(v float64) error {
	if err := c.WriteFloat64At(c.writePosition, v); err != nil {
		return err
	}

	c.writePosition += 8

	return nil
}

// ReadByte, ReadUint16, ... advance readPosition by the width read.

func (c *Cursor) ReadByte() (byte, error) {
	v, err := c.ReadByteAt(c.readPosition)
	if err != nil {
		return 0, err
	}

	c.readPosition++

	return v, nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	v, err := c.ReadUint16At(c.readPosition)
	if err != nil {
		return 0, err
	}

	c.readPosition += 2

	return v, nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	v, err := c.ReadUint32At(c.readPosition)
	if err != nil {
		return 0, err
	}

	c.readPosition += 4

	return v, nil
}

func (c *Cursor) ReadUint64() (uint64, error) {
	v, err := c.ReadUint64At(c.readPosition)
	if err != nil {
		return 0, err
	}

	c.readPosition += 8

	return v, nil
}

// ReadVolatileUint32, ReadVolatileUint64 are the streaming counterparts of
// randomaccess.go's Read*At acquire-load variants, advancing readPosition
// like every other streaming read.

func (c *Cursor) ReadVolatileUint32() (uint32, error) {
	v, err := c.ReadVolatileUint32At(c.readPosition)
	if err != nil {
		return 0, err
	}

	c.readPosition += 4

	return v, nil
}

func (c *Cursor) ReadVolatileUint64() (uint64, error) {
	v, err := c.ReadVolatileUint64At(c.readPosition)
	if err != nil {
		return 0, err
	}

	c.readPosition += 8

	return v, nil
}

func (c *Cursor) ReadFloat32() (float32, error) {
	v, err := c.ReadFloat32At(c.readPosition)
	if err != nil {
		return 0, err
	}

	c.readPosition += 4

	return v, nil
}

func (c *Cursor) ReadFloat64() (float64, error) {
	v, err := c.ReadFloat64At(c.readPosition)
	if err != nil {
		return 0, err
	}

	c.readPosition += 8

	return v, nil
}

// PeekUnsignedByte returns the unsigned byte at readPosition without
// advancing it, or -1 if no byte is available — the sentinel-friendly
// probe spec §4.3 calls out for Noop stores.
func (c *Cursor) PeekUnsignedByte() int {
	if c.readPosition+1 > c.readLimit {
		return -1
	}

	return c.store.PeekUnsignedByte(c.storeOffset(c.readPosition))
}
