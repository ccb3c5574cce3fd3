// Package guarded implements the debug-only guarded cursor of spec §4.6:
// a thin wrapper over a [bytes.Cursor] that prefixes every typed write
// with a one-byte type tag and checks that tag on the matching read,
// catching a miswritten binary protocol (reading an int32 where a long
// was written) immediately instead of silently misinterpreting bytes.
//
// Per spec §9's re-architecture note, this stays a wrapper around the
// single cursor struct rather than a parallel subclass of it.
package guarded

import (
	"fmt"

	gobytes "github.com/calvinalkan/gobytes/pkg/bytes"
	"github.com/calvinalkan/gobytes/pkg/bioerrors"
)

// Tag identifies the type of value a guarded write prefixed.
type Tag byte

const (
	TagInt8 Tag = iota + 1
	TagInt16
	TagInt32
	TagInt64
	TagStopBit
	TagFloat32
	TagFloat64
)

func (t Tag) String() string {
	switch t {
	case TagInt8:
		return "INT8"
	case TagInt16:
		return "INT16"
	case TagInt32:
		return "INT32"
	case TagInt64:
		return "INT64"
	case TagStopBit:
		return "STOP_BIT"
	case TagFloat32:
		return "FLOAT32"
	case TagFloat64:
		return "FLOAT64"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", byte(t))
	}
}

// Cursor wraps a [bytes.Cursor], tagging every typed write and validating
// every typed read against the tag that precedes it.
type Cursor struct {
	*gobytes.Cursor
}

// New wraps an existing cursor as a guarded cursor.
func New(c *gobytes.Cursor) *Cursor {
	return &Cursor{Cursor: c}
}

func (g *Cursor) expect(want Tag) error {
	got, err := g.Cursor.ReadByte()
	if err != nil {
		return err
	}

	if Tag(got) != want {
		return fmt.Errorf("%w: expected %s but was %s", bioerrors.IllegalState, want, Tag(got))
	}

	return nil
}

func (g *Cursor) WriteInt8(v int8) error {
	if err := g.Cursor.WriteByte(byte(TagInt8)); err != nil {
		return err
	}

	return g.Cursor.WriteByte(byte(v))
}

func (g *Cursor) ReadInt8() (int8, error) {
	if err := g.expect(TagInt8); err != nil {
		return 0, err
	}

	v, err := g.Cursor.ReadByte()

	return int8(v), err
}

func (g *Cursor) WriteInt16(v int16) error {
	if err := g.Cursor.WriteByte(byte(TagInt16)); err != nil {
		return err
	}

	return g.Cursor.WriteUint16(uint16(v))
}

func (g *Cursor) ReadInt16() (int16, error) {
	if err := g.expect(TagInt16); err != nil {
		return 0, err
	}

	v, err := g.Cursor.ReadUint16()

	return int16(v), err
}

func (g *Cursor) WriteInt32(v int32) error {
	if err := g.Cursor.WriteByte(byte(TagInt32)); err != nil {
		return err
	}

	return g.Cursor.WriteUint32(uint32(v))
}

func (g *Cursor) ReadInt32() (int32, error) {
	if err := g.expect(TagInt32); err != nil {
		return 0, err
	}

	v, err := g.Cursor.ReadUint32()

	return int32(v), err
}

func (g *Cursor) WriteInt64(v int64) error {
	if err := g.Cursor.WriteByte(byte(TagInt64)); err != nil {
		return err
	}

	return g.Cursor.WriteUint64(uint64(v))
}

func (g *Cursor) ReadInt64() (int64, error) {
	if err := g.expect(TagInt64); err != nil {
		return 0, err
	}

	v, err := g.Cursor.ReadUint64()

	return int64(v), err
}

func (g *Cursor) WriteStopBit(v int64) error {
	if err := g.Cursor.WriteByte(byte(TagStopBit)); err != nil {
		return err
	}

	return g.Cursor.WriteStopBit(v)
}

func (g *Cursor) ReadStopBit() (int64, error) {
	if err := g.expect(TagStopBit); err != nil {
		return 0, err
	}

	return g.Cursor.ReadStopBit()
}

func (g *Cursor) WriteFloat32(v float32) error {
	if err := g.Cursor.WriteByte(byte(TagFloat32)); err != nil {
		return err
	}

	return g.Cursor.WriteFloat32(v)
}

func (g *Cursor) ReadFloat32() (float32, error) {
	if err := g.expect(TagFloat32); err != nil {
		return 0, err
	}

	return g.Cursor.ReadFloat32()
}

func (g *Cursor) WriteFloat64(v float64) error {
	if err := g.Cursor.WriteByte(byte(TagFloat64)); err != nil {
		return err
	}

	return g.Cursor.WriteFloat64(v)
}

func (g *Cursor) ReadFloat64() (float64, error) {
	if err := g.expect(TagFloat64); err != nil {
		return 0, err
	}

	return g.Cursor.ReadFloat64()
}
