package bytes

import "github.com/calvinalkan/gobytes/pkg/stopbit"

// byteWriterAdapter and byteReaderAdapter let a *Cursor satisfy
// io.ByteWriter/io.ByteReader without exposing those method names (which
// would collide with the cursor's own width-specific ReadByte/WriteByte)
// on the Cursor type itself.
type byteWriterAdapter struct{ c *Cursor }

func (a byteWriterAdapter) WriteByte(b byte) error { return a.c.WriteByte(b) }

type byteReaderAdapter struct{ c *Cursor }

func (a byteReaderAdapter) ReadByte() (byte, error) { return a.c.ReadByte() }

// WriteStopBit writes v using the stop-bit (continuation-bit) variable
// length encoding of spec §4.9, advancing writePosition.
func (c *Cursor) WriteStopBit(v int64) error {
	return stopbit.EncodeLong(byteWriterAdapter{c}, v)
}

// ReadStopBit reads a stop-bit encoded integer, advancing readPosition.
func (c *Cursor) ReadStopBit() (int64, error) {
	return stopbit.DecodeLong(byteReaderAdapter{c})
}

// WriteStopBitDouble writes v using the truncated-IEEE-754 stop-bit
// encoding of spec §4.9.
func (c *Cursor) WriteStopBitDouble(v float64) error {
	return stopbit.EncodeDouble(byteWriterAdapter{c}, v)
}

// ReadStopBitDouble reads a stop-bit encoded double.
func (c *Cursor) ReadStopBitDouble() (float64, error) {
	return stopbit.DecodeDouble(byteReaderAdapter{c})
}
