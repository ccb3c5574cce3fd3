package bytes

import (
	"fmt"
	"unicode/utf8"

	"github.com/calvinalkan/gobytes/pkg/bioerrors"
)

// WriteUTF8 writes s as a stop-bit length prefix (the encoded byte count,
// not the rune count) followed by its UTF-8 bytes, per spec §4.6. Go
// strings are already UTF-8, so this is a direct copy rather than a
// re-encode; stdlib unicode/utf8 is used only to validate the input.
func (c *Cursor) WriteUTF8(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: WriteUTF8 given invalid UTF-8", bioerrors.UTFDataFormat)
	}

	if err := c.WriteStopBit(int64(len(s))); err != nil {
		return err
	}

	return c.WriteBytes([]byte(s))
}

// ReadUTF8 reads a string written by [Cursor.WriteUTF8].
func (c *Cursor) ReadUTF8() (string, error) {
	n, err := c.ReadStopBit()
	if err != nil {
		return "", err
	}

	if n < 0 {
		return "", fmt.Errorf("%w: negative UTF8 length %d", bioerrors.UTFDataFormat, n)
	}

	buf := make([]byte, n)
	if err := c.ReadBytes(buf); err != nil {
		return "", err
	}

	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: malformed UTF-8 sequence", bioerrors.UTFDataFormat)
	}

	return string(buf), nil
}

// WriteISOLatin1 writes s as a stop-bit length prefix followed by one byte
// per rune, per spec §4.6's ISO-8859-1 string encoding (used where the
// caller already knows the content is single-byte-per-character and wants
// to skip UTF-8's variable width entirely). Runes outside [0,255] fail
// with UTFDataFormat since they have no ISO-8859-1 representation.
func (c *Cursor) WriteISOLatin1(s string) error {
	runes := []rune(s)

	buf := make([]byte, len(runes))

	for i, r := range runes {
		if r < 0 || r > 0xff {
			return fmt.Errorf("%w: rune %q has no ISO-8859-1 representation", bioerrors.UTFDataFormat, r)
		}

		buf[i] = byte(r)
	}

	if err := c.WriteStopBit(int64(len(buf))); err != nil {
		return err
	}

	return c.WriteBytes(buf)
}

// ReadISOLatin1 reads a string written by [Cursor.WriteISOLatin1].
func (c *Cursor) ReadISOLatin1() (string, error) {
	n, err := c.ReadStopBit()
	if err != nil {
		return "", err
	}

	if n < 0 {
		return "", fmt.Errorf("%w: negative ISO-8859-1 length %d", bioerrors.UTFDataFormat, n)
	}

	buf := make([]byte, n)
	if err := c.ReadBytes(buf); err != nil {
		return "", err
	}

	runes := make([]rune, len(buf))
	for i, b := range buf {
		runes[i] = rune(b)
	}

	return string(runes), nil
}
