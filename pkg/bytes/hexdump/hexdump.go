// Package hexdump implements the annotated hex-dump cursor of spec §4.6:
// a [bytes.Cursor] wrapper that accepts textual annotations keyed by
// position — descriptions, indent level — kept in a side buffer entirely
// outside the byte stream itself, emitted only when [Cursor.ToHexString]
// renders the buffer's content as text.
//
// The three-column 16-bytes-per-line layout (offset / hex bytes / ASCII
// gutter) is the conventional one for this domain; spec §4.6 names the
// feature without specifying a text layout.
package hexdump

import (
	"fmt"
	"sort"
	"strings"

	gobytes "github.com/calvinalkan/gobytes/pkg/bytes"
)

const bytesPerLine = 16

type annotation struct {
	indent      int
	description string
}

// Cursor wraps a [bytes.Cursor], adding a side buffer of position-keyed
// annotations that [Cursor.ToHexString] renders alongside the hex dump.
type Cursor struct {
	*gobytes.Cursor

	annotations map[int64]annotation
}

// New wraps an existing cursor as a hex-dump cursor.
func New(c *gobytes.Cursor) *Cursor {
	return &Cursor{Cursor: c, annotations: make(map[int64]annotation)}
}

// Annotate attaches a description to position, rendered at the given
// indent level just before that position's line in [Cursor.ToHexString].
// Multiple calls at the same position overwrite the previous annotation.
func (h *Cursor) Annotate(position int64, indent int, description string) {
	h.annotations[position] = annotation{indent: indent, description: description}
}

// ToHexString renders the written content ([start, writePosition)) as a
// conventional three-column hex dump: an offset column, 16 hex-encoded
// bytes per line, and an ASCII gutter with unprintable bytes shown as
// '.'. Any annotation attached to a position is rendered on its own line
// immediately before the dump line containing that position.
//
// Reads directly from the cursor's currently-mapped store at its local
// offset 0, which only covers content still resident in one chunk. Spec
// §4.6 frames this variant as debug/test tooling over heap and native
// buffers, not a general dump of a multi-chunk mapped file; dumping
// content that has migrated across a mapped cursor's chunk boundary is
// out of scope for this method.
func (h *Cursor) ToHexString() (string, error) {
	length := h.WritePosition() - h.Start()
	if length < 0 {
		length = 0
	}

	buf := make([]byte, length)
	if length > 0 {
		if err := h.Cursor.Store().ReadBytes(0, buf); err != nil {
			return "", err
		}
	}

	positions := make([]int64, 0, len(h.annotations))
	for pos := range h.annotations {
		positions = append(positions, pos)
	}

	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	var sb strings.Builder

	nextAnnotation := 0

	for offset := int64(0); offset < length; offset += bytesPerLine {
		for nextAnnotation < len(positions) && positions[nextAnnotation] >= offset && positions[nextAnnotation] < offset+bytesPerLine {
			a := h.annotations[positions[nextAnnotation]]
			sb.WriteString(strings.Repeat("  ", a.indent))
			sb.WriteString("# ")
			sb.WriteString(a.description)
			sb.WriteByte('\n')

			nextAnnotation++
		}

		end := offset + bytesPerLine
		if end > length {
			end = length
		}

		writeHexLine(&sb, offset, buf[offset:end])
	}

	for nextAnnotation < len(positions) {
		a := h.annotations[positions[nextAnnotation]]
		sb.WriteString(strings.Repeat("  ", a.indent))
		sb.WriteString("# ")
		sb.WriteString(a.description)
		sb.WriteByte('\n')

		nextAnnotation++
	}

	return sb.String(), nil
}

func writeHexLine(sb *strings.Builder, offset int64, line []byte) {
	fmt.Fprintf(sb, "%08x  ", offset)

	for i := 0; i < bytesPerLine; i++ {
		if i < len(line) {
			fmt.Fprintf(sb, "%02x ", line[i])
		} else {
			sb.WriteString("   ")
		}

		if i == bytesPerLine/2-1 {
			sb.WriteByte(' ')
		}
	}

	sb.WriteString(" |")

	for _, b := range line {
		if b >= 0x20 && b < 0x7f {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}

	sb.WriteString("|\n")
}
