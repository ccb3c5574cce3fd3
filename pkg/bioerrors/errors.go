// Package bioerrors centralizes the error taxonomy shared by every layer of
// the bytes library (pkg/bytesstore, pkg/mmapfile, pkg/bytes, pkg/methodio,
// pkg/uniquetime), the way pkg/slotcache/errors.go centralizes one package's
// sentinels. Centralizing here lets every layer classify failures with
// errors.Is regardless of which layer raised them.
package bioerrors

import (
	"errors"
	"strconv"
)

var (
	// BufferUnderflow: a read past read_limit, or before start.
	BufferUnderflow = errors.New("bytes: buffer underflow")

	// BufferOverflow: a write past write_limit, or before start.
	BufferOverflow = errors.New("bytes: buffer overflow")

	// ClosedState: any operation on a released resource.
	ClosedState = errors.New("bytes: closed")

	// ThreadingIllegalState: concurrent misuse detected (reserve/release by
	// the wrong owner, cross-thread reentrant lock use, etc).
	ThreadingIllegalState = errors.New("bytes: threading illegal state")

	// InvalidMark: reset() with no prior mark(), or a mark invalidated by a
	// clear since it was set.
	InvalidMark = errors.New("bytes: invalid mark")

	// IORuntime: mmap, grow, msync, or lock failures.
	IORuntime = errors.New("bytes: io runtime error")

	// ArithmeticError: stop-bit overflow, or numeric conversion overflow.
	ArithmeticError = errors.New("bytes: arithmetic error")

	// UTFDataFormat: a malformed multi-byte UTF-8 sequence.
	UTFDataFormat = errors.New("bytes: utf data format")

	// InvalidMarshallable: an object failed its own validation during
	// read/write.
	InvalidMarshallable = errors.New("bytes: invalid marshallable")

	// UnsupportedOperation: a capability mismatch, e.g. address() on a heap
	// store.
	UnsupportedOperation = errors.New("bytes: unsupported operation")

	// IllegalState: a generic programming-error class used by the
	// reference-counting and method-dispatch layers (mirrors
	// refcount.ErrIllegalState for call sites outside pkg/refcount).
	IllegalState = errors.New("bytes: illegal state")
)

// DecoratedOverflow is a [BufferOverflow] that carries the position context
// spec §4.5/§7 requires ("attempt to write N bytes to E, limit: L").
type DecoratedOverflow struct {
	Offset  int64
	Adding  int64
	Limit   int64
	Message string
}

func (e *DecoratedOverflow) Error() string { return e.Message }

func (e *DecoratedOverflow) Unwrap() error { return BufferOverflow }

// NewDecoratedOverflow builds the overflow error spec.md's S2 scenario
// expects: "attempt to write N bytes to E, limit: L" where E is the end
// offset of the attempted write (offset+adding).
func NewDecoratedOverflow(offset, adding, limit int64) *DecoratedOverflow {
	end := offset + adding

	return &DecoratedOverflow{
		Offset: offset,
		Adding: adding,
		Limit:  limit,
		Message: "attempt to write " + strconv.FormatInt(adding, 10) + " bytes to " + strconv.FormatInt(end, 10) +
			", limit: " + strconv.FormatInt(limit, 10),
	}
}
