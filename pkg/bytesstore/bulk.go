package bytesstore

import (
	"github.com/calvinalkan/gobytes/internal/memory"
)

// WriteBytes copies len(src) bytes from src into the store starting at
// offset. Bulk writes between two native stores (see CopyTo) use a raw
// block copy; this entry point always has a heap-backed Go slice as the
// source, so it goes straight to [memory.Copy] with a heap source view.
func (s *Store) WriteBytes(offset int64, src []byte) error {
	if err := s.checkWriteSpan(offset, int64(len(src))); err != nil {
		return err
	}

	memory.Copy(memory.HeapView(src), 0, s.view, offset, int64(len(src)))

	return nil
}

// ReadBytes fills dst with len(dst) bytes starting at offset.
func (s *Store) ReadBytes(offset int64, dst []byte) error {
	if err := s.checkReadSpan(offset, int64(len(dst))); err != nil {
		return err
	}

	memory.Copy(s.view, offset, memory.HeapView(dst), 0, int64(len(dst)))

	return nil
}

// CopyTo bulk-copies this store's entire [start, capacity) span into other,
// starting at other's start offset. Per spec §4.3, a copy between two
// native stores is a raw block copy; heap involvement dispatches through
// the same [memory.Copy], which already branches on source/destination
// kind.
func (s *Store) CopyTo(other *Store) error {
	length := s.capacity - s.start
	if err := s.checkReadSpan(s.start, length); err != nil {
		return err
	}

	if err := other.checkWriteSpan(other.start, length); err != nil {
		return err
	}

	memory.Copy(s.view, s.start, other.view, other.start, length)

	return nil
}

// NativeWrite copies length bytes from a raw address into the store at
// offset.
func (s *Store) NativeWrite(offset int64, addr uintptr, length int64) error {
	if err := s.checkWriteSpan(offset, length); err != nil {
		return err
	}

	memory.Copy(memory.NativeView(addr), 0, s.view, offset, length)

	return nil
}

// NativeRead copies length bytes from the store at offset into a raw
// address.
func (s *Store) NativeRead(offset int64, addr uintptr, length int64) error {
	if err := s.checkReadSpan(offset, length); err != nil {
		return err
	}

	memory.Copy(s.view, offset, memory.NativeView(addr), 0, length)

	return nil
}

// ZeroOut fills [from, to) with zero bytes.
func (s *Store) ZeroOut(from, to int64) error {
	length := to - from
	if err := s.checkWriteSpan(from, length); err != nil {
		return err
	}

	memory.Zero(s.view, from, length)

	return nil
}

// Move copies length bytes from offset `from` to offset `to` within this
// store, correctly handling overlap.
func (s *Store) Move(from, to, length int64) error {
	if err := s.checkWriteSpan(from, length); err != nil {
		return err
	}

	if err := s.checkWriteSpan(to, length); err != nil {
		return err
	}

	memory.Move(s.view, from, to, length)

	return nil
}

// CompareBytes reports whether this store's bytes starting at its own
// start, for length bytes, are bitwise equal to other's bytes starting at
// other's start. Per spec §4.3:
// readByte(start+i) == other.readByte(other.start+i) for i in [0, length).
func (s *Store) CompareBytes(other *Store, length int64) (bool, error) {
	if err := s.checkReadSpan(s.start, length); err != nil {
		return false, err
	}

	if err := other.checkReadSpan(other.start, length); err != nil {
		return false, err
	}

	return memory.CompareBytes(s.view, s.start, other.view, other.start, length), nil
}
