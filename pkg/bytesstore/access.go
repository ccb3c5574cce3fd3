package bytesstore

import (
	"github.com/calvinalkan/gobytes/internal/memory"
	"github.com/calvinalkan/gobytes/pkg/bioerrors"
)

// ReadByte reads the byte at the given absolute offset.
func (s *Store) ReadByte(offset int64) (byte, error) {
	if err := s.checkReadSpan(offset, 1); err != nil {
		return 0, err
	}

	return memory.ReadByte(s.view, offset), nil
}

// WriteByte writes a single byte at the given absolute offset.
func (s *Store) WriteByte(offset int64, val byte) error {
	if err := s.checkWriteSpan(offset, 1); err != nil {
		return err
	}

	memory.WriteByte(s.view, offset, val)

	return nil
}

// PeekUnsignedByte returns the unsigned byte value at offset, or -1 if the
// offset is out of range. Unlike ReadByte, this never returns an error;
// spec §4.3 calls this out specifically for Noop so callers can probe for
// "no more data" with one comparison instead of an extra branch.
func (s *Store) PeekUnsignedByte(offset int64) int {
	if s.checkReadSpan(offset, 1) != nil {
		return -1
	}

	return int(memory.ReadByte(s.view, offset))
}

func (s *Store) ReadUint16(offset int64) (uint16, error) {
	if err := s.checkReadSpan(offset, 2); err != nil {
		return 0, err
	}

	return memory.ReadUint16(s.view, offset), nil
}

func (s *Store) WriteUint16(offset int64, val uint16) error {
	if err := s.checkWriteSpan(offset, 2); err != nil {
		return err
	}

	memory.WriteUint16(s.view, offset, val)

	return nil
}

func (s *Store) ReadUint32(offset int64) (uint32, error) {
	if err := s.checkReadSpan(offset, 4); err != nil {
		return 0, err
	}

	return memory.ReadUint32(s.view, offset), nil
}

func (s *Store) WriteUint32(offset int64, val uint32) error {
	if err := s.checkWriteSpan(offset, 4); err != nil {
		return err
	}

	memory.WriteUint32(s.view, offset, val)

	return nil
}

func (s *Store) ReadUint64(offset int64) (uint64, error) {
	if err := s.checkReadSpan(offset, 8); err != nil {
		return 0, err
	}

	return memory.ReadUint64(s.view, offset), nil
}

func (s *Store) WriteUint64(offset int64, val uint64) error {
	if err := s.checkWriteSpan(offset, 8); err != nil {
		return err
	}

	memory.WriteUint64(s.view, offset, val)

	return nil
}

func (s *Store) ReadFloat32(offset int64) (float32, error) {
	if err := s.checkReadSpan(offset, 4); err != nil {
		return 0, err
	}

	return memory.ReadFloat32(s.view, offset), nil
}

func (s *Store) WriteFloat32(offset int64, val float32) error {
	if err := s.checkWriteSpan(offset, 4); err != nil {
		return err
	}

	memory.WriteFloat32(s.view, offset, val)

	return nil
}

func (s *Store) ReadFloat64(offset int64) (float64, error) {
	if err := s.checkReadSpan(offset, 8); err != nil {
		return 0, err
	}

	return memory.ReadFloat64(s.view, offset), nil
}

func (s *Store) WriteFloat64(offset int64, val float64) error {
	if err := s.checkWriteSpan(offset, 8); err != nil {
		return err
	}

	memory.WriteFloat64(s.view, offset, val)

	return nil
}

func (s *Store) ReadVolatileUint32(offset int64) (uint32, error) {
	if err := s.checkReadSpan(offset, 4); err != nil {
		return 0, err
	}

	return memory.ReadVolatileUint32(s.view, offset), nil
}

func (s *Store) WriteOrderedUint32(offset int64, val uint32) error {
	if err := s.checkWriteSpan(offset, 4); err != nil {
		return err
	}

	memory.WriteOrderedUint32(s.view, offset, val)

	return nil
}

func (s *Store) ReadVolatileUint64(offset int64) (uint64, error) {
	if err := s.checkReadSpan(offset, 8); err != nil {
		return 0, err
	}

	return memory.ReadVolatileUint64(s.view, offset), nil
}

func (s *Store) WriteOrderedUint64(offset int64, val uint64) error {
	if err := s.checkWriteSpan(offset, 8); err != nil {
		return err
	}

	memory.WriteOrderedUint64(s.view, offset, val)

	return nil
}

// CompareAndSwapUint32 performs a sequentially consistent 32-bit CAS at
// offset. Returns false (no error) on a value mismatch; returns an error
// only if offset is out of bounds or the store is closed.
func (s *Store) CompareAndSwapUint32(offset int64, old, new uint32) (bool, error) {
	if err := s.checkWriteSpan(offset, 4); err != nil {
		return false, err
	}

	return memory.CompareAndSwapUint32(s.view, offset, old, new), nil
}

// CompareAndSwapUint64 performs a sequentially consistent 64-bit CAS at
// offset.
func (s *Store) CompareAndSwapUint64(offset int64, old, new uint64) (bool, error) {
	if err := s.checkWriteSpan(offset, 8); err != nil {
		return false, err
	}

	return memory.CompareAndSwapUint64(s.view, offset, old, new), nil
}

// AddUint64 atomically adds delta to the uint64 at offset and returns the
// new value.
func (s *Store) AddUint64(offset int64, delta uint64) (uint64, error) {
	if err := s.checkWriteSpan(offset, 8); err != nil {
		return 0, err
	}

	return memory.AddUint64(s.view, offset, delta), nil
}

// UnsupportedOperation-class accessors: address() on a heap store has no
// meaningful answer.

// Address returns the native base address of the store, offset by the
// given amount. Fails with [bioerrors.UnsupportedOperation] for heap
// stores, which have no stable address (the Go GC may move the backing
// array).
func (s *Store) Address(offset int64) (uintptr, error) {
	if err := s.checkState(); err != nil {
		return 0, err
	}

	if !s.IsDirect() {
		return 0, bioerrors.UnsupportedOperation
	}

	return s.view.Addr + uintptr(offset), nil
}
