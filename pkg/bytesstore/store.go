// Package bytesstore implements the fixed-capacity random-access storage
// layer (spec §3/§4.3): a single [Store] type tagged by [Kind], covering
// native off-heap memory, on-heap byte slices, views over another store,
// and the two singleton sentinels (Noop, Released) that let callers check
// state without an extra branch.
//
// This flattens the spec's "BytesStore variants" into one struct
// parameterized by an enum, per the re-architecture note in spec §9: no
// class hierarchy, no per-kind interface implementations.
package bytesstore

import (
	"fmt"

	"github.com/calvinalkan/gobytes/internal/memory"
	"github.com/calvinalkan/gobytes/pkg/bioerrors"
	"github.com/calvinalkan/gobytes/pkg/refcount"
)

// Kind tags which backing storage a Store addresses.
type Kind uint8

const (
	// KindNative is off-heap memory obtained from a manual allocation.
	KindNative Kind = iota

	// KindHeap is a Go byte slice.
	KindHeap

	// KindMapped is a window of an mmap'd file, produced by pkg/mmapfile.
	KindMapped

	// KindPointer is a raw address view that does not own its memory (no
	// refcount-driven release action; used for temporary views).
	KindPointer

	// KindNoop is the zero-capacity sentinel: rejects all reads/writes,
	// PeekUnsignedByte returns -1 instead of erroring.
	KindNoop

	// KindReleased is the post-release sentinel: rejects everything with
	// [bioerrors.ClosedState].
	KindReleased
)

// UnmapFunc releases a native allocation or an mmap'd region. Called by the
// store's refcount release hook.
type UnmapFunc func() error

// Store is a fixed-capacity, random-access byte region. See spec §3 for the
// invariants: 0 <= start <= safeLimit <= capacity.
//
// A Store is reference-counted (through its [refcount.Counter]); once the
// count reaches zero every method returns [bioerrors.ClosedState] and the
// store behaves like [Released].
type Store struct {
	kind Kind
	rc   *refcount.Counter

	view      memory.View
	start     int64
	capacity  int64
	safeLimit int64
	readOnly  bool

	unmap UnmapFunc

	// set only for KindMapped stores; read by pkg/mmapfile to decide sync
	// behavior on release.
	syncOnRelease func() error
}

// Noop is the singleton zero-capacity store. Every Store method on Noop
// either succeeds as a trivial no-op or fails gracefully; reads past offset
// 0 via PeekUnsignedByte return -1 rather than panicking.
var Noop = &Store{kind: KindNoop}

// Released is the singleton post-release store. Every method fails with
// [bioerrors.ClosedState].
var Released = &Store{kind: KindReleased}

// NewNative wraps a native memory view of length len, owned by creator.
// unmap (if non-nil) is invoked when the store's refcount reaches zero.
func NewNative(addr uintptr, length int64, creator refcount.Owner, unmap UnmapFunc) *Store {
	s := &Store{
		kind:      KindNative,
		view:      memory.NativeView(addr),
		start:     0,
		capacity:  length,
		safeLimit: length,
		unmap:     unmap,
	}
	s.rc = refcount.New(creator, s.releaseHook)

	return s
}

// NewHeap wraps a Go byte slice as a heap store owned by creator.
func NewHeap(buf []byte, creator refcount.Owner) *Store {
	s := &Store{
		kind:      KindHeap,
		view:      memory.HeapView(buf),
		start:     0,
		capacity:  int64(len(buf)),
		safeLimit: int64(len(buf)),
	}
	s.rc = refcount.New(creator, s.releaseHook)

	return s
}

// NewMapped wraps an mmap'd window. safeLimit is the boundary of the
// mapping's "safe" region (capacity minus the grace/overlap window, per
// spec §4.4); writes up to capacity are still in-bounds but signal the
// cursor layer that it should migrate to the next chunk before crossing
// safeLimit, while reads past safeLimit fail with
// [bioerrors.BufferUnderflow]. readOnly marks a store backed by a PROT_READ-only
// mapping (spec §4.4: a read-only file rejects every write primitive);
// checkWriteSpan rejects writes against it before any actual memory
// access is attempted.
func NewMapped(view memory.View, length, safeLimit int64, readOnly bool, creator refcount.Owner, onRelease func() error) *Store {
	s := &Store{
		kind:          KindMapped,
		view:          view,
		start:         0,
		capacity:      length,
		safeLimit:     safeLimit,
		readOnly:      readOnly,
		syncOnRelease: onRelease,
	}
	s.rc = refcount.New(creator, s.releaseHook)

	return s
}

// NewPointer wraps a raw, non-owning view of length len. Pointer stores
// have no refcount-driven teardown; they exist to let a cursor address a
// caller-managed buffer (e.g. scratch memory passed in for one call).
func NewPointer(addr uintptr, length int64) *Store {
	return &Store{
		kind:      KindPointer,
		view:      memory.NativeView(addr),
		start:     0,
		capacity:  length,
		safeLimit: length,
	}
}

func (s *Store) releaseHook() {
	var err error

	if s.syncOnRelease != nil {
		err = s.syncOnRelease()
	}

	if s.unmap != nil {
		unmapErr := s.unmap()
		if err == nil {
			err = unmapErr
		}
	}

	// Release hooks in this layer are best-effort; callers needing to
	// observe mmap/msync failures use pkg/mmapfile directly, which surfaces
	// them as bioerrors.IORuntime before the refcount ever reaches zero.
	_ = err
}

// Kind returns the store's storage kind.
func (s *Store) Kind() Kind { return s.kind }

// Start returns the lowest valid offset.
func (s *Store) Start() int64 { return s.start }

// Capacity returns the highest addressable offset + 1.
func (s *Store) Capacity() int64 {
	if s.kind == KindReleased {
		return 0
	}

	return s.capacity
}

// SafeLimit returns the offset below capacity beyond which writes should
// trigger a resize/remap.
func (s *Store) SafeLimit() int64 {
	if s.kind == KindReleased {
		return 0
	}

	return s.safeLimit
}

// IsDirect reports whether the store addresses native (off-heap) memory.
func (s *Store) IsDirect() bool {
	return s.kind == KindNative || s.kind == KindMapped || s.kind == KindPointer
}

// Inside reports whether offset is a valid single-byte position.
func (s *Store) Inside(offset int64) bool {
	return s.InsideSpan(offset, 1)
}

// InsideSpan reports whether [offset, offset+span) lies within
// [start, capacity).
func (s *Store) InsideSpan(offset, span int64) bool {
	if s.kind == KindNoop || s.kind == KindReleased {
		return false
	}

	return offset >= s.start && span >= 0 && offset+span <= s.capacity
}

// Refcount exposes the underlying counter for callers that manage their own
// reservations (pkg/bytes' cursor layer reserves a store on its own
// behalf). Returns nil for the Noop/Released/Pointer singletons, which are
// not individually reference-counted.
func (s *Store) Refcount() *refcount.Counter { return s.rc }

func (s *Store) checkState() error {
	if s.kind == KindReleased {
		return bioerrors.ClosedState
	}

	if s.rc != nil && s.rc.Closed() {
		return bioerrors.ClosedState
	}

	return nil
}

func (s *Store) checkReadSpan(offset, length int64) error {
	if err := s.checkState(); err != nil {
		return err
	}

	if s.kind == KindNoop {
		return bioerrors.BufferUnderflow
	}

	if offset < s.start || offset+length > s.safeLimit {
		return bioerrors.BufferUnderflow
	}

	return nil
}

func (s *Store) checkWriteSpan(offset, length int64) error {
	if err := s.checkState(); err != nil {
		return err
	}

	if s.kind == KindNoop {
		return bioerrors.BufferOverflow
	}

	if s.readOnly {
		return fmt.Errorf("%w: Read Only", bioerrors.IllegalState)
	}

	if offset < s.start || offset+length > s.capacity {
		return bioerrors.BufferOverflow
	}

	return nil
}
