// Package bytes implements the core cursor layer (spec §4.5): read/write
// positions and limits over exactly one [bytesstore.Store] at a time, with
// an elastic growth policy that transparently reallocates (native/heap) or
// migrates to the next chunk (mapped) when a write crosses the store's
// safe limit.
//
// This is the layer everything else in the library is built from:
// pkg/bytes/guarded and pkg/bytes/hexdump wrap a *Cursor, and pkg/methodio
// writes and reads records through one.
//
// Grounded on pkg/slotcache/writer.go's write-cursor-over-a-store shape
// (a single mutable position advancing over an mmap'd region, checked
// against a safe boundary before every write), generalized from one fixed
// record layout to an arbitrary stream of typed reads and writes.
package bytes

import (
	"math"

	"github.com/calvinalkan/gobytes/pkg/bioerrors"
	"github.com/calvinalkan/gobytes/pkg/bytesstore"
	"github.com/calvinalkan/gobytes/pkg/mmapfile"
	"github.com/calvinalkan/gobytes/pkg/refcount"
)

// Default capacity ceilings per spec §4.5: native buffers may grow to 1
// TiB before an elastic resize is refused; heap buffers are capped near
// Go's own int32 slice-length practicalities (mirroring the original's
// INT_MAX-7, which leaves room for a length-prefix header).
const (
	DefaultNativeCapacityCap = int64(1) << 40
	DefaultHeapCapacityCap   = int64(math.MaxInt32 - 7)

	// unboundedCapacityCap is used for mapped cursors, whose real ceiling
	// is "however large the backing file can grow".
	unboundedCapacityCap = int64(math.MaxInt64 / 2)

	pageSize = 4096
)

// Cursor is a single-owner read/write cursor over one store at a time.
// The zero value is not usable; construct with one of the New* functions.
//
// Per spec §5, a Cursor is not safe for concurrent mutation of its own
// positions by multiple goroutines; absolute-offset operations on
// disjoint regions from multiple cursors over the same store are fine.
type Cursor struct {
	store *bytesstore.Store
	owner refcount.Owner

	// chunkBase is the file offset corresponding to store-local offset 0.
	// Zero for every non-mapped cursor, since native/heap stores are not
	// chunked.
	chunkBase int64

	readPosition  int64
	readLimit     int64
	writePosition int64
	writeLimit    int64

	elastic     bool
	capacityCap int64

	markSet bool
	mark    int64

	// prependPosition tracks where the next Prepend* call writes, moving
	// toward globalStart() as each call fills in another field of the
	// reserved prefix [Cursor.ClearAndPad] set up. Independent of
	// writePosition, which continues moving forward through the body
	// written after the prefix.
	prependPosition int64

	mapper *mmapfile.File
}

// NewHeap wraps buf as a fixed-size (non-elastic) cursor: writes past
// len(buf) fail with [bioerrors.BufferOverflow] rather than growing.
func NewHeap(buf []byte, owner refcount.Owner) *Cursor {
	store := bytesstore.NewHeap(buf, owner)

	return newFixed(store, owner)
}

// NewElasticHeap allocates an initial heap buffer of initialCapacity
// bytes that grows on demand up to [DefaultHeapCapacityCap].
func NewElasticHeap(initialCapacity int64, owner refcount.Owner) *Cursor {
	store := bytesstore.NewHeap(make([]byte, initialCapacity), owner)

	return newElastic(store, owner, DefaultHeapCapacityCap)
}

// NewElasticNative allocates initialCapacity bytes of off-heap memory
// that grows on demand up to [DefaultNativeCapacityCap].
func NewElasticNative(initialCapacity int64, owner refcount.Owner) (*Cursor, error) {
	store, err := bytesstore.AllocNative(initialCapacity, owner)
	if err != nil {
		return nil, err
	}

	return newElastic(store, owner, DefaultNativeCapacityCap), nil
}

// NewFixed wraps an arbitrary, already-constructed store as a non-elastic
// cursor. Used for pointer stores, views handed in by a caller, and
// anywhere the cursor must never resize.
func NewFixed(store *bytesstore.Store, owner refcount.Owner) (*Cursor, error) {
	if err := reserveIfOwned(store, owner); err != nil {
		return nil, err
	}

	return newFixed(store, owner), nil
}

// NewMapped positions a cursor at file offset 0 of mapper, acquiring the
// first chunk. The cursor is elastic: writes past the current chunk's
// safe limit migrate to the next chunk instead of reallocating.
func NewMapped(mapper *mmapfile.File, owner refcount.Owner) (*Cursor, error) {
	store, err := mapper.AcquireChunkFor(0, owner)
	if err != nil {
		return nil, err
	}

	c := newElastic(store, owner, unboundedCapacityCap)
	c.mapper = mapper

	return c, nil
}

func newFixed(store *bytesstore.Store, owner refcount.Owner) *Cursor {
	c := &Cursor{
		store:        store,
		owner:        owner,
		capacityCap: store.Capacity(),
		writeLimit:  store.Capacity(),
		readLimit:   store.Start(),
	}

	return c
}

func newElastic(store *bytesstore.Store, owner refcount.Owner, capacityCap int64) *Cursor {
	c := &Cursor{
		store:       store,
		owner:       owner,
		elastic:     true,
		capacityCap: capacityCap,
		writeLimit:  capacityCap,
		readLimit:   store.Start(),
	}

	return c
}

func reserveIfOwned(store *bytesstore.Store, owner refcount.Owner) error {
	rc := store.Refcount()
	if rc == nil {
		return nil
	}

	return rc.Reserve(owner)
}

// Close releases the cursor's reservation on its current store.
func (c *Cursor) Close() error {
	rc := c.store.Refcount()
	if rc == nil {
		return nil
	}

	return rc.Release(c.owner)
}

// Store returns the store currently backing the cursor. The returned
// store may be swapped out from under the caller by a subsequent elastic
// write; callers that need a stable reference should reserve it
// themselves.
func (c *Cursor) Store() *bytesstore.Store { return c.store }

func (c *Cursor) globalStart() int64    { return c.chunkBase + c.store.Start() }
func (c *Cursor) globalSafeLimit() int64 { return c.chunkBase + c.store.SafeLimit() }
func (c *Cursor) globalCapacity() int64 { return c.chunkBase + c.store.Capacity() }

// ReadPosition, WritePosition, ReadLimit, WriteLimit are absolute logical
// offsets, consistent across a chunk migration for mapped cursors.
func (c *Cursor) ReadPosition() int64  { return c.readPosition }
func (c *Cursor) WritePosition() int64 { return c.writePosition }
func (c *Cursor) ReadLimit() int64     { return c.readLimit }
func (c *Cursor) WriteLimit() int64    { return c.writeLimit }
func (c *Cursor) Start() int64         { return c.globalStart() }
func (c *Cursor) Capacity() int64      { return c.globalCapacity() }
func (c *Cursor) IsElastic() bool      { return c.elastic }

// SetReadPosition repositions the read cursor within [start, readLimit].
func (c *Cursor) SetReadPosition(pos int64) error {
	if pos < c.globalStart() || pos > c.readLimit {
		return bioerrors.BufferUnderflow
	}

	c.readPosition = pos

	return nil
}

// SetWritePosition repositions the write cursor within [start, writeLimit].
func (c *Cursor) SetWritePosition(pos int64) error {
	if pos < c.globalStart() || pos > c.writeLimit {
		return bioerrors.BufferOverflow
	}

	c.writePosition = pos
	if c.readLimit < pos {
		c.readLimit = pos
	}

	return nil
}

// SetWriteLimit narrows or widens the write limit. Widening past the
// cursor's capacity cap fails.
func (c *Cursor) SetWriteLimit(limit int64) error {
	if limit > c.capacityCap {
		return bioerrors.BufferOverflow
	}

	c.writeLimit = limit

	return nil
}

// SetReadLimit narrows or widens the read limit.
func (c *Cursor) SetReadLimit(limit int64) error {
	c.readLimit = limit
	return nil
}

// ReadRemaining returns the number of unread bytes.
func (c *Cursor) ReadRemaining() int64 { return c.readLimit - c.readPosition }

// WriteRemaining returns the number of bytes that can still be written
// before hitting the write limit.
func (c *Cursor) WriteRemaining() int64 { return c.writeLimit - c.writePosition }

// Mark records the current read position for a later [Cursor.Reset].
func (c *Cursor) Mark() {
	c.mark = c.readPosition
	c.markSet = true
}

// Reset moves the read position back to the last [Cursor.Mark]. Fails
// with [bioerrors.InvalidMark] if no mark was set, or if a [Cursor.Clear]
// since the mark invalidated it.
func (c *Cursor) Reset() error {
	if !c.markSet {
		return bioerrors.InvalidMark
	}

	c.readPosition = c.mark

	return nil
}

// Clear resets both positions to start() and both limits to their initial
// (post-construction) values, invalidating any mark.
func (c *Cursor) Clear() {
	c.readPosition = c.globalStart()
	c.writePosition = c.globalStart()
	c.readLimit = c.globalStart()

	if c.elastic {
		c.writeLimit = c.capacityCap
	} else {
		c.writeLimit = c.globalCapacity()
	}

	c.markSet = false
}

// ClearAndPad clears the cursor like [Cursor.Clear] but reserves an
// n-byte prefix at the start so that Prepend* calls (see prepend.go) can
// fill the reserved region backwards, independently of writePosition's
// forward progress through the body written after it.
func (c *Cursor) ClearAndPad(n int64) error {
	c.Clear()

	if err := c.EnsureCapacity(c.globalStart() + n); err != nil {
		return err
	}

	c.readPosition = c.globalStart() + n
	c.writePosition = c.globalStart() + n
	c.readLimit = c.writePosition
	c.prependPosition = c.writePosition

	return nil
}

// EnsureCapacity grows the backing store (if elastic) so that offset n is
// writable, without moving any position. This is [Cursor.writeCheckOffset]
// with adding=0, per spec §4.5.
func (c *Cursor) EnsureCapacity(n int64) error {
	return c.writeCheckOffset(n, 0)
}

// writeCheckOffset implements spec §4.5's elastic growth policy exactly:
//
//  1. offset < start()             -> BufferUnderflow
//  2. offset+adding <= safe_limit  -> ok
//  3. offset+adding > write_limit  -> DecoratedBufferOverflow
//  4. not elastic                  -> BufferOverflow
//  5. otherwise                    -> grow/migrate to cover offset+adding
func (c *Cursor) writeCheckOffset(offset, adding int64) error {
	if offset < c.globalStart() {
		return bioerrors.BufferUnderflow
	}

	if offset+adding <= c.globalSafeLimit() {
		return nil
	}

	if offset+adding > c.writeLimit {
		return bioerrors.NewDecoratedOverflow(offset, adding, c.writeLimit)
	}

	if !c.elastic {
		return bioerrors.BufferOverflow
	}

	return c.growTo(offset + adding)
}

// readCheckOffset bounds a read against the cursor's own read limit. A
// read ending past the current store's capacity migrates a mapped cursor
// the same way a write would, since the bytes simply aren't mapped yet. A
// read ending inside a mapped store's overlap grace window (past
// safe_limit but still within capacity) passes this check without a
// migration, and the store itself then rejects it with
// [bioerrors.BufferUnderflow]: store reads are bounded by safe_limit.
func (c *Cursor) readCheckOffset(offset, length int64) error {
	if offset < c.globalStart() {
		return bioerrors.BufferUnderflow
	}

	if offset+length > c.readLimit {
		return bioerrors.BufferUnderflow
	}

	if offset+length <= c.globalSafeLimit() {
		return nil
	}

	if offset+length <= c.globalCapacity() {
		return nil
	}

	if c.store.Kind() != bytesstore.KindMapped {
		return bioerrors.BufferUnderflow
	}

	return c.growTo(offset + length)
}

// growTo ensures the backing store covers offset min, reallocating
// (native/heap) or migrating to the mapper's next chunk (mapped) as
// needed. A no-op if the current store's capacity already covers min,
// which is what lets a mapped write land in the overlap grace window
// without a chunk swap.
func (c *Cursor) growTo(min int64) error {
	if min <= c.globalCapacity() {
		return nil
	}

	if c.store.Kind() == bytesstore.KindMapped {
		return c.growMapped(min)
	}

	return c.growAllocated(min)
}

func (c *Cursor) growMapped(min int64) error {
	newStore, err := c.mapper.AcquireChunkFor(min-1, c.owner)
	if err != nil {
		return err
	}

	oldStore := c.store
	c.store = newStore
	c.chunkBase = c.mapper.ChunkBase(min - 1)

	return oldStore.Refcount().Release(c.owner)
}

func (c *Cursor) growAllocated(min int64) error {
	oldCap := c.store.Capacity()

	newSize := max64(min, oldCap*3/2)
	newSize = roundUpToPage(newSize)

	if newSize > c.capacityCap {
		if min > c.capacityCap {
			return bioerrors.BufferOverflow
		}

		newSize = c.capacityCap
	}

	var newStore *bytesstore.Store

	var err error

	if c.store.Kind() == bytesstore.KindHeap {
		newStore = bytesstore.NewHeap(make([]byte, newSize), c.owner)
	} else {
		newStore, err = bytesstore.AllocNative(newSize, c.owner)
		if err != nil {
			return err
		}
	}

	if err := c.store.CopyTo(newStore); err != nil {
		return err
	}

	oldStore := c.store
	c.store = newStore

	return oldStore.Refcount().Release(c.owner)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}

func roundUpToPage(n int64) int64 {
	if n <= 0 {
		return pageSize
	}

	return (n + pageSize - 1) / pageSize * pageSize
}
