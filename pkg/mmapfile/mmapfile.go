// Package mmapfile turns a regular file into a logical infinite-looking
// [bytesstore.Store] by mmapping chunk_size-byte windows on demand, with an
// optional overlap tail so a structure that straddles a chunk boundary can
// be written through a single mapping (spec §4.4).
//
// Grounded on pkg/slotcache/lock.go's registry-backed file handle lifecycle
// (open once, refcount the mapping, release on last close), generalized
// here from a single fixed-size region to an arbitrary number of
// lazily-mapped chunks.
package mmapfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/calvinalkan/gobytes/internal/memory"
	"github.com/calvinalkan/gobytes/pkg/bioerrors"
	"github.com/calvinalkan/gobytes/pkg/bytesstore"
	"github.com/calvinalkan/gobytes/pkg/fs"
	"github.com/calvinalkan/gobytes/pkg/reentrantlock"
	"github.com/calvinalkan/gobytes/pkg/refcount"
)

// SyncMode controls when a mapped chunk's dirty pages are flushed to disk.
type SyncMode int

const (
	// SyncNone never explicitly syncs; the OS writes back pages on its own
	// schedule.
	SyncNone SyncMode = iota

	// SyncOnClose msyncs each chunk only when the File itself is closed.
	SyncOnClose

	// SyncEveryChunk msyncs a chunk's range every time its refcount drops
	// to zero.
	SyncEveryChunk
)

// slowSyncThreshold is the point past which a msync is logged (spec §4.4:
// "slow syncs (>=5ms) are logged but not fatal").
const slowSyncThreshold = 5 * time.Millisecond

const defaultChunkSize = 64 << 20 // 64 MiB

// File maps a single on-disk file in chunk_size windows. The zero value is
// not usable; construct with [Open].
type File struct {
	path      string
	f         fs.File
	fd        uintptr
	chunkSize int64
	overlap   int64
	readOnly  bool
	syncMode  SyncMode
	pageSize  int64
	locks     *reentrantlock.Registry
	log       *slog.Logger

	mu     sync.Mutex
	length int64
	chunks map[int64]*chunk
}

type chunk struct {
	index     int64
	data      []byte // the raw mmap'd slice, needed for Munmap's length
	store     *bytesstore.Store
	start     int64 // file offset of data[0]
	safeLimit int64 // file offset up to which writes don't need remap
}

// Options configures [Open]. Zero value uses 64MiB chunks, no overlap,
// read-write, [SyncNone].
type Options struct {
	ChunkSize int64
	Overlap   int64
	ReadOnly  bool
	SyncMode  SyncMode
	Logger    *slog.Logger
}

// Open opens (creating if necessary, unless ReadOnly) the file at path and
// prepares it for chunked mapping. The file is not mapped until the first
// [File.AcquireChunkFor] call.
func Open(fsys fs.FS, locks *reentrantlock.Registry, path string, opts Options) (*File, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	pageSize := int64(unix.Getpagesize())
	chunkSize = roundUpToPage(chunkSize, pageSize)

	flag := os.O_RDWR
	if opts.ReadOnly {
		flag = os.O_RDONLY
	} else {
		flag |= os.O_CREATE
	}

	f, err := fsys.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", bioerrors.IORuntime, path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: stat %q: %w", bioerrors.IORuntime, path, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &File{
		path:      path,
		f:         f,
		fd:        f.Fd(),
		chunkSize: chunkSize,
		overlap:   opts.Overlap,
		readOnly:  opts.ReadOnly,
		syncMode:  opts.SyncMode,
		pageSize:  pageSize,
		locks:     locks,
		log:       logger,
		length:    info.Size(),
		chunks:    make(map[int64]*chunk),
	}, nil
}

// ChunkCount returns the number of chunks needed to cover the current file
// length.
func (mf *File) ChunkCount() int64 {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.length == 0 {
		return 0
	}

	return (mf.length + mf.chunkSize - 1) / mf.chunkSize
}

// FileLength returns the current logical file length.
func (mf *File) FileLength() int64 {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	return mf.length
}

// ChunkSize returns the configured (page-rounded) chunk size.
func (mf *File) ChunkSize() int64 { return mf.chunkSize }

// ChunkBase returns the file offset of the start of the chunk containing
// offset. The cursor layer uses this to translate its own absolute
// positions into store-local offsets after a chunk migration.
func (mf *File) ChunkBase(offset int64) int64 {
	return (offset / mf.chunkSize) * mf.chunkSize
}

// AcquireChunkFor returns the store covering offset, reserving it on
// behalf of owner. If the chunk is not yet mapped, it is created: the file
// is extended if necessary (rejected for read-only files), the region is
// mmapped, and a refcounted [bytesstore.Store] is returned with
// start <= offset < start+safeLimit.
func (mf *File) AcquireChunkFor(offset int64, owner refcount.Owner) (*bytesstore.Store, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", bioerrors.BufferUnderflow, offset)
	}

	index := offset / mf.chunkSize

	mf.mu.Lock()

	if c, ok := mf.chunks[index]; ok {
		if err := c.store.Refcount().Reserve(owner); err != nil {
			mf.mu.Unlock()
			return nil, err
		}
		mf.mu.Unlock()
		return c.store, nil
	}

	c, err := mf.mapChunkLocked(index)
	if err != nil {
		mf.mu.Unlock()
		return nil, err
	}

	// mapChunkLocked creates the chunk's store owned only by the File
	// itself (see its doc comment); the actual caller must reserve its
	// own stake before mf.mu is released, or a concurrent Close could
	// tear the chunk down out from under it.
	err = c.store.Refcount().Reserve(owner)

	mf.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return c.store, nil
}

// mapChunkLocked maps the chunk at index. Caller must hold mf.mu. The
// returned store is created with a refcount of 1, owned by the File
// itself; callers' Reserve calls (above) stack on top of it, and the File
// never releases its own reservation until the chunk is evicted in Close.
func (mf *File) mapChunkLocked(index int64) (*chunk, error) {
	start := index * mf.chunkSize
	mapLen := mf.chunkSize + mf.overlap
	mapLen = roundUpToPage(mapLen, mf.pageSize)

	needed := start + mapLen
	if needed > mf.length {
		if mf.readOnly {
			// Reads past the current file length are satisfied by a mapping
			// limited to what actually exists; callers walking past EOF see
			// BufferUnderflow from the store itself.
			needed = mf.length
			if needed <= start {
				return nil, fmt.Errorf("%w: offset %d past end of read-only file (length %d)", bioerrors.BufferUnderflow, start, mf.length)
			}
			mapLen = roundUpToPage(needed-start, mf.pageSize)
		} else {
			if err := unix.Ftruncate(int(mf.fd), needed); err != nil {
				return nil, fmt.Errorf("%w: growing %q to %d: %w", bioerrors.IORuntime, mf.path, needed, err)
			}
			// Ftruncate zero-fills the newly allocated range.
			mf.length = needed
		}
	}

	prot := unix.PROT_READ
	if !mf.readOnly {
		prot |= unix.PROT_WRITE
	}

	data, err := unix.Mmap(int(mf.fd), start, int(mapLen), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %q at %d len %d: %w", bioerrors.IORuntime, mf.path, start, mapLen, err)
	}

	safeLimit := mf.chunkSize
	if safeLimit > int64(len(data)) {
		safeLimit = int64(len(data))
	}

	c := &chunk{
		index:     index,
		data:      data,
		start:     start,
		safeLimit: safeLimit,
	}

	view := memory.NativeView(sliceAddr(data))
	c.store = bytesstore.NewMapped(view, int64(len(data)), safeLimit, mf.readOnly, mf, mf.releaseChunkFunc(c))

	mf.chunks[index] = c

	return c, nil
}

// releaseChunkFunc returns the onRelease callback [bytesstore.NewMapped]
// fires when c's refcount reaches zero: optional msync, munmap, and
// removal from the chunk table. This is the transient "ReleasePending"
// state of spec §4.4's chunk state machine; by the time this returns, the
// chunk is back to Unmapped.
func (mf *File) releaseChunkFunc(c *chunk) func() error {
	return func() error {
		var syncErr error
		if mf.syncMode == SyncEveryChunk {
			syncErr = mf.msync(c)
		}

		munmapErr := unix.Munmap(c.data)

		mf.mu.Lock()
		delete(mf.chunks, c.index)
		mf.mu.Unlock()

		if syncErr != nil {
			return syncErr
		}

		return munmapErr
	}
}

func (mf *File) msync(c *chunk) error {
	started := time.Now()

	err := unix.Msync(c.data, unix.MS_SYNC)

	if elapsed := time.Since(started); elapsed >= slowSyncThreshold {
		mf.log.Warn("slow msync", "path", mf.path, "chunk", c.index, "elapsed", elapsed)
	}

	if err != nil {
		return fmt.Errorf("%w: msync %q chunk %d: %w", bioerrors.IORuntime, mf.path, c.index, err)
	}

	return nil
}

// Lock acquires an exclusive, re-entrant lock covering the file identified
// by this mapping. pos and size document the caller's intended byte range
// for readability (matching spec §4.4's lock(pos, size, shared) contract);
// the underlying primitive ([reentrantlock.Registry], itself backed by
// flock(2)) locks the whole file, not a sub-range, so two non-overlapping
// regions of the same file still contend. See DESIGN.md for why whole-file
// locking was accepted here.
func (mf *File) Lock(owner reentrantlock.Owner, pos, size int64, shared bool) error {
	_, _, _ = pos, size, shared // documented, not separately enforced; see doc comment

	return mf.locks.Lock(mf.path, owner)
}

// TryLock is the non-blocking form of [File.Lock].
func (mf *File) TryLock(owner reentrantlock.Owner, pos, size int64, shared bool) error {
	_, _, _ = pos, size, shared

	return mf.locks.TryLock(mf.path, owner)
}

// Unlock releases a lock acquired with [File.Lock] or [File.TryLock].
func (mf *File) Unlock(owner reentrantlock.Owner) error {
	return mf.locks.Unlock(mf.path, owner)
}

// Close releases the File's own reservation on every still-mapped chunk
// and closes the underlying file descriptor. Chunks still held by other
// owners are only actually unmapped once those owners release too.
func (mf *File) Close() error {
	mf.mu.Lock()
	chunks := make([]*chunk, 0, len(mf.chunks))
	for _, c := range mf.chunks {
		chunks = append(chunks, c)
	}
	mf.mu.Unlock()

	var firstErr error

	if mf.syncMode == SyncOnClose {
		for _, c := range chunks {
			if err := mf.msync(c); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	for _, c := range chunks {
		if err := c.store.Refcount().Release(mf); err != nil && !errors.Is(err, refcount.ErrClosedState) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if err := mf.f.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("%w: closing %q: %w", bioerrors.IORuntime, mf.path, err)
	}

	return firstErr
}

func roundUpToPage(n, pageSize int64) int64 {
	if n <= 0 {
		return pageSize
	}

	return (n + pageSize - 1) / pageSize * pageSize
}
