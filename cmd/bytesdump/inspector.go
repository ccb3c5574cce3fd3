package main

import (
	"fmt"

	gobytes "github.com/calvinalkan/gobytes/pkg/bytes"
	"github.com/calvinalkan/gobytes/pkg/bytes/hexdump"
	"github.com/calvinalkan/gobytes/pkg/fs"
	"github.com/calvinalkan/gobytes/pkg/mmapfile"
	"github.com/calvinalkan/gobytes/pkg/reentrantlock"
)

// inspector owns the mapped file an interactive bytesdump session is
// attached to, chunk-acquiring on demand for each command so no single
// command call holds a chunk reference longer than it needs to.
type inspector struct {
	mapper *mmapfile.File
	owner  any
}

func openInspector(fsys fs.FS, locks *reentrantlock.Registry, path string, chunkSize int64) (*inspector, error) {
	mapper, err := mmapfile.Open(fsys, locks, path, mmapfile.Options{ChunkSize: chunkSize})
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}

	return &inspector{mapper: mapper, owner: new(struct{})}, nil
}

func (insp *inspector) Close() error {
	return insp.mapper.Close()
}

func (insp *inspector) FileLength() int64 { return insp.mapper.FileLength() }
func (insp *inspector) ChunkSize() int64  { return insp.mapper.ChunkSize() }
func (insp *inspector) ChunkCount() int64 { return insp.mapper.ChunkCount() }

// Peek renders length bytes starting at offset as a hex dump. It does
// not cross a chunk boundary: offset and offset+length must both fall
// within the chunk that covers offset.
func (insp *inspector) Peek(offset, length int64) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive, got %d", length)
	}

	store, err := insp.mapper.AcquireChunkFor(offset, insp.owner)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Refcount().Release(insp.owner) }()

	chunkBase := insp.mapper.ChunkBase(offset)
	local := offset - chunkBase

	buf := make([]byte, length)
	if err := store.ReadBytes(local, buf); err != nil {
		return "", fmt.Errorf("reading %d bytes at offset %d: %w", length, offset, err)
	}

	heap := gobytes.NewHeap(make([]byte, length), "bytesdump")
	defer func() { _ = heap.Close() }()

	dump := hexdump.New(heap)

	if err := dump.WriteBytes(buf); err != nil {
		return "", err
	}

	return dump.ToHexString()
}

// WatchUint64 reads the volatile uint64 at offset, the same access
// uniquetime.Provider uses for its last-time word — useful for
// eyeballing a running CAS loop from outside the process.
func (insp *inspector) WatchUint64(offset int64) (uint64, error) {
	store, err := insp.mapper.AcquireChunkFor(offset, insp.owner)
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Refcount().Release(insp.owner) }()

	chunkBase := insp.mapper.ChunkBase(offset)

	return store.ReadVolatileUint64(offset - chunkBase)
}
