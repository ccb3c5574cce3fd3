package bytesstore

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/calvinalkan/gobytes/pkg/bioerrors"
	"github.com/calvinalkan/gobytes/pkg/refcount"
)

// AllocNative allocates size bytes of anonymous, zero-filled native memory
// and wraps it as a [Store] owned by creator. This is the native-store
// allocator pkg/bytes' elastic growth policy (spec §4.5) calls on resize:
// Go has no direct malloc, so an anonymous private mmap plays that role,
// the same way pkg/slotcache maps a real file for its fixed-capacity
// region.
func AllocNative(size int64, creator refcount.Owner) (*Store, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: alloc size must be > 0, got %d", bioerrors.IORuntime, size)
	}

	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: anonymous mmap of %d bytes: %w", bioerrors.IORuntime, size, err)
	}

	addr := sliceAddr(data)

	return NewNative(addr, size, creator, func() error {
		return unix.Munmap(data)
	}), nil
}
