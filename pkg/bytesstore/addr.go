package bytesstore

import "unsafe"

// sliceAddr returns the address of a slice's backing array. Used only for
// slices returned by mmap (pkg/bytesstore's own anonymous allocations and
// pkg/mmapfile's file mappings): that memory lives outside the Go heap, so
// the address is stable for as long as the mapping is held, unlike a
// regular Go-allocated slice which the GC may relocate.
func sliceAddr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}

	return uintptr(unsafe.Pointer(&b[0]))
}
