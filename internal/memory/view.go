// Package memory provides the lowest-level read/write/CAS primitives shared
// by every BytesStore kind: aligned load/store, volatile/ordered access, and
// compare-and-swap, over either a native address or an on-heap byte slice.
//
// Offsets are caller-checked. Nothing in this package performs bounds
// checking; that discipline lives one layer up, in pkg/bytesstore and
// pkg/bytes.
package memory

import (
	"unsafe"
)

// View is a reference to a byte-addressable region, either backed by a Go
// byte slice (heap) or by a raw address obtained from mmap or a manual
// allocation (native). Exactly one of the two forms is live at a time.
//
// A View does not own the memory it points at; callers are responsible for
// keeping the backing allocation alive for as long as a View referencing it
// is in use (the reference-counting layer in pkg/refcount exists for this).
type View struct {
	// Heap is the backing slice for a heap-kind view. Nil for native views.
	Heap []byte

	// Addr is the base address for a native-kind view. Ignored when Heap is
	// non-nil.
	Addr uintptr
}

// HeapView wraps a byte slice as a heap View.
func HeapView(b []byte) View { return View{Heap: b} }

// NativeView wraps a raw address as a native View.
func NativeView(addr uintptr) View { return View{Addr: addr} }

// IsNative reports whether v addresses native (off-heap) memory.
func (v View) IsNative() bool { return v.Heap == nil }

// ptr returns the address of byte offset off within v.
//
// For heap views this takes the address of the backing array's element at
// off, which is safe as long as off is in range and the slice outlives the
// returned pointer (true for every call site in this package: the pointer
// is consumed before the function returns, never stored).
func (v View) ptr(off int64) unsafe.Pointer {
	if v.Heap != nil {
		return unsafe.Pointer(&v.Heap[off])
	}

	return unsafe.Pointer(v.Addr + uintptr(off)) //nolint:govet // intentional address arithmetic over raw/mmap memory
}
