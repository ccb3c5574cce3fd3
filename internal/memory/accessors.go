package memory

import (
	"sync/atomic"
	"unsafe"
)

// Plain, unaligned, native-endian typed access. Callers must have already
// validated that [off, off+width) lies within the view's backing storage.

func ReadByte(v View, off int64) byte { return *(*byte)(v.ptr(off)) }

func WriteByte(v View, off int64, val byte) { *(*byte)(v.ptr(off)) = val }

func ReadUint16(v View, off int64) uint16 { return *(*uint16)(v.ptr(off)) }

func WriteUint16(v View, off int64, val uint16) { *(*uint16)(v.ptr(off)) = val }

func ReadUint32(v View, off int64) uint32 { return *(*uint32)(v.ptr(off)) }

func WriteUint32(v View, off int64, val uint32) { *(*uint32)(v.ptr(off)) = val }

func ReadUint64(v View, off int64) uint64 { return *(*uint64)(v.ptr(off)) }

func WriteUint64(v View, off int64, val uint64) { *(*uint64)(v.ptr(off)) = val }

func ReadFloat32(v View, off int64) float32 {
	bits := ReadUint32(v, off)
	return *(*float32)(unsafe.Pointer(&bits))
}

func WriteFloat32(v View, off int64, val float32) {
	WriteUint32(v, off, *(*uint32)(unsafe.Pointer(&val)))
}

func ReadFloat64(v View, off int64) float64 {
	bits := ReadUint64(v, off)
	return *(*float64)(unsafe.Pointer(&bits))
}

func WriteFloat64(v View, off int64, val float64) {
	WriteUint64(v, off, *(*uint64)(unsafe.Pointer(&val)))
}

// Volatile reads (acquire) and ordered writes (release). These give the
// cross-thread ordering guarantees spec §5 requires for the seqlock-style
// coordination used by pkg/mmapfile and pkg/uniquetime: a volatile read
// that observes an ordered write also observes every plain write issued by
// the writer before it.

func ReadVolatileUint32(v View, off int64) uint32 {
	return atomic.LoadUint32((*uint32)(v.ptr(off)))
}

func WriteOrderedUint32(v View, off int64, val uint32) {
	atomic.StoreUint32((*uint32)(v.ptr(off)), val)
}

func ReadVolatileUint64(v View, off int64) uint64 {
	return atomic.LoadUint64((*uint64)(v.ptr(off)))
}

func WriteOrderedUint64(v View, off int64, val uint64) {
	atomic.StoreUint64((*uint64)(v.ptr(off)), val)
}

// CompareAndSwapUint32 performs a sequentially consistent 32-bit CAS.
func CompareAndSwapUint32(v View, off int64, old, new uint32) bool {
	return atomic.CompareAndSwapUint32((*uint32)(v.ptr(off)), old, new)
}

// CompareAndSwapUint64 performs a sequentially consistent 64-bit CAS.
func CompareAndSwapUint64(v View, off int64, old, new uint64) bool {
	return atomic.CompareAndSwapUint64((*uint64)(v.ptr(off)), old, new)
}

// AddUint64 atomically adds delta to the uint64 at off and returns the new
// value. Exposed to callers through bytesstore.Store.AddUint64.
func AddUint64(v View, off int64, delta uint64) uint64 {
	return atomic.AddUint64((*uint64)(v.ptr(off)), delta)
}
