package anyarena

import (
	"math/bits"
	"unsafe"
)

// zerobase is the shared address returned for all zero-size allocations,
// mirroring the runtime's technique. It keeps zero-size values from
// minting pointers past the end of a full chunk.
var zerobase uintptr

// Alloc stores the value produced by init in the arena's plain-data pool
// and returns a pointer to it. The pointer stays valid until the next
// Clear or Release. T must not have cleanup obligations; use AllocDrop
// for types that implement Drop.
//
// init may itself allocate from the same arena.
func Alloc[T any](a *Arena, init func() T) *T {
	a.panicIfReleased()
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 {
		init()
		return (*T)(unsafe.Pointer(&zerobase))
	}
	p := a.allocCopy(size, unsafe.Alignof(zero))
	// The slot may hold stale bytes from before a Clear. Zero it so the
	// typed store below never runs a write barrier over garbage words.
	clear(unsafe.Slice((*byte)(p), size))
	ptr := (*T)(p)
	*ptr = init()
	return ptr
}

// AllocDrop stores the value produced by init in the arena's
// Drop-requiring pool and returns a pointer to it. The value's Drop method
// is invoked exactly once, when the arena is cleared or released, in
// allocation order within its chunk.
//
// The slot is committed in two phases: its header is written with the
// initialized bit clear before init runs and rewritten with the bit set
// only after the value is fully stored. If init panics, the panic
// propagates unchanged, the slot stays provisional, and no Drop ever runs
// over it; the arena remains fully usable and destructible.
//
// init may itself allocate from the same arena: the slot is reserved
// before init runs, so reentrant allocations receive disjoint space.
func AllocDrop[T any, PT DropPointer[T]](a *Arena, init func() T) *T {
	a.panicIfReleased()
	desc := typeDescOf[T, PT]()
	hdr, payload := a.allocDropInner(desc.size, desc.align)
	*(*uintptr)(hdr) = packDesc(desc, false)
	if desc.size == 0 {
		// The header still lands in the chunk so Drop runs, but the
		// payload shares zerobase: a zero-size slot whose header ends
		// exactly at capacity has no in-bounds byte to point at.
		payload = unsafe.Pointer(&zerobase)
	} else {
		clear(unsafe.Slice((*byte)(payload), desc.size))
	}
	ptr := (*T)(payload)
	*ptr = init()
	*(*uintptr)(hdr) = packDesc(desc, true)
	return ptr
}

// AllocSlice allocates a zeroed slice of n elements in the plain-data
// pool. Element types must not have cleanup obligations. Returns nil if
// n <= 0. Panics if the total byte size overflows.
func AllocSlice[T any](a *Arena, n int) []T {
	if n <= 0 {
		return nil
	}
	a.panicIfReleased()
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 {
		return unsafe.Slice((*T)(unsafe.Pointer(&zerobase)), n)
	}
	hi, total := bits.Mul(uint(size), uint(n))
	if hi != 0 || uintptr(total) > ^uintptr(0)-a.copyHead.fill {
		panic("anyarena: length overflow")
	}
	p := a.allocCopy(uintptr(total), unsafe.Alignof(zero))
	clear(unsafe.Slice((*byte)(p), total))
	return unsafe.Slice((*T)(p), n)
}
