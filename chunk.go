package anyarena

import (
	"math/bits"
	"unsafe"
)

const (
	ptrSize  = unsafe.Sizeof(uintptr(0))
	ptrAlign = unsafe.Alignof(uintptr(0))
)

// chunk is a single backing buffer within an arena. fill is the index of
// the first unused byte; once a chunk is retired its fill never changes
// until the chunk is destroyed.
type chunk struct {
	buf    []byte
	fill   uintptr
	isCopy bool // holds only values without Drop obligations
}

// newChunk allocates a chunk of at least size bytes. The length is rounded
// up to pointer size so the buffer base is pointer-aligned and offset
// arithmetic alone satisfies every Go alignment.
func newChunk(size uintptr, isCopy bool) *chunk {
	return &chunk{
		buf:    make([]byte, alignUp(size, ptrAlign)),
		isCopy: isCopy,
	}
}

func (c *chunk) capacity() uintptr {
	return uintptr(len(c.buf))
}

func (c *chunk) ptrAt(off uintptr) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(c.buf)), off)
}

// destroy walks the chunk from offset 0 and runs Drop for every value
// whose header carries the initialized bit. Slots whose initializer
// panicked keep a cleared bit and are skipped. Only chunks from the
// Drop-requiring pool are ever walked; the object count is implied by
// fill, nothing else is stored.
func (c *chunk) destroy() {
	idx := uintptr(0)
	for idx < c.fill {
		desc, done := unpackDesc(*(*uintptr)(c.ptrAt(idx)))
		start := alignUp(idx+ptrSize, desc.align)
		if done {
			if desc.size == 0 {
				// Zero-size payloads live at zerobase, never in the chunk.
				desc.drop(unsafe.Pointer(&zerobase))
			} else {
				desc.drop(c.ptrAt(start))
			}
		}
		// Next header lives at the next pointer-aligned offset.
		idx = alignUp(start+desc.size, ptrAlign)
	}
}

// alignUp rounds n up to a multiple of align, which must be a power of two.
func alignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// nextPow2 returns the smallest power of two strictly greater than n.
func nextPow2(n uintptr) uintptr {
	return uintptr(1) << bits.Len(uint(n))
}
