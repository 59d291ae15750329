package anyarena

import "unsafe"

// DefaultInitialSize is the number of bytes preallocated for each pool when
// NewArena is given a size <= 0.
const DefaultInitialSize = 32

// Arena is a chunked bump allocator that can hold values of any type and
// runs Drop for the values that need it when the arena is cleared or
// released. Values with Drop obligations and plain data live in separate
// chunk pools so plain data carries no per-value header.
//
// An Arena has a single exclusive owner and is not goroutine-safe.
type Arena struct {
	head     *chunk // active chunk for Drop-requiring values
	copyHead *chunk // active chunk for plain data
	retired  []*chunk
	gen      uint64
	initial  int
}

// NewArena creates an Arena with both pools pre-sized to initialSize bytes.
// If initialSize <= 0, DefaultInitialSize is used.
func NewArena(initialSize int) *Arena {
	if initialSize <= 0 {
		initialSize = DefaultInitialSize
	}
	return &Arena{
		head:     newChunk(uintptr(initialSize), false),
		copyHead: newChunk(uintptr(initialSize), true),
		initial:  initialSize,
	}
}

// AllocBytes returns a byte slice of length n pointing into the arena's
// plain-data pool. The contents are unspecified: after a Clear the bytes
// may hold stale data. Returns nil if n <= 0.
//
// Panics if adding n to the pool's fill cursor would overflow.
func (a *Arena) AllocBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	a.panicIfReleased()
	if uintptr(n) > ^uintptr(0)-a.copyHead.fill {
		panic("anyarena: length overflow")
	}
	p := a.allocCopy(uintptr(n), 1)
	return unsafe.Slice((*byte)(p), n)
}

// allocCopy reserves size bytes at the requested alignment in the
// plain-data pool and returns a pointer to the reservation.
func (a *Arena) allocCopy(size, align uintptr) unsafe.Pointer {
	c := a.copyHead
	start := alignUp(c.fill, align)
	end := start + size
	if end > c.capacity() {
		a.grow(&a.copyHead, end-c.fill, true)
		c = a.copyHead
		start = 0
		end = size
	}
	c.fill = end
	return c.ptrAt(start)
}

// allocDropInner reserves a header word plus an aligned payload of size
// bytes in the Drop-requiring pool. The fill cursor is advanced before
// returning, so an initializer that reentrantly allocates receives space
// beyond this reservation.
func (a *Arena) allocDropInner(size, align uintptr) (hdr, payload unsafe.Pointer) {
	c := a.head
	hdrStart := c.fill
	start := alignUp(hdrStart+ptrSize, align)
	end := alignUp(start+size, ptrAlign)
	if end > c.capacity() {
		a.grow(&a.head, end-hdrStart, false)
		c = a.head
		hdrStart = 0
		start = alignUp(ptrSize, align)
		end = alignUp(start+size, ptrAlign)
	}
	c.fill = end
	return c.ptrAt(hdrStart), c.ptrAt(start)
}

// grow replaces the active chunk of a pool with a larger one and retires
// the old chunk. Go slices cannot be extended in place, so replacement is
// the only growth path; nothing is copied and addresses in the retired
// chunk stay valid until it is destroyed. An empty displaced chunk is
// discarded rather than retired.
func (a *Arena) grow(head **chunk, needed uintptr, isCopy bool) {
	old := *head
	*head = newChunk(nextPow2(max(needed, old.capacity())), isCopy)
	if old.fill != 0 {
		a.retired = append(a.retired, old)
	}
}

// EnsureCapacity grows the plain-data pool if it cannot fit n more bytes
// at pointer alignment.
func (a *Arena) EnsureCapacity(n int) {
	a.panicIfReleased()
	if n <= 0 {
		return
	}
	c := a.copyHead
	end := alignUp(c.fill, ptrAlign) + uintptr(n)
	if end > c.capacity() {
		a.grow(&a.copyHead, end-c.fill, true)
	}
}

// Clear runs Drop over every initialized value in the Drop-requiring pool,
// frees all retired chunks, and rewinds the two active chunks for reuse.
// Every pointer, slice, and handle previously returned by the arena is
// invalid once Clear returns.
//
// Drops run in allocation order: the active chunk's values first, then
// retired chunks in the order they were retired.
func (a *Arena) Clear() {
	a.panicIfReleased()
	a.head.destroy()
	a.head.fill = 0
	a.copyHead.fill = 0
	for _, c := range a.retired {
		if !c.isCopy {
			c.destroy()
		}
	}
	a.retired = nil
	a.gen++
}

// Release runs the same Drop pass as Clear, then frees all chunks and
// makes the arena unusable. Any subsequent allocation panics. Release is
// idempotent.
func (a *Arena) Release() {
	if a.head == nil {
		return
	}
	a.head.destroy()
	for _, c := range a.retired {
		if !c.isCopy {
			c.destroy()
		}
	}
	a.head = nil
	a.copyHead = nil
	a.retired = nil
	a.gen++
}

func (a *Arena) panicIfReleased() {
	if a.head == nil {
		panic("anyarena: use after Release()")
	}
}
