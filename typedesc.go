package anyarena

import (
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Dropper is implemented by types that need cleanup logic run before their
// arena storage is reclaimed. Values allocated through AllocDrop have Drop
// called exactly once, during Clear or Release.
type Dropper interface {
	Drop()
}

// DropPointer constrains the pointer type of a Drop-requiring T. It exists
// so AllocDrop can classify T at compile time: only types whose pointer
// implements Dropper are admitted to the Drop-requiring pool.
type DropPointer[T any] interface {
	*T
	Dropper
}

// typeDesc is the erased per-type record stored in front of every value in
// the Drop-requiring pool: how big the value is, how it must be aligned,
// and how to invoke its Drop through an untyped pointer.
type typeDesc struct {
	size  uintptr
	align uintptr
	drop  func(unsafe.Pointer)
	index uintptr // identity in the intern table; what chunk headers store
}

// Descriptors are interned once per concrete type for the lifetime of the
// program. Chunk headers identify a descriptor by its intern index rather
// than its address: reconstructing a pointer from a word parked in a byte
// buffer would have no provenance, so the header word stays a plain
// integer end to end.
var (
	descByType  sync.Map // reflect.Type -> *typeDesc
	descByIndex sync.Map // uintptr -> *typeDesc
	descCount   atomic.Uintptr
)

func typeDescOf[T any, PT DropPointer[T]]() *typeDesc {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if d, ok := descByType.Load(key); ok {
		return d.(*typeDesc)
	}
	var zero T
	d := &typeDesc{
		size:  unsafe.Sizeof(zero),
		align: unsafe.Alignof(zero),
		drop:  func(p unsafe.Pointer) { PT((*T)(p)).Drop() },
		index: descCount.Add(1),
	}
	actual, loaded := descByType.LoadOrStore(key, d)
	if !loaded {
		// Won the interning race: publish the index. A loser's index is
		// simply never referenced.
		descByIndex.Store(d.index, d)
	}
	return actual.(*typeDesc)
}

// The initialized flag is packed into the low bit of the header word; the
// descriptor index occupies the rest.

func packDesc(d *typeDesc, initialized bool) uintptr {
	w := d.index << 1
	if initialized {
		w |= 1
	}
	return w
}

func unpackDesc(w uintptr) (*typeDesc, bool) {
	d, ok := descByIndex.Load(w >> 1)
	if !ok {
		panic("anyarena: corrupt chunk header")
	}
	return d.(*typeDesc), w&1 == 1
}
