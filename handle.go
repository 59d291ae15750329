package anyarena

import "errors"

// ErrStaleHandle is returned by Handle.Get when the arena has been cleared
// or released since the handle was issued.
var ErrStaleHandle = errors.New("anyarena: stale handle: arena was cleared or released")

// Handle is a checked reference to an arena-allocated value. Unlike the
// raw pointers returned by Alloc and AllocDrop, a Handle remembers the
// arena generation it was issued under and refuses to resolve after a
// Clear or Release has invalidated its storage.
type Handle[T any] struct {
	arena *Arena
	ptr   *T
	gen   uint64
}

// AllocHandle allocates like Alloc and wraps the result in a Handle.
func AllocHandle[T any](a *Arena, init func() T) Handle[T] {
	return Handle[T]{arena: a, ptr: Alloc(a, init), gen: a.gen}
}

// AllocDropHandle allocates like AllocDrop and wraps the result in a Handle.
func AllocDropHandle[T any, PT DropPointer[T]](a *Arena, init func() T) Handle[T] {
	return Handle[T]{arena: a, ptr: AllocDrop[T, PT](a, init), gen: a.gen}
}

// Get resolves the handle. It returns ErrStaleHandle if the arena's
// generation has advanced since the handle was issued.
func (h Handle[T]) Get() (*T, error) {
	if h.arena == nil || h.gen != h.arena.gen {
		return nil, ErrStaleHandle
	}
	return h.ptr, nil
}

// MustGet resolves the handle and panics if it is stale.
func (h Handle[T]) MustGet() *T {
	p, err := h.Get()
	if err != nil {
		panic(err)
	}
	return p
}

// Valid reports whether the handle still resolves.
func (h Handle[T]) Valid() bool {
	return h.arena != nil && h.gen == h.arena.gen
}
