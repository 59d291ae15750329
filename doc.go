// Package anyarena implements a chunked bump allocator (memory arena) that
// can hold values of any type and runs per-value cleanup when the arena is
// cleared or released.
//
// # Overview
//
// The arena hands out many heterogeneously-typed values from shared backing
// chunks and frees them in bulk. Values whose type implements Drop are
// stored with a small erased header recording how to clean them up; plain
// data is stored headerless in a separate chunk pool. This makes the arena
// a good fit for parser nodes, compiler IR, and other workloads that build
// many short-lived objects and discard them together.
//
// # Basic Usage
//
//	a := anyarena.NewArena(0) // use the default initial size
//	defer a.Release()         // runs Drop for everything that needs it
//
//	// Plain data: no header, no cleanup.
//	p := anyarena.Alloc(a, func() int { return 42 })
//	buf := a.AllocBytes(1024)
//
//	// Values that need cleanup: Drop runs on Clear or Release.
//	f := anyarena.AllocDrop(a, func() File { return openTemp() })
//
//	// Invalidate everything and reuse the two active buffers.
//	a.Clear()
//
// # Cleanup Semantics
//
// A type opts into cleanup by giving its pointer type a Drop method. Each
// value allocated through AllocDrop has Drop invoked exactly once, in
// allocation order within each chunk: the active chunk first, then retired
// chunks in retirement order.
//
// If an initializer panics, the panic propagates to the caller and the
// half-built slot is abandoned: its header is never committed, so no Drop
// runs over it and the arena remains safe to use, clear, and release.
// Initializers may themselves allocate from the same arena.
//
// # Memory Layout
//
// Each pool starts with one 32-byte chunk (configurable via NewArena).
// When a chunk fills up, a replacement sized to the next power of two is
// installed and the old chunk is retired; nothing is copied, so previously
// returned pointers stay valid until Clear or Release destroys their
// chunk. Clear keeps the two most recently grown buffers for reuse and
// frees everything else.
//
// # Important Notes
//
//   - An arena has a single exclusive owner; it is not goroutine-safe.
//   - All pointers, slices, and handles become invalid on Clear or Release.
//     Use Handle when a runtime-checked reference is needed.
//   - The arena's chunks are untyped bytes: the garbage collector does not
//     trace pointers stored inside arena values, so an arena value must not
//     hold the only reference to a separately heap-allocated object.
//   - Using an arena after Release panics.
package anyarena
