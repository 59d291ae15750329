package anyarena

import (
	"testing"
	"unsafe"
)

// dropCounter bumps a shared counter when the arena cleans it up.
type dropCounter struct {
	count *int
}

func (d *dropCounter) Drop() { *d.count++ }

// smallDrop is a zero-size Drop-requiring type. Zero-size values cannot
// carry state, so its Drop reports to a file-scoped counter.
type smallDrop struct{}

var smallDropCount int

func (smallDrop) Drop() { smallDropCount++ }

// orderedDrop records the order cleanup runs in.
type orderedDrop struct {
	id  int
	log *[]int
}

func (d *orderedDrop) Drop() { *d.log = append(*d.log, d.id) }

func TestDropCountExact(t *testing.T) {
	count := 0
	a := NewArena(0)
	for i := 0; i < 100; i++ {
		AllocDrop(a, func() dropCounter { return dropCounter{&count} })
		// Odd size and alignment between the droppable values to keep the
		// walk's offset arithmetic honest.
		Alloc(a, func() [3]byte { return [3]byte{0, 1, 2} })
	}
	if count != 0 {
		t.Fatalf("drops before Release = %d, want 0", count)
	}

	a.Release()
	if count != 100 {
		t.Errorf("drops after Release = %d, want 100", count)
	}

	// Idempotent: a second Release must not run anything again.
	a.Release()
	if count != 100 {
		t.Errorf("drops after second Release = %d, want 100", count)
	}
}

func TestClearTriggersDrop(t *testing.T) {
	count := 0
	for i := 0; i < 10; i++ {
		a := NewArena(0)
		for j := 0; j < 100; j++ {
			AllocDrop(a, func() dropCounter { return dropCounter{&count} })
			Alloc(a, func() [3]byte { return [3]byte{0, 1, 2} })
		}
		a.Clear()
		if count != i*100+100 {
			t.Fatalf("cumulative drops after iteration %d = %d, want %d", i, count, i*100+100)
		}
		a.Release()
	}
}

func TestClearUnderLoad(t *testing.T) {
	count := 0
	a := NewArena(0)
	for i := 0; i < 10; i++ {
		a.Clear()
		for j := 0; j < 10000; j++ {
			Alloc(a, func() point { return point{1, 2, 3} })
			AllocDrop(a, func() dropCounter { return dropCounter{&count} })
		}
	}
	a.Release()

	// Exactly one drop per Drop-requiring record across the whole run.
	if count != 10*10000 {
		t.Errorf("total drops = %d, want %d", count, 10*10000)
	}
}

func TestSmallDropCount(t *testing.T) {
	smallDropCount = 0
	a := NewArena(0)
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			AllocDrop(a, func() smallDrop { return smallDrop{} })
		}
		Alloc(a, func() [3]byte { return [3]byte{0, 1, 2} })
	}
	a.Release()

	if smallDropCount != 100 {
		t.Errorf("zero-size drops = %d, want 100", smallDropCount)
	}
}

func TestInitPanicSafety(t *testing.T) {
	count := 0
	a := NewArena(0)
	for i := 0; i < 3; i++ {
		AllocDrop(a, func() dropCounter { return dropCounter{&count} })
	}

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("recovered %v, want boom", r)
			}
		}()
		AllocDrop(a, func() dropCounter { panic("boom") })
	}()

	// The arena stays usable after the abandoned slot.
	AllocDrop(a, func() dropCounter { return dropCounter{&count} })
	Alloc(a, func() point { return point{1, 2, 3} })

	a.Release()
	// 3 before the panic, 1 after. The failed slot contributes zero.
	if count != 4 {
		t.Errorf("drops after Release = %d, want 4", count)
	}
}

func TestInitPanicThenClear(t *testing.T) {
	count := 0
	a := NewArena(0)
	defer a.Release()

	AllocDrop(a, func() dropCounter { return dropCounter{&count} })
	func() {
		defer func() { recover() }()
		AllocDrop(a, func() dropCounter { panic("boom") })
	}()

	a.Clear()
	if count != 1 {
		t.Fatalf("drops after Clear = %d, want 1", count)
	}

	// The rewound buffer is reused over the abandoned slot's bytes.
	AllocDrop(a, func() dropCounter { return dropCounter{&count} })
	a.Clear()
	if count != 2 {
		t.Errorf("drops after second Clear = %d, want 2", count)
	}
}

func TestDropReentrant(t *testing.T) {
	count := 0
	a := NewArena(32)
	var inner *dropCounter
	outer := AllocDrop(a, func() dropCounter {
		inner = AllocDrop(a, func() dropCounter { return dropCounter{&count} })
		return dropCounter{&count}
	})
	if outer == inner {
		t.Fatal("reentrant allocation overlapped the outer reservation")
	}

	a.Release()
	if count != 2 {
		t.Errorf("drops = %d, want 2", count)
	}
}

func TestDropOrder(t *testing.T) {
	var log []int
	a := NewArena(4096) // large enough that nothing is retired
	for i := 0; i < 10; i++ {
		AllocDrop(a, func() orderedDrop { return orderedDrop{id: i, log: &log} })
	}
	a.Release()

	if len(log) != 10 {
		t.Fatalf("drop log length = %d, want 10", len(log))
	}
	for i, id := range log {
		if id != i {
			t.Errorf("log[%d] = %d, want %d (allocation order)", i, id, i)
		}
	}
}

func TestTypeDescInterned(t *testing.T) {
	d1 := typeDescOf[dropCounter]()
	d2 := typeDescOf[dropCounter]()
	if d1 != d2 {
		t.Error("descriptor not interned: two addresses for one type")
	}
	if d1.size != unsafe.Sizeof(dropCounter{}) || d1.align != unsafe.Alignof(dropCounter{}) {
		t.Errorf("dropCounter descriptor = {size %d, align %d}, want {%d, %d}",
			d1.size, d1.align, unsafe.Sizeof(dropCounter{}), unsafe.Alignof(dropCounter{}))
	}
}

func TestDescPacking(t *testing.T) {
	d := typeDescOf[dropCounter]()

	w := packDesc(d, false)
	got, done := unpackDesc(w)
	if got != d || done {
		t.Errorf("unpack(pack(d, false)) = %p, %v, want %p, false", got, done, d)
	}

	w = packDesc(d, true)
	got, done = unpackDesc(w)
	if got != d || !done {
		t.Errorf("unpack(pack(d, true)) = %p, %v, want %p, true", got, done, d)
	}

	// The header word is a plain intern index, never a reconstructed
	// address: unpack must go through the table, not pointer arithmetic.
	if w>>1 != d.index {
		t.Errorf("packed word carries %d, want intern index %d", w>>1, d.index)
	}
	if d.index == 0 {
		t.Error("intern indexes start at 1")
	}
	if other := typeDescOf[smallDrop](); other.index == d.index {
		t.Error("two types share one intern index")
	}
}

func TestZeroSizeDropAtChunkBoundary(t *testing.T) {
	smallDropCount = 0
	// Four header-only records fill a 32-byte head chunk exactly; the last
	// header ends flush with capacity, so the zero-size payload must not
	// point past the buffer.
	a := NewArena(32)
	for i := 0; i < 4; i++ {
		p := AllocDrop(a, func() smallDrop { return smallDrop{} })
		if unsafe.Pointer(p) != unsafe.Pointer(&zerobase) {
			t.Fatalf("zero-size payload %d at %p, want zerobase %p", i, p, &zerobase)
		}
	}
	a.Release()

	if smallDropCount != 4 {
		t.Errorf("zero-size drops = %d, want 4", smallDropCount)
	}
}

func BenchmarkAllocDrop(b *testing.B) {
	count := 0
	a := NewArena(1024 * 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AllocDrop(a, func() dropCounter { return dropCounter{&count} })
		if i%1000 == 999 {
			a.Clear()
		}
	}
}
