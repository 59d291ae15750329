package anyarena

// SizeInUse returns the total number of bytes currently allocated across
// both pools, including retired chunks and internal fragmentation due to
// alignment and headers.
func (a *Arena) SizeInUse() int {
	if a.head == nil {
		return 0
	}
	sum := a.head.fill + a.copyHead.fill
	for _, c := range a.retired {
		sum += c.fill
	}
	return int(sum)
}

// NumChunks returns the number of chunks currently owned by the arena,
// counting the two active heads and every retired chunk.
func (a *Arena) NumChunks() int {
	if a.head == nil {
		return 0
	}
	return 2 + len(a.retired)
}

// RetiredChunks returns the number of chunks awaiting destruction.
func (a *Arena) RetiredChunks() int {
	return len(a.retired)
}

// Capacity returns the total capacity (in bytes) of all chunks in the arena.
func (a *Arena) Capacity() int {
	if a.head == nil {
		return 0
	}
	sum := a.head.capacity() + a.copyHead.capacity()
	for _, c := range a.retired {
		sum += c.capacity()
	}
	return int(sum)
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(capacity)
}

// InitialSize returns the per-pool size the arena was constructed with,
// or 0 once the arena has been released.
func (a *Arena) InitialSize() int {
	if a.head == nil {
		return 0
	}
	return a.initial
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:     a.SizeInUse(),
		Capacity:      a.Capacity(),
		NumChunks:     a.NumChunks(),
		RetiredChunks: a.RetiredChunks(),
		InitialSize:   a.InitialSize(),
		Utilization:   a.Utilization(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse     int     // Bytes currently allocated
	Capacity      int     // Total capacity in bytes
	NumChunks     int     // Active plus retired chunks
	RetiredChunks int     // Chunks awaiting destruction
	InitialSize   int     // Per-pool size at construction
	Utilization   float64 // Ratio of used to total capacity (0.0-1.0)
}
