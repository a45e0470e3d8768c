// Package progress defines the progress snapshots emitted by long-running
// import and export operations.
package progress

// Progress is a point-in-time snapshot of a run.
//
// Current counts completed work in the same unit as Total (card copies for
// imports, images for exports). The final snapshot of a run always has
// Current == Total.
type Progress struct {
	Current int
	Total   int
	Label   string // what was just processed, e.g. a card name
}

// Func receives progress snapshots. Implementations must not block.
type Func func(Progress)

// Emit calls f with p. A nil Func is a no-op.
func (f Func) Emit(p Progress) {
	if f != nil {
		f(p)
	}
}

// Fraction returns Current/Total clamped to [0, 1]. An empty run is complete.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	fr := float64(p.Current) / float64(p.Total)
	if fr > 1 {
		return 1
	}
	if fr < 0 {
		return 0
	}
	return fr
}

// Done reports whether the snapshot is the final one of its run.
func (p Progress) Done() bool {
	return p.Current >= p.Total
}
