package mcast

import "github.com/rollmesh/trickle/pkg/serial"

// serialLt/serialGt compare a live sequence value against a possibly-unset
// (-1) bound stored as int32. The caller is responsible for checking the
// bound isn't noBound first when that matters; these two treat any int32
// outside uint16 range as simply not-equal-comparable, which never arises
// here because callers only ever pass noBound (handled separately) or a
// value produced by serial.Value.
func serialLt(v seqValue, bound int32) bool {
	return serial.Lt(v, seqValue(bound))
}

func serialGt(v seqValue, bound int32) bool {
	return serial.Gt(v, seqValue(bound))
}

// window is one sliding-window slot. lowerBound, upperBound and
// minListed use -1 as the "unset" sentinel, matching the original's
// int16_t "lolipop" fields.
type window struct {
	used       bool
	seedID     SeedID
	m          M
	lowerBound int32
	upperBound int32
	minListed  int32
	count      int
	// listed is the "listed by the current control message" bit, cleared
	// at the start of every ICMPInput call.
	listed bool
}

const noBound int32 = -1

func newWindow() window {
	return window{lowerBound: noBound, upperBound: noBound, minListed: noBound}
}

// winAllocate scans the fixed window table for the first free slot.
// Returns -1, false if the table is full.
func (e *Engine) winAllocate() (int, bool) {
	for i := range e.windows {
		if !e.windows[i].used {
			e.windows[i] = newWindow()
			e.windows[i].used = true
			return i, true
		}
	}
	return -1, false
}

// winLookup returns the index of the used window matching (seed, m), or
// -1, false.
func (e *Engine) winLookup(seed SeedID, m M) (int, bool) {
	for i := range e.windows {
		w := &e.windows[i]
		if w.used && w.m == m && seedEqual(w.seedID, seed, e.cfg.SeedMode) {
			return i, true
		}
	}
	return -1, false
}

// winFree clears the used bit for window i.
func (e *Engine) winFree(i int) {
	e.windows[i].used = false
}

// updateBounds recomputes lower_bound/upper_bound for every window from
// the current buffer contents.
//
// Grounded literally on original_source's window_update_bounds(): only
// lower_bound is reset to -1 before the scan. upper_bound is never reset
// here, so across the lifetime of a window it is monotonically
// non-decreasing and only returns to -1 when the window is freed and
// reallocated (winAllocate resets both). This is deliberate fidelity to
// the reference implementation, not an oversight.
func (e *Engine) updateBounds() {
	for i := range e.windows {
		e.windows[i].lowerBound = noBound
	}
	for i := range e.buffers {
		p := &e.buffers[i]
		if !p.used {
			continue
		}
		w := &e.windows[p.win]
		if w.lowerBound == noBound || serialLt(p.seqVal, w.lowerBound) {
			w.lowerBound = int32(p.seqVal)
		}
		if w.upperBound == noBound || serialGt(p.seqVal, w.upperBound) {
			w.upperBound = int32(p.seqVal)
		}
	}
}
