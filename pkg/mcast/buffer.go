package mcast

// packet is one fixed packet-buffer slot. buf holds a private copy of
// the datagram bytes so the caller's slice can be reused/overwritten
// the instant Accept/Out returns. active/dwell are elapsed-tick
// counters accumulated one controller fire at a time, not absolute
// deadlines; listed is the "matched by the most recent consistency
// check" bit, cleared at the start of every ICMPInput call.
type packet struct {
	used     bool
	mustSend bool
	listed   bool
	seqVal   seqValue
	win      int
	active   Tick
	dwell    Tick
	buf      []byte
}

// bufAllocate returns a free buffer slot, reclaiming one if the table is
// full. Returns -1, false only when reclaim also fails (every window
// holds at most one packet, so nothing is evictable).
func (e *Engine) bufAllocate() (int, bool) {
	for i := range e.buffers {
		if !e.buffers[i].used {
			e.buffers[i] = packet{win: -1}
			return i, true
		}
	}
	return e.bufReclaim()
}

// bufReclaim evicts the lower-bound packet of whichever used window
// currently holds the most buffered packets, per original_source's
// buffer_reclaim(): never the last remaining packet of any window, and
// only ever the window's lower-bound packet (the oldest one it holds).
func (e *Engine) bufReclaim() (int, bool) {
	bestWin, bestCount := -1, 1 // a window must hold more than 1 packet to be a candidate
	for i := range e.windows {
		w := &e.windows[i]
		if w.used && w.count > bestCount {
			bestWin, bestCount = i, w.count
		}
	}
	if bestWin == -1 {
		return -1, false
	}

	w := &e.windows[bestWin]
	for i := range e.buffers {
		p := &e.buffers[i]
		if p.used && p.win == bestWin && int32(p.seqVal) == w.lowerBound {
			e.bufFree(i)
			e.buffers[i] = packet{win: -1}
			return i, true
		}
	}
	return -1, false
}

// bufFree releases buffer i and updates the owning window's
// bookkeeping, freeing the window too if it no longer holds any packet.
func (e *Engine) bufFree(i int) {
	p := &e.buffers[i]
	if p.used && p.win >= 0 {
		w := &e.windows[p.win]
		w.count--
		if w.count == 0 {
			e.winFree(p.win)
		}
	}
	e.buffers[i] = packet{win: -1}
	e.updateBounds()
}
