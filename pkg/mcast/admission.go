package mcast

import "github.com/rollmesh/trickle/pkg/serial"

// findPacket returns the buffered packet in window win carrying seq,
// if any.
func (e *Engine) findPacket(win int, seq seqValue) (int, bool) {
	for i := range e.buffers {
		p := &e.buffers[i]
		if p.used && p.win == win && p.seqVal == seq {
			return i, true
		}
	}
	return -1, false
}

// admit is the shared admission/registration path behind both Accept
// (inbound) and Out (locally originated): reject too-old or duplicate
// sequence values, allocate a window/buffer slot if needed, register
// the packet, and unconditionally reset the M controller. inbound
// distinguishes the two things that differ between the two callers: an
// inbound datagram is marked must-send and has its stored IP TTL
// decremented by one; a locally originated one is neither — the caller
// emits it itself instead of waiting for the forwarder pass.
func (e *Engine) admit(datagram []byte, seedID SeedID, m M, seq seqValue, inbound bool) Verdict {
	wIdx, ok := e.winLookup(seedID, m)
	justAllocated := false
	if ok {
		w := &e.windows[wIdx]
		if w.lowerBound != noBound && serial.Lt(seq, seqValue(w.lowerBound)) {
			e.stats.McastDropped++
			return VerdictDrop
		}
		if _, found := e.findPacket(wIdx, seq); found {
			e.stats.McastDropped++
			return VerdictDrop
		}
	} else {
		wIdx, ok = e.winAllocate()
		if !ok {
			e.stats.McastDropped++
			return VerdictDrop
		}
		justAllocated = true
		w := &e.windows[wIdx]
		w.seedID = seedID
		w.m = m
	}

	pIdx, ok := e.bufAllocate()
	if !ok {
		if justAllocated {
			e.winFree(wIdx)
		}
		e.stats.McastDropped++
		return VerdictDrop
	}

	p := &e.buffers[pIdx]
	p.used = true
	p.win = wIdx
	p.seqVal = seq
	p.active = 0
	p.dwell = 0
	p.buf = append(p.buf[:0], datagram...)
	if inbound {
		p.mustSend = true
		p.buf[offHopLimit]--
	}

	e.windows[wIdx].count++
	e.updateBounds()
	if inbound {
		e.stats.McastInUnique++
	} else {
		e.stats.McastOut++
	}

	e.controllers[m].reset()
	return VerdictAdmit
}
