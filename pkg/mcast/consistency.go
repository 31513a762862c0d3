package mcast

import "github.com/rollmesh/trickle/pkg/serial"

// ICMPInput processes one inbound Trickle consistency-check control
// message. in is the complete IPv6 datagram, same as Accept receives
// for data traffic.
//
// Processing runs in four passes over the message and the local state:
// clear every listed bit; walk each record's advertised values against
// the matching window, flagging an inconsistency for anything newer
// than what we hold or in-range-but-missing locally, and noting the
// lowest value any neighbor listed per window; walk every buffered
// packet, flagging an inconsistency (and marking the packet must-send)
// for any window the message never mentioned, or any packet strictly
// newer than what the message's lowest listed value for its window
// implies a neighbor has seen; and finally, once per M, either reset
// the controller if anything above set its inconsistency flag, or bump
// its consistency counter.
//
// One deliberate divergence from a minimal reading of the protocol: a
// control message that references a (seed, M) pair this node has never
// seen is treated as an inconsistency, not ignored. A genuinely unknown
// window means this node is missing data its neighbors already have,
// which is exactly the condition Trickle's timer reset exists to react
// to quickly.
func (e *Engine) ICMPInput(in []byte) Verdict {
	if len(in) < ipv6HeaderLen+4 {
		e.stats.IcmpBad++
		return VerdictDrop
	}
	dest := ipv6Destination(in)
	src := ipv6Source(in)
	if in[offNextHeader] != icmpv6Protocol {
		e.stats.IcmpBad++
		return VerdictDrop
	}
	if in[offHopLimit] != e.cfg.IPHopLimit {
		e.stats.IcmpBad++
		return VerdictDrop
	}
	if !e.cfg.Stack.IsLinkLocal(src) {
		e.stats.IcmpBad++
		return VerdictDrop
	}
	want := allRoutersLinkLocal
	if e.cfg.DestAllNodes {
		want = allNodesLinkLocal
	}
	if dest != want {
		e.stats.IcmpBad++
		return VerdictDrop
	}

	icmp := in[ipv6HeaderLen:]
	if len(icmp) < 4 || icmp[1] != e.cfg.ICMPCode {
		e.stats.IcmpBad++
		return VerdictDrop
	}

	records, truncated := DecodeControlMessage(icmp[4:], e.cfg.SeedMode)
	if truncated {
		e.stats.IcmpBad++
	}
	e.stats.IcmpIn++

	// Step 1: clear every listed bit, on windows and packets alike.
	for i := range e.windows {
		e.windows[i].listed = false
		e.windows[i].minListed = noBound
	}
	for i := range e.buffers {
		e.buffers[i].listed = false
	}

	// Step 2: walk each record's advertised values.
	for _, r := range records {
		ctl := e.controllers[r.M]
		wIdx, ok := e.winLookup(r.SeedID, r.M)
		if !ok {
			ctl.inconsistency = true
			continue
		}
		w := &e.windows[wIdx]
		w.listed = true
		w.minListed = noBound
		for _, v := range r.Seq {
			switch {
			case w.upperBound != noBound && serial.Gt(v, seqValue(w.upperBound)):
				ctl.inconsistency = true
			case w.lowerBound == noBound || !serial.Lt(v, seqValue(w.lowerBound)):
				if pIdx, found := e.findPacket(wIdx, v); found {
					e.buffers[pIdx].listed = true
					if w.minListed == noBound || serial.Lt(v, seqValue(w.minListed)) {
						w.minListed = int32(v)
					}
				} else {
					ctl.inconsistency = true
				}
			}
		}
	}

	// Step 3: walk every buffered packet, regardless of which records
	// touched it, looking for windows nobody listed and packets we hold
	// that are newer than a neighbor's reported minimum.
	for i := range e.buffers {
		p := &e.buffers[i]
		if !p.used {
			continue
		}
		w := &e.windows[p.win]
		ctl := e.controllers[w.m]
		switch {
		case !w.listed:
			ctl.inconsistency = true
			p.mustSend = true
		case !p.listed && w.minListed != noBound && serial.Gt(p.seqVal, seqValue(w.minListed)):
			ctl.inconsistency = true
			p.mustSend = true
		}
	}

	// Step 4: one settle decision per M.
	for m := M0; m <= M1; m++ {
		ctl := e.controllers[m]
		if ctl.inconsistency {
			ctl.reset()
		} else {
			ctl.c++
		}
	}
	return VerdictAdmit
}
