package mcast

import "sort"

// well-known IPv6 link-local scope multicast addresses (RFC 4291 §2.7.1).
var (
	allNodesLinkLocal   = [16]byte{0xff, 0x02, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01}
	allRoutersLinkLocal = [16]byte{0xff, 0x02, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x02}
)

// runTick is handle_tick's per-M forwarding/consistency-emission pass,
// run by controller.onFire once per interval: it ages every buffered
// packet belonging to a window of this M, expiring or forwarding each
// as appropriate, then emits one consistency-check control message if
// suppression is enabled and this interval hasn't yet heard k
// consistent transmissions.
//
// A packet's age is accumulated in two counters, active and dwell, both
// incremented by the ticks elapsed since the packet's own last aging
// pass (or since the interval it was admitted in started, the first
// time it's aged). dwell past Tdwell retires the packet outright;
// active gates forwarding when suppression is disabled.
func (e *Engine) runTick(m M) {
	ctl := e.controllers[m]
	now := e.cfg.Clock.Now()
	suppression := ctl.params.K != KInfinite
	tactive := ctl.imax() * Tick(ctl.params.TActive)
	tdwell := ctl.imax() * Tick(ctl.params.TDwell)

	sent := false
	for i := 0; i < len(e.buffers); i++ {
		p := &e.buffers[i]
		if !p.used || e.windows[p.win].m != m {
			continue
		}

		var diff Tick
		if p.active == 0 {
			diff = now - ctl.intervalStart
		} else {
			diff = now - ctl.lastTrigger
		}
		p.active += diff
		p.dwell += diff

		if p.dwell > tdwell {
			e.bufFree(i)
			continue
		}
		if p.buf[offHopLimit] == 0 {
			continue
		}
		if (suppression && p.mustSend) || (!suppression && p.active < tactive) {
			e.cfg.Send(p.buf)
			e.stats.McastFwd++
			p.mustSend = false
			sent = true
		}
	}

	if suppression && ctl.c < ctl.params.K {
		e.transmitControl(m)
	}

	e.updateBounds()
	if sent {
		e.cfg.Watchdog.Pet()
	}
}

// transmitControl builds and emits one Trickle consistency-check ICMPv6
// message covering every window this node holds for parametrization m
// with at least one buffered packet, one record per window listing
// every packet's sequence value.
func (e *Engine) transmitControl(m M) {
	var records []SeqRecord
	for i := range e.windows {
		w := &e.windows[i]
		if !w.used || w.m != m || w.count == 0 {
			continue
		}
		var seqs []seqValue
		for j := range e.buffers {
			p := &e.buffers[j]
			if p.used && p.win == i {
				seqs = append(seqs, p.seqVal)
			}
		}
		if len(seqs) == 0 {
			continue
		}
		sort.Slice(seqs, func(a, b int) bool { return seqs[a] < seqs[b] })
		records = append(records, SeqRecord{SeedID: w.seedID, M: m, Seq: seqs})
	}
	if len(records) == 0 {
		return
	}

	dest := allRoutersLinkLocal
	if e.cfg.DestAllNodes {
		dest = allNodesLinkLocal
	}
	src := e.cfg.Stack.LocalLinkLocal()

	body := EncodeControlMessage(e.cfg.SeedMode, records)
	// 4-byte ICMPv6 header: type, code, checksum placeholder (computed by
	// the transport layer over the pseudo-header). The type byte is left
	// zero: neither this engine nor pkg/transport writes a Trickle control
	// type, and ICMPInput does not check it.
	icmp := make([]byte, 4+len(body))
	icmp[1] = e.cfg.ICMPCode
	copy(icmp[4:], body)

	frame := make([]byte, ipv6HeaderLen+len(icmp))
	frame[4] = byte(len(icmp) >> 8)
	frame[5] = byte(len(icmp))
	frame[offNextHeader] = icmpv6Protocol
	frame[offHopLimit] = e.cfg.IPHopLimit
	copy(frame[offSource:offSource+16], src[:])
	copy(frame[offDestination:offDestination+16], dest[:])
	copy(frame[ipv6HeaderLen:], icmp)

	e.cfg.Send(frame)
	e.stats.IcmpOut++
}
