package mcast

import "github.com/rollmesh/trickle/pkg/serial"

// Out admits a locally originated datagram: it assigns the next
// sequence number, stamps the Trickle HBH option, registers the
// new (seed, M) window/bounds through the same admission path Accept
// uses for received datagrams, emits the complete wire bytes itself
// (unlike Accept, it does not wait for the forwarder's must-send pass),
// and also returns those bytes for a caller that wants to inspect them.
// Like a received datagram, a local one still participates in Trickle
// suppression — a neighbor may have already relayed it by the time
// this node's timer fires.
func (e *Engine) Out(payload []byte, src, dest [16]byte, upperNextHeader, hopLimit byte, m M) ([]byte, Verdict) {
	if !e.cfg.Stack.IsRoutableMulticast(dest) {
		e.stats.McastBad++
		return nil, VerdictDrop
	}

	seedID := e.cfg.LocalSeedID
	if e.cfg.SeedMode == LongSeed {
		seedID = SeedID(src)
	}

	e.lastSeq = serial.Add(e.lastSeq, 1)
	seq := e.lastSeq

	opt := EncodeHBH(e.cfg.SeedMode, m, seq, seedID, upperNextHeader)

	total := ipv6HeaderLen + len(opt) + len(payload)
	buf := make([]byte, total)
	buf[4] = byte((len(opt) + len(payload)) >> 8)
	buf[5] = byte(len(opt) + len(payload))
	buf[offNextHeader] = hopByHopProtocol
	buf[offHopLimit] = hopLimit
	copy(buf[offSource:offSource+16], src[:])
	copy(buf[offDestination:offDestination+16], dest[:])
	copy(buf[ipv6HeaderLen:], opt)
	copy(buf[ipv6HeaderLen+len(opt):], payload)

	if v := e.admit(buf, seedID, m, seq, false); v != VerdictAdmit {
		return nil, v
	}
	e.cfg.Send(buf)
	return buf, VerdictAdmit
}
