package mcast

// Accept processes one inbound multicast datagram. It
// never returns an error: malformed or uninteresting input is counted
// and dropped, exactly as the original's void-returning accept routine
// does. The returned Verdict only distinguishes "this engine admitted
// and will (re)forward it" from everything else.
func (e *Engine) Accept(in []byte) Verdict {
	if len(in) < ipv6HeaderLen+8 {
		e.stats.McastBad++
		return VerdictDrop
	}
	dest := ipv6Destination(in)
	src := ipv6Source(in)
	if !e.cfg.Stack.IsRoutableMulticast(dest) || e.cfg.Stack.IsUnspecified(src) {
		e.stats.McastBad++
		return VerdictDrop
	}
	if in[offNextHeader] != hopByHopProtocol {
		e.stats.McastBad++
		return VerdictDrop
	}

	m, seq, optSeedID, _, _, err := DecodeHBH(in[ipv6HeaderLen:], e.cfg.SeedMode)
	if err != nil {
		e.stats.McastBad++
		return VerdictDrop
	}

	seedID := optSeedID
	if e.cfg.SeedMode == LongSeed {
		seedID = SeedID(src)
	}

	e.stats.McastInAll++
	return e.admit(in, seedID, m, seq, true)
}
