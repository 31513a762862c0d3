package mcast

import "testing"

var (
	testSrc  = [16]byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x02}
	testDest = [16]byte{0xff, 0x1e, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01}
	testSeed = SeedID{0x00, 0x2a}
)

func TestAcceptColdStartAdmits(t *testing.T) {
	h := newTestHarness(nil)
	dg := mkMulticastDatagram(ShortSeed, testSeed, M0, 1, testSrc, testDest, []byte("hello"))

	v := h.e.Accept(dg)
	if v != VerdictAdmit {
		t.Fatalf("got %v, want admit", v)
	}
	st := h.e.Stats()
	if st.McastInAll != 1 || st.McastInUnique != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestAcceptDuplicateDropped(t *testing.T) {
	h := newTestHarness(nil)
	dg := mkMulticastDatagram(ShortSeed, testSeed, M0, 1, testSrc, testDest, []byte("hello"))

	if v := h.e.Accept(dg); v != VerdictAdmit {
		t.Fatalf("first accept: got %v", v)
	}
	if v := h.e.Accept(dg); v != VerdictDrop {
		t.Fatalf("duplicate accept: got %v, want drop", v)
	}
	st := h.e.Stats()
	if st.McastInAll != 2 || st.McastInUnique != 1 || st.McastDropped != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestAcceptOlderSequenceDropped(t *testing.T) {
	h := newTestHarness(nil)
	newer := mkMulticastDatagram(ShortSeed, testSeed, M0, 5, testSrc, testDest, []byte("a"))
	older := mkMulticastDatagram(ShortSeed, testSeed, M0, 3, testSrc, testDest, []byte("b"))

	if v := h.e.Accept(newer); v != VerdictAdmit {
		t.Fatalf("newer: got %v", v)
	}
	if v := h.e.Accept(older); v != VerdictDrop {
		t.Fatalf("older: got %v, want drop", v)
	}
}

func TestAcceptRejectsNonMulticastDest(t *testing.T) {
	h := newTestHarness(nil)
	badDest := [16]byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x09}
	dg := mkMulticastDatagram(ShortSeed, testSeed, M0, 1, testSrc, badDest, []byte("x"))

	if v := h.e.Accept(dg); v != VerdictDrop {
		t.Fatalf("got %v, want drop", v)
	}
	if h.e.Stats().McastBad != 1 {
		t.Fatalf("expected McastBad=1, got %+v", h.e.Stats())
	}
}

func TestAcceptTruncatedDatagramIsBad(t *testing.T) {
	h := newTestHarness(nil)
	if v := h.e.Accept(make([]byte, 10)); v != VerdictDrop {
		t.Fatalf("got %v, want drop", v)
	}
	if h.e.Stats().McastBad != 1 {
		t.Fatalf("expected McastBad=1, got %+v", h.e.Stats())
	}
}

// TestAcceptGapFillAdmitted checks that a sequence value strictly between
// the window's current lower and upper bounds is admitted as a new
// packet (a gap fill), not dropped the way a duplicate or too-old value
// is — only lt(seq, lower) or an exact match against a held value are
// rejected.
func TestAcceptGapFillAdmitted(t *testing.T) {
	h := newTestHarness(func(c *Config) {
		c.Windows = 4
		c.Buffers = 4
	})
	h.e.Accept(mkMulticastDatagram(ShortSeed, testSeed, M0, 1, testSrc, testDest, []byte("a")))
	h.e.Accept(mkMulticastDatagram(ShortSeed, testSeed, M0, 5, testSrc, testDest, []byte("b")))

	v := h.e.Accept(mkMulticastDatagram(ShortSeed, testSeed, M0, 3, testSrc, testDest, []byte("gap")))
	if v != VerdictAdmit {
		t.Fatalf("gap-fill accept: got %v, want admit", v)
	}
	wIdx, _ := h.e.winLookup(testSeed, M0)
	if h.e.windows[wIdx].count != 3 {
		t.Fatalf("expected 3 packets held after gap fill, got %d", h.e.windows[wIdx].count)
	}
}

// TestAcceptDuplicateDoesNotResetControllerTwice checks that a dropped
// duplicate leaves the controller's consistency counter untouched — only
// a successful admission resets the Trickle timer.
func TestAcceptDuplicateDoesNotResetControllerTwice(t *testing.T) {
	h := newTestHarness(nil)
	dg := mkMulticastDatagram(ShortSeed, testSeed, M0, 1, testSrc, testDest, []byte("hello"))
	h.e.Accept(dg)

	ctl := h.e.controllers[M0]
	ctl.c = 3
	h.e.Accept(dg) // duplicate, dropped before admit() ever reaches ctl.reset()
	if ctl.c != 3 {
		t.Fatalf("c = %d, want unchanged at 3 after a dropped duplicate", ctl.c)
	}
}

func TestWindowGrowthReclaimsLowerBoundPacket(t *testing.T) {
	h := newTestHarness(func(c *Config) {
		c.Windows = 4
		c.Buffers = 2
	})
	seedA := SeedID{0, 1}
	seedB := SeedID{0, 2}

	// seedA accumulates two packets, filling the 2-slot buffer table.
	h.e.Accept(mkMulticastDatagram(ShortSeed, seedA, M0, 1, testSrc, testDest, []byte("a1")))
	h.e.Accept(mkMulticastDatagram(ShortSeed, seedA, M0, 2, testSrc, testDest, []byte("a2")))

	wIdx, ok := h.e.winLookup(seedA, M0)
	if !ok || h.e.windows[wIdx].count != 2 {
		t.Fatalf("expected seedA window with count 2, got ok=%v idx=%d", ok, wIdx)
	}

	// A third, unrelated packet forces a reclaim: seedA's lower-bound
	// packet (seq 1) must be evicted, never the only packet of a window.
	v := h.e.Accept(mkMulticastDatagram(ShortSeed, seedB, M0, 1, testSrc, testDest, []byte("b1")))
	if v != VerdictAdmit {
		t.Fatalf("seedB accept: got %v", v)
	}
	if h.e.windows[wIdx].count != 1 {
		t.Fatalf("expected seedA window count to drop to 1 after reclaim, got %d", h.e.windows[wIdx].count)
	}
	if h.e.windows[wIdx].lowerBound != 2 {
		t.Fatalf("expected seedA lower bound to advance to 2, got %d", h.e.windows[wIdx].lowerBound)
	}
}
