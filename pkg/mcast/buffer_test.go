package mcast

import "testing"

func TestBufReclaimNeverEvictsLastPacketOfAWindow(t *testing.T) {
	h := newTestHarness(func(c *Config) {
		c.Windows = 4
		c.Buffers = 3
	})
	seedA, seedB, seedC := SeedID{0, 1}, SeedID{0, 2}, SeedID{0, 3}

	h.e.Accept(mkMulticastDatagram(ShortSeed, seedA, M0, 1, testSrc, testDest, []byte("a")))
	h.e.Accept(mkMulticastDatagram(ShortSeed, seedB, M0, 1, testSrc, testDest, []byte("b")))
	h.e.Accept(mkMulticastDatagram(ShortSeed, seedC, M0, 1, testSrc, testDest, []byte("c")))

	// Every window holds exactly one packet; buffer table is now full and
	// none of them is a legal reclaim target.
	if _, ok := h.e.bufReclaim(); ok {
		t.Fatalf("expected bufReclaim to fail when no window holds >1 packet")
	}

	v := h.e.Accept(mkMulticastDatagram(ShortSeed, seedA, M0, 99, testSrc, testDest, []byte("d")))
	if v != VerdictDrop {
		t.Fatalf("got %v, want drop (buffer exhausted, nothing reclaimable)", v)
	}
	if h.e.Stats().McastDropped != 1 {
		t.Fatalf("stats = %+v", h.e.Stats())
	}
}

func TestBufFreeDecrementsWindowCount(t *testing.T) {
	h := newTestHarness(nil)
	seed := SeedID{0, 1}
	h.e.Accept(mkMulticastDatagram(ShortSeed, seed, M0, 1, testSrc, testDest, []byte("a")))
	wIdx, _ := h.e.winLookup(seed, M0)
	if h.e.windows[wIdx].count != 1 {
		t.Fatalf("count = %d, want 1", h.e.windows[wIdx].count)
	}
	h.e.bufFree(0)
	if h.e.windows[wIdx].count != 0 {
		t.Fatalf("count after free = %d, want 0", h.e.windows[wIdx].count)
	}
}
