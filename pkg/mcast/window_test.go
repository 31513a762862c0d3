package mcast

import "testing"

// TestUpperBoundNeverResetByUpdateBounds pins down a subtle asymmetry:
// updateBounds resets lowerBound to "unset" before every scan but never
// touches upperBound directly, so upperBound can only move forward (or
// reset to "unset" when the window itself is freed and reallocated).
func TestUpperBoundNeverResetByUpdateBounds(t *testing.T) {
	h := newTestHarness(nil)
	seed := SeedID{0, 9}

	h.e.Accept(mkMulticastDatagram(ShortSeed, seed, M0, 5, testSrc, testDest, []byte("x")))
	wIdx, ok := h.e.winLookup(seed, M0)
	if !ok {
		t.Fatalf("window not found")
	}
	if h.e.windows[wIdx].upperBound != 5 {
		t.Fatalf("upperBound = %d, want 5", h.e.windows[wIdx].upperBound)
	}

	// Directly invoking updateBounds again (idempotent re-scan) must not
	// disturb the upper bound while the packet is still buffered.
	h.e.updateBounds()
	if h.e.windows[wIdx].upperBound != 5 {
		t.Fatalf("upperBound after rescan = %d, want 5", h.e.windows[wIdx].upperBound)
	}

	// Freeing the window's highest packet recomputes lowerBound but leaves
	// upperBound where it was.
	h.e.Accept(mkMulticastDatagram(ShortSeed, seed, M0, 6, testSrc, testDest, []byte("y")))
	pIdx, _ := h.e.findPacket(wIdx, 6)
	h.e.bufFree(pIdx)
	if h.e.windows[wIdx].upperBound != 6 {
		t.Fatalf("upperBound after freeing its packet = %d, want 6", h.e.windows[wIdx].upperBound)
	}
}

func TestWinAllocateResetsBothBounds(t *testing.T) {
	h := newTestHarness(nil)
	idx, ok := h.e.winAllocate()
	if !ok {
		t.Fatalf("winAllocate failed")
	}
	w := h.e.windows[idx]
	if w.lowerBound != noBound || w.upperBound != noBound {
		t.Fatalf("fresh window bounds = (%d, %d), want (-1, -1)", w.lowerBound, w.upperBound)
	}
}

func TestWinLookupRespectsSeedModeLength(t *testing.T) {
	h := newTestHarness(nil)
	idx, _ := h.e.winAllocate()
	h.e.windows[idx].seedID = SeedID{0x01, 0x02, 0xff}
	h.e.windows[idx].m = M0

	// Only the first mode.Len() == 2 bytes matter in ShortSeed mode, so a
	// differing third byte must still match.
	_, ok := h.e.winLookup(SeedID{0x01, 0x02, 0x00}, M0)
	if !ok {
		t.Fatalf("expected lookup to match on short-seed prefix")
	}
}
