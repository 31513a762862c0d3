package mcast

// Test doubles for the collaborator interfaces. Kept minimal and
// deterministic: no wall-clock or OS timer dependency anywhere in this
// package's tests.

type fakeClock struct {
	now Tick
}

func (c *fakeClock) Now() Tick { return c.now }

// fakeTimer records the last armed deadline/callback but never fires on
// its own; tests drive it explicitly by calling the stored callback.
type fakeTimer struct {
	armed    bool
	deadline Tick
	cb       func()
}

func (t *fakeTimer) Arm(d Tick, cb func()) {
	t.armed = true
	t.deadline = d
	t.cb = cb
}

// fakeRandom is a deterministic non-random Random: Intn always returns 0,
// so every fire point lands exactly at I/2.
type fakeRandom struct{}

func (fakeRandom) Intn(n uint32) uint32 { return 0 }

type fakeWatchdog struct {
	pets int
}

func (w *fakeWatchdog) Pet() { w.pets++ }

// fakeStack treats ff00::/8 as routable multicast and fe80::/10 as
// link-local, with link-local always ready at a fixed address — enough
// to exercise every validation branch without a real network stack.
type fakeStack struct {
	linkLocalReady bool
	localAddr      [16]byte
}

func newFakeStack() *fakeStack {
	return &fakeStack{
		linkLocalReady: true,
		localAddr:      [16]byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01},
	}
}

func (s *fakeStack) LinkLocalReady() bool { return s.linkLocalReady }

func (s *fakeStack) IsRoutableMulticast(addr [16]byte) bool {
	return addr[0] == 0xff
}

func (s *fakeStack) IsUnspecified(addr [16]byte) bool {
	return addr == [16]byte{}
}

func (s *fakeStack) IsLinkLocal(addr [16]byte) bool {
	return addr[0] == 0xfe && addr[1]&0xc0 == 0x80
}

func (s *fakeStack) LocalLinkLocal() [16]byte { return s.localAddr }

// testHarness bundles an Engine with its fakes so tests can drive time
// and timers directly.
type testHarness struct {
	e       *Engine
	clock   *fakeClock
	timers  [2]*fakeTimer
	stack   *fakeStack
	wd      *fakeWatchdog
	sent    [][]byte
}

func newTestHarness(cfgMod func(*Config)) *testHarness {
	h := &testHarness{
		clock: &fakeClock{},
		stack: newFakeStack(),
		wd:    &fakeWatchdog{},
	}
	idx := 0
	cfg := Config{
		SeedMode: ShortSeed,
		Windows:  4,
		Buffers:  4,
		Params: [2]ControllerParams{
			{IMin: 100, IMaxDoublings: 4, K: 2, TActive: 4, TDwell: 2},
			{IMin: 100, IMaxDoublings: 4, K: 2, TActive: 4, TDwell: 2},
		},
		ICMPCode:   0x99,
		IPHopLimit: 255,
		Clock:      h.clock,
		NewTimer: func() Timer {
			t := &fakeTimer{}
			h.timers[idx] = t
			idx++
			return t
		},
		Random:   fakeRandom{},
		Watchdog: h.wd,
		Stack:    h.stack,
		Send: func(frame []byte) {
			h.sent = append(h.sent, append([]byte(nil), frame...))
		},
	}
	if cfgMod != nil {
		cfgMod(&cfg)
	}
	e, err := New(cfg)
	if err != nil {
		panic(err)
	}
	h.e = e
	return h
}

func mkMulticastDatagram(mode SeedMode, seedID SeedID, m M, seq seqValue, src, dest [16]byte, payload []byte) []byte {
	opt := EncodeHBH(mode, m, seq, seedID, 17)
	total := ipv6HeaderLen + len(opt) + len(payload)
	buf := make([]byte, total)
	buf[4] = byte((len(opt) + len(payload)) >> 8)
	buf[5] = byte(len(opt) + len(payload))
	buf[offNextHeader] = hopByHopProtocol
	buf[offHopLimit] = 64
	copy(buf[offSource:offSource+16], src[:])
	copy(buf[offDestination:offDestination+16], dest[:])
	copy(buf[ipv6HeaderLen:], opt)
	copy(buf[ipv6HeaderLen+len(opt):], payload)
	return buf
}
