package mcast

import (
	"math/rand/v2"
	"time"
)

// Clock, Timer, Random, Watchdog and Stack are the external collaborators
// this engine consumes rather than implements: the monotonic clock, the
// one-shot timer facility, the pseudo-random source, the watchdog, and
// (the pieces of) the IPv6 stack it needs — address classification and
// "is a preferred link-local source available".
//
// The engine never blocks on any of these and calls them from whichever
// single goroutine is driving it.

// Clock reports the current monotonic tick count.
type Clock interface {
	Now() Tick
}

// Timer is a single one-shot timer slot. Arming it cancels any previously
// armed, not-yet-fired callback on the same Timer.
type Timer interface {
	Arm(d Tick, cb func())
}

// Random is the pseudo-random source used for Trickle's fire-point jitter.
type Random interface {
	// Intn returns a pseudo-random value in [0, n). n is always > 0.
	Intn(n uint32) uint32
}

// Watchdog is pet during forwarding bursts.
type Watchdog interface {
	Pet()
}

// Stack is the slice of the IPv6 stack this engine depends on but does not
// implement: address classification and link-local source readiness.
type Stack interface {
	// LinkLocalReady reports whether a preferred link-local source address
	// is currently available. When false, the forwarder's periodic
	// transmit pass defers.
	LinkLocalReady() bool
	// IsRoutableMulticast reports whether addr is usable as a multicast
	// destination for this engine (not an unroutable/reserved scope).
	IsRoutableMulticast(addr [16]byte) bool
	// IsUnspecified reports whether addr is the all-zeros address.
	IsUnspecified(addr [16]byte) bool
	// IsLinkLocal reports whether addr is a link-local unicast address.
	IsLinkLocal(addr [16]byte) bool
	// LocalLinkLocal returns the node's current preferred link-local
	// source address, used as the Source of Trickle control messages.
	// Only called when LinkLocalReady reports true.
	LocalLinkLocal() [16]byte
}

// realClock is a production Clock backed by time.Now, with one Tick equal
// to one millisecond relative to process start.
type realClock struct {
	start time.Time
}

// NewRealClock returns a Clock backed by the wall clock.
func NewRealClock() Clock {
	return &realClock{start: time.Now()}
}

func (c *realClock) Now() Tick {
	return Tick(time.Since(c.start).Milliseconds())
}

// realTimer is a production Timer backed by time.AfterFunc.
type realTimer struct {
	t *time.Timer
}

// NewRealTimer returns a Timer backed by the standard library's timer
// facility. Each controller must own its own instance.
func NewRealTimer() Timer {
	return &realTimer{}
}

func (rt *realTimer) Arm(d Tick, cb func()) {
	if rt.t != nil {
		rt.t.Stop()
	}
	rt.t = time.AfterFunc(time.Duration(d)*time.Millisecond, cb)
}

// ChanTimer is a Timer whose fired callbacks are delivered over a
// channel instead of being invoked directly on time.AfterFunc's own
// goroutine. An Engine's methods all have to land on one goroutine; a
// production caller that drives more than one Engine method from
// outside (timer fires plus its own read loops) should build its two
// per-M timers with NewChanTimer sharing one channel, then drain that
// channel from the same loop that feeds Accept/Out/ICMPInput.
type ChanTimer struct {
	fire chan<- func()
	t    *time.Timer
}

// NewChanTimer returns a Timer that delivers fired callbacks on fire
// rather than invoking them itself. Each controller must own its own
// instance; multiple instances may share one fire channel.
func NewChanTimer(fire chan<- func()) Timer {
	return &ChanTimer{fire: fire}
}

func (ct *ChanTimer) Arm(d Tick, cb func()) {
	if ct.t != nil {
		ct.t.Stop()
	}
	ct.t = time.AfterFunc(time.Duration(d)*time.Millisecond, func() {
		ct.fire <- cb
	})
}

// mathRandom is a production Random backed by math/rand/v2. Trickle's
// jitter is not a security boundary, so a non-cryptographic PRNG is
// appropriate and matches the original's random_rand() (a plain LCG/LFSR
// on constrained hardware).
type mathRandom struct{}

// NewMathRandom returns a Random backed by math/rand/v2.
func NewMathRandom() Random {
	return mathRandom{}
}

func (mathRandom) Intn(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return uint32(rand.IntN(int(n)))
}

// noopWatchdog discards Pet calls; used when no hardware watchdog is wired.
type noopWatchdog struct{}

// NewNoopWatchdog returns a Watchdog that does nothing.
func NewNoopWatchdog() Watchdog { return noopWatchdog{} }

func (noopWatchdog) Pet() {}
