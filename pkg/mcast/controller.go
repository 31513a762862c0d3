package mcast

// controller is one Trickle timer instance, driving suppression for a
// single M parametrization. It owns exactly one Timer collaborator and
// never blocks; every fire either defers by resetting, or runs the
// forwarding pass and schedules the next interval.
type controller struct {
	m      M
	params ControllerParams

	timer   Timer
	clock   Clock
	random  Random
	stack   Stack
	runTick func(M) // the forwarder/consistency-emit pass for this M

	i             Tick // current interval length
	doublings     uint8
	c             uint32 // consistency counter
	inconsistency bool
	intervalStart Tick
	intervalEnd   Tick
	lastTrigger   Tick
}

func newController(m M, params ControllerParams, timer Timer, clock Clock, random Random, stack Stack, runTick func(M)) *controller {
	return &controller{
		m:       m,
		params:  params,
		timer:   timer,
		clock:   clock,
		random:  random,
		stack:   stack,
		runTick: runTick,
	}
}

// imax returns the fully-doubled interval length, Imin * 2^i_max.
func (ctl *controller) imax() Tick {
	return ctl.params.IMin << ctl.params.IMaxDoublings
}

// reset starts (or restarts) the Trickle interval at Imin with c and
// inconsistency cleared. Arming the new timer implicitly cancels any
// timer pending from the previous interval.
func (ctl *controller) reset() {
	now := ctl.clock.Now()
	ctl.i = ctl.params.IMin
	ctl.doublings = 0
	ctl.c = 0
	ctl.inconsistency = false
	ctl.intervalStart = now
	ctl.intervalEnd = now + ctl.i
	ctl.timer.Arm(ctl.randomFireDelay(), ctl.onFire)
}

// randomFireDelay picks t in [I/2, I-2], the point within the interval
// at which this controller fires and reconsiders transmitting. The
// upper bound deliberately excludes both I-1 and I itself; narrowing or
// widening this range changes steady-state spacing.
func (ctl *controller) randomFireDelay() Tick {
	half := ctl.i / 2
	span := ctl.i - 1 - half
	if span <= 0 {
		return half
	}
	return half + Tick(ctl.random.Intn(uint32(span)))
}

// onFire is handle_tick: if the link-local source isn't ready yet, this
// tick can't usefully forward or advertise anything, so it defers by
// resetting outright. Otherwise it runs the per-M forwarding/
// consistency-emit pass, clears the interval's bookkeeping, and moves
// on to the next (doubled) interval.
func (ctl *controller) onFire() {
	if !ctl.stack.LinkLocalReady() {
		ctl.reset()
		return
	}
	ctl.runTick(ctl.m)
	ctl.inconsistency = false
	ctl.c = 0
	ctl.doubleInterval()
}

// doubleInterval advances to the next interval, doubling its length
// (capped at i_max doublings), compensating the next fire point for any
// overshoot past the interval end this tick's firing already
// accumulated, and re-arming the timer.
func (ctl *controller) doubleInterval() {
	now := ctl.clock.Now()
	var offset Tick
	if now > ctl.intervalEnd {
		offset = now - ctl.intervalEnd
	}
	if ctl.doublings < ctl.params.IMaxDoublings {
		ctl.i *= 2
		ctl.doublings++
	}
	ctl.intervalStart = ctl.intervalEnd
	ctl.intervalEnd = ctl.intervalStart + ctl.i
	ctl.lastTrigger = now

	delay := ctl.randomFireDelay()
	if delay > offset {
		delay -= offset
	} else {
		delay = 0
	}
	ctl.timer.Arm(delay, ctl.onFire)
}
