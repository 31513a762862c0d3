// Package mcast implements a Trickle-suppressed IPv6 multicast forwarding
// engine: sliding-window duplicate detection, a fixed packet buffer with
// deterministic reclamation, a pair of independent Trickle timers (one
// per M parametrization), and ICMPv6-based consistency checking.
package mcast

import "github.com/rollmesh/trickle/pkg/serial"

// Engine is the whole forwarding engine: the fixed window and buffer
// tables, the two Trickle controllers, and the collaborators it was
// constructed with. An Engine is single-threaded: every exported method
// must be called from the same goroutine.
type Engine struct {
	cfg         Config
	windows     []window
	buffers     []packet
	controllers [2]*controller
	lastSeq     seqValue
	stats       Stats
}

// New constructs an Engine from cfg, filling in unset collaborators with
// production defaults. No controller timer is armed until Init starts
// both Trickle controllers, or until an admitted datagram resets its own
// M's controller.
func New(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		windows: make([]window, cfg.Windows),
		buffers: make([]packet, cfg.Buffers),
	}
	for i := range e.windows {
		e.windows[i] = newWindow()
	}
	for i := range e.buffers {
		e.buffers[i] = packet{win: -1}
	}
	e.lastSeq = seqValue(cfg.Random.Intn(serial.Modulus))

	for m := M0; m <= M1; m++ {
		mm := m
		e.controllers[m] = newController(mm, cfg.Params[m], cfg.NewTimer(), cfg.Clock, cfg.Random, cfg.Stack, e.runTick)
	}
	return e, nil
}

// Init starts both Trickle controllers at their initial interval. Call
// once, after construction.
func (e *Engine) Init() {
	for m := M0; m <= M1; m++ {
		e.controllers[m].reset()
	}
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

