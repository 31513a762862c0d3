package mcast

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ControllerParams is the build-time configuration of one Trickle
// controller instance: its own Imin, Imax, redundancy constant k,
// active lifetime Tactive, and dwell lifetime Tdwell.
type ControllerParams struct {
	// IMin is the minimum interval length, in Clock ticks.
	IMin Tick
	// IMaxDoublings is the maximum number of interval doublings (i_max).
	IMaxDoublings uint8
	// K is the redundancy constant. Use KInfinite to disable suppression.
	K uint32
	// TActive is Tactive in units of Imax.
	TActive uint32
	// TDwell is Tdwell in units of Imax.
	TDwell uint32
}

// Config is the full engine configuration.
type Config struct {
	// SeedMode selects short (16-bit) or long (IPv6 address) seed ids.
	SeedMode SeedMode
	// LocalSeedID is this node's own seed id, used to stamp and register
	// locally originated datagrams (Engine.Out). Only meaningful in
	// ShortSeed mode; in LongSeed mode the source address passed to Out
	// is the seed id instead.
	LocalSeedID SeedID
	// Windows is the fixed window-table capacity W.
	Windows int
	// Buffers is the fixed packet-buffer capacity B.
	Buffers int
	// Params holds per-M controller configuration, indexed by M.
	Params [2]ControllerParams
	// ICMPCode is the expected/used ICMPv6 code for Trickle control
	// messages.
	ICMPCode uint8
	// IPHopLimit is the expected/used IP hop limit for control messages.
	IPHopLimit uint8
	// DestAllNodes selects the link-local all-nodes multicast address as
	// the control-message destination; false selects all-routers.
	DestAllNodes bool

	// Send transmits one complete, ready-to-send IPv6 datagram (a
	// forwarded/originated multicast data frame or a Trickle ICMPv6
	// control frame). The engine never buffers output beyond this call.
	Send func(frame []byte)

	Logger   logrus.FieldLogger
	Clock    Clock
	NewTimer func() Timer
	Random   Random
	Watchdog Watchdog
	Stack    Stack
}

// withDefaults fills in zero-value collaborators with no-op/real defaults
// so tests and simple callers don't have to wire every field.
func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Clock == nil {
		c.Clock = NewRealClock()
	}
	if c.NewTimer == nil {
		c.NewTimer = NewRealTimer
	}
	if c.Random == nil {
		c.Random = NewMathRandom()
	}
	if c.Watchdog == nil {
		c.Watchdog = NewNoopWatchdog()
	}
	return c
}

func (c Config) validate() error {
	if c.Windows <= 0 {
		return fmt.Errorf("mcast: Windows must be > 0")
	}
	if c.Buffers <= 0 {
		return fmt.Errorf("mcast: Buffers must be > 0")
	}
	for m := range c.Params {
		p := c.Params[m]
		if p.IMin == 0 {
			return fmt.Errorf("mcast: Params[%d].IMin must be > 0", m)
		}
		if p.K == 0 {
			return fmt.Errorf("mcast: Params[%d].K must be > 0 (use KInfinite to disable suppression)", m)
		}
	}
	if c.Stack == nil {
		return fmt.Errorf("mcast: Stack collaborator is required")
	}
	if c.Send == nil {
		return fmt.Errorf("mcast: Send callback is required")
	}
	return nil
}
