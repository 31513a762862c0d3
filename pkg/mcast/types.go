package mcast

import "github.com/rollmesh/trickle/pkg/serial"

// M selects one of the two independent Trickle parametrizations.
type M uint8

const (
	M0 M = 0
	M1 M = 1
)

// Tick is an abstract monotonic clock unit consumed from the Clock
// collaborator. Production code treats one Tick as one millisecond (see
// collaborators.go's realClock); tests use a fake Clock with whatever
// granularity is convenient.
type Tick uint64

// KInfinite is the reserved redundancy constant disabling suppression:
// no control messages are emitted and c/k comparisons are skipped, but
// packets are still forwarded.
const KInfinite uint32 = ^uint32(0)

// SeedMode is the compile/construct-time choice between short (16-bit)
// and long (full IPv6 address) seed identifiers. It is a runtime Config
// field rather than a Go build tag: nothing about the
// choice is platform-specific, it only changes field widths and wire
// lengths, so a constructor parameter is the idiomatic equivalent of the
// original's preprocessor switch.
type SeedMode uint8

const (
	ShortSeed SeedMode = iota
	LongSeed
)

// Len returns the wire length of a seed id under this mode.
func (s SeedMode) Len() int {
	if s == ShortSeed {
		return 2
	}
	return 16
}

// SeedID holds a seed identifier. Only the first SeedMode.Len() bytes are
// meaningful; the rest are always zero.
type SeedID [16]byte

// IsNull reports whether s is the all-zeros null seed id.
func (s SeedID) IsNull() bool {
	return s == SeedID{}
}

func seedEqual(a, b SeedID, mode SeedMode) bool {
	n := mode.Len()
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// seqValue is a convenience alias kept local to this package's vocabulary.
type seqValue = serial.Value

// Verdict is the outcome of Accept/ICMPInput — this engine has no
// recoverable runtime errors, only admit/drop decisions plus a Stats
// counter recording why.
type Verdict uint8

const (
	VerdictDrop Verdict = iota
	VerdictAdmit
)

func (v Verdict) String() string {
	if v == VerdictAdmit {
		return "admit"
	}
	return "drop"
}
