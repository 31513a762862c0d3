package mcast

// Stats holds the engine's counters, mirroring original_source's struct
// roll_trickle_stats. All are monotonically increasing for the lifetime
// of an Engine; pkg/exporter exposes them as Prometheus counters.
type Stats struct {
	// McastBad counts malformed ingress datagrams: bad destination, bad
	// source, bad next-header, bad option.
	McastBad uint64
	// McastDropped counts out-of-range/duplicate sequence numbers, or
	// allocation/reclaim failure.
	McastDropped uint64
	// McastInAll counts every inbound multicast datagram that passed
	// header validation, duplicate or not.
	McastInAll uint64
	// McastInUnique counts inbound multicast datagrams admitted as new.
	McastInUnique uint64
	// McastFwd counts datagrams re-transmitted by the forwarder.
	McastFwd uint64
	// McastOut counts datagrams admitted via Engine.Out (locally seeded).
	McastOut uint64
	// IcmpBad counts malformed control messages: bad source, destination,
	// code, TTL, reserved bits, or seed-length mismatch.
	IcmpBad uint64
	// IcmpIn counts control messages that passed header validation.
	IcmpIn uint64
	// IcmpOut counts control messages emitted by the forwarder.
	IcmpOut uint64
}
