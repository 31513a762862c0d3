package mcast

// Fixed IPv6 header field offsets (RFC 8200 §3). This engine works
// directly on wire bytes rather than a parsed struct, mirroring the
// original's in-place packet manipulation and avoiding a copy on every
// datagram that only needs its header inspected.
const (
	ipv6HeaderLen  = 40
	offNextHeader  = 6
	offHopLimit    = 7
	offSource      = 8
	offDestination = 24

	// hopByHopProtocol is the IANA next-header value for the Hop-by-Hop
	// Options extension header (0).
	hopByHopProtocol = 0
	// icmpv6Protocol is the IANA next-header value for ICMPv6 (58).
	icmpv6Protocol = 58
)

func ipv6Source(b []byte) (addr [16]byte) {
	copy(addr[:], b[offSource:offSource+16])
	return addr
}

func ipv6Destination(b []byte) (addr [16]byte) {
	copy(addr[:], b[offDestination:offDestination+16])
	return addr
}
