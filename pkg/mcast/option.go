package mcast

import "fmt"

// This file implements the wire format for the Trickle hop-by-hop (HBH)
// option carried on every forwarded multicast datagram: a 2-byte
// extension-header prefix (next header, hdr ext len in 8-octet units
// minus one) followed by the Trickle option TLV, fixed at 8 octets
// total in both seed modes.
//
// The option's flags byte packs the M bit in its top bit with the
// 7 most-significant bits of the 15-bit sequence value in the rest; an
// immediately following byte carries the low 8 bits. Short-seed mode
// additionally carries the 2-byte seed id ahead of flags; long-seed
// mode derives the seed id from the datagram's own IPv6 source address
// instead, so its option payload is only 2 bytes and is padded out to
// the fixed 8-octet total with a mandatory 2-byte PadN option —
// removing it would change on-wire compatibility, so it is never
// omitted even though it carries no payload of its own.
const (
	trickleOptionType = 0x0C // skip-if-unrecognized, not "change en route" (RFC 8200 top bits 00)
	padNType          = 0x01

	totalHBHLen = 8
)

// trickleOptionPayload returns the Trickle option's TLV payload (without
// its own type/length bytes) for the given mode.
func trickleOptionPayload(mode SeedMode, m M, seq seqValue, seedID SeedID) []byte {
	flags := byte(seq>>8) & 0x7F
	if m == M1 {
		flags |= 0x80
	}
	lsb := byte(seq)
	if mode == ShortSeed {
		return []byte{seedID[0], seedID[1], flags, lsb}
	}
	return []byte{flags, lsb}
}

// EncodeHBH builds the complete, always-8-octet HBH extension header
// bytes: the 2-byte prefix, the Trickle option TLV, and (long-seed mode
// only) a mandatory 2-byte PadN tail. nextHeader is the upper-layer
// protocol number that follows this extension header.
func EncodeHBH(mode SeedMode, m M, seq seqValue, seedID SeedID, nextHeader byte) []byte {
	payload := trickleOptionPayload(mode, m, seq, seedID)

	buf := make([]byte, totalHBHLen)
	buf[0] = nextHeader
	buf[1] = byte(totalHBHLen/8 - 1)
	buf[2] = trickleOptionType
	buf[3] = byte(len(payload))
	copy(buf[4:], payload)

	if mode == LongSeed {
		tail := 4 + len(payload)
		buf[tail] = padNType
		buf[tail+1] = 0
	}
	return buf
}

// DecodeHBH parses an HBH extension header beginning at data[0]. mode
// tells the decoder whether to expect an in-band seed id (short-seed) or
// derive it from the datagram's source address (long-seed, done by the
// caller). Returns the bytes consumed (always 8 on success).
func DecodeHBH(data []byte, mode SeedMode) (m M, seq seqValue, seedID SeedID, nextHeader byte, consumed int, err error) {
	if len(data) < totalHBHLen {
		return 0, 0, SeedID{}, 0, 0, fmt.Errorf("mcast: HBH header truncated")
	}
	nextHeader = data[0]
	total := (int(data[1]) + 1) * 8
	if total != totalHBHLen {
		return 0, 0, SeedID{}, 0, 0, fmt.Errorf("mcast: HBH header length %d, want %d", total, totalHBHLen)
	}
	if data[2] != trickleOptionType {
		return 0, 0, SeedID{}, 0, 0, fmt.Errorf("mcast: missing Trickle option, found type 0x%02x", data[2])
	}
	optLen := int(data[3])
	wantLen := 2
	if mode == ShortSeed {
		wantLen = 4
	}
	if optLen != wantLen {
		return 0, 0, SeedID{}, 0, 0, fmt.Errorf("mcast: Trickle option length %d invalid for mode", optLen)
	}

	payload := data[4 : 4+optLen]
	var flags, lsb byte
	if mode == ShortSeed {
		seedID[0], seedID[1] = payload[0], payload[1]
		flags, lsb = payload[2], payload[3]
	} else {
		flags, lsb = payload[0], payload[1]
		if data[6] != padNType {
			return 0, 0, SeedID{}, 0, 0, fmt.Errorf("mcast: missing mandatory PadN tail in long-seed HBH option")
		}
	}
	seq = seqValue(flags&0x7F)<<8 | seqValue(lsb)
	if flags&0x80 != 0 {
		m = M1
	} else {
		m = M0
	}
	return m, seq, seedID, nextHeader, total, nil
}
