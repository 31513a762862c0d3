package mcast

import (
	"testing"

	"pgregory.net/rapid"
)

// TestHBHRoundTripProperty checks that EncodeHBH/DecodeHBH round-trip for
// any mode/M/sequence/seed-id/next-header combination, not just the fixed
// cases in option_test.go.
func TestHBHRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mode := SeedMode(rapid.IntRange(0, 1).Draw(t, "mode"))
		m := M(rapid.IntRange(0, 1).Draw(t, "m"))
		seq := seqValue(rapid.IntRange(0, 0x7FFF).Draw(t, "seq"))
		nextHeader := byte(rapid.IntRange(0, 255).Draw(t, "nextHeader"))
		var seed SeedID
		if mode == ShortSeed {
			seed[0] = byte(rapid.IntRange(0, 255).Draw(t, "seed0"))
			seed[1] = byte(rapid.IntRange(0, 255).Draw(t, "seed1"))
		}

		buf := EncodeHBH(mode, m, seq, seed, nextHeader)
		if len(buf)%8 != 0 {
			t.Fatalf("HBH length %d not 8-aligned", len(buf))
		}

		gotM, gotSeq, gotSeed, gotNextHeader, consumed, err := DecodeHBH(buf, mode)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if consumed != len(buf) {
			t.Fatalf("consumed %d, want %d", consumed, len(buf))
		}
		if gotM != m || gotSeq != seq || gotNextHeader != nextHeader {
			t.Fatalf("got m=%v seq=%x nh=%d, want m=%v seq=%x nh=%d", gotM, gotSeq, gotNextHeader, m, seq, nextHeader)
		}
		if mode == ShortSeed && gotSeed != seed {
			t.Fatalf("got seed=%v, want %v", gotSeed, seed)
		}
	})
}
