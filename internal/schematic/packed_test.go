package schematic

import (
	"math/rand"
	"testing"
)

func TestPackedRoundTrip(t *testing.T) {
	for bpe := 4; bpe <= 12; bpe++ {
		for _, length := range []int{0, 1, 7, 64, 65, 4096} {
			max := uint32(1)<<uint(bpe) - 1
			xs := make([]uint32, length)
			rng := rand.New(rand.NewSource(int64(bpe*10000 + length)))
			for i := range xs {
				xs[i] = uint32(rng.Intn(int(max) + 1))
			}

			longs := encodePacked(xs, bpe)
			got, err := decodePacked(longs, length, bpe)
			if err != nil {
				t.Fatalf("bpe=%d length=%d: decodePacked error: %v", bpe, length, err)
			}
			if len(got) != length {
				t.Fatalf("bpe=%d length=%d: got %d entries, want %d", bpe, length, len(got), length)
			}
			for i := range xs {
				if got[i] != xs[i] {
					t.Fatalf("bpe=%d length=%d: entry %d = %d, want %d", bpe, length, i, got[i], xs[i])
				}
			}
		}
	}
}

func TestDecodePackedPastEndIsDimensionMismatch(t *testing.T) {
	_, err := decodePacked([]int64{0}, 100, 8)
	if err == nil {
		t.Fatalf("expected error when packed-long decode runs past available longs")
	}
}

func TestLEB128RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, length := range []int{0, 1, 5, 500} {
		xs := make([]uint32, length)
		for i := range xs {
			xs[i] = rng.Uint32()
		}
		data := encodeLEB128(xs)
		got, err := decodeLEB128(data, length)
		if err != nil {
			t.Fatalf("length=%d: decodeLEB128 error: %v", length, err)
		}
		for i := range xs {
			if got[i] != xs[i] {
				t.Fatalf("length=%d: entry %d = %d, want %d", length, i, got[i], xs[i])
			}
		}
	}
}

func TestLEB128PrematureEnd(t *testing.T) {
	_, err := decodeLEB128([]byte{0x80}, 1)
	if err == nil {
		t.Fatalf("expected error on premature end of LEB128 stream")
	}
}

func TestBitsPerEntry(t *testing.T) {
	cases := []struct {
		paletteCount int
		want         int
	}{
		{0, 4},
		{1, 4},
		{2, 4},
		{16, 4},
		{17, 5},
		{256, 8},
		{257, 9},
	}
	for _, c := range cases {
		if got := bitsPerEntry(c.paletteCount); got != c.want {
			t.Errorf("bitsPerEntry(%d) = %d, want %d", c.paletteCount, got, c.want)
		}
	}
}
