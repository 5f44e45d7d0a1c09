package clock

import (
	"errors"
	"math/big"
	"testing"
)

func refNCO(rate, mclk uint32) uint32 {
	n := new(big.Int).Lsh(big.NewInt(int64(rate)), 32)
	n.Quo(n, big.NewInt(int64(mclk)))
	return uint32(n.Uint64())
}

func TestNCO(t *testing.T) {
	for _, tc := range []struct {
		rate, mclk uint32
		want       uint32
	}{
		{44100, 100000000, 1894080},
		{48000, 100000000, 0x001F7510},
		{192000, 100000000, 0x007DD441},
		{1536000, 100000000, 0x03EEA209},
		{8000, 22579200, 0x0017384E},
		{44100, 22579200, 0x00800000},
		{96000, 24576000, 0x01000000},
		{2822400, 45158400, 0x10000000},
		{1, 0xFFFFFFFF, 1},
		{0, 100000000, 0},
	} {
		got, err := NCO(tc.rate, tc.mclk)
		if err != nil {
			t.Fatalf("rate=%d mclk=%d: could not compute NCO: %+v", tc.rate, tc.mclk, err)
		}
		if got != tc.want {
			t.Fatalf("rate=%d mclk=%d: got=0x%08X, want=0x%08X", tc.rate, tc.mclk, got, tc.want)
		}
		if ref := refNCO(tc.rate, tc.mclk); got != ref {
			t.Fatalf("rate=%d mclk=%d: got=0x%08X, ref=0x%08X", tc.rate, tc.mclk, got, ref)
		}
	}
}

func TestNCOMatchesReference(t *testing.T) {
	for _, mclk := range []uint32{11289600, 22579200, 24576000, 45158400, 49152000, 100000000, 0xFFFFFFFF} {
		for rate := uint32(8000); rate <= 1536000 && rate < mclk; rate += 7919 {
			got, err := NCO(rate, mclk)
			if err != nil {
				t.Fatalf("rate=%d mclk=%d: %+v", rate, mclk, err)
			}
			if want := refNCO(rate, mclk); got != want {
				t.Fatalf("rate=%d mclk=%d: got=0x%08X, want=0x%08X", rate, mclk, got, want)
			}
		}
	}
}

func TestNCOInvalidClock(t *testing.T) {
	for _, tc := range []struct {
		rate, mclk uint32
	}{
		{44100, 0},
		{0, 0},
		{100000000, 100000000},
		{200000000, 100000000},
	} {
		_, err := NCO(tc.rate, tc.mclk)
		if !errors.Is(err, ErrInvalidClock) {
			t.Fatalf("rate=%d mclk=%d: got=%+v, want=%+v", tc.rate, tc.mclk, err, ErrInvalidClock)
		}
	}
}

func TestNCOBytes(t *testing.T) {
	got := NCOBytes(0x12345678)
	want := [4]byte{0x78, 0x56, 0x34, 0x12}
	if got != want {
		t.Fatalf("got=% x, want=% x", got, want)
	}
	if w := Word(got[:]); w != 0x12345678 {
		t.Fatalf("invalid round-trip: got=0x%08X", w)
	}
}

func TestRate(t *testing.T) {
	for _, tc := range []struct {
		rate, mclk uint32
	}{
		{44100, 100000000},
		{48000, 100000000},
		{192000, 100000000},
		{1536000, 100000000},
		{8000, 22579200},
		{352800, 45158400},
	} {
		word, err := NCO(tc.rate, tc.mclk)
		if err != nil {
			t.Fatalf("could not compute NCO: %+v", err)
		}
		if got := Rate(word, tc.mclk); got != tc.rate {
			t.Fatalf("rate=%d mclk=%d: got=%d", tc.rate, tc.mclk, got)
		}
	}
}
