package pcm

import (
	"math"
	"testing"
)

func TestDecodeS16LE(t *testing.T) {
	// 0, 16384, -16384, -32768 as little-endian int16.
	raw := []byte{
		0x00, 0x00,
		0x00, 0x40,
		0x00, 0xc0,
		0x00, 0x80,
	}
	got := DecodeS16LE(raw)
	want := []float64{0, 0.5, -0.5, -1.0}
	if len(got) != len(want) {
		t.Fatalf("DecodeS16LE() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecodeS16LEOddTrailingByte(t *testing.T) {
	got := DecodeS16LE([]byte{0x00, 0x40, 0xff})
	if len(got) != 1 {
		t.Fatalf("DecodeS16LE() len = %d, want 1", len(got))
	}
}

func TestDecodeS16LEEmpty(t *testing.T) {
	if got := DecodeS16LE(nil); len(got) != 0 {
		t.Fatalf("DecodeS16LE(nil) len = %d, want 0", len(got))
	}
}
