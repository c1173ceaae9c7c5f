package audiocorr

import (
	"math"
	"testing"
)

// pseudoSignal builds a deterministic wide-band signal so correlation peaks
// are sharp without pulling in a real decoder.
func pseudoSignal(n int, seed uint64) []float64 {
	out := make([]float64, n)
	state := seed
	for i := range out {
		state = state*6364136223846793005 + 1442695040888963407
		out[i] = float64(int32(state>>33))/float64(1<<31) + 0.3*math.Sin(float64(i)/7.0)
	}
	return out
}

func TestNormalizeWindow(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5}
	norm := NormalizeWindow(samples)

	mean := 0.0
	for _, v := range norm {
		mean += v
	}
	mean /= float64(len(norm))
	if math.Abs(mean) > 1e-9 {
		t.Errorf("normalized mean = %v, want 0", mean)
	}

	variance := 0.0
	for _, v := range norm {
		variance += v * v
	}
	std := math.Sqrt(variance / float64(len(norm)))
	if math.Abs(std-1.0) > 1e-6 {
		t.Errorf("normalized std = %v, want 1", std)
	}
}

func TestNormalizeWindowSilence(t *testing.T) {
	norm := NormalizeWindow([]float64{0.5, 0.5, 0.5})
	for i, v := range norm {
		if v != 0 {
			t.Errorf("silent window sample %d = %v, want 0", i, v)
		}
	}
}

func TestNormalizeWindowEmpty(t *testing.T) {
	if got := NormalizeWindow(nil); got != nil {
		t.Errorf("NormalizeWindow(nil) = %v, want nil", got)
	}
}

func TestCorrelateWindowsIdentical(t *testing.T) {
	sig := NormalizeWindow(pseudoSignal(2048, 1))
	offset, match := CorrelateWindows(sig, sig, 1000)
	if offset != 0 {
		t.Errorf("identical windows offset = %d, want 0", offset)
	}
	if match < 99.0 {
		t.Errorf("identical windows match = %v, want near 100", match)
	}
}

func TestCorrelateWindowsIgnoresInvertedEcho(t *testing.T) {
	const (
		n          = 2048
		echoShift  = 200
		sampleRate = 1000
	)
	base := pseudoSignal(n, 3)
	ref := NormalizeWindow(base)

	// The secondary holds the aligned content plus a louder polarity-inverted
	// echo. The inverted peak is larger in magnitude but negative; the lag
	// must come from the true alignment, not the echo.
	sec := make([]float64, n)
	for i := range sec {
		sec[i] = 0.6 * base[i]
		if i >= echoShift {
			sec[i] -= base[i-echoShift]
		}
	}

	offset, _ := CorrelateWindows(ref, NormalizeWindow(sec), sampleRate)
	if offset != 0 {
		t.Errorf("offset = %d ms, want 0 (inverted echo must not set the lag)", offset)
	}
}

func TestCorrelateWindowsShifted(t *testing.T) {
	const (
		n          = 2048
		shift      = 50
		sampleRate = 1000
	)
	base := pseudoSignal(n+shift, 2)

	// The secondary carries the same content shift samples later.
	ref := NormalizeWindow(base[shift:])
	sec := NormalizeWindow(base[:n])

	offset, match := CorrelateWindows(ref, sec, sampleRate)
	if offset != -shift {
		t.Errorf("offset = %d ms, want %d", offset, -shift)
	}
	if match < 90.0 {
		t.Errorf("match = %v, want strong peak", match)
	}

	// Swapping the sides flips the sign.
	offset, _ = CorrelateWindows(sec, ref, sampleRate)
	if offset != shift {
		t.Errorf("swapped offset = %d ms, want %d", offset, shift)
	}
}

func TestCorrelateWindowsEmpty(t *testing.T) {
	offset, match := CorrelateWindows(nil, []float64{1}, 48000)
	if offset != 0 || match != 0 {
		t.Errorf("empty input = (%d, %v), want (0, 0)", offset, match)
	}
}
