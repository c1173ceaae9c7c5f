package audiocorr

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"syncplan/internal/analysis"
)

// epsilon guards divisions on silent or constant windows.
const epsilon = 1e-9

// NormalizeWindow centers the samples and scales them to unit variance.
// Silent windows come back as all zeros instead of dividing by zero.
func NormalizeWindow(samples []float64) []float64 {
	n := len(samples)
	if n == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range samples {
		d := v - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(n))

	out := make([]float64, n)
	for i, v := range samples {
		out[i] = (v - mean) / (std + epsilon)
	}
	return out
}

// CorrelateWindows cross-correlates two normalized windows and returns the
// offset of the secondary window in milliseconds plus the peak match
// percentage. A negative offset means the secondary's content appears later
// and the secondary track must be pulled forward to line up.
func CorrelateWindows(ref, sec []float64, sampleRate int) (offsetMs int, matchPct float64) {
	if len(ref) == 0 || len(sec) == 0 || sampleRate <= 0 {
		return 0, 0
	}

	size := fftSize(len(ref) + len(sec) - 1)
	fft := fourier.NewFFT(size)

	refPad := make([]float64, size)
	copy(refPad, ref)
	secPad := make([]float64, size)
	copy(secPad, sec)

	refC := fft.Coefficients(nil, refPad)
	secC := fft.Coefficients(nil, secPad)
	for i := range refC {
		refC[i] *= cmplx.Conj(secC[i])
	}

	// The gonum round trip scales by the transform length.
	corr := fft.Sequence(nil, refC)
	scale := float64(size)

	// The lag comes from the signed maximum; an inverted-polarity echo must
	// not win over the true alignment. The match strength still uses the
	// absolute peak.
	signedPeak := math.Inf(-1)
	peakIdx := 0
	absPeak := 0.0
	for i, v := range corr {
		if v > signedPeak {
			signedPeak = v
			peakIdx = i
		}
		if a := math.Abs(v); a > absPeak {
			absPeak = a
		}
	}
	peak := absPeak / scale

	// Indices past the midpoint are negative lags that wrapped around.
	lag := peakIdx
	if lag > size/2 {
		lag -= size
	}

	var refEnergy, secEnergy float64
	for _, v := range ref {
		refEnergy += v * v
	}
	for _, v := range sec {
		secEnergy += v * v
	}
	matchPct = 100.0 * peak / (math.Sqrt(refEnergy*secEnergy) + epsilon)

	offsetMs = analysis.RoundMs(float64(lag) / float64(sampleRate))
	return offsetMs, matchPct
}

func fftSize(min int) int {
	size := 1
	for size < min {
		size <<= 1
	}
	return size
}
