package audiocorr

import "sort"

// WindowResult is the correlation outcome for a single scan window.
type WindowResult struct {
	StartSeconds float64
	OffsetMs     int
	MatchPct     float64
}

// ScanStarts spreads n window start positions across the middle 80% of the
// shorter source so credits and studio cards at either end stay out of the
// correlation. Positions begin at 10% of the duration.
func ScanStarts(durationSeconds float64, n int) []float64 {
	if n <= 0 || durationSeconds <= 0 {
		return nil
	}
	base := 0.10 * durationSeconds
	step := 0.80 * durationSeconds / float64(n)
	starts := make([]float64, n)
	for i := 0; i < n; i++ {
		starts[i] = base + float64(i)*step
	}
	return starts
}

// Aggregate reduces the per-window results to a single offset. Windows at or
// below minMatchPct are rejected; of the survivors the most common offset
// wins, with match-percentage ties broken toward the strongest peak. The
// returned confidence is the best match within the winning group. ok is
// false when no window clears the threshold.
func Aggregate(windows []WindowResult, minMatchPct float64) (offsetMs int, confidence float64, accepted int, ok bool) {
	counts := make(map[int]int)
	best := make(map[int]float64)
	for _, w := range windows {
		if w.MatchPct <= minMatchPct {
			continue
		}
		accepted++
		counts[w.OffsetMs]++
		if w.MatchPct > best[w.OffsetMs] {
			best[w.OffsetMs] = w.MatchPct
		}
	}
	if accepted == 0 {
		return 0, 0, 0, false
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	var contenders []int
	for offset, c := range counts {
		if c == maxCount {
			contenders = append(contenders, offset)
		}
	}
	sort.Ints(contenders)

	offsetMs = contenders[0]
	confidence = best[offsetMs]
	for _, c := range contenders[1:] {
		if best[c] > confidence {
			offsetMs = c
			confidence = best[c]
		}
	}
	return offsetMs, confidence, accepted, true
}
