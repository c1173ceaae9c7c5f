package chapters

import (
	"fmt"
	"sort"
)

// SnapMode selects which keyframe a chapter time moves to.
type SnapMode string

const (
	// SnapPrevious moves times back to the closest keyframe at or before them.
	SnapPrevious SnapMode = "previous"
	// SnapNearest moves times to whichever keyframe is closest on either side.
	SnapNearest SnapMode = "nearest"
)

// SnapStats counts what happened to each candidate timestamp during a snap.
type SnapStats struct {
	Moved             int
	AlreadyOnKeyframe int
	TooFar            int
}

// Rename replaces every chapter title with a sequential "Chapter NN" label
// in the undetermined language, discarding source naming.
func Rename(chs []Chapter) {
	for i := range chs {
		chs[i].Name = fmt.Sprintf("Chapter %02d", i+1)
		chs[i].Language = "und"
	}
}

// Shift moves every chapter time later by the given amount. Times that would
// go negative clamp to zero.
func Shift(chs []Chapter, ms int) {
	deltaNs := int64(ms) * 1e6
	for i := range chs {
		chs[i].StartNs = clampNs(chs[i].StartNs + deltaNs)
		if chs[i].HasEnd {
			chs[i].EndNs = clampNs(chs[i].EndNs + deltaNs)
		}
	}
}

func clampNs(ns int64) int64 {
	if ns < 0 {
		return 0
	}
	return ns
}

// Snap aligns chapter times to the provided sorted keyframe timestamps.
// Times farther than thresholdMs from their candidate keyframe stay put.
// With startsOnly set, chapter ends are left alone.
func Snap(chs []Chapter, keyframesNs []int64, mode SnapMode, thresholdMs int, startsOnly bool) SnapStats {
	var stats SnapStats
	if len(keyframesNs) == 0 {
		return stats
	}
	thresholdNs := int64(thresholdMs) * 1e6

	for i := range chs {
		chs[i].StartNs = snapOne(chs[i].StartNs, keyframesNs, mode, thresholdNs, &stats)
		if chs[i].HasEnd && !startsOnly {
			chs[i].EndNs = snapOne(chs[i].EndNs, keyframesNs, mode, thresholdNs, &stats)
		}
	}
	return stats
}

func snapOne(ns int64, keyframes []int64, mode SnapMode, thresholdNs int64, stats *SnapStats) int64 {
	// First keyframe at or after ns.
	idx := sort.Search(len(keyframes), func(i int) bool { return keyframes[i] >= ns })

	if idx < len(keyframes) && keyframes[idx] == ns {
		stats.AlreadyOnKeyframe++
		return ns
	}

	candidate := int64(-1)
	switch mode {
	case SnapNearest:
		if idx > 0 {
			candidate = keyframes[idx-1]
		}
		if idx < len(keyframes) {
			next := keyframes[idx]
			if candidate < 0 || next-ns < ns-candidate {
				candidate = next
			}
		}
	default: // SnapPrevious
		if idx > 0 {
			candidate = keyframes[idx-1]
		}
	}

	if candidate < 0 {
		stats.TooFar++
		return ns
	}
	dist := ns - candidate
	if dist < 0 {
		dist = -dist
	}
	if dist > thresholdNs {
		stats.TooFar++
		return ns
	}
	stats.Moved++
	return candidate
}

// Normalize sorts the timeline and repairs it so starts are strictly
// increasing and every atom is closed: ends never cross the next chapter's
// start and always sit at least one nanosecond past their own start. Open
// atoms receive the next start as their end, or terminalNs for the last one.
func Normalize(chs []Chapter, terminalNs int64) {
	sort.SliceStable(chs, func(i, j int) bool { return chs[i].StartNs < chs[j].StartNs })
	for i := range chs {
		if i > 0 && chs[i].StartNs <= chs[i-1].StartNs {
			chs[i].StartNs = chs[i-1].StartNs + 1
		}

		next := terminalNs
		if i+1 < len(chs) {
			next = chs[i+1].StartNs
		}
		if !chs[i].HasEnd || chs[i].EndNs > next {
			chs[i].EndNs = next
			chs[i].HasEnd = true
		}
		if chs[i].EndNs < chs[i].StartNs+1 {
			chs[i].EndNs = chs[i].StartNs + 1
		}
	}
}
