// Package delay turns signed raw sync offsets into the non-negative values
// a merge can apply. Container tools only shift tracks later, so the whole
// plan is shifted by the worst leading offset instead of trimming anything.
package delay

import (
	"fmt"

	"syncplan/internal/services"
)

// Normalized is the outcome of positive-only normalization over a set of
// base delays (raw measured offset plus container delay, per audio track).
type Normalized struct {
	GlobalShiftMs int
	ResidualMs    []int
}

// GlobalShift returns the amount every track must be pushed later so that
// the most leading track lands exactly on zero. Zero when nothing leads.
func GlobalShift(baseMs []int) int {
	shift := 0
	for _, d := range baseMs {
		if -d > shift {
			shift = -d
		}
	}
	return shift
}

// Normalize applies the global shift to each base delay. The residuals are
// guaranteed non-negative, and whenever a shift was needed at least one
// residual is exactly zero.
func Normalize(baseMs []int) (Normalized, error) {
	shift := GlobalShift(baseMs)
	out := Normalized{GlobalShiftMs: shift}
	if len(baseMs) == 0 {
		return out, nil
	}

	out.ResidualMs = make([]int, len(baseMs))
	anchored := shift == 0
	for i, d := range baseMs {
		residual := d + shift
		if residual < 0 {
			return Normalized{}, services.Wrap(services.ErrInvariantViolation, "normalize", "delay",
				fmt.Sprintf("residual %dms negative after shift %dms", residual, shift), nil)
		}
		if residual == 0 {
			anchored = true
		}
		out.ResidualMs[i] = residual
	}
	if !anchored {
		return Normalized{}, services.Wrap(services.ErrInvariantViolation, "normalize", "delay",
			fmt.Sprintf("no track anchored at zero after shift %dms", shift), nil)
	}
	return out, nil
}
