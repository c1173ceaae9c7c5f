package delay

import (
	"fmt"
	"sort"

	"syncplan/internal/services"
)

// Plan is the finalized timing decision for one job. Residuals are keyed by
// source and never negative; the least delayed source sits at exactly zero.
type Plan struct {
	GlobalShiftMs int
	ResidualMs    map[string]int
}

// NewPlan normalizes a map of raw signed offsets (the reference carries 0)
// into a global shift plus non-negative residuals. Pure function of its
// input; normalizing an already normalized plan is the identity.
func NewPlan(rawOffsetMs map[string]int) (Plan, error) {
	keys := make([]string, 0, len(rawOffsetMs))
	base := make([]int, 0, len(rawOffsetMs))
	for key := range rawOffsetMs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		base = append(base, rawOffsetMs[key])
	}

	norm, err := Normalize(base)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{GlobalShiftMs: norm.GlobalShiftMs, ResidualMs: make(map[string]int, len(keys))}
	for i, key := range keys {
		plan.ResidualMs[key] = norm.ResidualMs[i]
	}
	return plan, nil
}

// Residual returns the residual for a source, failing loudly on unknown keys
// so a plan is never silently applied to a source it was not computed for.
func (p Plan) Residual(sourceKey string) (int, error) {
	r, ok := p.ResidualMs[sourceKey]
	if !ok {
		return 0, services.Wrap(services.ErrInvariantViolation, "plan", "delay",
			fmt.Sprintf("no residual for source %q", sourceKey), nil)
	}
	return r, nil
}
