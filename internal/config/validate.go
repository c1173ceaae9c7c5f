package config

import (
	"errors"
	"fmt"
	"sort"
)

var (
	validSources   = map[string]struct{}{"ref": {}, "sec": {}, "ter": {}}
	validTypes     = map[string]struct{}{"video": {}, "audio": {}, "subtitles": {}}
	validSnapModes = map[string]struct{}{"previous": {}, "nearest": {}}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateChapters(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if c.Workflow.MinFreeGiB < 0 {
		return errors.New("workflow.min_free_gib must not be negative")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	switch c.Analysis.Mode {
	case "audio", "videodiff":
	default:
		return fmt.Errorf("analysis.mode must be \"audio\" or \"videodiff\", got %q", c.Analysis.Mode)
	}
	if c.Analysis.MinMatchPct < 0 || c.Analysis.MinMatchPct > 100 {
		return errors.New("analysis.min_match_pct must be between 0 and 100")
	}
	if c.Analysis.VideoDiffErrorMin > c.Analysis.VideoDiffErrorMax {
		return fmt.Errorf(
			"analysis.videodiff_error_min (%g) must not exceed analysis.videodiff_error_max (%g)",
			c.Analysis.VideoDiffErrorMin, c.Analysis.VideoDiffErrorMax,
		)
	}
	return nil
}

func (c *Config) validateChapters() error {
	if _, ok := validSnapModes[c.Chapters.SnapMode]; !ok {
		return fmt.Errorf("chapters.snap_mode must be \"previous\" or \"nearest\", got %q", c.Chapters.SnapMode)
	}
	return nil
}

func (c *Config) validateMerge() error {
	for i, rule := range c.Merge.Rules {
		if _, ok := validSources[rule.Source]; !ok {
			return fmt.Errorf("merge.rules[%d].source must be ref, sec, or ter, got %q", i, rule.Source)
		}
		if _, ok := validTypes[rule.Type]; !ok {
			return fmt.Errorf("merge.rules[%d].type must be video, audio, or subtitles, got %q", i, rule.Type)
		}
	}
	return nil
}

// SortedRules returns the merge rules ordered by ascending priority. Rules
// with equal priority keep their declaration order.
func (c *Config) SortedRules() []MergeRule {
	rules := make([]MergeRule, len(c.Merge.Rules))
	copy(rules, c.Merge.Rules)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})
	return rules
}
