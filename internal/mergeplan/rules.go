package mergeplan

import (
	"fmt"
	"strings"

	"syncplan/internal/config"
	"syncplan/internal/language"
	"syncplan/internal/media/inventory"
	"syncplan/internal/services"
)

// member is one claimed track with the flags its rule requested.
type member struct {
	source      Source
	track       inventory.Track
	applyName   bool
	wantDefault bool
	wantForced  bool
}

// exclusionNote records a rule whose every candidate fell to the codec
// blacklist, for error reporting when the type ends up empty.
type exclusionNote struct {
	ruleIndex int
	source    string
	trackType inventory.TrackType
}

// applyRules folds the priority-ordered rules over the immutable candidate
// set. Each rule claims the unclaimed tracks of its source and type that
// pass the language filter and codec blacklist; claimed tracks are invisible
// to every later rule.
func applyRules(sources []Source, rules []config.MergeRule, excludedCodecs []string) ([]member, []exclusionNote) {
	claimed := make(map[string]bool)
	var members []member
	var notes []exclusionNote

	for ruleIdx, rule := range rules {
		if !rule.Enabled {
			continue
		}
		src := findSource(sources, rule.Source)
		if src == nil {
			continue
		}

		var picked []member
		matchedBeforeExclusion := 0
		for _, track := range src.Inventory.Tracks {
			if string(track.Type) != rule.Type {
				continue
			}
			key := claimKey(src.Key, track.ID)
			if claimed[key] {
				continue
			}
			if !language.Matches(track.Language, rule.Lang) {
				continue
			}
			if langExcluded(track.Language, rule.ExcludeLangs) {
				continue
			}
			matchedBeforeExclusion++
			if codecExcluded(track.CodecID, excludedCodecs) {
				continue
			}
			claimed[key] = true
			picked = append(picked, member{
				source:      *src,
				track:       track,
				applyName:   rule.ApplyTrackName,
				wantDefault: rule.IsDefault,
				wantForced:  rule.IsForcedDisplay,
			})
		}

		if matchedBeforeExclusion > 0 && len(picked) == 0 {
			notes = append(notes, exclusionNote{
				ruleIndex: ruleIdx,
				source:    rule.Source,
				trackType: inventory.TrackType(rule.Type),
			})
			continue
		}

		if rule.SwapFirstTwo && len(picked) >= 2 {
			picked[0], picked[1] = picked[1], picked[0]
		}
		members = append(members, picked...)
	}
	return members, notes
}

// applyManual converts an explicit ordered track list into the same internal
// representation the rule fold produces.
func applyManual(sources []Source, selections []ManualSelection, excludedCodecs []string) ([]member, error) {
	var members []member
	for _, sel := range selections {
		src := findSource(sources, sel.SourceKey)
		if src == nil {
			return nil, services.Wrap(services.ErrConfiguration, "plan", "merge",
				fmt.Sprintf("manual selection names unknown source %q", sel.SourceKey), nil)
		}
		track, ok := findTrack(src.Inventory, sel.TrackID)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "plan", "merge",
				fmt.Sprintf("manual selection names unknown track %d of %s", sel.TrackID, sel.SourceKey), nil)
		}
		if codecExcluded(track.CodecID, excludedCodecs) {
			return nil, services.Wrap(services.ErrCodecExclusion, "plan", "merge",
				fmt.Sprintf("manual selection: track %d of %s has excluded codec %s", sel.TrackID, sel.SourceKey, track.CodecID), nil)
		}
		members = append(members, member{
			source:      *src,
			track:       track,
			applyName:   sel.ApplyName,
			wantDefault: sel.IsDefault,
			wantForced:  sel.IsForcedDisplay,
		})
	}
	return members, nil
}

func findSource(sources []Source, key string) *Source {
	for i := range sources {
		if sources[i].Key == key {
			return &sources[i]
		}
	}
	return nil
}

func findTrack(inv *inventory.Source, id int64) (inventory.Track, bool) {
	for _, t := range inv.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return inventory.Track{}, false
}

func findNote(notes []exclusionNote, kind inventory.TrackType) *exclusionNote {
	for i := range notes {
		if notes[i].trackType == kind {
			return &notes[i]
		}
	}
	return nil
}

func claimKey(sourceKey string, trackID int64) string {
	return fmt.Sprintf("%s:%d", sourceKey, trackID)
}

func langExcluded(trackLang string, excluded []string) bool {
	for _, lang := range excluded {
		if lang == "" || lang == "any" {
			continue
		}
		if language.Matches(trackLang, lang) {
			return true
		}
	}
	return false
}

func codecExcluded(codecID string, patterns []string) bool {
	id := strings.ToLower(codecID)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(id, p) {
			return true
		}
	}
	return false
}
