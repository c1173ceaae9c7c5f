package mergeplan

import (
	"fmt"
	"strings"

	"syncplan/internal/config"
	"syncplan/internal/delay"
	"syncplan/internal/language"
	"syncplan/internal/media/inventory"
	"syncplan/internal/services"
)

// Source is one input container participating in the plan. Sources are
// ordered reference first, then secondary, then tertiary.
type Source struct {
	Key       string
	Path      string
	Inventory *inventory.Source
}

// ManualSelection is an explicit track pick used instead of rule matching.
type ManualSelection struct {
	SourceKey       string
	TrackID         int64
	ApplyName       bool
	IsDefault       bool
	IsForcedDisplay bool
}

// Input is everything the builder needs to produce one option document.
type Input struct {
	Sources []Source
	Plan    delay.Plan
	// Rules drives membership in priority order. Ignored when Manual is set.
	Rules  []config.MergeRule
	Manual []ManualSelection

	Options      config.Merge
	OutputPath   string
	ChaptersPath string
	// Attachments are filesystem paths of extracted attachment files,
	// appended after all input groups.
	Attachments []string
}

// PlanTrack is one planned output track in final order.
type PlanTrack struct {
	SourceKey        string
	Path             string
	Track            inventory.Track
	SyncMs           int
	EmitName         bool
	Default          bool
	ForcedDisplay    bool
	RemoveDialogNorm bool
}

// Plan is the finalized, ordered remux plan.
type Plan struct {
	Tracks []PlanTrack
	Tokens []string
}

// Build turns inventory, delays, and selection rules into an ordered option
// token list. Fails rather than emitting a plan that would lose content or
// lack a video track.
func Build(in Input) (*Plan, error) {
	if len(in.Sources) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "plan", "merge", "no input sources", nil)
	}

	var (
		members []member
		notes   []exclusionNote
	)
	if len(in.Manual) > 0 {
		var err error
		members, err = applyManual(in.Sources, in.Manual, in.Options.ExcludedCodecs)
		if err != nil {
			return nil, err
		}
	} else {
		members, notes = applyRules(in.Sources, in.Rules, in.Options.ExcludedCodecs)
	}

	if !hasType(members, inventory.TypeVideo) {
		if note := findNote(notes, inventory.TypeVideo); note != nil {
			return nil, codecExclusionError(*note)
		}
		return nil, services.Wrap(services.ErrNoReferenceVideo, "plan", "merge",
			"no source contributes a video track", nil)
	}
	for _, kind := range []inventory.TrackType{inventory.TypeAudio, inventory.TypeSubtitles} {
		if hasType(members, kind) {
			continue
		}
		if note := findNote(notes, kind); note != nil {
			return nil, codecExclusionError(*note)
		}
	}

	plan := &Plan{}
	for _, m := range members {
		residual, err := in.Plan.Residual(m.source.Key)
		if err != nil {
			return nil, err
		}
		sync := residual + m.track.ContainerDelayMs
		if sync < 0 {
			return nil, services.Wrap(services.ErrInvariantViolation, "plan", "merge",
				fmt.Sprintf("track %d of %s: negative sync %dms", m.track.ID, m.source.Key, sync), nil)
		}
		plan.Tracks = append(plan.Tracks, PlanTrack{
			SourceKey:        m.source.Key,
			Path:             m.source.Path,
			Track:            m.track,
			SyncMs:           sync,
			EmitName:         m.applyName && m.track.Name != "",
			RemoveDialogNorm: in.Options.ApplyDialogNormGain && isDialogNormCodec(m.track),
		})
	}

	resolveDefaults(plan.Tracks, members, in.Options)
	plan.Tokens = emitTokens(plan, in)
	return plan, nil
}

func codecExclusionError(note exclusionNote) error {
	return services.Wrap(services.ErrCodecExclusion, "plan", "merge",
		fmt.Sprintf("rule %d (%s/%s): codec exclusions removed every candidate",
			note.ruleIndex, note.source, note.trackType), nil)
}

func hasType(members []member, kind inventory.TrackType) bool {
	for _, m := range members {
		if m.track.Type == kind {
			return true
		}
	}
	return false
}

func isDialogNormCodec(t inventory.Track) bool {
	if t.Type != inventory.TypeAudio {
		return false
	}
	id := strings.ToUpper(t.CodecID)
	return strings.Contains(id, "AC3") || strings.Contains(id, "AC-3")
}

// resolveDefaults assigns default and forced flags in one pass over the
// materialized plan so the outcome is independent of rule authoring order.
// The first video is always default; exactly one audio is default; a
// subtitle is default only when a rule asked for one or no audio language
// matches the preferred set.
func resolveDefaults(tracks []PlanTrack, members []member, opts config.Merge) {
	firstVideo, firstAudio, firstSub := -1, -1, -1
	wantedAudio, wantedSub, forcedSub := -1, -1, -1
	audioPreferred := false

	for i := range tracks {
		tracks[i].Default = false
		tracks[i].ForcedDisplay = false
		switch tracks[i].Track.Type {
		case inventory.TypeVideo:
			if firstVideo < 0 {
				firstVideo = i
			}
		case inventory.TypeAudio:
			if firstAudio < 0 {
				firstAudio = i
			}
			if wantedAudio < 0 && members[i].wantDefault {
				wantedAudio = i
			}
			for _, pref := range opts.PreferredAudioLangs {
				if language.Matches(tracks[i].Track.Language, pref) {
					audioPreferred = true
				}
			}
		case inventory.TypeSubtitles:
			if firstSub < 0 {
				firstSub = i
			}
			if wantedSub < 0 && members[i].wantDefault {
				wantedSub = i
			}
			if forcedSub < 0 && members[i].wantForced {
				forcedSub = i
			}
		}
	}

	if firstVideo >= 0 {
		tracks[firstVideo].Default = true
	}
	switch {
	case wantedAudio >= 0:
		tracks[wantedAudio].Default = true
	case firstAudio >= 0:
		tracks[firstAudio].Default = true
	}
	switch {
	case wantedSub >= 0:
		tracks[wantedSub].Default = true
	case opts.FirstSubDefault && !audioPreferred && firstSub >= 0:
		tracks[firstSub].Default = true
	}
	if forcedSub >= 0 {
		tracks[forcedSub].ForcedDisplay = true
	}
}
