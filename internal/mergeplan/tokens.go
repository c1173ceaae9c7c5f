package mergeplan

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"syncplan/internal/language"
	"syncplan/internal/media/inventory"
)

// emitTokens renders the plan as the exact argv the remux tool replays via
// an @file indirection. Every planned track forms one input group; the flag
// order within a group is fixed and part of the contract.
func emitTokens(plan *Plan, in Input) []string {
	tokens := []string{"--output", in.OutputPath}
	if in.ChaptersPath != "" {
		tokens = append(tokens, "--chapters", in.ChaptersPath)
	}
	if in.Options.DisableTrackStatisticsTags {
		tokens = append(tokens, "--disable-track-statistics-tags")
	}

	for _, t := range plan.Tracks {
		tid := t.Track.ID
		tokens = append(tokens, "--language", fmt.Sprintf("%d:%s", tid, language.ToISO3(t.Track.Language)))
		if t.EmitName {
			tokens = append(tokens, "--track-name", fmt.Sprintf("%d:%s", tid, t.Track.Name))
		}
		tokens = append(tokens, "--sync", fmt.Sprintf("%d:%d", tid, t.SyncMs))
		tokens = append(tokens, "--default-track-flag", fmt.Sprintf("%d:%s", tid, yesNo(t.Default)))
		if t.Track.Type == inventory.TypeSubtitles && t.ForcedDisplay {
			tokens = append(tokens, "--forced-display-flag", fmt.Sprintf("%d:yes", tid))
		}
		tokens = append(tokens, "--compression", fmt.Sprintf("%d:none", tid))
		if t.RemoveDialogNorm {
			tokens = append(tokens, "--remove-dialog-normalization-gain", fmt.Sprintf("%d", tid))
		}
		tokens = append(tokens, selectionTokens(t)...)
		tokens = append(tokens, "(", t.Path, ")")
	}

	for _, path := range in.Attachments {
		tokens = append(tokens, "--attach-file", path)
	}

	order := make([]string, len(plan.Tracks))
	for i, t := range plan.Tracks {
		order[i] = fmt.Sprintf("%d:%d", i, t.Track.ID)
	}
	tokens = append(tokens, "--track-order", strings.Join(order, ","))
	return tokens
}

// selectionTokens restricts an input group to exactly its one planned track
// so a source file appearing in several groups contributes each track once.
func selectionTokens(t PlanTrack) []string {
	var tokens []string
	switch t.Track.Type {
	case inventory.TypeVideo:
		tokens = append(tokens, "--video-tracks", fmt.Sprintf("%d", t.Track.ID), "--no-audio", "--no-subtitles")
	case inventory.TypeAudio:
		tokens = append(tokens, "--audio-tracks", fmt.Sprintf("%d", t.Track.ID), "--no-video", "--no-subtitles")
	case inventory.TypeSubtitles:
		tokens = append(tokens, "--subtitle-tracks", fmt.Sprintf("%d", t.Track.ID), "--no-video", "--no-audio")
	}
	return append(tokens, "--no-chapters", "--no-attachments", "--no-global-tags")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// WriteOptions writes the token list as a JSON array. Element order is the
// binding contract; the file is consumed byte-exactly by the remux tool.
func (p *Plan) WriteOptions(path string) error {
	data, err := json.MarshalIndent(p.Tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("options marshal: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("options write %q: %w", path, err)
	}
	return nil
}

// RenderPretty returns a human-readable rendering of the plan: a track
// summary with display-form languages, then the tokens grouped one input
// group per line. Audit output only; never fed back to the remux tool.
func (p *Plan) RenderPretty() string {
	var b strings.Builder
	for i, tr := range p.Tracks {
		fmt.Fprintf(&b, "# %d: %s/%d %s %s sync %dms", i, tr.SourceKey, tr.Track.ID,
			tr.Track.Type, language.DisplayName(tr.Track.Language), tr.SyncMs)
		if tr.Default {
			b.WriteString(" default")
		}
		if tr.ForcedDisplay {
			b.WriteString(" forced")
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	var line []string
	flush := func() {
		if len(line) > 0 {
			b.WriteString(strings.Join(line, " "))
			b.WriteByte('\n')
			line = nil
		}
	}
	for _, tok := range p.Tokens {
		line = append(line, tok)
		if tok == ")" || tok == "--disable-track-statistics-tags" {
			flush()
		}
		if len(line) == 2 && strings.HasPrefix(line[0], "--") && !groupFlag(line[0]) {
			flush()
		}
	}
	flush()
	return b.String()
}

func groupFlag(flag string) bool {
	switch flag {
	case "--output", "--chapters", "--attach-file", "--track-order":
		return false
	}
	return true
}
