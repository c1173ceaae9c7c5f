package workflow

import (
	"path/filepath"
	"testing"

	"syncplan/internal/config"
	"syncplan/internal/delay"
	"syncplan/internal/media/inventory"
	"syncplan/internal/mergeplan"
	"syncplan/internal/queue"
)

func TestOutputBase(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"/in/Movie (2019).mkv", "Movie (2019)"},
		{"/in/weird*name?.mkv", "weird-name"},
		{"/in/.mkv", "job-7"},
	}
	for _, tc := range tests {
		job := &queue.Job{ID: 7, RefPath: tc.ref}
		if got := outputBase(job); got != tc.want {
			t.Errorf("outputBase(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}

func TestOffsetSetCoversReferenceAudioContainerDelay(t *testing.T) {
	ref := source{key: "ref", path: "/in/ref.mkv", inv: &inventory.Source{Tracks: []inventory.Track{
		{ID: 0, Type: inventory.TypeVideo, CodecID: "V_MPEGH/ISO/HEVC", Language: "und"},
		{ID: 1, Type: inventory.TypeAudio, CodecID: "A_AC3", Language: "jpn", ContainerDelayMs: -50},
	}}}

	offsets := offsetSet(map[string]int{"ref": 0, "sec": 40}, ref)
	plan, err := delay.NewPlan(offsets)
	if err != nil {
		t.Fatalf("delay.NewPlan() error = %v", err)
	}

	// The leading reference audio, not the correlation offsets, sets the
	// shift here: 50 so the -50 ms container delay lands on zero.
	if plan.GlobalShiftMs != 50 {
		t.Fatalf("global shift = %d, want 50", plan.GlobalShiftMs)
	}
	if plan.ResidualMs["ref"] != 50 || plan.ResidualMs["sec"] != 90 {
		t.Fatalf("residuals = %v, want ref 50 sec 90", plan.ResidualMs)
	}

	built, err := mergeplan.Build(mergeplan.Input{
		Sources: []mergeplan.Source{{Key: "ref", Path: ref.path, Inventory: ref.inv}},
		Plan:    plan,
		Rules: []config.MergeRule{
			{Enabled: true, Source: "ref", Type: "video", Lang: "any", Priority: 10},
			{Enabled: true, Source: "ref", Type: "audio", Lang: "any", Priority: 20},
		},
		OutputPath: "/out/merged.mkv",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := built.Tracks[1].SyncMs; got != 0 {
		t.Fatalf("ref audio sync = %d, want 0", got)
	}
}

func TestPlannedAttachmentsDeduplicates(t *testing.T) {
	srcs := []source{
		{key: "ref", inv: &inventory.Source{Attachments: []inventory.Attachment{
			{FileName: "font.ttf"}, {FileName: "logo.png"},
		}}},
		{key: "sec", inv: &inventory.Source{Attachments: []inventory.Attachment{
			{FileName: "font.ttf"}, {FileName: " "},
		}}},
	}

	got := plannedAttachments(srcs, "/out/movie.attachments")
	want := []string{
		filepath.Join("/out/movie.attachments", "font.ttf"),
		filepath.Join("/out/movie.attachments", "logo.png"),
	}
	if len(got) != len(want) {
		t.Fatalf("plannedAttachments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("plannedAttachments[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
