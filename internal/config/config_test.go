package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config")
	}
	if cfg.Analysis.Mode != "audio" {
		t.Errorf("default analysis mode = %q, want audio", cfg.Analysis.Mode)
	}
	if cfg.Analysis.ScanChunkCount != 10 {
		t.Errorf("default chunk count = %d, want 10", cfg.Analysis.ScanChunkCount)
	}
	if cfg.Chapters.SnapThresholdMs != 250 {
		t.Errorf("default snap threshold = %d, want 250", cfg.Chapters.SnapThresholdMs)
	}
	if len(cfg.Merge.Rules) == 0 {
		t.Error("expected default merge rules")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[analysis]
mode = "VideoDiff"
min_match_pct = 7.5

[chapters]
snap_mode = "Nearest"

[[merge.rules]]
enabled = true
source = "SEC"
type = "Audio"
lang = ""
priority = 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatal("expected config to resolve")
	}
	if cfg.Analysis.Mode != "videodiff" {
		t.Errorf("mode = %q, want videodiff", cfg.Analysis.Mode)
	}
	if cfg.Analysis.MinMatchPct != 7.5 {
		t.Errorf("min_match_pct = %v, want 7.5", cfg.Analysis.MinMatchPct)
	}
	if cfg.Chapters.SnapMode != "nearest" {
		t.Errorf("snap_mode = %q, want nearest", cfg.Chapters.SnapMode)
	}
	rule := cfg.Merge.Rules[0]
	if rule.Source != "sec" || rule.Type != "audio" || rule.Lang != "any" {
		t.Errorf("rule not normalized: %+v", rule)
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := Default()
	cfg.Analysis.Mode = "psychic"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "analysis.mode") {
		t.Fatalf("expected analysis.mode error, got %v", err)
	}
}

func TestValidateRejectsInvertedVideoDiffBounds(t *testing.T) {
	cfg := Default()
	cfg.Analysis.VideoDiffErrorMin = 50
	cfg.Analysis.VideoDiffErrorMax = 10
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for inverted bounds")
	}
}

func TestValidateRejectsBadRuleSource(t *testing.T) {
	cfg := Default()
	cfg.Merge.Rules = append(cfg.Merge.Rules, MergeRule{Enabled: true, Source: "quaternary", Type: "audio", Lang: "any"})
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown rule source")
	}
}

func TestSortedRulesStable(t *testing.T) {
	cfg := Default()
	cfg.Merge.Rules = []MergeRule{
		{Source: "ref", Type: "subtitles", Lang: "any", Priority: 30},
		{Source: "sec", Type: "audio", Lang: "any", Priority: 10},
		{Source: "ref", Type: "audio", Lang: "any", Priority: 10},
	}
	rules := cfg.SortedRules()
	if rules[0].Source != "sec" || rules[1].Source != "ref" || rules[2].Type != "subtitles" {
		t.Fatalf("unexpected order: %+v", rules)
	}
}

func TestBinaryFallbacks(t *testing.T) {
	cfg := Default()
	if got := cfg.FFmpegBinary(); got != "ffmpeg" {
		t.Errorf("FFmpegBinary() = %q", got)
	}
	cfg.Tools.VideoDiff = "/opt/videodiff"
	if got := cfg.VideoDiffBinary(); got != "/opt/videodiff" {
		t.Errorf("VideoDiffBinary() = %q", got)
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[analysis]") {
		t.Error("sample config missing [analysis] section")
	}
}
