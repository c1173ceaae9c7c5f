package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	TempRoot  string `toml:"temp_root"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Tools contains the external binaries the pipeline invokes. Empty values
// fall back to a bare command name resolved via PATH.
type Tools struct {
	FFmpeg     string `toml:"ffmpeg"`
	FFprobe    string `toml:"ffprobe"`
	MkvMerge   string `toml:"mkvmerge"`
	MkvExtract string `toml:"mkvextract"`
	VideoDiff  string `toml:"videodiff"`
}

// Analysis contains configuration for delay discovery.
type Analysis struct {
	// Mode selects the estimator: "audio" (cross-correlation) or "videodiff".
	Mode string `toml:"mode"`
	// ScanChunkCount is the number of audio windows sampled per source pair.
	ScanChunkCount int `toml:"scan_chunk_count"`
	// ScanChunkDuration is the window length in seconds.
	ScanChunkDuration float64 `toml:"scan_chunk_duration"`
	// MinMatchPct discards windows whose match percentage is at or below this value.
	MinMatchPct float64 `toml:"min_match_pct"`
	// SampleRate is the decode sample rate for correlation windows.
	SampleRate int `toml:"sample_rate"`
	// RefLanguage / TargetLanguage prefer an audio stream by language during
	// stream selection. Empty means first audio stream.
	RefLanguage    string `toml:"ref_language"`
	TargetLanguage string `toml:"target_language"`
	// VideoDiffErrorMin / Max bound the frame-diff error metric (inclusive).
	VideoDiffErrorMin float64 `toml:"videodiff_error_min"`
	VideoDiffErrorMax float64 `toml:"videodiff_error_max"`
}

// Chapters contains chapter adjustment configuration.
type Chapters struct {
	Rename          bool   `toml:"rename"`
	Snap            bool   `toml:"snap"`
	SnapMode        string `toml:"snap_mode"`
	SnapThresholdMs int    `toml:"snap_threshold_ms"`
	SnapStartsOnly  bool   `toml:"snap_starts_only"`
}

// MergeRule selects tracks for the output in priority order. The first
// enabled rule matching a track claims it; later rules never see it again.
type MergeRule struct {
	Enabled         bool     `toml:"enabled"`
	Source          string   `toml:"source"`
	Type            string   `toml:"type"`
	Lang            string   `toml:"lang"`
	ExcludeLangs    []string `toml:"exclude_langs"`
	Priority        int      `toml:"priority"`
	IsDefault       bool     `toml:"is_default"`
	IsForcedDisplay bool     `toml:"is_forced_display"`
	SwapFirstTwo    bool     `toml:"swap_first_two"`
	ApplyTrackName  bool     `toml:"apply_track_name"`
}

// Merge contains plan-build configuration.
type Merge struct {
	ApplyDialogNormGain        bool        `toml:"apply_dialog_norm_gain"`
	DisableTrackStatisticsTags bool        `toml:"disable_track_statistics_tags"`
	ExcludedCodecs             []string    `toml:"excluded_codecs"`
	PreferredAudioLangs        []string    `toml:"preferred_audio_langs"`
	FirstSubDefault            bool        `toml:"first_sub_default"`
	Rules                      []MergeRule `toml:"rules"`
}

// Workflow contains batch runner configuration.
type Workflow struct {
	// MinFreeGiB aborts a job before analysis when the temp root has less
	// free space than this.
	MinFreeGiB int `toml:"min_free_gib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for syncplan.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Tools    Tools    `toml:"tools"`
	Analysis Analysis `toml:"analysis"`
	Chapters Chapters `toml:"chapters"`
	Merge    Merge    `toml:"merge"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/syncplan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err = os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err = os.Stat(defaultPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return defaultPath, true, nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TempRoot, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable.
func (c *Config) FFmpegBinary() string { return binaryOr(c.Tools.FFmpeg, "ffmpeg") }

// FFprobeBinary returns the ffprobe executable.
func (c *Config) FFprobeBinary() string { return binaryOr(c.Tools.FFprobe, "ffprobe") }

// MkvMergeBinary returns the mkvmerge executable.
func (c *Config) MkvMergeBinary() string { return binaryOr(c.Tools.MkvMerge, "mkvmerge") }

// MkvExtractBinary returns the mkvextract executable.
func (c *Config) MkvExtractBinary() string { return binaryOr(c.Tools.MkvExtract, "mkvextract") }

// VideoDiffBinary returns the videodiff executable.
func (c *Config) VideoDiffBinary() string { return binaryOr(c.Tools.VideoDiff, "videodiff") }

func binaryOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
