package config

const (
	defaultTempRoot          = "~/.local/share/syncplan/temp"
	defaultOutputDir         = "~/syncplan-output"
	defaultLogDir            = "~/.local/share/syncplan/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultAnalysisMode      = "audio"
	defaultScanChunkCount    = 10
	defaultScanChunkDuration = 15.0
	defaultMinMatchPct       = 5.0
	defaultSampleRate        = 48000
	defaultVideoDiffErrorMin = 0.0
	defaultVideoDiffErrorMax = 100.0
	defaultSnapMode          = "previous"
	defaultSnapThresholdMs   = 250
	defaultMinFreeGiB        = 2
)

// Default returns a Config populated with repository defaults. The default
// rule set reproduces the common release-swap layout: reference video,
// secondary audio first, then reference audio, then tertiary and secondary
// subtitles.
func Default() Config {
	return Config{
		Paths: Paths{
			TempRoot:  defaultTempRoot,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Analysis: Analysis{
			Mode:              defaultAnalysisMode,
			ScanChunkCount:    defaultScanChunkCount,
			ScanChunkDuration: defaultScanChunkDuration,
			MinMatchPct:       defaultMinMatchPct,
			SampleRate:        defaultSampleRate,
			VideoDiffErrorMin: defaultVideoDiffErrorMin,
			VideoDiffErrorMax: defaultVideoDiffErrorMax,
		},
		Chapters: Chapters{
			SnapMode:        defaultSnapMode,
			SnapThresholdMs: defaultSnapThresholdMs,
			SnapStartsOnly:  true,
		},
		Merge: Merge{
			PreferredAudioLangs: []string{"eng"},
			FirstSubDefault:     true,
			Rules: []MergeRule{
				{Enabled: true, Source: "ref", Type: "video", Lang: "any", Priority: 10},
				{Enabled: true, Source: "sec", Type: "audio", Lang: "any", Priority: 20, IsDefault: true},
				{Enabled: true, Source: "ref", Type: "audio", Lang: "any", Priority: 30},
				{Enabled: true, Source: "ter", Type: "subtitles", Lang: "any", Priority: 40, IsDefault: true, ApplyTrackName: true},
				{Enabled: true, Source: "sec", Type: "subtitles", Lang: "any", Priority: 50, ApplyTrackName: true},
				{Enabled: true, Source: "ref", Type: "subtitles", Lang: "any", Priority: 60, ApplyTrackName: true},
			},
		},
		Workflow: Workflow{
			MinFreeGiB: defaultMinFreeGiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
