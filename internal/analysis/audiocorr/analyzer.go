package audiocorr

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"syncplan/internal/analysis"
	"syncplan/internal/logging"
	"syncplan/internal/media/pcm"
	"syncplan/internal/services"
)

// Options controls the scan shape and acceptance threshold.
type Options struct {
	ChunkCount    int
	ChunkDuration float64
	MinMatchPct   float64
	SampleRate    int
}

// SourceInput names one side of a correlation run.
type SourceInput struct {
	Path            string
	AudioStreamIdx  int
	DurationSeconds float64
}

// Result carries the aggregated delay plus the individual windows that
// produced it, for reporting.
type Result struct {
	Delay    analysis.RawDelay
	Windows  []WindowResult
	Accepted int
}

// Analyzer estimates the delay between two sources from their audio.
type Analyzer struct {
	extractor pcm.Extractor
	opts      Options
	logger    *slog.Logger
}

func New(extractor pcm.Extractor, opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Analyzer{extractor: extractor, opts: opts, logger: logger}
}

// Analyze scans both sources at matching positions, correlates each pair of
// windows, and aggregates the surviving offsets into one raw delay for the
// secondary source. Fails with ErrInsufficientConfidence when no window
// clears the match threshold.
func (a *Analyzer) Analyze(ctx context.Context, sourceKey string, ref, sec SourceInput) (*Result, error) {
	duration := math.Min(ref.DurationSeconds, sec.DurationSeconds)
	if duration <= 0 {
		return nil, services.Wrap(services.ErrInsufficientConfidence, "analyze", "audio_correlation",
			fmt.Sprintf("source %s has no measurable duration", sourceKey), nil)
	}

	starts := ScanStarts(duration, a.opts.ChunkCount)
	windows := make([]WindowResult, 0, len(starts))
	for _, start := range starts {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrCancelled, "analyze", "audio_correlation", "scan cancelled", err)
		}

		refSamples, err := a.extract(ctx, ref, start)
		if err != nil {
			return nil, services.Wrap(services.ErrToolInvocation, "analyze", "audio_correlation",
				fmt.Sprintf("reference window at %.1fs", start), err)
		}
		secSamples, err := a.extract(ctx, sec, start)
		if err != nil {
			return nil, services.Wrap(services.ErrToolInvocation, "analyze", "audio_correlation",
				fmt.Sprintf("source %s window at %.1fs", sourceKey, start), err)
		}

		offsetMs, matchPct := CorrelateWindows(NormalizeWindow(refSamples), NormalizeWindow(secSamples), a.opts.SampleRate)
		windows = append(windows, WindowResult{StartSeconds: start, OffsetMs: offsetMs, MatchPct: matchPct})
		a.logger.Debug("correlated window",
			logging.String(logging.FieldSource, sourceKey),
			logging.Float64("start_s", start),
			logging.Int("offset_ms", offsetMs),
			logging.Float64("match_pct", matchPct))
	}

	offsetMs, confidence, accepted, ok := Aggregate(windows, a.opts.MinMatchPct)
	if !ok {
		return nil, services.Wrap(services.ErrInsufficientConfidence, "analyze", "audio_correlation",
			fmt.Sprintf("source %s: no window above %.1f%% match", sourceKey, a.opts.MinMatchPct), nil)
	}

	a.logger.Info("audio correlation settled",
		logging.String(logging.FieldSource, sourceKey),
		logging.Int("offset_ms", offsetMs),
		logging.Float64("match_pct", confidence),
		logging.Int("windows_accepted", accepted),
		logging.Int("windows_total", len(windows)))

	return &Result{
		Delay: analysis.RawDelay{
			SourceKey:  sourceKey,
			OffsetMs:   offsetMs,
			Confidence: confidence,
			Engine:     analysis.EngineAudioCorrelation,
		},
		Windows:  windows,
		Accepted: accepted,
	}, nil
}

func (a *Analyzer) extract(ctx context.Context, in SourceInput, start float64) ([]float64, error) {
	return a.extractor.Extract(ctx, pcm.Request{
		Path:         in.Path,
		StreamIndex:  in.AudioStreamIdx,
		StartSeconds: start,
		Duration:     a.opts.ChunkDuration,
		SampleRate:   a.opts.SampleRate,
	})
}
