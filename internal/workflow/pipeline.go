package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"syncplan/internal/analysis"
	"syncplan/internal/analysis/audiocorr"
	"syncplan/internal/analysis/videodiff"
	"syncplan/internal/chapters"
	"syncplan/internal/config"
	"syncplan/internal/delay"
	"syncplan/internal/fileutil"
	"syncplan/internal/language"
	"syncplan/internal/logging"
	"syncplan/internal/media/ffprobe"
	"syncplan/internal/media/inventory"
	"syncplan/internal/media/pcm"
	"syncplan/internal/mergeplan"
	"syncplan/internal/queue"
	"syncplan/internal/services"
	"syncplan/internal/textutil"
)

// Pipeline is the production job pipeline: inventory, delay discovery,
// normalization, chapter adjustment, and plan emission.
type Pipeline struct {
	cfg       *config.Config
	extractor pcm.Extractor
	logger    *slog.Logger
}

func NewPipeline(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:       cfg,
		extractor: pcm.NewFFmpegExtractor(cfg.FFmpegBinary()),
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
}

// source bundles everything the stages need to know about one input file.
type source struct {
	key      string
	path     string
	inv      *inventory.Source
	duration float64
}

// DelayRecord is one source's analysis outcome as persisted on the job.
type DelayRecord struct {
	OffsetMs   int     `json:"offset_ms"`
	Confidence float64 `json:"confidence"`
	Engine     string  `json:"engine"`
}

// DelayReport is the outcome of delay discovery and normalization without
// the downstream chapter and plan stages. The analyze command uses it for
// one-shot reports.
type DelayReport struct {
	Mode          string
	GlobalShiftMs int
	Delays        map[string]DelayRecord
	ResidualMs    map[string]int
}

// Discover runs inventory, delay analysis, and normalization for the job's
// sources and reports the result without writing anything.
func (p *Pipeline) Discover(ctx context.Context, job *queue.Job) (*DelayReport, error) {
	srcs, err := p.readSources(ctx, job)
	if err != nil {
		return nil, err
	}
	mode := job.Mode
	if mode == "" {
		mode = p.cfg.Analysis.Mode
	}
	raw, records, err := p.analyze(ctx, mode, srcs)
	if err != nil {
		return nil, err
	}
	plan, err := delay.NewPlan(offsetSet(raw, srcs[0]))
	if err != nil {
		return nil, err
	}
	return &DelayReport{
		Mode:          mode,
		GlobalShiftMs: plan.GlobalShiftMs,
		Delays:        records,
		ResidualMs:    plan.ResidualMs,
	}, nil
}

func (p *Pipeline) Execute(ctx context.Context, job *queue.Job, report func(queue.Status)) (*JobResult, error) {
	if err := p.checkFreeSpace(); err != nil {
		return nil, err
	}

	tempDir := filepath.Join(p.cfg.Paths.TempRoot, "job-"+uuid.NewString())
	if err := fileutil.EnsureDir(tempDir); err != nil {
		return nil, services.Wrap(services.ErrToolInvocation, "setup", "tempdir", tempDir, err)
	}
	job.TempDir = tempDir
	failed := &JobResult{TempDir: tempDir}

	srcs, err := p.readSources(ctx, job)
	if err != nil {
		return failed, err
	}

	mode := job.Mode
	if mode == "" {
		mode = p.cfg.Analysis.Mode
	}
	raw, records, err := p.analyze(services.WithStage(ctx, "analyze"), mode, srcs)
	if err != nil {
		return failed, err
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return failed, fmt.Errorf("marshal delay records: %w", err)
	}
	delaysJSON := string(encoded)

	if err := stageGate(ctx, "normalize"); err != nil {
		return failed, err
	}
	plan, err := delay.NewPlan(offsetSet(raw, srcs[0]))
	if err != nil {
		return failed, err
	}
	logging.WithContext(services.WithStage(ctx, "normalize"), p.logger).Info("delays normalized",
		logging.Int("global_shift_ms", plan.GlobalShiftMs),
		logging.String("residuals", fmt.Sprintf("%v", plan.ResidualMs)))

	if err := stageGate(ctx, "chapters"); err != nil {
		return failed, err
	}
	chaptersPath, err := p.adjustChapters(services.WithStage(ctx, "chapters"),
		srcs[0], plan.GlobalShiftMs, tempDir, outputBase(job))
	if err != nil {
		return failed, err
	}

	if err := stageGate(ctx, "plan"); err != nil {
		return failed, err
	}
	report(queue.StatusPlanning)
	optionsPath, err := p.buildPlan(srcs, plan, chaptersPath, outputBase(job))
	if err != nil {
		return failed, err
	}

	// Success owns no temp files.
	if err := os.RemoveAll(tempDir); err != nil {
		p.logger.Warn("remove temp dir", logging.String("path", tempDir), logging.Error(err))
	}

	return &JobResult{
		GlobalShiftMs: plan.GlobalShiftMs,
		DelaysJSON:    delaysJSON,
		OptionsPath:   optionsPath,
		ChaptersPath:  chaptersPath,
	}, nil
}

func (p *Pipeline) checkFreeSpace() error {
	min := p.cfg.Workflow.MinFreeGiB
	if min <= 0 {
		return nil
	}
	free, err := fileutil.FreeBytes(p.cfg.Paths.TempRoot)
	if errors.Is(err, errors.ErrUnsupported) {
		return nil
	}
	if err != nil {
		return services.Wrap(services.ErrToolInvocation, "setup", "free_space", p.cfg.Paths.TempRoot, err)
	}
	if free < uint64(min)<<30 {
		return services.Wrap(services.ErrConfiguration, "setup", "free_space",
			fmt.Sprintf("%s has %.1f GiB free, need %d GiB", p.cfg.Paths.TempRoot, float64(free)/(1<<30), min), nil)
	}
	return nil
}

func (p *Pipeline) readSources(ctx context.Context, job *queue.Job) ([]source, error) {
	var srcs []source
	for _, key := range job.SourceKeys() {
		path := job.SourcePath(key)
		inv, err := inventory.Read(ctx, p.cfg.MkvMergeBinary(), path)
		if err != nil {
			return nil, services.Wrap(services.ErrToolInvocation, "inventory", key, path, err)
		}
		probe, err := ffprobe.Inspect(ctx, p.cfg.FFprobeBinary(), path)
		if err != nil {
			return nil, services.Wrap(services.ErrToolInvocation, "inventory", key, path, err)
		}
		srcs = append(srcs, source{key: key, path: path, inv: inv, duration: probe.DurationSeconds()})
	}
	return srcs, nil
}

// analyze discovers one raw delay per non-reference source. The reference
// carries offset zero by convention.
func (p *Pipeline) analyze(ctx context.Context, mode string, srcs []source) (map[string]int, map[string]DelayRecord, error) {
	raw := map[string]int{"ref": 0}
	records := map[string]DelayRecord{"ref": {Engine: mode}}

	ref := srcs[0]
	for _, sec := range srcs[1:] {
		if err := stageGate(ctx, "analyze"); err != nil {
			return nil, nil, err
		}

		var d *analysis.RawDelay
		var err error
		switch mode {
		case string(analysis.EngineVideoDiff):
			runner := videodiff.New(p.cfg.VideoDiffBinary(),
				p.cfg.Analysis.VideoDiffErrorMin, p.cfg.Analysis.VideoDiffErrorMax, p.logger)
			d, err = runner.Run(ctx, sec.key, ref.path, sec.path)
		default:
			d, err = p.correlate(ctx, ref, sec)
		}
		if err != nil {
			return nil, nil, err
		}

		raw[sec.key] = d.OffsetMs
		records[sec.key] = DelayRecord{OffsetMs: d.OffsetMs, Confidence: d.Confidence, Engine: string(d.Engine)}
	}

	return raw, records, nil
}

// offsetSet widens the measured offsets with every nonzero reference audio
// container delay. A reference audio track the container already advances
// relative to its video would otherwise need a negative sync; folding the
// delay in here raises the global shift to cover it instead.
func offsetSet(raw map[string]int, ref source) map[string]int {
	offsets := make(map[string]int, len(raw))
	for key, value := range raw {
		offsets[key] = value
	}
	for _, track := range ref.inv.AudioTracks() {
		if track.ContainerDelayMs != 0 {
			offsets[fmt.Sprintf("ref/audio-%d", track.ID)] = track.ContainerDelayMs
		}
	}
	return offsets
}

func (p *Pipeline) correlate(ctx context.Context, ref, sec source) (*analysis.RawDelay, error) {
	refIdx := ref.inv.AudioStreamIndex(language.Normalize(p.cfg.Analysis.RefLanguage))
	secIdx := sec.inv.AudioStreamIndex(language.Normalize(p.cfg.Analysis.TargetLanguage))
	if refIdx < 0 || secIdx < 0 {
		return nil, services.Wrap(services.ErrConfiguration, "analyze", "audio_correlation",
			fmt.Sprintf("source %s: no audio stream to correlate", sec.key), nil)
	}

	analyzer := audiocorr.New(p.extractor, audiocorr.Options{
		ChunkCount:    p.cfg.Analysis.ScanChunkCount,
		ChunkDuration: p.cfg.Analysis.ScanChunkDuration,
		MinMatchPct:   p.cfg.Analysis.MinMatchPct,
		SampleRate:    p.cfg.Analysis.SampleRate,
	}, p.logger)

	res, err := analyzer.Analyze(ctx, sec.key,
		audiocorr.SourceInput{Path: ref.path, AudioStreamIdx: refIdx, DurationSeconds: ref.duration},
		audiocorr.SourceInput{Path: sec.path, AudioStreamIdx: secIdx, DurationSeconds: sec.duration})
	if err != nil {
		return nil, err
	}
	return &res.Delay, nil
}

// adjustChapters extracts, shifts, optionally snaps, and rewrites the
// reference chapters. Returns the final chapter file path, or empty when the
// reference has none. Snapping is best effort; a failed keyframe probe falls
// back to shift-only.
func (p *Pipeline) adjustChapters(ctx context.Context, ref source, shiftMs int, tempDir, base string) (string, error) {
	if !ref.inv.HasChapters {
		return "", nil
	}

	logger := logging.WithContext(ctx, p.logger)

	chs, err := chapters.Extract(ctx, p.cfg.MkvExtractBinary(), ref.path, tempDir)
	if err != nil {
		return "", services.Wrap(services.ErrToolInvocation, "chapters", "extract", ref.path, err)
	}
	if len(chs) == 0 {
		return "", nil
	}

	if p.cfg.Chapters.Rename {
		chapters.Rename(chs)
	}
	chapters.Shift(chs, shiftMs)

	if p.cfg.Chapters.Snap {
		keyframes, kfErr := ffprobe.Keyframes(ctx, p.cfg.FFprobeBinary(), ref.path)
		if kfErr != nil || len(keyframes) == 0 {
			logger.Warn("keyframe probe failed, snapping skipped",
				logging.String("path", ref.path), logging.Error(kfErr))
		} else {
			// Keyframes move with the reference video under the global shift.
			shiftNs := int64(shiftMs) * 1e6
			for i := range keyframes {
				keyframes[i] += shiftNs
			}
			stats := chapters.Snap(chs, keyframes, chapters.SnapMode(p.cfg.Chapters.SnapMode),
				p.cfg.Chapters.SnapThresholdMs, p.cfg.Chapters.SnapStartsOnly)
			logger.Info("chapters snapped",
				logging.Int("moved", stats.Moved),
				logging.Int("on_keyframe", stats.AlreadyOnKeyframe),
				logging.Int("too_far", stats.TooFar))
		}
	}

	terminalNs := int64((ref.duration)*1e9) + int64(shiftMs)*1e6
	chapters.Normalize(chs, terminalNs)

	tempPath := filepath.Join(tempDir, "chapters.adjusted.xml")
	if err := chapters.WriteFile(chs, tempPath); err != nil {
		return "", services.Wrap(services.ErrToolInvocation, "chapters", "write", tempPath, err)
	}
	finalPath := filepath.Join(p.cfg.Paths.OutputDir, base+".chapters.xml")
	if err := fileutil.CopyFile(tempPath, finalPath); err != nil {
		return "", services.Wrap(services.ErrToolInvocation, "chapters", "publish", finalPath, err)
	}
	return finalPath, nil
}

func (p *Pipeline) buildPlan(srcs []source, plan delay.Plan, chaptersPath, base string) (string, error) {
	in := mergeplan.Input{
		Plan:         plan,
		Rules:        p.cfg.SortedRules(),
		Options:      p.cfg.Merge,
		OutputPath:   filepath.Join(p.cfg.Paths.OutputDir, base+".merged.mkv"),
		ChaptersPath: chaptersPath,
	}
	for _, s := range srcs {
		in.Sources = append(in.Sources, mergeplan.Source{Key: s.key, Path: s.path, Inventory: s.inv})
	}
	in.Attachments = plannedAttachments(srcs, filepath.Join(p.cfg.Paths.OutputDir, base+".attachments"))

	built, err := mergeplan.Build(in)
	if err != nil {
		return "", err
	}

	optionsPath := filepath.Join(p.cfg.Paths.OutputDir, base+".opts.json")
	if err := built.WriteOptions(optionsPath); err != nil {
		return "", err
	}
	prettyPath := filepath.Join(p.cfg.Paths.OutputDir, base+".opts.pretty.txt")
	if err := os.WriteFile(prettyPath, []byte(built.RenderPretty()), 0o644); err != nil {
		return "", fmt.Errorf("write pretty options %q: %w", prettyPath, err)
	}
	return optionsPath, nil
}

// plannedAttachments maps every attachment across the sources to the
// directory the extractor is expected to fill before the plan is replayed.
// Duplicate file names collapse to one entry.
func plannedAttachments(srcs []source, dir string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range srcs {
		for _, att := range s.inv.Attachments {
			name := strings.TrimSpace(att.FileName)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out
}

func stageGate(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrCancelled, stage, "stage_gate", "cancelled", err)
	}
	return nil
}

func outputBase(job *queue.Job) string {
	baseName := filepath.Base(job.RefPath)
	base := textutil.SanitizeFileName(strings.TrimSuffix(baseName, filepath.Ext(baseName)))
	if base == "" {
		base = fmt.Sprintf("job-%d", job.ID)
	}
	return base
}
