package videodiff

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"syncplan/internal/analysis"
	"syncplan/internal/logging"
	"syncplan/internal/services"
)

// resultPattern matches the offset and error metric on a "[Result]" line.
// The tool reports either an itsoffset (applied to the secondary as-is) or
// an ss value (a trim, so the sign flips).
var resultPattern = regexp.MustCompile(`(itsoffset|ss)\s*:\s*(-?\d+(?:\.\d+)?)s.*?error:\s*([0-9.]+)`)

// Measurement is one parsed frame-diff verdict.
type Measurement struct {
	OffsetSeconds float64
	ErrorMetric   float64
}

// Runner invokes the external frame-diff tool and interprets its output.
type Runner struct {
	Binary   string
	ErrorMin float64
	ErrorMax float64

	logger *slog.Logger
}

func New(binary string, errorMin, errorMax float64, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{Binary: binary, ErrorMin: errorMin, ErrorMax: errorMax, logger: logger}
}

// Run compares the secondary against the reference and returns a raw delay.
// The measurement is rejected when the reported error metric falls outside
// the inclusive [ErrorMin, ErrorMax] bound.
func (r *Runner) Run(ctx context.Context, sourceKey, refPath, secPath string) (*analysis.RawDelay, error) {
	binary := strings.TrimSpace(r.Binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "analyze", "videodiff", "no videodiff binary configured", nil)
	}

	cmd := exec.CommandContext(ctx, binary, refPath, secPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrCancelled, "analyze", "videodiff", "comparison cancelled", ctx.Err())
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return nil, services.Wrap(services.ErrToolInvocation, "analyze", "videodiff",
			fmt.Sprintf("source %s", sourceKey), err)
	}

	m, err := ParseOutput(stdout.String())
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "analyze", "videodiff",
			fmt.Sprintf("source %s", sourceKey), err)
	}

	if !r.accepts(m.ErrorMetric) {
		return nil, services.Wrap(services.ErrFrameDiffRejected, "analyze", "videodiff",
			fmt.Sprintf("source %s: error %.2f outside [%.2f, %.2f]", sourceKey, m.ErrorMetric, r.ErrorMin, r.ErrorMax), nil)
	}

	offsetMs := analysis.RoundMs(m.OffsetSeconds)
	r.logger.Info("frame diff settled",
		logging.String(logging.FieldSource, sourceKey),
		logging.Int("offset_ms", offsetMs),
		logging.Float64("error_metric", m.ErrorMetric))

	return &analysis.RawDelay{
		SourceKey:  sourceKey,
		OffsetMs:   offsetMs,
		Confidence: m.ErrorMetric,
		Engine:     analysis.EngineVideoDiff,
	}, nil
}

func (r *Runner) accepts(metric float64) bool {
	return metric >= r.ErrorMin && metric <= r.ErrorMax
}

// ParseOutput extracts the final "[Result]" line from the tool's output.
// Later lines supersede earlier ones since the tool refines its estimate as
// it scans.
func ParseOutput(output string) (Measurement, error) {
	var lastResult string
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "[Result]") {
			lastResult = line
		}
	}
	if lastResult == "" {
		return Measurement{}, fmt.Errorf("no result line in output")
	}

	groups := resultPattern.FindStringSubmatch(lastResult)
	if groups == nil {
		return Measurement{}, fmt.Errorf("unrecognized result line %q", strings.TrimSpace(lastResult))
	}

	offset, err := strconv.ParseFloat(groups[2], 64)
	if err != nil {
		return Measurement{}, fmt.Errorf("bad offset in result line %q: %w", strings.TrimSpace(lastResult), err)
	}
	if groups[1] == "ss" {
		offset = -offset
	}

	metric, err := strconv.ParseFloat(groups[3], 64)
	if err != nil {
		return Measurement{}, fmt.Errorf("bad error metric in result line %q: %w", strings.TrimSpace(lastResult), err)
	}

	return Measurement{OffsetSeconds: offset, ErrorMetric: metric}, nil
}
