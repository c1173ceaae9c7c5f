package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"syncplan/internal/config"
	"syncplan/internal/logging"
	"syncplan/internal/queue"
	"syncplan/internal/services"
)

// JobResult is what a pipeline run leaves behind for the queue record.
type JobResult struct {
	GlobalShiftMs int
	DelaysJSON    string
	OptionsPath   string
	ChaptersPath  string
	TempDir       string
}

// JobPipeline executes the stages of a single job. report is called as the
// job advances so the queue reflects the in-flight stage.
type JobPipeline interface {
	Execute(ctx context.Context, job *queue.Job, report func(queue.Status)) (*JobResult, error)
}

// Summary aggregates one Run over the queue.
type Summary struct {
	Completed int
	Failed    int
}

// Runner drains pending jobs sequentially. Only one runner operates on a
// queue at a time, enforced with a file lock next to the database.
type Runner struct {
	cfg      *config.Config
	store    *queue.Store
	pipeline JobPipeline
	logger   *slog.Logger
}

func NewRunner(cfg *config.Config, store *queue.Store, pipeline JobPipeline, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, store: store, pipeline: pipeline, logger: logging.NewComponentLogger(logger, "runner")}
}

// Run drains the queue. A failed job marks itself failed and the batch moves
// on; cancellation stops between jobs and leaves the remainder pending.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	lock := flock.New(filepath.Join(r.cfg.Paths.LogDir, "runner.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire runner lock: %w", err)
	}
	if !locked {
		return Summary{}, fmt.Errorf("another runner holds the queue lock")
	}
	defer func() { _ = lock.Unlock() }()

	// One correlation id per batch so interleaved log lines group.
	ctx = services.WithRequestID(ctx, uuid.NewString())

	var summary Summary
	for {
		if err := ctx.Err(); err != nil {
			return summary, services.Wrap(services.ErrCancelled, "run", "queue", "batch cancelled", err)
		}

		job, err := r.store.NextPending(ctx)
		if err != nil {
			return summary, fmt.Errorf("next pending job: %w", err)
		}
		if job == nil {
			return summary, nil
		}

		if err := r.runOne(ctx, job); err != nil {
			if services.IsCancelled(err) {
				return summary, err
			}
			summary.Failed++
			continue
		}
		summary.Completed++
	}
}

func (r *Runner) runOne(ctx context.Context, job *queue.Job) error {
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, r.logger)

	// Status writes must survive cancellation, or an interrupted job would
	// stay stuck in a processing state instead of returning to pending.
	persistCtx := context.WithoutCancel(ctx)
	report := func(status queue.Status) {
		job.Status = status
		if err := r.store.Update(persistCtx, job); err != nil {
			logger.Warn("persist job status", logging.Error(err))
		}
	}

	report(queue.StatusAnalyzing)
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("ref", job.RefPath),
		logging.String("sec", job.SecPath))

	result, err := r.pipeline.Execute(ctx, job, report)
	if err != nil {
		if services.IsCancelled(err) {
			// Leave the job pending so the next run picks it up.
			report(queue.StatusPending)
			return err
		}
		job.SetFailed(err.Error())
		if result != nil {
			job.TempDir = result.TempDir
		}
		if updateErr := r.store.Update(persistCtx, job); updateErr != nil {
			logger.Warn("persist job failure", logging.Error(updateErr))
		}
		logger.Error("job failed",
			logging.String(logging.FieldEventType, "job_failure"),
			logging.Error(err))
		return err
	}

	job.Status = queue.StatusCompleted
	job.ErrorMessage = ""
	job.GlobalShiftMs = result.GlobalShiftMs
	job.DelaysJSON = result.DelaysJSON
	job.OptionsPath = result.OptionsPath
	job.ChaptersPath = result.ChaptersPath
	job.TempDir = ""
	if err := r.store.Update(persistCtx, job); err != nil {
		return fmt.Errorf("persist completed job: %w", err)
	}
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.Int("global_shift_ms", result.GlobalShiftMs),
		logging.String("options", result.OptionsPath))
	return nil
}
