package workflow

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"syncplan/internal/logging"
	"syncplan/internal/queue"
	"syncplan/internal/services"
	"syncplan/internal/testsupport"
)

type fakePipeline struct {
	executed []int64
	fn       func(job *queue.Job, report func(queue.Status)) (*JobResult, error)
}

func (f *fakePipeline) Execute(_ context.Context, job *queue.Job, report func(queue.Status)) (*JobResult, error) {
	f.executed = append(f.executed, job.ID)
	if f.fn != nil {
		return f.fn(job, report)
	}
	return &JobResult{GlobalShiftMs: 500, OptionsPath: "/out/a.opts.json"}, nil
}

func newTestRunner(t *testing.T, pipeline JobPipeline) (*Runner, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return NewRunner(cfg, store, pipeline, nil), store
}

func addJob(t *testing.T, store *queue.Store, ref string) *queue.Job {
	t.Helper()
	return testsupport.NewJob(t, store, ref, "/in/sec.mkv")
}

func TestRunCompletesPendingJobs(t *testing.T) {
	pipeline := &fakePipeline{}
	runner, store := newTestRunner(t, pipeline)
	first := addJob(t, store, "/in/a.mkv")
	second := addJob(t, store, "/in/b.mkv")

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Completed != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 completed", summary)
	}
	if len(pipeline.executed) != 2 || pipeline.executed[0] != first.ID || pipeline.executed[1] != second.ID {
		t.Fatalf("executed order = %v", pipeline.executed)
	}

	got, err := store.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != queue.StatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if got.GlobalShiftMs != 500 || got.OptionsPath != "/out/a.opts.json" {
		t.Fatalf("result fields not persisted: %+v", got)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	boom := errors.New("correlation fell apart")
	pipeline := &fakePipeline{fn: func(job *queue.Job, _ func(queue.Status)) (*JobResult, error) {
		if job.RefPath == "/in/bad.mkv" {
			return &JobResult{TempDir: "/tmp/job-kept"}, boom
		}
		return &JobResult{}, nil
	}}
	runner, store := newTestRunner(t, pipeline)
	bad := addJob(t, store, "/in/bad.mkv")
	addJob(t, store, "/in/good.mkv")

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Completed != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want one of each", summary)
	}

	got, err := store.GetByID(context.Background(), bad.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != queue.StatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.ErrorMessage == "" {
		t.Fatal("expected error message on failed job")
	}
	if got.TempDir != "/tmp/job-kept" {
		t.Fatalf("temp dir = %q, want preserved for diagnosis", got.TempDir)
	}
}

func TestRunCancellationLeavesJobPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pipeline := &fakePipeline{fn: func(_ *queue.Job, _ func(queue.Status)) (*JobResult, error) {
		cancel()
		return nil, services.Wrap(services.ErrCancelled, "analyze", "stage_gate", "cancelled", ctx.Err())
	}}
	runner, store := newTestRunner(t, pipeline)
	job := addJob(t, store, "/in/a.mkv")
	addJob(t, store, "/in/b.mkv")

	summary, err := runner.Run(ctx)
	if !services.IsCancelled(err) {
		t.Fatalf("err = %v, want cancellation", err)
	}
	if summary.Completed != 0 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want empty", summary)
	}

	got, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != queue.StatusPending {
		t.Fatalf("status = %s, want pending after cancellation", got.Status)
	}
	if len(pipeline.executed) != 1 {
		t.Fatalf("executed %d jobs, want 1", len(pipeline.executed))
	}
}

func TestRunReportsIntermediateStatuses(t *testing.T) {
	var seen []queue.Status
	pipeline := &fakePipeline{fn: func(_ *queue.Job, report func(queue.Status)) (*JobResult, error) {
		report(queue.StatusPlanning)
		seen = append(seen, queue.StatusPlanning)
		return &JobResult{}, nil
	}}
	runner, store := newTestRunner(t, pipeline)
	addJob(t, store, "/in/a.mkv")

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("planning status never reported")
	}
}

func TestRunLogsCorrelationAndLifecycleEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	pipeline := &fakePipeline{}
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner := NewRunner(cfg, store, pipeline, logger)
	addJob(t, store, "/in/a.mkv")

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"` + logging.FieldCorrelationID + `"`,
		`"job_start"`,
		`"job_complete"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestRunRefusesSecondLockHolder(t *testing.T) {
	pipeline := &fakePipeline{}
	runner, store := newTestRunner(t, pipeline)
	addJob(t, store, "/in/a.mkv")

	held := flock.New(filepath.Join(runner.cfg.Paths.LogDir, "runner.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected lock contention error")
	}
	if len(pipeline.executed) != 0 {
		t.Fatal("runner must not touch jobs without the lock")
	}
}
