package preflight

import (
	"context"
	"errors"
	"fmt"

	"syncplan/internal/config"
	"syncplan/internal/deps"
	"syncplan/internal/fileutil"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory and disk-space checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Temp root", cfg.Paths.TempRoot),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	results = append(results, CheckFreeSpace(cfg.Paths.TempRoot, cfg.Workflow.MinFreeGiB))
	return results
}

// CheckFreeSpace verifies the temp root has at least minGiB of free space.
func CheckFreeSpace(path string, minGiB int) Result {
	free, err := fileutil.FreeBytes(path)
	return freeSpaceResult(path, minGiB, free, err)
}

func freeSpaceResult(path string, minGiB int, free uint64, err error) Result {
	const name = "Free space"
	if errors.Is(err, errors.ErrUnsupported) {
		// No free-space reading available here; don't fail the preflight.
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not measurable on this platform)", path)}
	}
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	freeGiB := float64(free) / (1 << 30)
	if minGiB > 0 && free < uint64(minGiB)<<30 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%.1f GiB free, need %d GiB)", path, freeGiB, minGiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.1f GiB free)", path, freeGiB)}
}

// CheckSystemDeps evaluates the external binary dependencies for the given
// config. The status command and the batch runner both use this so the
// requirements list lives in one place.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}
