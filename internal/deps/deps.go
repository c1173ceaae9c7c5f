// Package deps reports the availability of the external binaries the
// pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"syncplan/internal/config"
)

// Requirement defines an external dependency the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the dependency list for a configuration. The frame
// diff tool is optional unless the analysis mode selects it.
func Requirements(cfg *config.Config) []Requirement {
	videoDiffOptional := cfg.Analysis.Mode != "videodiff"
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio window extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for duration and keyframe probing",
		},
		{
			Name:        "mkvmerge",
			Command:     cfg.MkvMergeBinary(),
			Description: "Required for container inspection and plan replay",
		},
		{
			Name:        "mkvextract",
			Command:     cfg.MkvExtractBinary(),
			Description: "Required for chapter extraction",
			Optional:    true,
		},
		{
			Name:        "videodiff",
			Command:     cfg.VideoDiffBinary(),
			Description: "Frame-diff fallback when audio correlation cannot be used",
			Optional:    videoDiffOptional,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
