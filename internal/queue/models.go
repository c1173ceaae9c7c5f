package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queued job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusPlanning  Status = "planning"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusAnalyzing,
	StatusPlanning,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusAnalyzing: {},
	StatusPlanning:  {},
}

// Job is one queued sync-and-plan request persisted in SQLite.
type Job struct {
	ID            int64
	RefPath       string
	SecPath       string
	TerPath       string
	Mode          string
	Status        Status
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	GlobalShiftMs int
	// DelaysJSON records the raw per-source offsets and confidences the
	// analysis stage settled on, for later inspection.
	DelaysJSON   string
	OptionsPath  string
	ChaptersPath string
	TempDir      string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (j Job) IsProcessing() bool {
	_, ok := processingStatuses[j.Status]
	return ok
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
}

// SourceKeys returns the keys of the sources this job references, reference
// first. The tertiary key is present only when a tertiary path is set.
func (j Job) SourceKeys() []string {
	keys := []string{"ref", "sec"}
	if strings.TrimSpace(j.TerPath) != "" {
		keys = append(keys, "ter")
	}
	return keys
}

// SourcePath returns the container path for a source key.
func (j Job) SourcePath(key string) string {
	switch key {
	case "ref":
		return j.RefPath
	case "sec":
		return j.SecPath
	case "ter":
		return j.TerPath
	}
	return ""
}
