package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientConfidence marks analysis runs where every correlation
	// window fell at or below the configured match threshold.
	ErrInsufficientConfidence = errors.New("insufficient correlation confidence")
	// ErrFrameDiffRejected marks frame-diff results whose error metric was
	// outside the configured bounds.
	ErrFrameDiffRejected = errors.New("frame diff result rejected")
	// ErrToolInvocation marks external process failures (missing binary,
	// non-zero exit).
	ErrToolInvocation = errors.New("external tool error")
	// ErrParse marks malformed output from an external tool.
	ErrParse = errors.New("tool output parse error")
	// ErrInvariantViolation marks internal defects such as a negative residual
	// surviving normalization. These are never clamped or retried.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrNoReferenceVideo marks plans where no source contributes a video track.
	ErrNoReferenceVideo = errors.New("no reference video track")
	// ErrCodecExclusion marks plans where the codec blacklist removed every
	// candidate of a required track type.
	ErrCodecExclusion = errors.New("codec exclusion emptied track type")
	// ErrConfiguration marks invalid configuration or rule sets.
	ErrConfiguration = errors.New("configuration error")
	// ErrCancelled marks cooperative aborts. Not reported as a failure.
	ErrCancelled = errors.New("cancelled")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrToolInvocation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsCancelled reports whether err represents a cooperative abort, including
// plain context cancellation surfaced by an external process wait.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
