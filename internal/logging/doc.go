// Package logging wires log/slog with console and JSON handlers plus the
// standardized field keys the pipeline uses (component, job_id, stage).
package logging
