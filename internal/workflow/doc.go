// Package workflow drives queued jobs through the analysis, normalization,
// chapter adjustment, and plan emission stages. The Runner owns queue
// draining and status persistence; the Pipeline owns the stages themselves,
// so runner behavior is testable without external tools.
package workflow
