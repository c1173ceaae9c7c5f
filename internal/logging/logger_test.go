package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"syncplan/internal/services"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"  WARN  ", slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&syncWriter{w: &buf}, lvl, false))

	logger = NewComponentLogger(logger, "analysis")
	logger.Info("windows scanned", Int("windows", 10), String("source", "sec"))

	out := buf.String()
	for _, want := range []string{"INFO", "[analysis]", "windows scanned", "windows=10", "source=sec"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output %q missing %q", out, want)
		}
	}
}

func TestConsoleHandlerPullsSubjectFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&syncWriter{w: &buf}, lvl, false))

	ctx := services.WithJobID(context.Background(), 7)
	ctx = services.WithStage(ctx, "plan")
	WithContext(ctx, logger).Info("tokens written")

	out := buf.String()
	if !strings.Contains(out, "job #7 (plan)") {
		t.Fatalf("expected subject in output, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
