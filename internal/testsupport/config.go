// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"syncplan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TempRoot = filepath.Join(base, "tmp")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAnalysisMode sets the default analysis engine on the test config.
func WithAnalysisMode(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Analysis.Mode = mode
	}
}

// WithMinFreeGiB overrides the free-space floor on the test config.
func WithMinFreeGiB(gib int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.MinFreeGiB = gib
	}
}
