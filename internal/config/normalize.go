package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeChapters()
	c.normalizeMerge()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TempRoot) == "" {
		c.Paths.TempRoot = defaultTempRoot
	}
	if c.Paths.TempRoot, err = expandPath(c.Paths.TempRoot); err != nil {
		return fmt.Errorf("paths.temp_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.Mode = strings.ToLower(strings.TrimSpace(c.Analysis.Mode))
	if c.Analysis.Mode == "" {
		c.Analysis.Mode = defaultAnalysisMode
	}
	if c.Analysis.ScanChunkCount <= 0 {
		c.Analysis.ScanChunkCount = defaultScanChunkCount
	}
	if c.Analysis.ScanChunkDuration <= 0 {
		c.Analysis.ScanChunkDuration = defaultScanChunkDuration
	}
	if c.Analysis.SampleRate <= 0 {
		c.Analysis.SampleRate = defaultSampleRate
	}
	c.Analysis.RefLanguage = strings.ToLower(strings.TrimSpace(c.Analysis.RefLanguage))
	c.Analysis.TargetLanguage = strings.ToLower(strings.TrimSpace(c.Analysis.TargetLanguage))
}

func (c *Config) normalizeChapters() {
	c.Chapters.SnapMode = strings.ToLower(strings.TrimSpace(c.Chapters.SnapMode))
	if c.Chapters.SnapMode == "" {
		c.Chapters.SnapMode = defaultSnapMode
	}
	if c.Chapters.SnapThresholdMs <= 0 {
		c.Chapters.SnapThresholdMs = defaultSnapThresholdMs
	}
}

func (c *Config) normalizeMerge() {
	for i := range c.Merge.Rules {
		rule := &c.Merge.Rules[i]
		rule.Source = strings.ToLower(strings.TrimSpace(rule.Source))
		rule.Type = strings.ToLower(strings.TrimSpace(rule.Type))
		rule.Lang = strings.ToLower(strings.TrimSpace(rule.Lang))
		if rule.Lang == "" {
			rule.Lang = "any"
		}
		for j, lang := range rule.ExcludeLangs {
			rule.ExcludeLangs[j] = strings.ToLower(strings.TrimSpace(lang))
		}
	}
	for i, lang := range c.Merge.PreferredAudioLangs {
		c.Merge.PreferredAudioLangs[i] = strings.ToLower(strings.TrimSpace(lang))
	}
	for i, codec := range c.Merge.ExcludedCodecs {
		c.Merge.ExcludedCodecs[i] = strings.TrimSpace(codec)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
