package pcm

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Request describes one mono audio window to decode.
type Request struct {
	Path         string
	StreamIndex  int
	StartSeconds float64
	Duration     float64
	SampleRate   int
}

// Extractor decodes an audio window into float64 samples in [-1, 1].
type Extractor interface {
	Extract(ctx context.Context, req Request) ([]float64, error)
}

// FFmpegExtractor shells out to ffmpeg and reads raw s16le samples from
// stdout. Downmixes to mono and resamples to the requested rate so both
// sources land on the same sample grid.
type FFmpegExtractor struct {
	Binary string
}

// NewFFmpegExtractor returns an extractor bound to the given ffmpeg binary.
func NewFFmpegExtractor(binary string) *FFmpegExtractor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegExtractor{Binary: binary}
}

func (e *FFmpegExtractor) Extract(ctx context.Context, req Request) ([]float64, error) {
	if req.SampleRate <= 0 {
		return nil, fmt.Errorf("pcm extract: invalid sample rate %d", req.SampleRate)
	}
	if req.StreamIndex < 0 {
		return nil, fmt.Errorf("pcm extract: invalid stream index %d", req.StreamIndex)
	}

	args := []string{
		"-hide_banner",
		"-v", "error",
		"-ss", strconv.FormatFloat(req.StartSeconds, 'f', 3, 64),
		"-t", strconv.FormatFloat(req.Duration, 'f', 3, 64),
		"-i", req.Path,
		"-map", "0:a:" + strconv.Itoa(req.StreamIndex),
		"-ac", "1",
		"-ar", strconv.Itoa(req.SampleRate),
		"-f", "s16le",
		"-",
	}

	cmd := exec.CommandContext(ctx, e.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("pcm extract %q: %w: %s", req.Path, err, detail)
		}
		return nil, fmt.Errorf("pcm extract %q: %w", req.Path, err)
	}

	return DecodeS16LE(stdout.Bytes()), nil
}

// DecodeS16LE converts little-endian signed 16-bit samples to float64 in
// [-1, 1]. A trailing odd byte is discarded.
func DecodeS16LE(raw []byte) []float64 {
	n := len(raw) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		samples[i] = float64(v) / 32768.0
	}
	return samples
}
