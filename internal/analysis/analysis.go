// Package analysis defines the shared vocabulary of the delay discovery
// engines. Engines produce raw signed offsets in milliseconds; positive
// means the source lags the reference, negative means it leads.
package analysis

import "math"

// Engine identifies which discovery method produced a raw delay.
type Engine string

const (
	EngineAudioCorrelation Engine = "audio"
	EngineVideoDiff        Engine = "videodiff"
)

// RawDelay is the output of one analysis run for one secondary source.
type RawDelay struct {
	SourceKey  string
	OffsetMs   int
	Confidence float64
	Engine     Engine
}

// RoundMs rounds a duration in seconds to whole milliseconds, half away
// from zero. 0.0125s becomes 13ms and -0.0125s becomes -13ms, so symmetric
// offsets stay symmetric.
func RoundMs(seconds float64) int {
	return int(math.Round(seconds * 1000.0))
}
