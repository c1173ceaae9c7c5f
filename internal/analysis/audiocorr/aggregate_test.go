package audiocorr

import (
	"math"
	"testing"
)

func TestScanStarts(t *testing.T) {
	starts := ScanStarts(100, 10)
	if len(starts) != 10 {
		t.Fatalf("ScanStarts() len = %d, want 10", len(starts))
	}
	if math.Abs(starts[0]-10.0) > 1e-9 {
		t.Errorf("first start = %v, want 10", starts[0])
	}
	if math.Abs(starts[9]-82.0) > 1e-9 {
		t.Errorf("last start = %v, want 82", starts[9])
	}
	for i, s := range starts {
		if s < 10.0 || s >= 90.0 {
			t.Errorf("start %d = %v outside middle band", i, s)
		}
	}
}

func TestScanStartsDegenerate(t *testing.T) {
	if got := ScanStarts(0, 5); got != nil {
		t.Errorf("ScanStarts(0, 5) = %v, want nil", got)
	}
	if got := ScanStarts(100, 0); got != nil {
		t.Errorf("ScanStarts(100, 0) = %v, want nil", got)
	}
}

func TestAggregateModalOffset(t *testing.T) {
	windows := []WindowResult{
		{OffsetMs: -748, MatchPct: 31.2},
		{OffsetMs: -748, MatchPct: 44.0},
		{OffsetMs: -748, MatchPct: 38.5},
		{OffsetMs: -120, MatchPct: 61.0},
		{OffsetMs: 0, MatchPct: 2.1},
	}
	offset, confidence, accepted, ok := Aggregate(windows, 5.0)
	if !ok {
		t.Fatal("Aggregate() ok = false")
	}
	if offset != -748 {
		t.Errorf("offset = %d, want modal -748 despite stronger outlier", offset)
	}
	if confidence != 44.0 {
		t.Errorf("confidence = %v, want best match within modal group 44.0", confidence)
	}
	if accepted != 4 {
		t.Errorf("accepted = %d, want 4", accepted)
	}
}

func TestAggregateTieBreaksOnMatch(t *testing.T) {
	windows := []WindowResult{
		{OffsetMs: 100, MatchPct: 20.0},
		{OffsetMs: 100, MatchPct: 25.0},
		{OffsetMs: -40, MatchPct: 55.0},
		{OffsetMs: -40, MatchPct: 12.0},
	}
	offset, confidence, _, ok := Aggregate(windows, 5.0)
	if !ok {
		t.Fatal("Aggregate() ok = false")
	}
	if offset != -40 {
		t.Errorf("offset = %d, want tie broken toward strongest peak -40", offset)
	}
	if confidence != 55.0 {
		t.Errorf("confidence = %v, want 55.0", confidence)
	}
}

func TestAggregateThresholdIsStrict(t *testing.T) {
	windows := []WindowResult{
		{OffsetMs: 10, MatchPct: 5.0},
		{OffsetMs: 10, MatchPct: 4.9},
	}
	if _, _, _, ok := Aggregate(windows, 5.0); ok {
		t.Error("Aggregate() accepted windows at or below the threshold")
	}
}

func TestAggregateEmpty(t *testing.T) {
	if _, _, _, ok := Aggregate(nil, 5.0); ok {
		t.Error("Aggregate(nil) ok = true")
	}
}
