package videodiff

import (
	"math"
	"testing"
)

func TestParseOutputItsoffset(t *testing.T) {
	output := `[Info] scanning
[Result] itsoffset: -0.7480s, error: 12.40
`
	m, err := ParseOutput(output)
	if err != nil {
		t.Fatalf("ParseOutput() error = %v", err)
	}
	if math.Abs(m.OffsetSeconds-(-0.748)) > 1e-9 {
		t.Errorf("offset = %v, want -0.748", m.OffsetSeconds)
	}
	if m.ErrorMetric != 12.40 {
		t.Errorf("error metric = %v, want 12.4", m.ErrorMetric)
	}
}

func TestParseOutputSSNegates(t *testing.T) {
	m, err := ParseOutput("[Result] ss: 1.25s, error: 8.00\n")
	if err != nil {
		t.Fatalf("ParseOutput() error = %v", err)
	}
	if math.Abs(m.OffsetSeconds-(-1.25)) > 1e-9 {
		t.Errorf("offset = %v, want ss negated to -1.25", m.OffsetSeconds)
	}
}

func TestParseOutputLastResultWins(t *testing.T) {
	output := `[Result] itsoffset: 0.1000s, error: 40.00
[Info] refining
[Result] itsoffset: 0.2000s, error: 11.00
`
	m, err := ParseOutput(output)
	if err != nil {
		t.Fatalf("ParseOutput() error = %v", err)
	}
	if math.Abs(m.OffsetSeconds-0.2) > 1e-9 {
		t.Errorf("offset = %v, want last result 0.2", m.OffsetSeconds)
	}
	if m.ErrorMetric != 11.0 {
		t.Errorf("error metric = %v, want 11", m.ErrorMetric)
	}
}

func TestErrorBoundsAreInclusive(t *testing.T) {
	r := New("videodiff", 2.0, 30.0, nil)
	tests := []struct {
		metric float64
		want   bool
	}{
		{2.0, true},
		{30.0, true},
		{1.99, false},
		{30.01, false},
		{15.0, true},
	}
	for _, tt := range tests {
		if got := r.accepts(tt.metric); got != tt.want {
			t.Errorf("accepts(%v) = %v, want %v", tt.metric, got, tt.want)
		}
	}
}

func TestParseOutputNoResult(t *testing.T) {
	if _, err := ParseOutput("[Info] nothing to see\n"); err == nil {
		t.Fatal("ParseOutput() expected error without a result line")
	}
}

func TestParseOutputMalformedResult(t *testing.T) {
	if _, err := ParseOutput("[Result] gibberish\n"); err == nil {
		t.Fatal("ParseOutput() expected error for malformed result line")
	}
}
