package analysis

import "testing"

func TestRoundMs(t *testing.T) {
	tests := []struct {
		seconds float64
		want    int
	}{
		{0, 0},
		{0.0125, 13},
		{-0.0125, -13},
		{0.0124, 12},
		{1.0005, 1001},
		{-1.0005, -1001},
		{0.2495, 250},
	}
	for _, tt := range tests {
		if got := RoundMs(tt.seconds); got != tt.want {
			t.Errorf("RoundMs(%v) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}
