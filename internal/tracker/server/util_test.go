package server

import (
	"testing"
	"time"
)

func TestSnapDownDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, time.Second},
		{time.Second, time.Second},
		{3 * time.Second, time.Second},
		{5 * time.Second, time.Second},
		{6 * time.Second, 5 * time.Second},
		{7 * time.Minute, 5 * time.Minute},
		{90 * time.Minute, time.Hour},
		{48 * time.Hour, 24 * time.Hour},
	}
	for _, tt := range tests {
		if got := snapDownDuration(tt.in); got != tt.want {
			t.Errorf("snapDownDuration(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRangeStep(t *testing.T) {
	start := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	// a day over 250 steps is ~5m45s
	if got := rangeStep(start, start.Add(24*time.Hour)); got != 5*time.Minute {
		t.Errorf("rangeStep(1d) = %v, want 5m", got)
	}
	if got := rangeStep(start, start.Add(7*24*time.Hour)); got != 30*time.Minute {
		t.Errorf("rangeStep(7d) = %v, want 30m", got)
	}

	aligned := rangeStart(start.Add(7*time.Minute), 5*time.Minute)
	if !aligned.Equal(start.Add(5 * time.Minute)) {
		t.Errorf("rangeStart = %v, want %v", aligned, start.Add(5*time.Minute))
	}
}
