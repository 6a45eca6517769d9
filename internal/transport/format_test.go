package transport

import (
	"math"
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{29.9, "0:29"},
		{65, "1:05"},
		{599, "9:59"},
		{3600, "60:00"},
		{-3, "0:00"},
		{math.NaN(), "0:00"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.expected {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(90*time.Second + 999*time.Millisecond); got != "1:30" {
		t.Errorf("FormatDuration = %q, want 1:30", got)
	}
}
