package transport

import (
	"fmt"
	"math"
	"time"
)

// FormatTime renders seconds as m:ss. Minutes are not wrapped into hours.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	m := int(math.Floor(seconds / 60))
	s := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatDuration renders d as m:ss
func FormatDuration(d time.Duration) string {
	return FormatTime(d.Seconds())
}

// percentOf maps pos within dur to 0..100
func percentOf(pos, dur time.Duration) float64 {
	if dur <= 0 {
		return 0
	}
	return clampPercent(float64(pos) / float64(dur) * 100)
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
