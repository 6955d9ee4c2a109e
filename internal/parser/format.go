package parser

import (
	"fmt"
	"time"
)

// FormatSeconds renders whole seconds as HH:MM:SS. Hours grow past 99
// instead of wrapping; negative input renders as 00:00:00.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatDuration is FormatSeconds for a time.Duration, truncated
func FormatDuration(d time.Duration) string {
	return FormatSeconds(int64(d / time.Second))
}

// FormatClock formats an optional timestamp as local HH:MM, "-" when nil
func FormatClock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("15:04")
}
