package timecalc

import (
	"fmt"
	"time"
)

// ClockLayout is the 24-hour, zero-padded time-of-day format of log rows.
const ClockLayout = "15:04:05"

// ParseClock parses an HH:MM:SS time of day. The result carries the zero
// date, so two parsed values can be subtracted directly.
func ParseClock(s string) (time.Time, error) {
	// time.Parse accepts a single-digit hour for "15"; the log format does not.
	if len(s) != len(ClockLayout) {
		return time.Time{}, fmt.Errorf("invalid time of day %q: want HH:MM:SS", s)
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t, nil
}

// Minutes returns end minus start in fractional minutes.
func Minutes(start, end time.Time) float64 {
	return end.Sub(start).Minutes()
}

// FormatMinutes renders a minute count with two decimals, e.g. "7.50".
func FormatMinutes(m float64) string {
	return fmt.Sprintf("%.2f", m)
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatDurationHHMMSS formats a duration as HH:MM:SS. Negative durations
// get a leading minus sign.
func FormatDurationHHMMSS(d time.Duration) string {
	sign := ""
	seconds := int64(d / time.Second)
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}
