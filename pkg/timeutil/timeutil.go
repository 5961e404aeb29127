// Package timeutil provides time formatting helpers for the social feed.
// Feed cards show relative timestamps ("5 min ago", "2h ago") which must be
// stable across the API surface, so the bucket boundaries live here in one place.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// TimeAgo returns the display string for how long ago t occurred, relative to now.
// Buckets: under a minute -> "just now", under an hour -> "N min ago",
// under a day -> "Nh ago", otherwise "Nd ago".
// Future timestamps (scheduled mentor sessions) are formatted with "in ...".
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		return formatUntil(-d)
	}
	return formatSince(d)
}

// TimeAgoNow is TimeAgo against the current wall clock.
func TimeAgoNow(t time.Time) string {
	return TimeAgo(t, time.Now())
}

func formatSince(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func formatUntil(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %d min", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	default:
		return fmt.Sprintf("in %dd", int(d.Hours()/24))
	}
}

// WithinLast reports whether t falls inside the window (now-d, now].
// Used for the 24h energy lookback.
func WithinLast(t, now time.Time, d time.Duration) bool {
	return t.After(now.Add(-d)) && !t.After(now)
}

// WithinHorizon reports whether t is no further than horizon from now,
// in either direction. The boundary itself is included.
func WithinHorizon(t, now time.Time, horizon time.Duration) bool {
	d := now.Sub(t)
	if d < 0 {
		d = -d
	}
	return d <= horizon
}

// Bucket returns the index of the fixed-size time bucket containing t.
// Events in the same bucket are candidates for grouping.
func Bucket(t time.Time, size time.Duration) int64 {
	if size <= 0 {
		return 0
	}
	return t.UnixMilli() / size.Milliseconds()
}
