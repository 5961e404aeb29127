package feed

import "time"

// DefaultHorizon is the relevance window for feed entries. Events older than
// this are dropped from the feed (they still count toward nothing; the feed
// is about what is happening, not an archive).
const DefaultHorizon = 48 * time.Hour

// WithinWindow reports whether an event is inside the relevance horizon.
// Mentor sessions are retained in both directions so upcoming sessions stay
// visible before they start. For every other category a future timestamp is
// invalid input and the event is filtered out rather than surfaced.
// The boundary itself is included: an event at exactly now-horizon stays in.
func WithinWindow(e *Event, now time.Time, horizon time.Duration) bool {
	delta := now.Sub(e.OccurredAt)
	if delta < 0 {
		if e.Category != CategorySession {
			return false
		}
		delta = -delta
	}
	return delta <= horizon
}

// FilterWindow returns the events inside the horizon, preserving order.
// The input slice is not modified.
func FilterWindow(events []*Event, now time.Time, horizon time.Duration) []*Event {
	out := make([]*Event, 0, len(events))
	for _, e := range events {
		if WithinWindow(e, now, horizon) {
			out = append(out, e)
		}
	}
	return out
}
