package feed

import (
	"sort"
	"time"
)

// session sort ranks: live beats scheduled beats past.
const (
	rankLive = iota
	rankScheduled
	rankPast
)

func sessionRank(en *Entry, now time.Time) int {
	switch {
	case en.IsLive():
		return rankLive
	case en.OccurredAt.After(now):
		return rankScheduled
	default:
		return rankPast
	}
}

// SortSessions orders mentor-session entries in place: anything currently
// live first regardless of timestamp, then scheduled sessions soonest first,
// then past sessions most recent first. Remaining ties keep insertion order.
func SortSessions(entries []*Entry, now time.Time) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := sessionRank(entries[i], now), sessionRank(entries[j], now)
		if ri != rj {
			return ri < rj
		}
		switch ri {
		case rankScheduled:
			// Soonest upcoming session first.
			return entries[i].OccurredAt.Before(entries[j].OccurredAt)
		case rankPast:
			return entries[i].OccurredAt.After(entries[j].OccurredAt)
		default:
			return false
		}
	})
}

// SortByRecency orders entries newest first, with a live flag as the primary
// key when present. Ties keep insertion order.
func SortByRecency(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		li, lj := entries[i].IsLive(), entries[j].IsLive()
		if li != lj {
			return li
		}
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})
}
