package feed

import (
	"strings"
	"time"
)

// Entry is one displayable feed item: a view over a single event, or over
// several near-duplicate peer events merged by the grouping engine.
// Entries are derived on every query and never stored.
type Entry struct {
	// ID is the member event's ID, or the member IDs joined with "+"
	// for a grouped entry. A grouped entry has no identity of its own.
	ID string

	Category    Category
	DisplayName string
	Avatar      string
	Narrative   string

	// OccurredAt is the representative timestamp: the event's own for a
	// single entry, the first member encountered for a grouped one.
	OccurredAt time.Time

	// Read is true for a grouped entry only when every member is read.
	Read bool

	// Participants holds the member subject names for grouped entries,
	// nil otherwise.
	Participants []string

	// MemberIDs lists the underlying event IDs (length 1 for singles).
	MemberIDs []EventID

	TopicID TopicID
	Link    *Link

	Session   *SessionInfo
	Duel      *DuelInfo
	Blitz     *BlitzInfo
	Discovery *DiscoveryInfo
}

// NewEntry builds a single-event entry.
func NewEntry(e *Event) *Entry {
	return &Entry{
		ID:          e.ID.String(),
		Category:    e.Category,
		DisplayName: e.Subject.Name,
		Avatar:      e.Subject.Avatar,
		Narrative:   e.Narrative,
		OccurredAt:  e.OccurredAt,
		Read:        e.Read,
		MemberIDs:   []EventID{e.ID},
		TopicID:     e.TopicID,
		Link:        e.Link,
		Session:     e.Session,
		Duel:        e.Duel,
		Blitz:       e.Blitz,
		Discovery:   e.Discovery,
	}
}

// IsGrouped reports whether the entry merges more than one event.
func (en *Entry) IsGrouped() bool {
	return len(en.MemberIDs) > 1
}

// IsLive reports whether the entry is a mentor session currently in progress.
func (en *Entry) IsLive() bool {
	return en.Session != nil && en.Session.IsLive
}

func joinIDs(ids []EventID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, "+")
}
