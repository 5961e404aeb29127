package feed

import (
	"fmt"
	"sort"
	"time"
)

// DefaultGroupBucket is the coarse time bucket for grouping. Peer events on
// the same topic with the same action class inside one bucket read as a
// single story; across buckets they are separate entries.
const DefaultGroupBucket = 2 * time.Hour

type groupKey struct {
	topic  TopicID
	action ActionClass
	bucket int64
}

type group struct {
	key     groupKey
	members []*Event
}

// GroupPeers collapses near-duplicate peer events into composite entries.
// Events sharing (topic, action class, time bucket) merge into one entry with
// a participant list and a collective narrative; everything else passes
// through unchanged. Events without a topic are never grouped: grouping
// requires a shared subject of interest. The result is sorted by the
// representative timestamp, newest first; the representative of a group is
// its first member encountered.
func GroupPeers(events []*Event, bucket time.Duration) []*Entry {
	if bucket <= 0 {
		bucket = DefaultGroupBucket
	}

	var (
		entries []*Entry
		groups  = make(map[groupKey]*group)
		order   []*group // groups in encounter order
	)

	for _, e := range events {
		if !e.TopicID.IsValid() {
			entries = append(entries, NewEntry(e))
			continue
		}
		key := groupKey{
			topic:  e.TopicID,
			action: e.actionClass(),
			bucket: e.OccurredAt.UnixMilli() / bucket.Milliseconds(),
		}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, g)
		}
		g.members = append(g.members, e)
	}

	for _, g := range order {
		if len(g.members) == 1 {
			entries = append(entries, NewEntry(g.members[0]))
			continue
		}
		entries = append(entries, newGroupedEntry(g))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})
	return entries
}

// actionClass returns the event's canonical action class, falling back to
// keyword classification for events ingested without one.
func (e *Event) actionClass() ActionClass {
	if e.Action.IsValid() {
		return e.Action
	}
	return ClassifyNarrative(e.Narrative)
}

// newGroupedEntry synthesizes one entry from two or more peer events that
// share a grouping key. The representative is the first member.
func newGroupedEntry(g *group) *Entry {
	rep := g.members[0]

	ids := make([]EventID, len(g.members))
	names := make([]string, len(g.members))
	read := true
	for i, m := range g.members {
		ids[i] = m.ID
		names[i] = m.Subject.Name
		if !m.Read {
			read = false
		}
	}

	return &Entry{
		ID:           joinIDs(ids),
		Category:     rep.Category,
		DisplayName:  collectiveName(names),
		Avatar:       rep.Subject.Avatar,
		Narrative:    collectiveNarrative(g.key.action, rep.TopicLabel()),
		OccurredAt:   rep.OccurredAt,
		Read:         read,
		Participants: names,
		MemberIDs:    ids,
		TopicID:      rep.TopicID,
		Link:         rep.Link,
	}
}

// collectiveName renders the participant list: "A and B" for two,
// "A and N others" for more.
func collectiveName(names []string) string {
	if len(names) == 2 {
		return fmt.Sprintf("%s and %s", names[0], names[1])
	}
	return fmt.Sprintf("%s and %d others", names[0], len(names)-1)
}

// collectiveNarrative rewrites the narrative into a collective phrasing
// for the grouped entry.
func collectiveNarrative(action ActionClass, topic string) string {
	switch action {
	case ActionCompleted:
		return fmt.Sprintf("together decode the secrets of %s", topic)
	case ActionUnlocked:
		return fmt.Sprintf("unlocked new ground in %s", topic)
	case ActionJoined:
		return fmt.Sprintf("joined the journey through %s", topic)
	case ActionQuiz:
		return fmt.Sprintf("are testing their %s knowledge", topic)
	default:
		return fmt.Sprintf("are active in %s", topic)
	}
}
