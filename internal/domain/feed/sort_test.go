package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionEntry(id string, at time.Time, live bool) *Entry {
	return NewEntry(sessionEvent(id, at, live))
}

func TestSortSessions_LiveFirst(t *testing.T) {
	entries := []*Entry{
		sessionEntry("past", testNow.Add(-2*time.Hour), false),
		sessionEntry("upcoming", testNow.Add(time.Hour), false),
		sessionEntry("live", testNow.Add(-15*time.Minute), true),
	}

	SortSessions(entries, testNow)

	require.Len(t, entries, 3)
	assert.Equal(t, "live", entries[0].ID, "live sorts first regardless of timestamp")
	assert.Equal(t, "upcoming", entries[1].ID, "scheduled beats historical")
	assert.Equal(t, "past", entries[2].ID)
}

func TestSortSessions_ScheduledSoonestFirst(t *testing.T) {
	entries := []*Entry{
		sessionEntry("later", testNow.Add(6*time.Hour), false),
		sessionEntry("soon", testNow.Add(time.Hour), false),
	}

	SortSessions(entries, testNow)

	assert.Equal(t, "soon", entries[0].ID)
	assert.Equal(t, "later", entries[1].ID)
}

func TestSortSessions_PastMostRecentFirst(t *testing.T) {
	entries := []*Entry{
		sessionEntry("old", testNow.Add(-10*time.Hour), false),
		sessionEntry("recent", testNow.Add(-time.Hour), false),
	}

	SortSessions(entries, testNow)

	assert.Equal(t, "recent", entries[0].ID)
	assert.Equal(t, "old", entries[1].ID)
}

func TestSortSessions_LiveAheadOfFiveHistorical(t *testing.T) {
	entries := []*Entry{
		sessionEntry("h1", testNow.Add(-1*time.Hour), false),
		sessionEntry("h2", testNow.Add(-2*time.Hour), false),
		sessionEntry("h3", testNow.Add(-3*time.Hour), false),
		sessionEntry("h4", testNow.Add(-4*time.Hour), false),
		sessionEntry("h5", testNow.Add(-5*time.Hour), false),
		sessionEntry("live", testNow.Add(-15*time.Minute), true),
	}

	SortSessions(entries, testNow)

	assert.Equal(t, "live", entries[0].ID)
	for _, en := range entries[1:] {
		assert.False(t, en.IsLive())
	}
}

func TestSortByRecency(t *testing.T) {
	entries := []*Entry{
		NewEntry(peerEvent("old", "t", ActionGeneral, testNow.Add(-3*time.Hour))),
		NewEntry(peerEvent("new", "t", ActionGeneral, testNow.Add(-time.Minute))),
		NewEntry(peerEvent("mid", "t", ActionGeneral, testNow.Add(-time.Hour))),
	}

	SortByRecency(entries)

	assert.Equal(t, "new", entries[0].ID)
	assert.Equal(t, "mid", entries[1].ID)
	assert.Equal(t, "old", entries[2].ID)
}

func TestSortByRecency_TiesKeepInsertionOrder(t *testing.T) {
	at := testNow.Add(-time.Hour)
	entries := []*Entry{
		NewEntry(peerEvent("first", "t", ActionGeneral, at)),
		NewEntry(peerEvent("second", "t", ActionGeneral, at)),
	}

	SortByRecency(entries)

	assert.Equal(t, "first", entries[0].ID)
	assert.Equal(t, "second", entries[1].ID)
}
