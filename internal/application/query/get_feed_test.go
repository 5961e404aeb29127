package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
	"github.com/pulsepath/social-feed-service/internal/infrastructure/persistence/memory"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T, events ...*feed.Event) *memory.EventStore {
	t.Helper()
	s := memory.NewEventStore()
	// Append oldest first so the head of each category is the newest.
	for i := len(events) - 1; i >= 0; i-- {
		require.NoError(t, s.Append(context.Background(), events[i]))
	}
	return s
}

func peerEvent(id string, topic feed.TopicID, at time.Time) *feed.Event {
	return &feed.Event{
		ID:         feed.EventID(id),
		Category:   feed.CategoryPeer,
		Subject:    feed.Subject{ID: "u-" + id, Name: "User " + id, Avatar: "🦊"},
		Narrative:  "completed a module",
		OccurredAt: at,
		TopicID:    topic,
		Action:     feed.ActionCompleted,
	}
}

func sessionEvent(id string, at time.Time, live bool) *feed.Event {
	return &feed.Event{
		ID:         feed.EventID(id),
		Category:   feed.CategorySession,
		Subject:    feed.Subject{ID: "mentor-1", Name: "Mentor"},
		Narrative:  "mentor session",
		OccurredAt: at,
		Session:    &feed.SessionInfo{IsLive: live, StartsAt: at, EndsAt: at.Add(time.Hour), Capacity: 20, Occupancy: 3},
	}
}

func TestGetFeed_EmptyCollection(t *testing.T) {
	h := NewGetFeedHandler(memory.NewEventStore(), nil)

	dto, err := h.Handle(context.Background(), GetFeedQuery{Now: now})

	require.NoError(t, err, "an empty collection is a valid zero-result state")
	assert.Empty(t, dto.Peer)
	assert.Empty(t, dto.Sessions)
	assert.Equal(t, 0, dto.UnreadCount)
	assert.Equal(t, feed.EnergyLow, dto.Energy.Level)
	assert.Nil(t, dto.ContextualMessage)
}

func TestGetFeed_TenPeerEventsOneGroupedEntry(t *testing.T) {
	base := time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	events := make([]*feed.Event, 0, 10)
	for i := 0; i < 10; i++ {
		events = append(events, peerEvent(fmt.Sprintf("e%d", i), "gauss", base.Add(time.Duration(i)*5*time.Minute)))
	}
	h := NewGetFeedHandler(newStore(t, events...), nil)

	dto, err := h.Handle(context.Background(), GetFeedQuery{Now: now})

	require.NoError(t, err)
	require.Len(t, dto.Peer, 1)
	assert.True(t, dto.Peer[0].Grouped)
	assert.Len(t, dto.Peer[0].Participants, 10)
	assert.Equal(t, 10, dto.UnreadCount, "unread counts members, not merged entries")
}

func TestGetFeed_LiveSessionFirst(t *testing.T) {
	events := []*feed.Event{
		sessionEvent("live", now.Add(-15*time.Minute), true),
		sessionEvent("h1", now.Add(-2*time.Hour), false),
		sessionEvent("h2", now.Add(-4*time.Hour), false),
		sessionEvent("h3", now.Add(-6*time.Hour), false),
		sessionEvent("h4", now.Add(-8*time.Hour), false),
		sessionEvent("h5", now.Add(-10*time.Hour), false),
	}
	h := NewGetFeedHandler(newStore(t, events...), nil)

	dto, err := h.Handle(context.Background(), GetFeedQuery{Now: now})

	require.NoError(t, err)
	require.Len(t, dto.Sessions, 6)
	assert.Equal(t, "live", dto.Sessions[0].ID)
	require.NotNil(t, dto.Sessions[0].Session)
	assert.True(t, dto.Sessions[0].Session.IsLive)
}

func TestGetFeed_UpcomingSessionRetained(t *testing.T) {
	h := NewGetFeedHandler(newStore(t, sessionEvent("upcoming", now.Add(5*time.Hour), false)), nil)

	dto, err := h.Handle(context.Background(), GetFeedQuery{Now: now})

	require.NoError(t, err)
	require.Len(t, dto.Sessions, 1)
	assert.Equal(t, "in 5h", dto.Sessions[0].TimeAgo)
}

func TestGetFeed_WindowBoundary(t *testing.T) {
	events := []*feed.Event{
		peerEvent("edge", "t", now.Add(-feed.DefaultHorizon)),
		peerEvent("past", "t", now.Add(-feed.DefaultHorizon-time.Millisecond)),
	}
	h := NewGetFeedHandler(newStore(t, events...), nil)

	dto, err := h.Handle(context.Background(), GetFeedQuery{Now: now})

	require.NoError(t, err)
	require.Len(t, dto.Peer, 1)
	assert.Equal(t, "edge", dto.Peer[0].ID)
}

func TestGetFeed_MalformedEventsExcluded(t *testing.T) {
	good := peerEvent("good", "t", now.Add(-time.Hour))
	bad := peerEvent("bad", "t", now.Add(-time.Hour))
	bad.Narrative = "" // malformed: skipped, never an error
	h := NewGetFeedHandler(newStore(t, good, bad), nil)

	dto, err := h.Handle(context.Background(), GetFeedQuery{Now: now})

	require.NoError(t, err)
	require.Len(t, dto.Peer, 1)
	assert.Equal(t, "good", dto.Peer[0].ID)
	assert.Equal(t, 1, dto.UnreadCount)
}

func TestGetFeed_EnergyReflectsCollection(t *testing.T) {
	events := []*feed.Event{
		peerEvent("a", "go", now.Add(-time.Hour)),
		peerEvent("b", "go", now.Add(-2*time.Hour)),
		sessionEvent("s", now.Add(-10*time.Minute), true),
	}
	h := NewGetFeedHandler(newStore(t, events...), nil)

	dto, err := h.Handle(context.Background(), GetFeedQuery{Now: now})

	require.NoError(t, err)
	// 3 activities * 5 + 3 subjects * 3 + live bonus 20 = 44.
	assert.Equal(t, 44, dto.Energy.Score)
	assert.Equal(t, feed.EnergyMedium, dto.Energy.Level)
	assert.Equal(t, "go", dto.Energy.TrendingTopic)
}

func TestGetFeed_ContextualMessage(t *testing.T) {
	h := NewGetFeedHandler(newStore(t, peerEvent("a", "topic-go", now.Add(-time.Hour))), nil)

	dto, err := h.Handle(context.Background(), GetFeedQuery{
		Now:     now,
		Context: &feed.ViewerContext{CurrentTopic: "topic-go"},
	})

	require.NoError(t, err)
	require.NotNil(t, dto.ContextualMessage)
	assert.Contains(t, *dto.ContextualMessage, "also exploring")
}

func TestGetFeed_ReadYourWrites(t *testing.T) {
	store := newStore(t, peerEvent("a", "t", now.Add(-time.Hour)))
	h := NewGetFeedHandler(store, nil)

	require.NoError(t, store.MarkRead(context.Background(), "a"))

	dto, err := h.Handle(context.Background(), GetFeedQuery{Now: now})
	require.NoError(t, err)
	assert.Equal(t, 0, dto.UnreadCount)
	assert.True(t, dto.Peer[0].Read)
}

func TestGetFeed_TimeAgoRendering(t *testing.T) {
	h := NewGetFeedHandler(newStore(t, peerEvent("a", "t", now.Add(-30*time.Minute))), nil)

	dto, err := h.Handle(context.Background(), GetFeedQuery{Now: now})

	require.NoError(t, err)
	require.Len(t, dto.Peer, 1)
	assert.Equal(t, "30 min ago", dto.Peer[0].TimeAgo)
}
