package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
	"github.com/pulsepath/social-feed-service/internal/infrastructure/persistence/memory"
)

func seeded(t *testing.T, ids ...string) *memory.EventStore {
	t.Helper()
	s := memory.NewEventStore()
	for _, id := range ids {
		require.NoError(t, s.Append(context.Background(), &feed.Event{
			ID:         feed.EventID(id),
			Category:   feed.CategoryPeer,
			Subject:    feed.Subject{ID: "u-" + id, Name: "User " + id},
			Narrative:  "did something",
			OccurredAt: time.Now().Add(-time.Hour),
		}))
	}
	return s
}

func unreadCount(t *testing.T, s *memory.EventStore) int {
	t.Helper()
	events, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	n := 0
	for _, e := range events {
		if !e.Read {
			n++
		}
	}
	return n
}

func TestMarkEventRead(t *testing.T) {
	ctx := context.Background()
	store := seeded(t, "a", "b")
	bus := &recordingBus{}
	h := NewMarkEventReadHandler(store, bus, nil)

	require.NoError(t, h.Handle(ctx, MarkEventReadCommand{ID: "a"}))

	assert.Equal(t, 1, unreadCount(t, store))
	assert.Equal(t, []feed.ChangeKind{feed.ChangeRead}, bus.kinds())
}

func TestMarkEventRead_UnknownAndEmptyIDs(t *testing.T) {
	ctx := context.Background()
	store := seeded(t, "a")
	bus := &recordingBus{}
	h := NewMarkEventReadHandler(store, bus, nil)

	require.NoError(t, h.Handle(ctx, MarkEventReadCommand{ID: "ghost"}))
	require.NoError(t, h.Handle(ctx, MarkEventReadCommand{}))

	assert.Equal(t, 1, unreadCount(t, store), "state unchanged")
	assert.Len(t, bus.kinds(), 1, "empty id publishes nothing")
}

func TestMarkAllRead_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := seeded(t, "a", "b", "c")
	h := NewMarkAllReadHandler(store, nil, nil)

	require.NoError(t, h.Handle(ctx))
	assert.Equal(t, 0, unreadCount(t, store))

	// Second call produces the same state as one call.
	require.NoError(t, h.Handle(ctx))
	assert.Equal(t, 0, unreadCount(t, store))
}
