package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
)

func event(id string, cat feed.Category, at time.Time) *feed.Event {
	return &feed.Event{
		ID:         feed.EventID(id),
		Category:   cat,
		Subject:    feed.Subject{ID: "u-" + id, Name: "User " + id},
		Narrative:  "did something",
		OccurredAt: at,
	}
}

func TestAppend_HeadOfCategory(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()
	now := time.Now()

	require.NoError(t, s.Append(ctx, event("first", feed.CategoryPeer, now.Add(-2*time.Hour))))
	require.NoError(t, s.Append(ctx, event("second", feed.CategoryPeer, now.Add(-time.Hour))))

	events, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, feed.EventID("second"), events[0].ID, "newest insertion at the head")
}

func TestAppend_Rejections(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()

	assert.ErrorIs(t, s.Append(ctx, nil), feed.ErrInvalidEventID)
	assert.ErrorIs(t, s.Append(ctx, event("", feed.CategoryPeer, time.Now())), feed.ErrInvalidEventID)

	bad := event("x", "bogus", time.Now())
	assert.ErrorIs(t, s.Append(ctx, bad), feed.ErrInvalidCategory)

	require.NoError(t, s.Append(ctx, event("dup", feed.CategoryPeer, time.Now())))
	assert.ErrorIs(t, s.Append(ctx, event("dup", feed.CategoryPeer, time.Now())), ErrDuplicateEvent)
}

func TestSnapshot_Isolation(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()
	require.NoError(t, s.Append(ctx, event("a", feed.CategoryPeer, time.Now())))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	snap[0].Read = true
	snap[0].Narrative = "tampered"

	fresh, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, fresh[0].Read, "mutating a snapshot never touches the store")
	assert.Equal(t, "did something", fresh[0].Narrative)
}

func TestAppend_DetachedFromCaller(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()
	e := event("a", feed.CategoryPeer, time.Now())
	require.NoError(t, s.Append(ctx, e))

	e.Narrative = "changed after append"

	snap, _ := s.Snapshot(ctx)
	assert.Equal(t, "did something", snap[0].Narrative)
}

func TestMarkRead_ReadYourWrites(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()
	require.NoError(t, s.Append(ctx, event("a", feed.CategoryPeer, time.Now())))

	require.NoError(t, s.MarkRead(ctx, "a"))

	snap, _ := s.Snapshot(ctx)
	assert.True(t, snap[0].Read, "a completed mark-read is visible to the next snapshot")
}

func TestMarkRead_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()
	require.NoError(t, s.Append(ctx, event("a", feed.CategoryPeer, time.Now())))

	assert.NoError(t, s.MarkRead(ctx, "ghost"))

	snap, _ := s.Snapshot(ctx)
	assert.False(t, snap[0].Read, "state unchanged")
}

func TestMarkAllRead_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()
	require.NoError(t, s.Append(ctx, event("a", feed.CategoryPeer, time.Now())))
	require.NoError(t, s.Append(ctx, event("b", feed.CategorySession, time.Now())))

	require.NoError(t, s.MarkAllRead(ctx))
	require.NoError(t, s.MarkAllRead(ctx))

	snap, _ := s.Snapshot(ctx)
	for _, e := range snap {
		assert.True(t, e.Read)
	}
}

func TestSnapshot_CategoryOrderIsFixed(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()
	require.NoError(t, s.Append(ctx, event("d", feed.CategoryDiscovery, time.Now())))
	require.NoError(t, s.Append(ctx, event("p", feed.CategoryPeer, time.Now())))

	snap, _ := s.Snapshot(ctx)
	require.Len(t, snap, 2)
	assert.Equal(t, feed.CategoryPeer, snap[0].Category, "peer comes before discovery regardless of insertion order")
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, event(fmt.Sprintf("e%d", i), feed.CategoryPeer, time.Now()))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.Snapshot(ctx)
			_ = s.MarkAllRead(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
}
