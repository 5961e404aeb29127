package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
	"github.com/pulsepath/social-feed-service/internal/infrastructure/persistence/memory"
)

// recordingBus captures published changes for assertions.
type recordingBus struct {
	mu      sync.Mutex
	changes []feed.Change
	err     error
}

func (b *recordingBus) Publish(ctx context.Context, c feed.Change) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, c)
	return b.err
}

func (b *recordingBus) kinds() []feed.ChangeKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]feed.ChangeKind, len(b.changes))
	for i, c := range b.changes {
		out[i] = c.Kind
	}
	return out
}

func TestPublishEvent_AppendsUnreadAtHead(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore()
	bus := &recordingBus{}
	h := NewPublishEventHandler(store, bus, nil)

	_, err := h.Handle(ctx, PublishEventCommand{
		Category:    feed.CategoryPeer,
		SubjectID:   "u1",
		SubjectName: "Ada",
		Narrative:   "completed the Recursion module",
		TopicID:     "recursion",
	})
	require.NoError(t, err)

	id, err := h.Handle(ctx, PublishEventCommand{
		Category:    feed.CategoryPeer,
		SubjectID:   "u2",
		SubjectName: "Grace",
		Narrative:   "joined the Algebra track",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	events, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, id, events[0].ID, "latest publication sits at the head of its category")
	assert.False(t, events[0].Read, "new events start unread")
	assert.Equal(t, []feed.ChangeKind{feed.ChangePublished, feed.ChangePublished}, bus.kinds())
}

func TestPublishEvent_StampsNow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore()
	h := NewPublishEventHandler(store, nil, nil)
	frozen := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return frozen }

	// OccurredAt on a non-session category is ignored.
	_, err := h.Handle(ctx, PublishEventCommand{
		Category:    feed.CategoryPeer,
		SubjectID:   "u1",
		SubjectName: "Ada",
		Narrative:   "did a thing",
		OccurredAt:  frozen.Add(-5 * time.Hour),
	})
	require.NoError(t, err)

	events, _ := store.Snapshot(ctx)
	assert.Equal(t, frozen, events[0].OccurredAt)
}

func TestPublishEvent_ScheduledSessionKeepsFutureTime(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore()
	h := NewPublishEventHandler(store, nil, nil)
	frozen := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return frozen }

	startsAt := frozen.Add(3 * time.Hour)
	_, err := h.Handle(ctx, PublishEventCommand{
		Category:    feed.CategorySession,
		SubjectID:   "mentor-1",
		SubjectName: "Mentor",
		Narrative:   "Linear Algebra deep dive",
		OccurredAt:  startsAt,
		Session:     &feed.SessionInfo{StartsAt: startsAt, EndsAt: startsAt.Add(time.Hour), Capacity: 30, Occupancy: 0},
	})
	require.NoError(t, err)

	events, _ := store.Snapshot(ctx)
	assert.Equal(t, startsAt, events[0].OccurredAt)
}

func TestPublishEvent_Validation(t *testing.T) {
	h := NewPublishEventHandler(memory.NewEventStore(), nil, nil)
	ctx := context.Background()

	_, err := h.Handle(ctx, PublishEventCommand{SubjectID: "u1", SubjectName: "Ada", Narrative: "x"})
	assert.ErrorIs(t, err, ErrMissingCategory)

	_, err = h.Handle(ctx, PublishEventCommand{Category: feed.CategoryPeer, Narrative: "x"})
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, err = h.Handle(ctx, PublishEventCommand{Category: feed.CategoryPeer, SubjectID: "u1", SubjectName: "Ada", Narrative: "  "})
	assert.ErrorIs(t, err, ErrMissingNarrative)
}

func TestPublishEvent_ClassifiesWhenActionMissing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore()
	h := NewPublishEventHandler(store, nil, nil)

	_, err := h.Handle(ctx, PublishEventCommand{
		Category:    feed.CategoryPeer,
		SubjectID:   "u1",
		SubjectName: "Ada",
		Narrative:   "unlocked the Graphs badge",
	})
	require.NoError(t, err)

	events, _ := store.Snapshot(ctx)
	assert.Equal(t, feed.ActionUnlocked, events[0].Action)
}

func TestPublishEvent_ClampsDiscoveryRelevance(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore()
	h := NewPublishEventHandler(store, nil, nil)

	_, err := h.Handle(ctx, PublishEventCommand{
		Category:    feed.CategoryDiscovery,
		SubjectID:   "sys",
		SubjectName: "PulsePath",
		Narrative:   "a topic you might like",
		Discovery:   &feed.DiscoveryInfo{Relevance: 250},
	})
	require.NoError(t, err)

	events, _ := store.Snapshot(ctx)
	require.NotNil(t, events[0].Discovery)
	assert.Equal(t, 100, events[0].Discovery.Relevance)
}

func TestPublishEvent_BusFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore()
	bus := &recordingBus{err: errors.New("redis down")}
	h := NewPublishEventHandler(store, bus, nil)

	_, err := h.Handle(ctx, PublishEventCommand{
		Category:    feed.CategoryPeer,
		SubjectID:   "u1",
		SubjectName: "Ada",
		Narrative:   "did a thing",
	})

	require.NoError(t, err, "fan-out is best effort")
	assert.Equal(t, 1, store.Len())
}
