// Package memory implements the feed event store as process-local state.
// This is the default store: the feed is a replayable computation over the
// event collection, so durability is the supplying store's concern, not the
// engine's. The postgres package provides the durable alternative.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
)

// Store errors.
var (
	// ErrDuplicateEvent indicates an append with an ID already in the store.
	ErrDuplicateEvent = errors.New("memory: duplicate event ID")
)

// EventStore holds the shared event collection behind a single RWMutex.
// Reads take a full snapshot under the read lock so every query observes a
// consistent collection; writes are mutually exclusive with each other and
// with in-flight reads. A mutation that returns before a Snapshot begins is
// therefore visible in that snapshot (read-your-writes).
type EventStore struct {
	mu         sync.RWMutex
	byCategory map[feed.Category][]*feed.Event // newest first within a category
	byID       map[feed.EventID]*feed.Event
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		byCategory: make(map[feed.Category][]*feed.Event),
		byID:       make(map[feed.EventID]*feed.Event),
	}
}

// Snapshot returns a deep copy of the collection: newest-first within each
// category, categories in their fixed feed order. Callers own the result.
func (s *EventStore) Snapshot(ctx context.Context) ([]*feed.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*feed.Event, 0, len(s.byID))
	for _, cat := range feed.Categories {
		for _, e := range s.byCategory[cat] {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// Append inserts a new event at the head of its category. The stored copy is
// detached from the caller's.
func (s *EventStore) Append(ctx context.Context, e *feed.Event) error {
	if e == nil || !e.ID.IsValid() {
		return feed.ErrInvalidEventID
	}
	if !e.Category.IsValid() {
		return feed.ErrInvalidCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[e.ID]; exists {
		return ErrDuplicateEvent
	}

	stored := e.Clone()
	s.byID[stored.ID] = stored
	s.byCategory[stored.Category] = append([]*feed.Event{stored}, s.byCategory[stored.Category]...)
	return nil
}

// MarkRead sets the read flag on one event. Unknown IDs are a silent no-op.
func (s *EventStore) MarkRead(ctx context.Context, id feed.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.byID[id]; ok {
		e.MarkRead()
	}
	return nil
}

// MarkAllRead sets the read flag on every event.
func (s *EventStore) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.byID {
		e.MarkRead()
	}
	return nil
}

// Len returns the number of events in the store.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

var _ feed.Store = (*EventStore)(nil)
