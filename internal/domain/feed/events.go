package feed

import (
	"context"
	"time"
)

// ChangeKind identifies what kind of mutation happened to the collection.
type ChangeKind string

const (
	// ChangePublished - a new event entered the collection.
	ChangePublished ChangeKind = "feed.event_published"
	// ChangeRead - one event was marked read.
	ChangeRead ChangeKind = "feed.event_read"
	// ChangeAllRead - the whole collection was marked read.
	ChangeAllRead ChangeKind = "feed.all_read"
)

// Change is the integration event emitted after a mutation commits.
// Consumers (other instances, cache invalidators) react to it; the feed
// engine itself never depends on delivery. Publishing failures must not
// fail the mutation that produced the change.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	EventID  EventID    `json:"event_id,omitempty"`
	Category Category   `json:"category,omitempty"`
	At       time.Time  `json:"at"`
}

// ChangePublisher fans a change out to interested consumers.
// Implemented by the messaging infrastructure (in-memory bus, Redis pub/sub).
type ChangePublisher interface {
	Publish(ctx context.Context, c Change) error
}

// NopPublisher discards changes. Used when no bus is configured.
type NopPublisher struct{}

// Publish implements ChangePublisher.
func (NopPublisher) Publish(ctx context.Context, c Change) error { return nil }
