// Package messaging implements fan-out of feed changes to interested
// consumers. It provides an in-memory bus for single-instance deployments
// and a Redis pub/sub bridge for multi-instance fan-out.
//
// Delivery is best effort by design: the feed engine is a replayable
// computation over the store, so a lost change notification costs a cache
// refresh, never correctness.
package messaging

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
)

// Bus errors.
var (
	// ErrBusClosed indicates an operation on a closed bus.
	ErrBusClosed = errors.New("messaging: bus is closed")
)

// Handler consumes one feed change. Handlers must not block for long; the
// in-memory bus runs them synchronously on the publisher's goroutine.
type Handler func(ctx context.Context, c feed.Change)

// Bus fans feed changes out to subscribed handlers.
type Bus interface {
	feed.ChangePublisher

	// Subscribe registers a handler for one change kind.
	Subscribe(kind feed.ChangeKind, h Handler) error

	// SubscribeAll registers a handler for every change.
	SubscribeAll(h Handler) error

	// Close shuts the bus down. Publishing after Close returns ErrBusClosed.
	Close() error
}

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryBus is a process-local Bus. Suitable for single-instance
// deployments and testing.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[feed.ChangeKind][]Handler
	all      []Handler
	logger   *slog.Logger
	closed   bool
}

// NewInMemoryBus creates a new in-memory bus.
func NewInMemoryBus(logger *slog.Logger) *InMemoryBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryBus{
		handlers: make(map[feed.ChangeKind][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one change kind.
func (b *InMemoryBus) Subscribe(kind feed.ChangeKind, h Handler) error {
	if h == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	b.handlers[kind] = append(b.handlers[kind], h)
	return nil
}

// SubscribeAll registers a handler for every change.
func (b *InMemoryBus) SubscribeAll(h Handler) error {
	if h == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	b.all = append(b.all, h)
	return nil
}

// Publish dispatches the change to every matching handler. A panicking
// handler is recovered and logged; it never takes the publisher down.
func (b *InMemoryBus) Publish(ctx context.Context, c feed.Change) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	targets := make([]Handler, 0, len(b.handlers[c.Kind])+len(b.all))
	targets = append(targets, b.handlers[c.Kind]...)
	targets = append(targets, b.all...)
	b.mu.RUnlock()

	for _, h := range targets {
		b.run(ctx, h, c)
	}
	return nil
}

func (b *InMemoryBus) run(ctx context.Context, h Handler, c feed.Change) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("change handler panicked",
				"kind", c.Kind,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	h(ctx, c)
}

// Close shuts the bus down.
func (b *InMemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

var _ Bus = (*InMemoryBus)(nil)
