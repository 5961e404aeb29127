package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
	"github.com/pulsepath/social-feed-service/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// REDIS BUS
// Bridges feed changes across instances via Redis pub/sub. Local handlers
// receive both locally-published changes and changes from other instances;
// a change published here is not re-delivered to its own instance through
// the Redis round trip.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultChannel is the Redis pub/sub channel for feed changes.
const DefaultChannel = "feed:changes"

// envelope is the wire format on the Redis channel.
type envelope struct {
	InstanceID string      `json:"instance_id"`
	Change     feed.Change `json:"change"`
}

// RedisBusConfig configures a RedisBus.
type RedisBusConfig struct {
	// Client is the shared Redis client. Required.
	Client *redis.Client

	// Channel overrides the pub/sub channel name.
	Channel string

	// Retry configures retry behavior for publishes. Zero value uses
	// package defaults.
	Retry retry.Config

	// Logger for structured logging.
	Logger *slog.Logger
}

// RedisBus is a Bus backed by Redis pub/sub, with a local in-memory bus for
// same-instance delivery.
type RedisBus struct {
	client     *redis.Client
	channel    string
	instanceID string
	local      *InMemoryBus
	retrier    *retry.Retrier
	logger     *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisBus creates a RedisBus and starts its subscriber loop.
func NewRedisBus(cfg RedisBusConfig) (*RedisBus, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("messaging: redis client is required")
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisBus{
		client:     cfg.Client,
		channel:    cfg.Channel,
		instanceID: uuid.NewString(),
		local:      NewInMemoryBus(cfg.Logger),
		retrier:    retry.New(cfg.Retry),
		logger:     cfg.Logger,
		cancel:     cancel,
	}

	sub := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription to be confirmed before returning so no
	// remote change published after construction is missed.
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("messaging: subscribe to %s: %w", b.channel, err)
	}

	b.wg.Add(1)
	go b.subscriptionLoop(ctx, sub)
	return b, nil
}

// Publish delivers the change locally, then fans it out over Redis with
// retries. Remote delivery failure is returned to the caller, who treats
// fan-out as best effort.
func (b *RedisBus) Publish(ctx context.Context, c feed.Change) error {
	if err := b.local.Publish(ctx, c); err != nil {
		return err
	}

	data, err := json.Marshal(envelope{InstanceID: b.instanceID, Change: c})
	if err != nil {
		return fmt.Errorf("messaging: marshal change: %w", err)
	}

	return b.retrier.Do(ctx, func(ctx context.Context) error {
		return b.client.Publish(ctx, b.channel, data).Err()
	})
}

// Subscribe registers a handler for one change kind.
func (b *RedisBus) Subscribe(kind feed.ChangeKind, h Handler) error {
	return b.local.Subscribe(kind, h)
}

// SubscribeAll registers a handler for every change.
func (b *RedisBus) SubscribeAll(h Handler) error {
	return b.local.SubscribeAll(h)
}

func (b *RedisBus) subscriptionLoop(ctx context.Context, sub *redis.PubSub) {
	defer b.wg.Done()
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.handleMessage(ctx, msg)
		}
	}
}

func (b *RedisBus) handleMessage(ctx context.Context, msg *redis.Message) {
	var env envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		b.logger.Warn("dropping malformed change message", "error", err)
		return
	}
	// Own messages were already delivered locally at publish time.
	if env.InstanceID == b.instanceID {
		return
	}
	if err := b.local.Publish(ctx, env.Change); err != nil {
		b.logger.Warn("local redelivery failed", "error", err)
	}
}

// Close stops the subscriber loop and closes the local bus.
func (b *RedisBus) Close() error {
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		b.logger.Warn("timed out waiting for subscriber loop")
	}
	return b.local.Close()
}

var _ Bus = (*RedisBus)(nil)
