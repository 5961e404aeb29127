package command

import (
	"context"
	"time"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
	"github.com/pulsepath/social-feed-service/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// READ-STATE COMMANDS
// Read flags only ever transition false -> true. Marking an unknown ID is a
// silent no-op, and repeating either command leaves the state unchanged.
// ══════════════════════════════════════════════════════════════════════════════

// MarkEventReadCommand marks a single event as read.
type MarkEventReadCommand struct {
	ID feed.EventID
}

// MarkEventReadHandler handles single-event read transitions.
type MarkEventReadHandler struct {
	store feed.Store
	bus   feed.ChangePublisher
	log   *logger.Logger
}

// NewMarkEventReadHandler creates a new MarkEventReadHandler.
func NewMarkEventReadHandler(store feed.Store, bus feed.ChangePublisher, log *logger.Logger) *MarkEventReadHandler {
	if bus == nil {
		bus = feed.NopPublisher{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &MarkEventReadHandler{store: store, bus: bus, log: log.With(logger.Component("mark_read"))}
}

// Handle applies the transition. An empty or unknown ID changes nothing and
// is not an error.
func (h *MarkEventReadHandler) Handle(ctx context.Context, cmd MarkEventReadCommand) error {
	if !cmd.ID.IsValid() {
		return nil
	}
	if err := h.store.MarkRead(ctx, cmd.ID); err != nil {
		return err
	}
	if err := h.bus.Publish(ctx, feed.Change{
		Kind:    feed.ChangeRead,
		EventID: cmd.ID,
		At:      time.Now().UTC(),
	}); err != nil {
		h.log.Warn("change fan-out failed", logger.Err(err), logger.EventID(cmd.ID.String()))
	}
	return nil
}

// MarkAllReadHandler handles the mark-everything transition.
type MarkAllReadHandler struct {
	store feed.Store
	bus   feed.ChangePublisher
	log   *logger.Logger
}

// NewMarkAllReadHandler creates a new MarkAllReadHandler.
func NewMarkAllReadHandler(store feed.Store, bus feed.ChangePublisher, log *logger.Logger) *MarkAllReadHandler {
	if bus == nil {
		bus = feed.NopPublisher{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &MarkAllReadHandler{store: store, bus: bus, log: log.With(logger.Component("mark_all_read"))}
}

// Handle marks every event in the collection as read.
func (h *MarkAllReadHandler) Handle(ctx context.Context) error {
	if err := h.store.MarkAllRead(ctx); err != nil {
		return err
	}
	if err := h.bus.Publish(ctx, feed.Change{
		Kind: feed.ChangeAllRead,
		At:   time.Now().UTC(),
	}); err != nil {
		h.log.Warn("change fan-out failed", logger.Err(err))
	}
	return nil
}
