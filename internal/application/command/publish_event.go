// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
	"github.com/pulsepath/social-feed-service/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUBLISH EVENT COMMAND
// The ingestion boundary: upstream producers (course-completion hooks, the
// scheduling system, the challenge system) publish new activity through here.
// ══════════════════════════════════════════════════════════════════════════════

// Command validation errors. Unlike the read side, the ingest boundary does
// reject bad payloads so producers learn about them.
var (
	ErrMissingCategory  = errors.New("publish_event: category is required")
	ErrMissingSubject   = errors.New("publish_event: subject id and name are required")
	ErrMissingNarrative = errors.New("publish_event: narrative is required")
)

// PublishEventCommand contains the data to publish one activity event.
type PublishEventCommand struct {
	// Category is the feed section the event belongs to.
	Category feed.Category

	// Subject identity.
	SubjectID     string
	SubjectName   string
	SubjectAvatar string

	// Narrative is the human-readable message fragment.
	Narrative string

	// TopicID is the optional subject-of-interest (grouping/relevance key).
	TopicID string

	// Action is the canonical action class. When producers omit it, the
	// narrative is keyword-classified as a fallback.
	Action feed.ActionClass

	// OccurredAt is honored for mentor sessions only (scheduled sessions
	// carry a future timestamp). Every other category is stamped "now".
	OccurredAt time.Time

	// Optional navigation pointer and category-specific attributes.
	Link      *feed.Link
	Session   *feed.SessionInfo
	Duel      *feed.DuelInfo
	Blitz     *feed.BlitzInfo
	Discovery *feed.DiscoveryInfo
}

// Validate validates the command.
func (c *PublishEventCommand) Validate() error {
	if !c.Category.IsValid() {
		return ErrMissingCategory
	}
	if c.SubjectID == "" || c.SubjectName == "" {
		return ErrMissingSubject
	}
	if strings.TrimSpace(c.Narrative) == "" {
		return ErrMissingNarrative
	}
	return nil
}

// PublishEventHandler handles event publication.
type PublishEventHandler struct {
	store feed.Store
	bus   feed.ChangePublisher
	log   *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewPublishEventHandler creates a new PublishEventHandler.
func NewPublishEventHandler(store feed.Store, bus feed.ChangePublisher, log *logger.Logger) *PublishEventHandler {
	if bus == nil {
		bus = feed.NopPublisher{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &PublishEventHandler{
		store: store,
		bus:   bus,
		log:   log.With(logger.Component("publish_event")),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle mints the event, appends it at the head of its category and fans
// the change out. The new event starts unread. Returns the generated ID.
func (h *PublishEventHandler) Handle(ctx context.Context, cmd PublishEventCommand) (feed.EventID, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	now := h.now()
	occurred := now
	if cmd.Category == feed.CategorySession && !cmd.OccurredAt.IsZero() {
		occurred = cmd.OccurredAt
	}

	action := cmd.Action
	if !action.IsValid() {
		action = feed.ClassifyNarrative(cmd.Narrative)
	}

	e := &feed.Event{
		ID:       feed.EventID(uuid.NewString()),
		Category: cmd.Category,
		Subject: feed.Subject{
			ID:     cmd.SubjectID,
			Name:   cmd.SubjectName,
			Avatar: cmd.SubjectAvatar,
		},
		Narrative:  cmd.Narrative,
		OccurredAt: occurred,
		Read:       false,
		TopicID:    feed.TopicID(cmd.TopicID),
		Action:     action,
		Link:       cmd.Link,
		Session:    cmd.Session,
		Duel:       cmd.Duel,
		Blitz:      cmd.Blitz,
		Discovery:  cmd.Discovery,
	}
	if e.Discovery != nil {
		e.Discovery.Relevance = feed.ClampPercent(e.Discovery.Relevance)
	}

	if err := e.Validate(now); err != nil {
		return "", err
	}
	if err := h.store.Append(ctx, e); err != nil {
		return "", err
	}

	// Fan-out is best effort: a lost notification never fails the mutation.
	if err := h.bus.Publish(ctx, feed.Change{
		Kind:     feed.ChangePublished,
		EventID:  e.ID,
		Category: e.Category,
		At:       now,
	}); err != nil {
		h.log.Warn("change fan-out failed", logger.Err(err), logger.EventID(e.ID.String()))
	}

	h.log.Info("event published",
		logger.EventID(e.ID.String()),
		logger.Category(e.Category.String()),
	)
	return e.ID, nil
}
