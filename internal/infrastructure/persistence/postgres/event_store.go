package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
)

// ErrDuplicateEvent indicates an append with an event ID that already exists.
var ErrDuplicateEvent = errors.New("postgres: duplicate event id")

// ══════════════════════════════════════════════════════════════════════════════
// EVENT STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// EventStore implements feed.Store on top of PostgreSQL. Row order within a
// category follows the insertion sequence, so snapshots reproduce the same
// newest-first ordering the in-memory store provides.
type EventStore struct {
	conn *Connection
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Connection) *EventStore {
	return &EventStore{conn: conn}
}

var _ feed.Store = (*EventStore)(nil)

// eventAttrs is the JSONB payload for category-specific attributes and the
// optional navigation link.
type eventAttrs struct {
	Link      *feed.Link          `json:"link,omitempty"`
	Session   *feed.SessionInfo   `json:"session,omitempty"`
	Duel      *feed.DuelInfo      `json:"duel,omitempty"`
	Blitz     *feed.BlitzInfo     `json:"blitz,omitempty"`
	Discovery *feed.DiscoveryInfo `json:"discovery,omitempty"`
}

// Snapshot returns every stored event, newest-first within each category,
// categories in their fixed feed order.
func (s *EventStore) Snapshot(ctx context.Context) ([]*feed.Event, error) {
	query := `
		SELECT id, category, subject_id, subject_name, subject_avatar,
		       narrative, occurred_at, read, topic_id, action, attrs
		FROM feed_events
		ORDER BY seq DESC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed events: %w", err)
	}
	defer rows.Close()

	byCategory := make(map[feed.Category][]*feed.Event)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed events: %w", err)
	}

	var events []*feed.Event
	for _, cat := range feed.Categories {
		events = append(events, byCategory[cat]...)
	}
	return events, nil
}

// Append inserts a new event.
func (s *EventStore) Append(ctx context.Context, e *feed.Event) error {
	if e == nil || !e.ID.IsValid() {
		return feed.ErrInvalidEventID
	}

	attrs, err := json.Marshal(eventAttrs{
		Link:      e.Link,
		Session:   e.Session,
		Duel:      e.Duel,
		Blitz:     e.Blitz,
		Discovery: e.Discovery,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event attributes: %w", err)
	}

	query := `
		INSERT INTO feed_events (
			id, category, subject_id, subject_name, subject_avatar,
			narrative, occurred_at, read, topic_id, action, attrs
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = s.conn.Exec(ctx, query,
		e.ID.String(),
		e.Category.String(),
		e.Subject.ID,
		e.Subject.Name,
		e.Subject.Avatar,
		e.Narrative,
		e.OccurredAt,
		e.Read,
		e.TopicID.String(),
		string(e.Action),
		attrs,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("failed to insert feed event: %w", err)
	}

	return nil
}

// MarkRead sets the read flag on one event. Unknown IDs are a no-op.
func (s *EventStore) MarkRead(ctx context.Context, id feed.EventID) error {
	_, err := s.conn.Exec(ctx,
		"UPDATE feed_events SET read = TRUE WHERE id = $1",
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark event read: %w", err)
	}
	return nil
}

// MarkAllRead sets the read flag on every event.
func (s *EventStore) MarkAllRead(ctx context.Context) error {
	_, err := s.conn.Exec(ctx,
		"UPDATE feed_events SET read = TRUE WHERE read = FALSE",
	)
	if err != nil {
		return fmt.Errorf("failed to mark all events read: %w", err)
	}
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*feed.Event, error) {
	var (
		e         feed.Event
		id        string
		category  string
		topicID   string
		action    string
		attrsJSON []byte
	)

	err := row.Scan(
		&id,
		&category,
		&e.Subject.ID,
		&e.Subject.Name,
		&e.Subject.Avatar,
		&e.Narrative,
		&e.OccurredAt,
		&e.Read,
		&topicID,
		&action,
		&attrsJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan feed event row: %w", err)
	}

	e.ID = feed.EventID(id)
	e.Category = feed.Category(category)
	e.TopicID = feed.TopicID(topicID)
	e.Action = feed.ActionClass(action)

	var attrs eventAttrs
	if len(attrsJSON) > 0 {
		if err := json.Unmarshal(attrsJSON, &attrs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event attributes: %w", err)
		}
	}
	e.Link = attrs.Link
	e.Session = attrs.Session
	e.Duel = attrs.Duel
	e.Blitz = attrs.Blitz
	e.Discovery = attrs.Discovery

	return &e, nil
}
