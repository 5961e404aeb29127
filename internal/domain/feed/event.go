// Package feed contains the domain model and business logic for the social
// activity feed: typed activity events, time-window filtering, near-duplicate
// grouping, priority sorting, network energy scoring, and contextual headlines.
// This is a pure domain layer with zero external dependencies.
package feed

import (
	"errors"
	"strings"
	"time"
)

// Domain errors for feed package.
var (
	ErrInvalidEventID   = errors.New("feed: invalid event ID")
	ErrInvalidCategory  = errors.New("feed: invalid category")
	ErrInvalidSubject   = errors.New("feed: invalid subject")
	ErrEmptyNarrative   = errors.New("feed: narrative cannot be empty")
	ErrZeroTimestamp    = errors.New("feed: occurred-at cannot be zero")
	ErrFutureTimestamp  = errors.New("feed: occurred-at cannot be in the future for this category")
	ErrInvalidOccupancy = errors.New("feed: occupancy must be between 0 and capacity")
)

// EventID represents a unique identifier for an activity event.
type EventID string

// IsValid checks if the event ID is valid.
func (id EventID) IsValid() bool {
	return id != ""
}

// String returns the string representation of EventID.
func (id EventID) String() string {
	return string(id)
}

// TopicID identifies the course/topic an event relates to (the
// subject-of-interest). It is the grouping and relevance key.
// An empty TopicID means the event is not tied to a topic.
type TopicID string

// IsValid checks if the topic ID is valid.
func (t TopicID) IsValid() bool {
	return t != ""
}

// String returns the string representation of TopicID.
func (t TopicID) String() string {
	return string(t)
}

// Category classifies an activity event into one of the feed's sections.
type Category string

const (
	// CategoryPeer - activity of other learners the viewer follows.
	CategoryPeer Category = "peer"
	// CategoryCohort - cohort-wide statistics and milestones.
	CategoryCohort Category = "cohort"
	// CategoryPersonal - the viewer's own achievements.
	CategoryPersonal Category = "personal"
	// CategorySession - live or scheduled mentor sessions.
	CategorySession Category = "session"
	// CategoryDuel - head-to-head challenges against another learner.
	CategoryDuel Category = "duel"
	// CategoryBlitz - timed challenges with a deadline and a reward.
	CategoryBlitz Category = "blitz"
	// CategoryDiscovery - suggested topics and content to explore.
	CategoryDiscovery Category = "discovery"
)

// Categories lists all valid categories in their fixed feed order.
var Categories = []Category{
	CategoryPeer,
	CategoryCohort,
	CategoryPersonal,
	CategorySession,
	CategoryDuel,
	CategoryBlitz,
	CategoryDiscovery,
}

// IsValid checks if the category is one of the known feed sections.
func (c Category) IsValid() bool {
	switch c {
	case CategoryPeer, CategoryCohort, CategoryPersonal, CategorySession,
		CategoryDuel, CategoryBlitz, CategoryDiscovery:
		return true
	}
	return false
}

// String returns the string representation of Category.
func (c Category) String() string {
	return string(c)
}

// ActionClass is the canonical classification of what an event's narrative
// describes. Producers set it at event creation; it is data, not a property
// derived from prose.
type ActionClass string

const (
	ActionCompleted ActionClass = "completed"
	ActionUnlocked  ActionClass = "unlocked"
	ActionJoined    ActionClass = "joined"
	ActionQuiz      ActionClass = "quiz"
	ActionGeneral   ActionClass = "general"
)

// IsValid checks if the action class is known.
func (a ActionClass) IsValid() bool {
	switch a {
	case ActionCompleted, ActionUnlocked, ActionJoined, ActionQuiz, ActionGeneral:
		return true
	}
	return false
}

// ClassifyNarrative derives an action class from narrative text by keyword.
// Fallback for producers that do not send an explicit action class; the tag
// they send is always preferred.
func ClassifyNarrative(narrative string) ActionClass {
	s := strings.ToLower(narrative)
	switch {
	case strings.Contains(s, "completed") || strings.Contains(s, "finished"):
		return ActionCompleted
	case strings.Contains(s, "unlocked"):
		return ActionUnlocked
	case strings.Contains(s, "joined"):
		return ActionJoined
	case strings.Contains(s, "quiz"):
		return ActionQuiz
	default:
		return ActionGeneral
	}
}

// Subject is the user or entity an event originates from.
type Subject struct {
	ID     string
	Name   string
	Avatar string // emoji or avatar reference for display
}

// IsValid checks that the subject carries the required identity fields.
func (s Subject) IsValid() bool {
	return s.ID != "" && s.Name != ""
}

// Link is an optional navigation pointer attached to an event. It is opaque
// to the feed algorithms and only passed through for downstream navigation.
type Link struct {
	TargetKind  string
	TargetID    string
	Title       string
	ActionLabel string
}

// SessionInfo carries mentor-session specific attributes.
type SessionInfo struct {
	IsLive    bool
	StartsAt  time.Time
	EndsAt    time.Time
	Capacity  int
	Occupancy int
}

// DuelStatus represents the state of a head-to-head challenge.
type DuelStatus string

const (
	DuelPending  DuelStatus = "pending"
	DuelActive   DuelStatus = "active"
	DuelWon      DuelStatus = "won"
	DuelLost     DuelStatus = "lost"
	DuelDeclined DuelStatus = "declined"
)

// DuelInfo carries head-to-head challenge attributes.
type DuelInfo struct {
	OpponentName  string
	Status        DuelStatus
	OwnScore      int
	OpponentScore int
}

// BlitzInfo carries timed-challenge attributes.
type BlitzInfo struct {
	Progress int // percentage complete, 0-100
	Reward   string
	Deadline time.Time
}

// DiscoveryInfo carries discovery-suggestion attributes.
type DiscoveryInfo struct {
	Relevance int // 0-100, clamped on construction
}

// Event is one activity occurrence in the feed. Events are immutable once
// created, with one explicitly permitted exception: the Read flag, which
// transitions false -> true and never reverts.
type Event struct {
	ID         EventID
	Category   Category
	Subject    Subject
	Narrative  string
	OccurredAt time.Time
	Read       bool
	TopicID    TopicID
	Action     ActionClass
	Link       *Link

	// Category-specific attributes. At most one of these is set,
	// matching the category.
	Session   *SessionInfo
	Duel      *DuelInfo
	Blitz     *BlitzInfo
	Discovery *DiscoveryInfo
}

// Validate checks the structural invariants of an event. The pipeline never
// surfaces these errors to callers; invalid events are silently excluded.
func (e *Event) Validate(now time.Time) error {
	if e == nil || !e.ID.IsValid() {
		return ErrInvalidEventID
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	if !e.Subject.IsValid() {
		return ErrInvalidSubject
	}
	if strings.TrimSpace(e.Narrative) == "" {
		return ErrEmptyNarrative
	}
	if e.OccurredAt.IsZero() {
		return ErrZeroTimestamp
	}
	// Only mentor sessions may carry a future timestamp (scheduled sessions).
	if e.Category != CategorySession && e.OccurredAt.After(now) {
		return ErrFutureTimestamp
	}
	if e.Session != nil && e.Session.Capacity > 0 {
		if e.Session.Occupancy < 0 || e.Session.Occupancy > e.Session.Capacity {
			return ErrInvalidOccupancy
		}
	}
	return nil
}

// IsLive reports whether the event is a mentor session currently in progress.
func (e *Event) IsLive() bool {
	return e.Session != nil && e.Session.IsLive
}

// IsScheduled reports whether the event represents a session that has not
// started yet.
func (e *Event) IsScheduled(now time.Time) bool {
	return e.Category == CategorySession && e.OccurredAt.After(now)
}

// MarkRead flips the read flag. Marking an already-read event is a no-op.
func (e *Event) MarkRead() {
	e.Read = true
}

// TopicLabel returns the display label for the event's topic: the link title
// when present, otherwise the raw topic ID.
func (e *Event) TopicLabel() string {
	if e.Link != nil && e.Link.Title != "" {
		return e.Link.Title
	}
	return e.TopicID.String()
}

// Clone returns a deep copy of the event. Stores hand out clones so that
// no caller holds a reference into shared mutable state.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	if e.Link != nil {
		link := *e.Link
		c.Link = &link
	}
	if e.Session != nil {
		s := *e.Session
		c.Session = &s
	}
	if e.Duel != nil {
		d := *e.Duel
		c.Duel = &d
	}
	if e.Blitz != nil {
		b := *e.Blitz
		c.Blitz = &b
	}
	if e.Discovery != nil {
		d := *e.Discovery
		c.Discovery = &d
	}
	return &c
}

// ClampPercent clamps a percentage-style score to [0, 100].
func ClampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
