// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"time"

	"github.com/pulsepath/social-feed-service/internal/domain/feed"
	"github.com/pulsepath/social-feed-service/pkg/logger"
	"github.com/pulsepath/social-feed-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET FEED QUERY
// Assembles the full social feed in a single pass over a store snapshot:
// collect -> filter -> group (peer only) -> sort per category ->
// compute energy -> select context -> assemble.
// No intermediate state survives the call except as returned to the caller.
// ══════════════════════════════════════════════════════════════════════════════

// GetFeedQuery contains the parameters for a feed request.
type GetFeedQuery struct {
	// Context is the caller's viewing context for the contextual headline.
	// Optional.
	Context *feed.ViewerContext

	// Now overrides the query's reference time. Zero means the wall clock.
	Now time.Time

	// Horizon overrides the relevance window. Zero means the 48h default.
	Horizon time.Duration

	// GroupBucket overrides the grouping bucket. Zero means the 2h default.
	GroupBucket time.Duration
}

func (q *GetFeedQuery) normalize() {
	if q.Now.IsZero() {
		q.Now = time.Now().UTC()
	}
	if q.Horizon <= 0 {
		q.Horizon = feed.DefaultHorizon
	}
	if q.GroupBucket <= 0 {
		q.GroupBucket = feed.DefaultGroupBucket
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DTOs
// ─────────────────────────────────────────────────────────────────────────────

// LinkDTO mirrors feed.Link for the API surface.
type LinkDTO struct {
	TargetKind  string `json:"target_kind"`
	TargetID    string `json:"target_id"`
	Title       string `json:"title,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`
}

// SessionDTO mirrors feed.SessionInfo.
type SessionDTO struct {
	IsLive    bool      `json:"is_live"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Capacity  int       `json:"capacity"`
	Occupancy int       `json:"occupancy"`
}

// DuelDTO mirrors feed.DuelInfo.
type DuelDTO struct {
	OpponentName  string `json:"opponent_name"`
	Status        string `json:"status"`
	OwnScore      int    `json:"own_score"`
	OpponentScore int    `json:"opponent_score"`
}

// BlitzDTO mirrors feed.BlitzInfo.
type BlitzDTO struct {
	Progress int       `json:"progress"`
	Reward   string    `json:"reward,omitempty"`
	Deadline time.Time `json:"deadline"`
}

// DiscoveryDTO mirrors feed.DiscoveryInfo.
type DiscoveryDTO struct {
	Relevance int `json:"relevance"`
}

// EntryDTO is one feed entry as returned to callers.
type EntryDTO struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	DisplayName string   `json:"display_name"`
	Avatar      string   `json:"avatar,omitempty"`
	Narrative   string   `json:"narrative"`
	OccurredAt  time.Time `json:"occurred_at"`
	TimeAgo     string   `json:"time_ago"`
	Read        bool     `json:"read"`
	Grouped     bool     `json:"grouped"`
	Participants []string `json:"participants,omitempty"`
	MemberIDs   []string `json:"member_ids,omitempty"`
	TopicID     string   `json:"topic_id,omitempty"`

	Link      *LinkDTO      `json:"link,omitempty"`
	Session   *SessionDTO   `json:"session,omitempty"`
	Duel      *DuelDTO      `json:"duel,omitempty"`
	Blitz     *BlitzDTO     `json:"blitz,omitempty"`
	Discovery *DiscoveryDTO `json:"discovery,omitempty"`
}

// FeedDTO is the assembled feed result.
type FeedDTO struct {
	Peer      []EntryDTO `json:"peer"`
	Cohort    []EntryDTO `json:"cohort"`
	Personal  []EntryDTO `json:"personal"`
	Sessions  []EntryDTO `json:"sessions"`
	Duels     []EntryDTO `json:"duels"`
	Blitz     []EntryDTO `json:"blitz"`
	Discovery []EntryDTO `json:"discovery"`

	// UnreadCount sums unread events across all filtered categories,
	// counted before grouping so merged entries don't hide members.
	UnreadCount int `json:"unread_count"`

	Energy feed.Energy `json:"energy"`

	// ContextualMessage is absent (not empty) when no rule applied.
	ContextualMessage *string `json:"contextual_message,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

func (d *FeedDTO) setEntries(cat feed.Category, entries []EntryDTO) {
	switch cat {
	case feed.CategoryPeer:
		d.Peer = entries
	case feed.CategoryCohort:
		d.Cohort = entries
	case feed.CategoryPersonal:
		d.Personal = entries
	case feed.CategorySession:
		d.Sessions = entries
	case feed.CategoryDuel:
		d.Duels = entries
	case feed.CategoryBlitz:
		d.Blitz = entries
	case feed.CategoryDiscovery:
		d.Discovery = entries
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// HANDLER
// ─────────────────────────────────────────────────────────────────────────────

// GetFeedHandler handles feed queries.
type GetFeedHandler struct {
	store feed.Store
	log   *logger.Logger
}

// NewGetFeedHandler creates a new GetFeedHandler.
func NewGetFeedHandler(store feed.Store, log *logger.Logger) *GetFeedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetFeedHandler{store: store, log: log.With(logger.Component("get_feed"))}
}

// Handle assembles the feed. An empty collection yields empty sequences,
// zero counts, a low energy level, and no contextual message; degenerate
// input never produces an error from here.
func (h *GetFeedHandler) Handle(ctx context.Context, q GetFeedQuery) (*FeedDTO, error) {
	q.normalize()
	started := time.Now()

	snapshot, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	// Malformed events are excluded up front and never crash the pipeline.
	valid := snapshot[:0:0]
	dropped := 0
	for _, e := range snapshot {
		if e.Validate(q.Now) != nil {
			dropped++
			continue
		}
		valid = append(valid, e)
	}
	if dropped > 0 {
		h.log.Warn("excluded malformed events", logger.Int("dropped", dropped))
	}

	// Energy looks at the full collection, not the windowed one: a live
	// session beyond the horizon still energizes the network.
	result := &FeedDTO{
		Energy:      feed.ComputeEnergy(valid, q.Now),
		GeneratedAt: q.Now,
	}

	byCategory := make(map[feed.Category][]*feed.Event)
	for _, e := range valid {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	unread := 0
	for _, cat := range feed.Categories {
		windowed := feed.FilterWindow(byCategory[cat], q.Now, q.Horizon)

		// Unread counts pre-grouping events so a merged entry cannot
		// double count or swallow its members.
		for _, e := range windowed {
			if !e.Read {
				unread++
			}
		}

		var entries []*feed.Entry
		if cat == feed.CategoryPeer {
			entries = feed.GroupPeers(windowed, q.GroupBucket)
		} else {
			entries = make([]*feed.Entry, 0, len(windowed))
			for _, e := range windowed {
				entries = append(entries, feed.NewEntry(e))
			}
			if cat == feed.CategorySession {
				feed.SortSessions(entries, q.Now)
			} else {
				feed.SortByRecency(entries)
			}
		}

		result.setEntries(cat, toEntryDTOs(entries, q.Now))
	}
	result.UnreadCount = unread

	if msg, ok := feed.ContextualMessage(valid, q.Context); ok {
		result.ContextualMessage = &msg
	}

	h.log.Debug("feed assembled",
		logger.EntryCount(len(valid)),
		logger.UnreadCount(unread),
		logger.EnergyScore(result.Energy.Score),
		logger.Latency(time.Since(started)),
	)
	return result, nil
}

func toEntryDTOs(entries []*feed.Entry, now time.Time) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, en := range entries {
		out = append(out, toEntryDTO(en, now))
	}
	return out
}

func toEntryDTO(en *feed.Entry, now time.Time) EntryDTO {
	dto := EntryDTO{
		ID:           en.ID,
		Category:     en.Category.String(),
		DisplayName:  en.DisplayName,
		Avatar:       en.Avatar,
		Narrative:    en.Narrative,
		OccurredAt:   en.OccurredAt,
		TimeAgo:      timeutil.TimeAgo(en.OccurredAt, now),
		Read:         en.Read,
		Grouped:      en.IsGrouped(),
		Participants: en.Participants,
		TopicID:      en.TopicID.String(),
	}
	if en.IsGrouped() {
		dto.MemberIDs = make([]string, len(en.MemberIDs))
		for i, id := range en.MemberIDs {
			dto.MemberIDs[i] = id.String()
		}
	}
	if en.Link != nil {
		dto.Link = &LinkDTO{
			TargetKind:  en.Link.TargetKind,
			TargetID:    en.Link.TargetID,
			Title:       en.Link.Title,
			ActionLabel: en.Link.ActionLabel,
		}
	}
	if en.Session != nil {
		dto.Session = &SessionDTO{
			IsLive:    en.Session.IsLive,
			StartsAt:  en.Session.StartsAt,
			EndsAt:    en.Session.EndsAt,
			Capacity:  en.Session.Capacity,
			Occupancy: en.Session.Occupancy,
		}
	}
	if en.Duel != nil {
		dto.Duel = &DuelDTO{
			OpponentName:  en.Duel.OpponentName,
			Status:        string(en.Duel.Status),
			OwnScore:      en.Duel.OwnScore,
			OpponentScore: en.Duel.OpponentScore,
		}
	}
	if en.Blitz != nil {
		dto.Blitz = &BlitzDTO{
			Progress: feed.ClampPercent(en.Blitz.Progress),
			Reward:   en.Blitz.Reward,
			Deadline: en.Blitz.Deadline,
		}
	}
	if en.Discovery != nil {
		dto.Discovery = &DiscoveryDTO{Relevance: feed.ClampPercent(en.Discovery.Relevance)}
	}
	return dto
}
