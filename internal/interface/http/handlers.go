package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pulsepath/social-feed-service/internal/application/command"
	"github.com/pulsepath/social-feed-service/internal/application/query"
	"github.com/pulsepath/social-feed-service/internal/domain/feed"
	"github.com/pulsepath/social-feed-service/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "PulsePath Social Feed API",
		"version":     "v1",
		"description": "Activity feed aggregation for the PulsePath learning network",
		"endpoints": map[string]string{
			"health":   "/health",
			"feed":     "/api/v1/feed",
			"ingest":   "/api/v1/feed/events",
			"read":     "/api/v1/feed/events/{id}/read",
			"read_all": "/api/v1/feed/read-all",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
// Ready means every configured backing dependency answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	for _, p := range s.deps.Pingers {
		if err := p.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// FEED HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetFeed handles GET /api/v1/feed.
//
// Query parameters carry the viewer's optional context:
//   - current_topic: topic the viewer is studying right now
//   - recently_completed: comma-separated display titles
//   - streak_days: current daily streak length
func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetFeedHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Feed handler not configured")
		return
	}

	q := query.GetFeedQuery{
		Context:     viewerContextFromQuery(r),
		Horizon:     s.deps.FeedHorizon,
		GroupBucket: s.deps.FeedGroupBucket,
	}

	result, err := s.deps.GetFeedHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to assemble feed", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to assemble feed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// viewerContextFromQuery builds the optional viewer context from query
// parameters. Returns nil when no context parameter is present.
func viewerContextFromQuery(r *http.Request) *feed.ViewerContext {
	values := r.URL.Query()

	topic := values.Get("current_topic")
	completedRaw := values.Get("recently_completed")
	streak := getQueryParamInt(r, "streak_days", 0)

	if topic == "" && completedRaw == "" && streak == 0 {
		return nil
	}

	var completed []string
	for _, c := range strings.Split(completedRaw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			completed = append(completed, c)
		}
	}

	return &feed.ViewerContext{
		CurrentTopic:      feed.TopicID(topic),
		RecentlyCompleted: completed,
		StreakDays:        streak,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Ingest
// ─────────────────────────────────────────────────────────────────────────────

// publishEventRequest is the ingest payload.
type publishEventRequest struct {
	Category      string     `json:"category"`
	SubjectID     string     `json:"subject_id"`
	SubjectName   string     `json:"subject_name"`
	SubjectAvatar string     `json:"subject_avatar,omitempty"`
	Narrative     string     `json:"narrative"`
	TopicID       string     `json:"topic_id,omitempty"`
	Action        string     `json:"action,omitempty"`
	OccurredAt    *time.Time `json:"occurred_at,omitempty"`

	Link      *LinkDTO      `json:"link,omitempty"`
	Session   *SessionDTO   `json:"session,omitempty"`
	Duel      *DuelDTO      `json:"duel,omitempty"`
	Blitz     *BlitzDTO     `json:"blitz,omitempty"`
	Discovery *DiscoveryDTO `json:"discovery,omitempty"`
}

// LinkDTO is the wire form of a navigation pointer.
type LinkDTO struct {
	TargetKind  string `json:"target_kind"`
	TargetID    string `json:"target_id"`
	Title       string `json:"title,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`
}

// SessionDTO is the wire form of mentor-session attributes.
type SessionDTO struct {
	IsLive    bool      `json:"is_live"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Capacity  int       `json:"capacity"`
	Occupancy int       `json:"occupancy"`
}

// DuelDTO is the wire form of duel attributes.
type DuelDTO struct {
	OpponentName  string `json:"opponent_name"`
	Status        string `json:"status"`
	OwnScore      int    `json:"own_score"`
	OpponentScore int    `json:"opponent_score"`
}

// BlitzDTO is the wire form of blitz attributes.
type BlitzDTO struct {
	Progress int       `json:"progress"`
	Reward   string    `json:"reward,omitempty"`
	Deadline time.Time `json:"deadline"`
}

// DiscoveryDTO is the wire form of discovery attributes.
type DiscoveryDTO struct {
	Relevance int `json:"relevance"`
}

// handlePublishEvent handles POST /api/v1/feed/events.
func (s *Server) handlePublishEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.PublishEventHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Publish handler not configured")
		return
	}

	body := io.LimitReader(r.Body, s.config.MaxBodyBytes)
	var req publishEventRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	cmd := command.PublishEventCommand{
		Category:      feed.Category(req.Category),
		SubjectID:     req.SubjectID,
		SubjectName:   req.SubjectName,
		SubjectAvatar: req.SubjectAvatar,
		Narrative:     req.Narrative,
		TopicID:       req.TopicID,
		Action:        feed.ActionClass(req.Action),
	}
	if req.OccurredAt != nil {
		cmd.OccurredAt = *req.OccurredAt
	}
	if req.Link != nil {
		cmd.Link = &feed.Link{
			TargetKind:  req.Link.TargetKind,
			TargetID:    req.Link.TargetID,
			Title:       req.Link.Title,
			ActionLabel: req.Link.ActionLabel,
		}
	}
	if req.Session != nil {
		cmd.Session = &feed.SessionInfo{
			IsLive:    req.Session.IsLive,
			StartsAt:  req.Session.StartsAt,
			EndsAt:    req.Session.EndsAt,
			Capacity:  req.Session.Capacity,
			Occupancy: req.Session.Occupancy,
		}
	}
	if req.Duel != nil {
		cmd.Duel = &feed.DuelInfo{
			OpponentName:  req.Duel.OpponentName,
			Status:        feed.DuelStatus(req.Duel.Status),
			OwnScore:      req.Duel.OwnScore,
			OpponentScore: req.Duel.OpponentScore,
		}
	}
	if req.Blitz != nil {
		cmd.Blitz = &feed.BlitzInfo{
			Progress: req.Blitz.Progress,
			Reward:   req.Blitz.Reward,
			Deadline: req.Blitz.Deadline,
		}
	}
	if req.Discovery != nil {
		cmd.Discovery = &feed.DiscoveryInfo{
			Relevance: req.Discovery.Relevance,
		}
	}

	id, err := s.deps.PublishEventHandler.Handle(r.Context(), cmd)
	if err != nil {
		if isValidationError(err) {
			writeJSONError(w, http.StatusBadRequest, "invalid_event", err.Error())
			return
		}
		s.logger.Error("failed to publish event", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to publish event")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// isValidationError reports whether the error is the producer's fault.
func isValidationError(err error) bool {
	switch {
	case errors.Is(err, command.ErrMissingCategory),
		errors.Is(err, command.ErrMissingSubject),
		errors.Is(err, command.ErrMissingNarrative),
		errors.Is(err, feed.ErrInvalidCategory),
		errors.Is(err, feed.ErrInvalidSubject),
		errors.Is(err, feed.ErrEmptyNarrative),
		errors.Is(err, feed.ErrFutureTimestamp),
		errors.Is(err, feed.ErrInvalidOccupancy):
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Read state
// ─────────────────────────────────────────────────────────────────────────────

// handleMarkEventRead handles POST /api/v1/feed/events/{id}/read.
// Unknown IDs succeed: the operation is an idempotent no-op.
func (s *Server) handleMarkEventRead(w http.ResponseWriter, r *http.Request) {
	if s.deps.MarkEventReadHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Mark-read handler not configured")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Event ID is required")
		return
	}

	err := s.deps.MarkEventReadHandler.Handle(r.Context(), command.MarkEventReadCommand{ID: feed.EventID(id)})
	if err != nil {
		s.logger.Error("failed to mark event read", logger.Err(err), logger.EventID(id))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to mark event read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// handleMarkAllRead handles POST /api/v1/feed/read-all.
func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if s.deps.MarkAllReadHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Mark-all-read handler not configured")
		return
	}

	if err := s.deps.MarkAllReadHandler.Handle(r.Context()); err != nil {
		s.logger.Error("failed to mark all read", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to mark all read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
