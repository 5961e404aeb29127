package feed

import (
	"fmt"
	"time"
)

// EnergyLookback is the window over which network energy is measured.
const EnergyLookback = 24 * time.Hour

// Weights and thresholds for the energy score. Score is always in [0, 100];
// the level is a pure function of the score.
const (
	energyPerActivity = 5
	energyPerSubject  = 3
	energyLiveBonus   = 20

	thresholdExplosive = 85
	thresholdHigh      = 65
	thresholdMedium    = 35
)

// EnergyLevel is the qualitative bucket for the network energy score.
type EnergyLevel string

const (
	EnergyLow       EnergyLevel = "low"
	EnergyMedium    EnergyLevel = "medium"
	EnergyHigh      EnergyLevel = "high"
	EnergyExplosive EnergyLevel = "explosive"
)

// Energy is the derived engagement snapshot over the last 24 hours.
// It is recomputed from the current event collection on every feed request
// and never cached; callers needing stability snapshot the result.
type Energy struct {
	Level          EnergyLevel `json:"level"`
	Score          int         `json:"score"`
	ActivityCount  int         `json:"activity_count"`
	ActiveSubjects int         `json:"active_subjects"`
	TrendingTopic  string      `json:"trending_topic,omitempty"`
	Narrative      string      `json:"narrative"`
	Emoji          string      `json:"emoji"`
}

// LevelForScore maps a score to its qualitative level.
func LevelForScore(score int) EnergyLevel {
	switch {
	case score >= thresholdExplosive:
		return EnergyExplosive
	case score >= thresholdHigh:
		return EnergyHigh
	case score >= thresholdMedium:
		return EnergyMedium
	default:
		return EnergyLow
	}
}

// ComputeEnergy derives the network energy from the full event collection.
// Only events inside the 24h lookback count toward activity and subjects;
// the live bonus applies if anything anywhere in the collection is live.
func ComputeEnergy(events []*Event, now time.Time) Energy {
	var (
		count     int
		subjects  = make(map[string]struct{})
		topicHits = make(map[TopicID]int)
		liveBonus int
	)

	cutoff := now.Add(-EnergyLookback)
	topicLabels := make(map[TopicID]string)

	for _, e := range events {
		if e.IsLive() {
			liveBonus = energyLiveBonus
		}
		if !e.OccurredAt.After(cutoff) {
			continue
		}
		count++
		subjects[e.Subject.ID] = struct{}{}
		if e.TopicID.IsValid() {
			topicHits[e.TopicID]++
			if _, ok := topicLabels[e.TopicID]; !ok {
				topicLabels[e.TopicID] = e.TopicLabel()
			}
		}
	}

	score := count*energyPerActivity + len(subjects)*energyPerSubject
	score = ClampPercent(score)
	score = ClampPercent(score + liveBonus)
	level := LevelForScore(score)

	m := Energy{
		Level:          level,
		Score:          score,
		ActivityCount:  count,
		ActiveSubjects: len(subjects),
	}
	if trending, ok := trendingTopic(topicHits); ok {
		m.TrendingTopic = topicLabels[trending]
	}
	m.Narrative, m.Emoji = energyNarrative(level, count, len(subjects))
	return m
}

// trendingTopic picks the topic with the most hits in the lookback window.
// Equal counts resolve to the lexicographically smallest topic ID so the
// result is deterministic across queries.
func trendingTopic(hits map[TopicID]int) (TopicID, bool) {
	var (
		best      TopicID
		bestCount int
	)
	for topic, n := range hits {
		if n > bestCount || (n == bestCount && bestCount > 0 && topic < best) {
			best = topic
			bestCount = n
		}
	}
	return best, bestCount > 0
}

func energyNarrative(level EnergyLevel, count, subjects int) (string, string) {
	switch level {
	case EnergyExplosive:
		return fmt.Sprintf("The network is on fire: %d activities from %d learners today!", count, subjects), "🔥"
	case EnergyHigh:
		return fmt.Sprintf("Lots of buzz: %d activities from %d learners and counting.", count, subjects), "⚡"
	case EnergyMedium:
		return fmt.Sprintf("A steady hum of progress: %d activities today.", count), "✨"
	default:
		return "All quiet for now. Be the spark!", "🌙"
	}
}
