package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContextualMessage_NilContext(t *testing.T) {
	msg, ok := ContextualMessage(nil, nil)
	assert.False(t, ok)
	assert.Empty(t, msg)
}

func TestContextualMessage_TopicWithActivity(t *testing.T) {
	events := []*Event{peerEvent("a", "topic-gauss", ActionCompleted, testNow.Add(-time.Hour))}
	vc := &ViewerContext{CurrentTopic: "topic-gauss"}

	msg, ok := ContextualMessage(events, vc)

	assert.True(t, ok)
	assert.Contains(t, msg, "also exploring")
	assert.Contains(t, msg, "topic-gauss")
}

func TestContextualMessage_TopicUsesLinkTitle(t *testing.T) {
	e := peerEvent("a", "topic-gauss", ActionCompleted, testNow.Add(-time.Hour))
	e.Link = &Link{Title: "Gaussian Elimination"}
	vc := &ViewerContext{CurrentTopic: "topic-gauss"}

	msg, ok := ContextualMessage([]*Event{e}, vc)

	assert.True(t, ok)
	assert.Contains(t, msg, "Gaussian Elimination")
}

func TestContextualMessage_Pioneer(t *testing.T) {
	events := []*Event{peerEvent("a", "other-topic", ActionCompleted, testNow.Add(-time.Hour))}
	vc := &ViewerContext{CurrentTopic: "topic-lonely"}

	msg, ok := ContextualMessage(events, vc)

	assert.True(t, ok)
	assert.Contains(t, msg, "pioneer")
	assert.Contains(t, msg, "topic-lonely")
}

func TestContextualMessage_TopicBeatsCompletions(t *testing.T) {
	// First match wins: a current topic takes precedence over completions.
	vc := &ViewerContext{
		CurrentTopic:      "topic-go",
		RecentlyCompleted: []string{"Recursion"},
		StreakDays:        10,
	}

	msg, ok := ContextualMessage(nil, vc)

	assert.True(t, ok)
	assert.Contains(t, msg, "pioneer")
}

func TestContextualMessage_RecentCompletion(t *testing.T) {
	vc := &ViewerContext{RecentlyCompleted: []string{"Recursion", "Graphs"}}

	msg, ok := ContextualMessage(nil, vc)

	assert.True(t, ok)
	assert.Contains(t, msg, "Congrats")
	assert.Contains(t, msg, "Recursion")
}

func TestContextualMessage_Streak(t *testing.T) {
	msg, ok := ContextualMessage(nil, &ViewerContext{StreakDays: 7})
	assert.True(t, ok)
	assert.Contains(t, msg, "7 days")

	// A streak of 3 or less is not worth a headline.
	_, ok = ContextualMessage(nil, &ViewerContext{StreakDays: 3})
	assert.False(t, ok)
}

func TestContextualMessage_NothingApplies(t *testing.T) {
	msg, ok := ContextualMessage(nil, &ViewerContext{})
	assert.False(t, ok, "absence, not an empty string")
	assert.Empty(t, msg)
}
