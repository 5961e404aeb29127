package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithinWindow_Boundary(t *testing.T) {
	e := peerEvent("e1", "topic-go", ActionCompleted, testNow.Add(-DefaultHorizon))
	assert.True(t, WithinWindow(e, testNow, DefaultHorizon), "exactly 48h old is included")

	e.OccurredAt = testNow.Add(-DefaultHorizon - time.Millisecond)
	assert.False(t, WithinWindow(e, testNow, DefaultHorizon), "48h+1ms old is excluded")
}

func TestWithinWindow_FutureNonSessionExcluded(t *testing.T) {
	e := peerEvent("e1", "topic-go", ActionCompleted, testNow.Add(time.Minute))
	assert.False(t, WithinWindow(e, testNow, DefaultHorizon), "future-dated peer events are filtered out, not surfaced")
}

func TestWithinWindow_FutureSessionRetained(t *testing.T) {
	e := sessionEvent("s1", testNow.Add(5*time.Hour), false)
	assert.True(t, WithinWindow(e, testNow, DefaultHorizon), "upcoming sessions inside the horizon stay visible")

	e.OccurredAt = testNow.Add(DefaultHorizon + time.Hour)
	assert.False(t, WithinWindow(e, testNow, DefaultHorizon), "sessions beyond the horizon are dropped")
}

func TestFilterWindow_PreservesOrder(t *testing.T) {
	in := []*Event{
		peerEvent("a", "t", ActionGeneral, testNow.Add(-time.Hour)),
		peerEvent("b", "t", ActionGeneral, testNow.Add(-3*24*time.Hour)), // too old
		peerEvent("c", "t", ActionGeneral, testNow.Add(-2*time.Hour)),
	}

	out := FilterWindow(in, testNow, DefaultHorizon)

	assert.Len(t, out, 2)
	assert.Equal(t, EventID("a"), out[0].ID)
	assert.Equal(t, EventID("c"), out[1].ID)
	assert.Len(t, in, 3, "input slice untouched")
}
