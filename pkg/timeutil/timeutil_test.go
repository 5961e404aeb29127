package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeAgo_PastBuckets(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"same instant", now, "just now"},
		{"under a minute", now.Add(-59 * time.Second), "just now"},
		{"exactly one minute", now.Add(-time.Minute), "1 min ago"},
		{"forty five minutes", now.Add(-45 * time.Minute), "45 min ago"},
		{"under an hour", now.Add(-59*time.Minute - 59*time.Second), "59 min ago"},
		{"one hour", now.Add(-time.Hour), "1h ago"},
		{"twenty three hours", now.Add(-23 * time.Hour), "23h ago"},
		{"one day", now.Add(-24 * time.Hour), "1d ago"},
		{"three days", now.Add(-72 * time.Hour), "3d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeAgo(tt.t, now))
		})
	}
}

func TestTimeAgo_Future(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "in 30 min", TimeAgo(now.Add(30*time.Minute), now))
	assert.Equal(t, "in 2h", TimeAgo(now.Add(2*time.Hour), now))
	assert.Equal(t, "in 2d", TimeAgo(now.Add(48*time.Hour), now))
}

func TestWithinHorizon_Boundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	horizon := 48 * time.Hour

	assert.True(t, WithinHorizon(now.Add(-horizon), now, horizon), "exactly at the boundary is included")
	assert.False(t, WithinHorizon(now.Add(-horizon-time.Millisecond), now, horizon), "one ms past the boundary is excluded")
	assert.True(t, WithinHorizon(now.Add(horizon), now, horizon), "future boundary is included")
}

func TestWithinLast(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, WithinLast(now.Add(-23*time.Hour), now, 24*time.Hour))
	assert.False(t, WithinLast(now.Add(-24*time.Hour), now, 24*time.Hour), "open lower bound")
	assert.False(t, WithinLast(now.Add(time.Minute), now, 24*time.Hour), "future excluded")
}

func TestBucket(t *testing.T) {
	size := 2 * time.Hour
	base := time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, Bucket(base, size), Bucket(base.Add(time.Hour), size), "same 2h bucket")
	assert.NotEqual(t, Bucket(base, size), Bucket(base.Add(3*time.Hour), size), "different bucket after 3h")
	assert.Equal(t, int64(0), Bucket(base, 0), "zero size collapses to one bucket")
}
