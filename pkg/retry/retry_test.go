package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAfterFailures(t *testing.T) {
	r := New(Config{MaxAttempts: 3, InitialDelay: time.Millisecond, JitterFactor: 0})

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	r := New(Config{MaxAttempts: 2, InitialDelay: time.Millisecond, JitterFactor: 0})

	calls := 0
	sentinel := errors.New("still failing")
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	r := New(Config{MaxAttempts: 5, InitialDelay: time.Millisecond})

	calls := 0
	inner := errors.New("bad payload")
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(inner)
	})

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancellation(t *testing.T) {
	r := New(Config{MaxAttempts: 10, InitialDelay: 50 * time.Millisecond, JitterFactor: 0})
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := r.Do(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2)
}
