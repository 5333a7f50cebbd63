package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunLaterToday(t *testing.T) {
	now := time.Date(2026, 8, 23, 8, 0, 0, 0, time.UTC)
	next, err := nextRun(now, "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC), next)
}

func TestNextRunRollsToTomorrow(t *testing.T) {
	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	next, err := nextRun(now, "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC), next)

	// Exactly-now schedules tomorrow, not an immediate run.
	next, err = nextRun(time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC), "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC), next)
}

func TestNextRunBadFormat(t *testing.T) {
	_, err := nextRun(time.Now(), "9.30am")
	require.Error(t, err)
}

func TestDailyRejectsBadTime(t *testing.T) {
	err := Daily(context.Background(), "later", "run", func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestDailyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Daily(ctx, "09:30", "run", func(context.Context) error {
		t.Fatal("task should not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
