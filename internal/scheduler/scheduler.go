// Package scheduler runs the pipeline once a day at a configured
// wall-clock time.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Daily runs task every day at the given local time ("15:04") until ctx is
// cancelled. Task errors are logged and do not stop the loop; overlapping
// runs are the run lock's problem, not the scheduler's.
func Daily(ctx context.Context, at, name string, task Task) error {
	next, err := nextRun(time.Now(), at)
	if err != nil {
		return fmt.Errorf("parse run time %q: %w", at, err)
	}

	for {
		log.Printf("[%s] next run at %s", name, next.Format("2006-01-02 15:04"))
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
		}
		next, _ = nextRun(time.Now(), at)
	}
}

// nextRun returns the next occurrence of the "15:04" wall-clock time after
// now, today or tomorrow, in now's location.
func nextRun(now time.Time, at string) (time.Time, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return time.Time{}, err
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
