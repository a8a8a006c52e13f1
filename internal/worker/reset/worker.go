// Package reset clears the weekly activity checkboxes on the roster.
package reset

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"github.com/tf416/rosterbot/internal/worker/core"
	"github.com/tf416/rosterbot/pkg/utils"
	"go.uber.org/zap"
)

const (
	// maxAttempts bounds retries of a failed reset within one week.
	maxAttempts = 5

	retryDelay = time.Minute
)

// Resetter unchecks every activity box on the roster.
type Resetter interface {
	ResetActivity(ctx context.Context) (int, error)
}

// Worker runs the weekly activity reset every Sunday at 00:00 UTC.
type Worker struct {
	roster   Resetter
	reporter *core.StatusReporter
	logger   *zap.Logger
	now      func() time.Time
	lastRun  time.Time
}

// New creates a new reset worker.
func New(roster Resetter, client rueidis.Client, logger *zap.Logger, instanceID string) *Worker {
	return &Worker{
		roster:   roster,
		reporter: core.NewStatusReporter(client, "reset", instanceID, logger),
		logger:   logger.Named("reset_worker"),
		now:      time.Now,
	}
}

// Start blocks until ctx is cancelled, resetting activity once a week.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Reset Worker started", zap.String("workerID", w.reporter.GetWorkerID()))

	w.reporter.Start(ctx)
	defer w.reporter.Stop()

	for {
		next := NextReset(w.now())
		w.reporter.SetSchedule(w.lastRun, next)
		w.reporter.UpdateStatus("Waiting for next reset", 0)

		w.logger.Info("Next weekly reset scheduled", zap.Time("at", next))

		if utils.ContextSleepUntil(ctx, next) == utils.SleepCancelled {
			w.logger.Info("Reset Worker stopped")
			return
		}

		if !w.runWithRetry(ctx) {
			return
		}
	}
}

// Run performs one reset and records it on the worker status.
func (w *Worker) Run(ctx context.Context) (int, error) {
	w.reporter.UpdateStatus("Resetting activity", 50)

	count, err := w.roster.ResetActivity(ctx)
	if err != nil {
		w.reporter.SetHealthy(false)
		return 0, fmt.Errorf("weekly reset failed: %w", err)
	}

	w.lastRun = w.now()
	w.reporter.SetHealthy(true)
	w.reporter.UpdateStatus("Reset completed", 100)

	w.logger.Info("Weekly reset completed", zap.Int("rows", count))

	return count, nil
}

// runWithRetry returns false if ctx was cancelled while waiting to retry.
func (w *Worker) runWithRetry(ctx context.Context) bool {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		_, err := w.Run(ctx)
		if err == nil {
			return true
		}

		w.logger.Error("Failed to reset weekly activity",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if !utils.ErrorSleep(ctx, retryDelay, w.logger, "reset worker") {
			return false
		}
	}

	w.logger.Error("Giving up on weekly reset until next week")

	return true
}

// NextReset returns the first Sunday 00:00 UTC strictly after now.
func NextReset(now time.Time) time.Time {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	next := midnight.AddDate(0, 0, (7-int(now.Weekday()))%7)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}

	return next
}
