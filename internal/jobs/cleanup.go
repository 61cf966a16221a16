// Package jobs provides background job implementations for the briefing service.
package jobs

import (
	"context"
	"log/slog"
	"time"
)

// DefaultCleanupInterval is the default interval for running the analytics
// retention job.
const DefaultCleanupInterval = 1 * time.Hour

// RecordCleaner deletes analytics events older than a retention window.
type RecordCleaner interface {
	CleanupOldRecords(ctx context.Context, retentionDays int) (int64, error)
}

// CleanupJob periodically prunes expired analytics events so the events
// table doesn't grow without bound.
type CleanupJob struct {
	cleaner       RecordCleaner
	retentionDays int
	logger        *slog.Logger
}

// NewCleanupJob creates a new analytics cleanup job with the given retention
// window in days.
func NewCleanupJob(cleaner RecordCleaner, retentionDays int, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{cleaner: cleaner, retentionDays: retentionDays, logger: logger}
}

// RunOnce prunes expired analytics events once. Returns the number deleted.
func (j *CleanupJob) RunOnce(ctx context.Context) (int64, error) {
	return j.cleaner.CleanupOldRecords(ctx, j.retentionDays)
}

// RunScheduled runs the cleanup job immediately, then on a fixed interval,
// until ctx is cancelled.
func (j *CleanupJob) RunScheduled(ctx context.Context, interval time.Duration) {
	j.runCleanup(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("analytics cleanup job stopped")
			return
		case <-ticker.C:
			j.runCleanup(ctx)
		}
	}
}

func (j *CleanupJob) runCleanup(ctx context.Context) {
	deleted, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("analytics cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		j.logger.Info("analytics cleanup complete", "deleted", deleted)
	}
}
