package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/expense-tracker/backend/internal/application/adapter"
)

// RetentionJob periodically deletes sent emails older than the retention window.
type RetentionJob struct {
	queue     adapter.EmailQueueRepository
	clock     adapter.Clock
	retention time.Duration
	cron      *cron.Cron
}

// NewRetentionJob schedules the cleanup with a standard cron expression or descriptor such as "@daily".
func NewRetentionJob(queue adapter.EmailQueueRepository, clock adapter.Clock, retentionDays int, schedule string) (*RetentionJob, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	j := &RetentionJob{
		queue:     queue,
		clock:     clock,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		cron:      cron.New(),
	}
	if _, err := j.cron.AddFunc(schedule, func() { j.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start runs the scheduler in its own goroutine.
func (j *RetentionJob) Start() {
	j.cron.Start()
	slog.Info("Email retention job started", "retention", j.retention)
}

// Stop halts the scheduler and waits for a running cleanup to finish.
func (j *RetentionJob) Stop() {
	<-j.cron.Stop().Done()
}

// Run deletes sent emails processed before the retention cutoff.
func (j *RetentionJob) Run(ctx context.Context) {
	cutoff := j.clock.Now().UTC().Add(-j.retention)
	deleted, err := j.queue.DeleteSentBefore(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to clean up sent emails", "error", err)
		return
	}
	slog.Info("Sent emails cleaned up", "deleted", deleted, "cutoff", cutoff)
}
