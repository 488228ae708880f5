package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fscore/pkg/logger"
)

// Pruner deletes stored selections older than a cutoff
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// RetentionJob removes old selection runs
type RetentionJob struct {
	pruner    Pruner
	retention time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

// NewRetentionJob creates a new retention job
func NewRetentionJob(pruner Pruner, retention time.Duration, log *logger.Logger) *RetentionJob {
	return &RetentionJob{
		pruner:    pruner,
		retention: retention,
		logger:    log.WithComponent("retention_job"),
		now:       time.Now,
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "selection_retention"
}

// Schedule returns the cron schedule (Sundays 3 AM)
func (j *RetentionJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Run deletes selections older than the retention window
func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)

	removed, err := j.pruner.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune selections: %w", err)
	}

	if removed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": removed,
			"cutoff":  cutoff.Format("2006-01-02"),
		}).Info("Selection retention completed")
	}

	return nil
}
