package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/universe"
	"github.com/wonny/fscore/pkg/logger"
)

// SelectionJob runs the coarse → fine selection and hands the result to
// the store and publisher
// ⭐ SSOT: 유니버스 선정 스케줄은 이 Job에서만
type SelectionJob struct {
	selector  *universe.Selector
	source    contracts.FundamentalsSource
	store     contracts.SelectionStore     // optional
	publisher contracts.SelectionPublisher // optional
	schedule  string
	loc       *time.Location
	logger    *logger.Logger
	now       func() time.Time
}

// NewSelectionJob creates a new selection job. store and publisher may be nil.
func NewSelectionJob(
	selector *universe.Selector,
	source contracts.FundamentalsSource,
	store contracts.SelectionStore,
	publisher contracts.SelectionPublisher,
	schedule string,
	loc *time.Location,
	log *logger.Logger,
) *SelectionJob {
	if loc == nil {
		loc = time.Local
	}
	return &SelectionJob{
		selector:  selector,
		source:    source,
		store:     store,
		publisher: publisher,
		schedule:  schedule,
		loc:       loc,
		logger:    log.WithComponent("selection_job"),
		now:       time.Now,
	}
}

// Name returns the job name
func (j *SelectionJob) Name() string {
	return "universe_selection"
}

// Schedule returns the cron schedule
func (j *SelectionJob) Schedule() string {
	return j.schedule
}

// Run selects the universe for today's trading date
func (j *SelectionJob) Run(ctx context.Context) error {
	_, err := j.RunFor(ctx, TradingDate(j.now(), j.loc))
	return err
}

// RunFor selects the universe for date
func (j *SelectionJob) RunFor(ctx context.Context, date time.Time) (*contracts.Selection, error) {
	j.logger.WithField("date", date.Format("2006-01-02")).Info("Starting scheduled universe selection")

	selection, err := j.selector.Select(ctx, j.source, date)
	if err != nil {
		return nil, fmt.Errorf("select universe: %w", err)
	}

	if j.store != nil {
		if err := j.store.Save(ctx, selection); err != nil {
			return nil, fmt.Errorf("save selection: %w", err)
		}
	}

	if j.publisher != nil {
		// 발행 실패는 저장된 결과에 영향 없음
		if err := j.publisher.Publish(ctx, selection); err != nil {
			j.logger.WithError(err).Warn("Failed to publish selection")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   selection.RunID.String(),
		"selected": selection.Count(),
	}).Info("Universe selection stored")

	return selection, nil
}

// TradingDate returns the calendar date of t in loc as midnight UTC
func TradingDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
