package universe

import (
	"context"
	"fmt"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/pkg/logger"
	"github.com/wonny/fscore/pkg/redis"
)

const latestKey = "universe:latest"

// Publisher writes the newest selection to Redis so that the portfolio side
// can read the target universe without touching Postgres
type Publisher struct {
	store  *redis.Store
	logger *logger.Logger
}

// NewPublisher creates a new publisher
func NewPublisher(store *redis.Store, log *logger.Logger) *Publisher {
	return &Publisher{store: store, logger: log}
}

// Publish stores selection under the latest key and under its date key
func (p *Publisher) Publish(ctx context.Context, selection *contracts.Selection) error {
	dateKey := fmt.Sprintf("universe:%s", selection.Date.Format("2006-01-02"))

	for _, key := range []string{latestKey, dateKey} {
		if err := p.store.SetJSON(ctx, key, selection, 0); err != nil {
			return fmt.Errorf("publish %s: %w", key, err)
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"run_id":   selection.RunID.String(),
		"selected": selection.Count(),
	}).Debug("Selection published")

	return nil
}

// Latest reads the last published selection. found is false when nothing
// has been published or Redis is disabled.
func (p *Publisher) Latest(ctx context.Context) (*contracts.Selection, bool, error) {
	var s contracts.Selection
	found, err := p.store.GetJSON(ctx, latestKey, &s)
	if err != nil || !found {
		return nil, false, err
	}
	return &s, true, nil
}
