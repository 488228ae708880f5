package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/universe"
	"github.com/wonny/fscore/pkg/logger"
)

type staticSource struct {
	coarse []contracts.CoarseFundamental
	fine   []contracts.FineFundamental
	dates  []time.Time
}

func (s *staticSource) Coarse(_ context.Context, date time.Time) ([]contracts.CoarseFundamental, error) {
	s.dates = append(s.dates, date)
	return s.coarse, nil
}

func (s *staticSource) Fine(_ context.Context, _ time.Time, _ []contracts.Symbol) ([]contracts.FineFundamental, error) {
	return s.fine, nil
}

type memoryStore struct {
	saved []*contracts.Selection
	err   error
}

func (m *memoryStore) Save(_ context.Context, s *contracts.Selection) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, s)
	return nil
}

func (m *memoryStore) Latest(_ context.Context) (*contracts.Selection, error) {
	if len(m.saved) == 0 {
		return nil, universe.ErrNoSelection
	}
	return m.saved[len(m.saved)-1], nil
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, *contracts.Selection) error {
	p.calls++
	return errors.New("redis down")
}

func strong(symbol contracts.Symbol) contracts.FineFundamental {
	return contracts.FineFundamental{
		Symbol:                  symbol,
		ROA:                     contracts.P(0.05, 0.02),
		OperatingCashFlow:       contracts.Period{Current: contracts.Some(100)},
		TotalAssets:             contracts.Period{Current: contracts.Some(1000)},
		LongTermDebtEquityRatio: contracts.P(0.3, 0.5),
		CurrentRatio:            contracts.P(1.8, 1.5),
		SharesIssued:            contracts.P(10, 10),
		GrossMargin:             contracts.P(0.42, 0.40),
		AssetsTurnover:          contracts.P(0.9, 0.8),
	}
}

func newJob(t *testing.T, store contracts.SelectionStore, pub contracts.SelectionPublisher) (*SelectionJob, *staticSource) {
	t.Helper()
	sel, err := universe.NewSelector(universe.DefaultConfig(), logger.Nop(), nil)
	require.NoError(t, err)

	src := &staticSource{
		coarse: []contracts.CoarseFundamental{{Symbol: "KO", Price: 60, HasFundamentalData: true}},
		fine:   []contracts.FineFundamental{strong("KO")},
	}
	ny := time.FixedZone("EDT", -4*3600)

	return NewSelectionJob(sel, src, store, pub, "0 0 9 * * 1-5", ny, logger.Nop()), src
}

func TestSelectionJob_Run(t *testing.T) {
	store := &memoryStore{}
	pub := &failingPublisher{}
	job, src := newJob(t, store, pub)
	// 02:00 UTC is still the previous day in New York
	job.now = func() time.Time { return time.Date(2024, 10, 19, 2, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, store.saved, 1)
	assert.Equal(t, []contracts.Symbol{"KO"}, store.saved[0].Symbols)
	assert.Equal(t, 1, pub.calls, "publish errors are logged, not returned")
	require.Len(t, src.dates, 1)
	assert.Equal(t, time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC), src.dates[0])

	assert.Equal(t, "universe_selection", job.Name())
	assert.Equal(t, "0 0 9 * * 1-5", job.Schedule())
}

func TestSelectionJob_StoreError(t *testing.T) {
	job, _ := newJob(t, &memoryStore{err: errors.New("db down")}, nil)

	_, err := job.RunFor(context.Background(), time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC))
	assert.ErrorContains(t, err, "db down")
}

func TestSelectionJob_NoStore(t *testing.T) {
	job, _ := newJob(t, nil, nil)

	sel, err := job.RunFor(context.Background(), time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, sel.Contains("KO"))
}

type fakePruner struct {
	before time.Time
	n      int64
	err    error
}

func (p *fakePruner) Prune(_ context.Context, before time.Time) (int64, error) {
	p.before = before
	return p.n, p.err
}

func TestRetentionJob(t *testing.T) {
	p := &fakePruner{n: 4}
	job := NewRetentionJob(p, 30*24*time.Hour, logger.Nop())
	now := time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), p.before)

	p.err = errors.New("boom")
	assert.Error(t, job.Run(context.Background()))
}

func TestTradingDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	got := TradingDate(time.Date(2024, 10, 18, 20, 0, 0, 0, time.UTC), tokyo)
	assert.Equal(t, time.Date(2024, 10, 19, 0, 0, 0, 0, time.UTC), got)
}
