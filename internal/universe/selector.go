package universe

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/fscore"
	"github.com/wonny/fscore/internal/metrics"
	"github.com/wonny/fscore/pkg/logger"
)

const (
	// DefaultThreshold is the minimum F-Score a symbol needs to be selected
	DefaultThreshold = 7
	// DefaultMinPrice excludes penny stocks in the coarse stage
	DefaultMinPrice = 1.0
)

// Config holds selection criteria
type Config struct {
	Threshold int     // 0-9
	MinPrice  float64 // coarse stage: price must be strictly above
}

// DefaultConfig returns the standard criteria (F-Score >= 7, price > $1)
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, MinPrice: DefaultMinPrice}
}

// Selector narrows the tradable universe with a coarse screen followed by
// an F-Score screen
// ⭐ SSOT: 유니버스 선정은 여기서만
type Selector struct {
	config  Config
	logger  *logger.Logger
	metrics *metrics.Registry
	now     func() time.Time
}

// NewSelector creates a new selector. metrics may be nil.
func NewSelector(cfg Config, log *logger.Logger, m *metrics.Registry) (*Selector, error) {
	if cfg.Threshold < 0 || cfg.Threshold > fscore.MaxScore {
		return nil, fmt.Errorf("threshold must be in [0, %d], got %d", fscore.MaxScore, cfg.Threshold)
	}
	if cfg.MinPrice < 0 {
		return nil, fmt.Errorf("min price must be >= 0, got %v", cfg.MinPrice)
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Selector{
		config:  cfg,
		logger:  log.WithComponent("universe"),
		metrics: m,
		now:     time.Now,
	}, nil
}

// Threshold returns the configured minimum F-Score
func (s *Selector) Threshold() int {
	return s.config.Threshold
}

// Callbacks returns the coarse and fine filters for registration with a host
func (s *Selector) Callbacks() (contracts.CoarseSelector, contracts.FineSelector) {
	return s.SelectCoarse, s.SelectFine
}

// SelectCoarse keeps symbols that have fundamental data and trade above the
// minimum price. Input order is preserved and duplicates are dropped.
func (s *Selector) SelectCoarse(coarse []contracts.CoarseFundamental) []contracts.Symbol {
	seen := make(map[contracts.Symbol]struct{}, len(coarse))
	selected := make([]contracts.Symbol, 0, len(coarse))

	for _, c := range coarse {
		if !c.HasFundamentalData || !(c.Price > s.config.MinPrice) {
			continue
		}
		if _, dup := seen[c.Symbol]; dup {
			continue
		}
		seen[c.Symbol] = struct{}{}
		selected = append(selected, c.Symbol)
	}

	if s.metrics != nil {
		s.metrics.CoarseInput.Set(float64(len(coarse)))
		s.metrics.CoarseSurvivors.Set(float64(len(selected)))
	}

	s.logger.WithFields(map[string]interface{}{
		"input":    len(coarse),
		"selected": len(selected),
	}).Debug("Coarse selection completed")

	return selected
}

// SelectFine returns the symbols whose F-Score reaches the threshold,
// sorted by symbol
func (s *Selector) SelectFine(fine []contracts.FineFundamental) []contracts.Symbol {
	symbols, _ := s.scoreFine(fine)
	return symbols
}

// scoreFine scores every record. When a symbol appears twice the last
// record wins.
func (s *Selector) scoreFine(fine []contracts.FineFundamental) ([]contracts.Symbol, map[contracts.Symbol]int) {
	scores := make(map[contracts.Symbol]int, len(fine))

	for i := range fine {
		f := &fine[i]
		score := fscore.Score(f)
		scores[f.Symbol] = score

		if s.metrics != nil {
			s.metrics.ScoreDistribution.Observe(float64(score))
		}
	}

	selected := make(map[contracts.Symbol]int)
	symbols := make([]contracts.Symbol, 0)
	for symbol, score := range scores {
		if score >= s.config.Threshold {
			selected[symbol] = score
			symbols = append(symbols, symbol)
		}
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })

	// 중복 제거 후 최종 선정 종목만 기록
	for _, symbol := range symbols {
		s.logger.WithFields(map[string]interface{}{
			"symbol": string(symbol),
			"fscore": selected[symbol],
		}).Info("Stock passed F-Score threshold")
	}

	if s.metrics != nil {
		s.metrics.FineScored.Set(float64(len(scores)))
		s.metrics.Selected.Set(float64(len(symbols)))
	}

	return symbols, selected
}

// Select runs a full coarse → fine cycle against source for date
func (s *Selector) Select(ctx context.Context, source contracts.FundamentalsSource, date time.Time) (_ *contracts.Selection, err error) {
	started := s.now()
	if s.metrics != nil {
		defer func() { s.metrics.ObserveRun(started, err) }()
	}

	coarse, err := source.Coarse(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load coarse fundamentals: %w", err)
	}
	survivors := s.SelectCoarse(coarse)

	var fine []contracts.FineFundamental
	if len(survivors) > 0 {
		fine, err = source.Fine(ctx, date, survivors)
		if err != nil {
			return nil, fmt.Errorf("load fine fundamentals: %w", err)
		}
	}

	symbols, scores := s.scoreFine(fine)

	selection := &contracts.Selection{
		RunID:       uuid.New(),
		Date:        date,
		Threshold:   s.config.Threshold,
		CoarseCount: len(survivors),
		ScoredCount: len(fine),
		Symbols:     symbols,
		Scores:      scores,
		CreatedAt:   s.now(),
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":    selection.RunID.String(),
		"date":      date.Format("2006-01-02"),
		"coarse":    len(coarse),
		"survivors": len(survivors),
		"scored":    len(fine),
		"selected":  len(symbols),
		"threshold": s.config.Threshold,
	}).Info("Universe selection completed")

	return selection, nil
}
