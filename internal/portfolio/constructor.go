package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/pkg/logger"
)

// Weighting modes
const (
	SectorWeighting = "sector_weighting"
	EqualWeighting  = "equal_weighting"
)

// UnknownSector groups symbols without a reported sector
const UnknownSector = "Unknown"

// Target is the desired portfolio weight of one symbol
type Target struct {
	Symbol contracts.Symbol
	Weight decimal.Decimal
}

// Constructor turns the selected universe into equity target weights
// ⭐ SSOT: 포트폴리오 비중 계산은 여기서만
type Constructor struct {
	mode   string
	budget decimal.Decimal
	logger *logger.Logger
}

// NewConstructor creates a new portfolio constructor. budget is the share
// of the portfolio available to equities (1 - hedge weights).
func NewConstructor(mode string, budget decimal.Decimal, log *logger.Logger) *Constructor {
	if log == nil {
		log = logger.Nop()
	}
	return &Constructor{
		mode:   mode,
		budget: budget,
		logger: log.WithComponent("portfolio"),
	}
}

// Construct returns target weights sorted by symbol
func (c *Constructor) Construct(selected []contracts.Symbol, sectors map[contracts.Symbol]string) []Target {
	var weights map[contracts.Symbol]decimal.Decimal
	switch c.mode {
	case EqualWeighting:
		weights = EqualWeights(selected, c.budget)
	default:
		weights = SectorWeights(selected, sectors, c.budget)
	}

	targets := make([]Target, 0, len(weights))
	total := decimal.Zero
	for sym, w := range weights {
		targets = append(targets, Target{Symbol: sym, Weight: w})
		total = total.Add(w)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Symbol < targets[j].Symbol })

	c.logger.WithFields(map[string]interface{}{
		"mode":         c.mode,
		"positions":    len(targets),
		"total_weight": total.StringFixed(4),
	}).Info("Portfolio constructed")

	return targets
}

// SectorWeights splits budget equally across sectors, then equally across
// the symbols of each sector. Duplicate symbols count once.
func SectorWeights(selected []contracts.Symbol, sectors map[contracts.Symbol]string, budget decimal.Decimal) map[contracts.Symbol]decimal.Decimal {
	bySector := make(map[string][]contracts.Symbol)
	seen := make(map[contracts.Symbol]bool, len(selected))
	for _, sym := range selected {
		if seen[sym] {
			continue
		}
		seen[sym] = true

		sector := sectors[sym]
		if sector == "" {
			sector = UnknownSector
		}
		bySector[sector] = append(bySector[sector], sym)
	}

	weights := make(map[contracts.Symbol]decimal.Decimal, len(seen))
	if len(bySector) == 0 || !budget.IsPositive() {
		return weights
	}

	perSector := budget.Div(decimal.NewFromInt(int64(len(bySector))))
	for _, members := range bySector {
		each := perSector.Div(decimal.NewFromInt(int64(len(members))))
		for _, sym := range members {
			weights[sym] = each
		}
	}
	return weights
}

// EqualWeights gives every distinct symbol the same share of budget
func EqualWeights(selected []contracts.Symbol, budget decimal.Decimal) map[contracts.Symbol]decimal.Decimal {
	distinct := make(map[contracts.Symbol]bool, len(selected))
	for _, sym := range selected {
		distinct[sym] = true
	}

	weights := make(map[contracts.Symbol]decimal.Decimal, len(distinct))
	if len(distinct) == 0 || !budget.IsPositive() {
		return weights
	}

	each := budget.Div(decimal.NewFromInt(int64(len(distinct))))
	for sym := range distinct {
		weights[sym] = each
	}
	return weights
}
