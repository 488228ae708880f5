package algorithm

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/strategyconfig"
)

// Host is the trading engine the strategy runs inside. It owns market data,
// order routing and the fundamentals feeds.
type Host interface {
	Configure(cfg *strategyconfig.Config) error
	SetSecurityInitializer(init SecurityInitializer)
	AddUniverseSelection(coarse contracts.CoarseSelector, fine contracts.FineSelector)
	AddEquity(symbol contracts.Symbol, leverage float64) error
	SetHoldings(symbol contracts.Symbol, weight decimal.Decimal) error
	Log(message string)
	Plot(chart, series string, value float64)
}

// Security is the per-security state the initializer configures
type Security struct {
	Symbol        contracts.Symbol
	SlippageModel string
	Leverage      float64
}

// SecurityInitializer runs once for every security the host adds
type SecurityInitializer func(sec *Security)

// Slice is one time step of market data
type Slice struct {
	Time   time.Time
	Prices map[contracts.Symbol]float64
}

// Price returns the last price of symbol in the slice
func (s Slice) Price(symbol contracts.Symbol) (float64, bool) {
	p, ok := s.Prices[symbol]
	return p, ok
}

// SecurityChanges lists the universe additions and removals of one step
type SecurityChanges struct {
	Added   []contracts.Symbol
	Removed []contracts.Symbol
}
