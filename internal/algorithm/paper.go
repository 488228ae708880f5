package algorithm

import (
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/strategyconfig"
)

// Plot is one recorded chart point
type Plot struct {
	Chart  string
	Series string
	Value  float64
}

// Allocation is a target holding valued against the starting cash
type Allocation struct {
	Symbol contracts.Symbol `json:"symbol"`
	Weight decimal.Decimal  `json:"weight"`
	Value  decimal.Decimal  `json:"value"`
}

// PaperHost is an in-memory Host that records target holdings instead of
// routing orders. It drives one universe selection at a time.
// ⭐ SSOT: 주문 없이 목표 비중만 기록
type PaperHost struct {
	mu sync.Mutex

	config     *strategyconfig.Config
	cash       decimal.Decimal
	init       SecurityInitializer
	coarse     contracts.CoarseSelector
	fine       contracts.FineSelector
	securities map[contracts.Symbol]*Security
	universe   map[contracts.Symbol]bool
	holdings   map[contracts.Symbol]decimal.Decimal
	logs       []string
	plots      []Plot
}

// NewPaperHost creates an empty paper host
func NewPaperHost() *PaperHost {
	return &PaperHost{
		securities: make(map[contracts.Symbol]*Security),
		universe:   make(map[contracts.Symbol]bool),
		holdings:   make(map[contracts.Symbol]decimal.Decimal),
	}
}

// Configure stores the strategy settings and starting cash
func (h *PaperHost) Configure(cfg *strategyconfig.Config) error {
	if cfg == nil {
		return errors.New("nil strategy config")
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.config = cfg
	h.cash = cfg.Backtest.Cash
	return nil
}

// SetSecurityInitializer registers the per-security initializer
func (h *PaperHost) SetSecurityInitializer(init SecurityInitializer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.init = init
}

// AddUniverseSelection registers the coarse and fine filters
func (h *PaperHost) AddUniverseSelection(coarse contracts.CoarseSelector, fine contracts.FineSelector) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.coarse = coarse
	h.fine = fine
}

// AddEquity subscribes to symbol. An explicit leverage wins over the
// initializer.
func (h *PaperHost) AddEquity(symbol contracts.Symbol, leverage float64) error {
	if symbol == "" {
		return errors.New("empty symbol")
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	sec := h.addSecurity(symbol)
	if leverage > 0 {
		sec.Leverage = leverage
	}
	return nil
}

// SetHoldings records a target weight. A zero weight liquidates.
func (h *PaperHost) SetHoldings(symbol contracts.Symbol, weight decimal.Decimal) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.securities[symbol]; !ok {
		return errors.New("symbol not subscribed: " + string(symbol))
	}
	if weight.IsZero() {
		delete(h.holdings, symbol)
		return nil
	}
	h.holdings[symbol] = weight
	return nil
}

// Log records a message
func (h *PaperHost) Log(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logs = append(h.logs, message)
}

// Plot records a chart point
func (h *PaperHost) Plot(chart, series string, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.plots = append(h.plots, Plot{Chart: chart, Series: series, Value: value})
}

// RunSelection passes the feeds through the registered filters and returns
// the resulting universe changes. Fine records are limited to coarse
// survivors, like a live feed.
func (h *PaperHost) RunSelection(coarse []contracts.CoarseFundamental, fine []contracts.FineFundamental) (SecurityChanges, error) {
	h.mu.Lock()
	coarseFn, fineFn := h.coarse, h.fine
	h.mu.Unlock()

	if coarseFn == nil || fineFn == nil {
		return SecurityChanges{}, errors.New("no universe selection registered")
	}

	survivors := make(map[contracts.Symbol]bool)
	for _, sym := range coarseFn(coarse) {
		survivors[sym] = true
	}
	candidates := make([]contracts.FineFundamental, 0, len(survivors))
	for _, f := range fine {
		if survivors[f.Symbol] {
			candidates = append(candidates, f)
		}
	}
	selected := fineFn(candidates)

	h.mu.Lock()
	defer h.mu.Unlock()

	next := make(map[contracts.Symbol]bool, len(selected))
	var changes SecurityChanges
	for _, sym := range selected {
		next[sym] = true
		if !h.universe[sym] {
			h.addSecurity(sym)
			changes.Added = append(changes.Added, sym)
		}
	}
	for sym := range h.universe {
		if !next[sym] {
			changes.Removed = append(changes.Removed, sym)
		}
	}
	sortSymbols(changes.Added)
	sortSymbols(changes.Removed)
	h.universe = next

	return changes, nil
}

// Security returns the subscribed security
func (h *PaperHost) Security(symbol contracts.Symbol) (Security, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sec, ok := h.securities[symbol]
	if !ok {
		return Security{}, false
	}
	return *sec, true
}

// Allocations returns the current targets sorted by symbol
func (h *PaperHost) Allocations() []Allocation {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Allocation, 0, len(h.holdings))
	for sym, w := range h.holdings {
		out = append(out, Allocation{Symbol: sym, Weight: w, Value: w.Mul(h.cash)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Logs returns the recorded messages
func (h *PaperHost) Logs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.logs...)
}

// Plots returns the recorded chart points
func (h *PaperHost) Plots() []Plot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Plot(nil), h.plots...)
}

// addSecurity must be called with mu held
func (h *PaperHost) addSecurity(symbol contracts.Symbol) *Security {
	if sec, ok := h.securities[symbol]; ok {
		return sec
	}
	sec := &Security{Symbol: symbol}
	if h.init != nil {
		h.init(sec)
	}
	h.securities[symbol] = sec
	return sec
}

func sortSymbols(s []contracts.Symbol) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
