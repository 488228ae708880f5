package algorithm

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/fscore"
	"github.com/wonny/fscore/internal/portfolio"
	"github.com/wonny/fscore/internal/strategyconfig"
	"github.com/wonny/fscore/internal/universe"
	"github.com/wonny/fscore/pkg/logger"
)

// BenchmarkSymbol gates OnData and is plotted as the benchmark
const BenchmarkSymbol contracts.Symbol = "SPY"

// ErrNotInitialized is returned by event handlers called before Initialize
var ErrNotInitialized = errors.New("algorithm not initialized")

// Algorithm wires the F-Score universe, the fixed hedges and the equity
// portfolio into a Host
type Algorithm struct {
	config      *strategyconfig.Config
	selector    *universe.Selector
	constructor *portfolio.Constructor
	logger      *logger.Logger

	host Host

	mu      sync.Mutex
	sectors map[contracts.Symbol]string
	active  map[contracts.Symbol]bool
}

// New creates the algorithm from a validated strategy config
func New(cfg *strategyconfig.Config, selector *universe.Selector, log *logger.Logger) *Algorithm {
	if log == nil {
		log = logger.Nop()
	}
	return &Algorithm{
		config:      cfg,
		selector:    selector,
		constructor: portfolio.NewConstructor(cfg.Portfolio.Construction, cfg.EquityBudget(), log),
		logger:      log.WithComponent("algorithm"),
		sectors:     make(map[contracts.Symbol]string),
		active:      make(map[contracts.Symbol]bool),
	}
}

// Initialize configures the host: settings, security initializer, universe
// selection callbacks and the hedge instruments
func (a *Algorithm) Initialize(host Host) error {
	a.host = host

	if err := host.Configure(a.config); err != nil {
		return fmt.Errorf("configure host: %w", err)
	}

	host.SetSecurityInitializer(a.initializeSecurity)

	coarse, fine := a.selector.Callbacks()
	host.AddUniverseSelection(coarse, a.recordSectors(fine))

	for _, h := range a.config.Hedges {
		if err := host.AddEquity(contracts.Symbol(h.Symbol), h.Leverage); err != nil {
			return fmt.Errorf("add hedge %s: %w", h.Symbol, err)
		}
	}
	if err := a.setHedges(); err != nil {
		return err
	}

	a.logger.WithFields(map[string]interface{}{
		"strategy_id": a.config.Meta.StrategyID,
		"threshold":   a.selector.Threshold(),
		"hedges":      len(a.config.Hedges),
		"budget":      a.config.EquityBudget().String(),
	}).Info("Algorithm initialized")

	return nil
}

// OnData re-applies the hedge weights and plots the benchmark. Slices
// without a benchmark price are ignored.
func (a *Algorithm) OnData(slice Slice) error {
	if a.host == nil {
		return ErrNotInitialized
	}
	price, ok := slice.Price(BenchmarkSymbol)
	if !ok {
		return nil
	}

	if err := a.setHedges(); err != nil {
		return err
	}

	a.host.Plot("Benchmark", string(BenchmarkSymbol), price)
	return nil
}

// OnSecuritiesChanged logs the change, liquidates removed symbols and
// rebalances the equity sleeve over the active universe
func (a *Algorithm) OnSecuritiesChanged(changes SecurityChanges) error {
	if a.host == nil {
		return ErrNotInitialized
	}
	a.host.Log(fmt.Sprintf("Securities changed: added=%v removed=%v", changes.Added, changes.Removed))
	a.logger.WithFields(map[string]interface{}{
		"added":   len(changes.Added),
		"removed": len(changes.Removed),
	}).Info("Securities changed")

	a.mu.Lock()
	for _, sym := range changes.Removed {
		delete(a.active, sym)
	}
	for _, sym := range changes.Added {
		if !a.isHedge(sym) {
			a.active[sym] = true
		}
	}
	active := make([]contracts.Symbol, 0, len(a.active))
	for sym := range a.active {
		active = append(active, sym)
	}
	sectors := make(map[contracts.Symbol]string, len(a.sectors))
	for sym, s := range a.sectors {
		sectors[sym] = s
	}
	a.mu.Unlock()

	for _, sym := range changes.Removed {
		if a.isHedge(sym) {
			continue
		}
		if err := a.host.SetHoldings(sym, decimal.Zero); err != nil {
			return fmt.Errorf("liquidate %s: %w", sym, err)
		}
	}

	sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })
	for _, t := range a.constructor.Construct(active, sectors) {
		if err := a.host.SetHoldings(t.Symbol, t.Weight); err != nil {
			return fmt.Errorf("set holdings %s: %w", t.Symbol, err)
		}
	}

	return nil
}

// initializeSecurity applies the configured slippage model and leverage
func (a *Algorithm) initializeSecurity(sec *Security) {
	sec.SlippageModel = a.config.Securities.SlippageModel
	sec.Leverage = a.config.Securities.Leverage
}

// recordSectors wraps the fine filter to remember each symbol's sector for
// portfolio construction, and reports every selected symbol with its score
// to the host log
func (a *Algorithm) recordSectors(fine contracts.FineSelector) contracts.FineSelector {
	return func(records []contracts.FineFundamental) []contracts.Symbol {
		scores := make(map[contracts.Symbol]int, len(records))
		a.mu.Lock()
		for i := range records {
			r := &records[i]
			if r.Sector != "" {
				a.sectors[r.Symbol] = r.Sector
			}
			scores[r.Symbol] = fscore.Score(r) // 마지막 레코드 우선
		}
		a.mu.Unlock()

		selected := fine(records)
		for _, sym := range selected {
			a.host.Log(fmt.Sprintf("Stock: %s :: F-Score: %d", sym, scores[sym]))
		}
		return selected
	}
}

// setHedges applies the configured hedge weights
func (a *Algorithm) setHedges() error {
	for _, h := range a.config.Hedges {
		if err := a.host.SetHoldings(contracts.Symbol(h.Symbol), h.Weight); err != nil {
			return fmt.Errorf("set hedge %s: %w", h.Symbol, err)
		}
	}
	return nil
}

func (a *Algorithm) isHedge(sym contracts.Symbol) bool {
	for _, h := range a.config.Hedges {
		if contracts.Symbol(h.Symbol) == sym {
			return true
		}
	}
	return false
}
