package strategyconfig

import (
	"errors"
	"fmt"
	"regexp"
	"time"
	_ "time/tzdata" // meta.timezone 검증용

	"github.com/shopspring/decimal"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

const dateLayout = "2006-01-02"

var hhmm = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
		return ValidationError{"meta.timezone", err.Error()}
	}
	if err := validateHHMM(cfg.Meta.SelectionTimeLocal); err != nil {
		return ValidationError{"meta.selection_time_local", err.Error()}
	}

	// === Backtest ===
	start, err := time.Parse(dateLayout, cfg.Backtest.StartDate)
	if err != nil {
		return ValidationError{"backtest.start_date", "must be YYYY-MM-DD"}
	}
	end, err := time.Parse(dateLayout, cfg.Backtest.EndDate)
	if err != nil {
		return ValidationError{"backtest.end_date", "must be YYYY-MM-DD"}
	}
	if !start.Before(end) {
		return ValidationError{"backtest", "start_date must be before end_date"}
	}
	if !cfg.Backtest.Cash.IsPositive() {
		return ValidationError{"backtest.cash", "must be > 0"}
	}

	// === Brokerage ===
	if cfg.Brokerage.Name == "" {
		return ValidationError{"brokerage.name", "required"}
	}
	if err := oneOf(cfg.Brokerage.AccountType, "CASH", "MARGIN"); err != nil {
		return ValidationError{"brokerage.account_type", err.Error()}
	}

	// === Universe ===
	u := cfg.Universe
	if u.FScoreThreshold < 0 || u.FScoreThreshold > 9 {
		return ValidationError{"universe.fscore_threshold", "must be in [0, 9]"}
	}
	if u.MinPrice < 0 {
		return ValidationError{"universe.min_price", "must be >= 0"}
	}
	if err := oneOf(u.Resolution, "TICK", "SECOND", "MINUTE", "HOUR", "DAILY"); err != nil {
		return ValidationError{"universe.resolution", err.Error()}
	}
	if u.Leverage <= 0 {
		return ValidationError{"universe.leverage", "must be > 0"}
	}

	// === Alpha ===
	if err := oneOf(cfg.Alpha.Direction, "up", "down", "flat"); err != nil {
		return ValidationError{"alpha.direction", err.Error()}
	}
	if cfg.Alpha.InsightPeriodDays <= 0 {
		return ValidationError{"alpha.insight_period_days", "must be > 0"}
	}

	// === Portfolio / Execution / Risk ===
	if err := oneOf(cfg.Portfolio.Construction, "sector_weighting", "equal_weighting"); err != nil {
		return ValidationError{"portfolio.construction", err.Error()}
	}
	if err := oneOf(cfg.Execution.Model, "spread", "immediate"); err != nil {
		return ValidationError{"execution.model", err.Error()}
	}
	if cfg.Execution.Model == "spread" {
		if err := validatePctRange(cfg.Execution.AcceptingSpreadPct, "execution.accepting_spread_pct"); err != nil {
			return err
		}
	}
	if err := oneOf(cfg.Risk.Model, "null", "max_drawdown"); err != nil {
		return ValidationError{"risk.model", err.Error()}
	}
	if cfg.Risk.Model == "max_drawdown" {
		if !cfg.Risk.MaxDrawdownPct.IsPositive() {
			return ValidationError{"risk.max_drawdown_pct", "must be > 0"}
		}
		if err := validatePctRange(cfg.Risk.MaxDrawdownPct, "risk.max_drawdown_pct"); err != nil {
			return err
		}
	}

	// === Securities ===
	if err := oneOf(cfg.Securities.SlippageModel, "volume_share", "constant", "null"); err != nil {
		return ValidationError{"securities.slippage_model", err.Error()}
	}
	if cfg.Securities.Leverage <= 0 {
		return ValidationError{"securities.leverage", "must be > 0"}
	}

	// === Hedges ===
	seen := make(map[string]bool, len(cfg.Hedges))
	for i, h := range cfg.Hedges {
		field := fmt.Sprintf("hedges[%d]", i)
		if h.Symbol == "" {
			return ValidationError{field + ".symbol", "required"}
		}
		if seen[h.Symbol] {
			return ValidationError{field + ".symbol", fmt.Sprintf("duplicate hedge %s", h.Symbol)}
		}
		seen[h.Symbol] = true

		if !h.Weight.IsPositive() || h.Weight.GreaterThan(decimal.NewFromInt(1)) {
			return ValidationError{field + ".weight", "must be in (0, 1]"}
		}
		if h.Leverage <= 0 {
			return ValidationError{field + ".leverage", "must be > 0"}
		}
	}
	if cfg.HedgeWeight().GreaterThan(decimal.NewFromInt(1)) {
		return ValidationError{"hedges", fmt.Sprintf("weights must sum to <= 1, got %s", cfg.HedgeWeight())}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Universe.FScoreThreshold < 5 {
		warnings = append(warnings, Warning{
			Code:    "LOW_THRESHOLD",
			Message: fmt.Sprintf("fscore_threshold=%d: 재무 건전성 필터가 약함", cfg.Universe.FScoreThreshold),
		})
	}

	if cfg.Universe.Leverage > 2 || cfg.Securities.Leverage > 2 {
		warnings = append(warnings, Warning{
			Code:    "HIGH_LEVERAGE",
			Message: "레버리지 > 2: 증거금 부족 리스크",
		})
	}

	if cfg.EquityBudget().LessThan(decimal.RequireFromString("0.25")) {
		warnings = append(warnings, Warning{
			Code:    "SMALL_EQUITY_BUDGET",
			Message: fmt.Sprintf("헤지 후 주식 비중 %s < 25%%", cfg.EquityBudget()),
		})
	}

	if cfg.Execution.Model == "spread" && cfg.Execution.AcceptingSpreadPct.GreaterThan(decimal.RequireFromString("0.01")) {
		warnings = append(warnings, Warning{
			Code:    "WIDE_SPREAD",
			Message: "허용 스프레드 > 1%: 체결 비용 증가 우려",
		})
	}

	return warnings
}

// === Helper Functions ===

func validateHHMM(s string) error {
	if !hhmm.MatchString(s) {
		return errors.New("must be HH:MM format")
	}
	_, err := time.Parse("15:04", s)
	return err
}

func oneOf(v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("must be one of %v, got %q", allowed, v)
}

// validatePctRange는 퍼센트 값이 0~1 범위인지 검증
func validatePctRange(pct decimal.Decimal, field string) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(1)) {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}

// Start parses backtest.start_date
func (b Backtest) Start() time.Time {
	t, _ := time.Parse(dateLayout, b.StartDate)
	return t
}

// End parses backtest.end_date
func (b Backtest) End() time.Time {
	t, _ := time.Parse(dateLayout, b.EndDate)
	return t
}
