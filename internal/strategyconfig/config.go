package strategyconfig

import "github.com/shopspring/decimal"

// Config는 F-Score 전략의 전체 설정
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Backtest   Backtest   `yaml:"backtest" json:"backtest"`
	Brokerage  Brokerage  `yaml:"brokerage" json:"brokerage"`
	Universe   Universe   `yaml:"universe" json:"universe"`
	Alpha      Alpha      `yaml:"alpha" json:"alpha"`
	Portfolio  Portfolio  `yaml:"portfolio" json:"portfolio"`
	Execution  Execution  `yaml:"execution" json:"execution"`
	Risk       Risk       `yaml:"risk" json:"risk"`
	Securities Securities `yaml:"securities" json:"securities"`
	Hedges     []Hedge    `yaml:"hedges" json:"hedges"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
	// SelectionTimeLocal is when the scheduled selection runs (HH:MM, Timezone)
	SelectionTimeLocal string `yaml:"selection_time_local" json:"selection_time_local"`
}

// Backtest 기간 및 초기 자본
type Backtest struct {
	StartDate string          `yaml:"start_date" json:"start_date"` // YYYY-MM-DD
	EndDate   string          `yaml:"end_date" json:"end_date"`     // YYYY-MM-DD
	Cash      decimal.Decimal `yaml:"cash" json:"cash"`
}

// Brokerage 브로커/계좌 유형
type Brokerage struct {
	Name        string `yaml:"name" json:"name"`
	AccountType string `yaml:"account_type" json:"account_type"` // CASH | MARGIN
}

// Universe 유니버스 선정 기준
type Universe struct {
	FScoreThreshold int     `yaml:"fscore_threshold" json:"fscore_threshold"` // 0-9
	MinPrice        float64 `yaml:"min_price" json:"min_price"`
	Resolution      string  `yaml:"resolution" json:"resolution"`
	Leverage        float64 `yaml:"leverage" json:"leverage"`
}

// Alpha 고정 방향 인사이트
type Alpha struct {
	Direction         string `yaml:"direction" json:"direction"` // up | down | flat
	InsightPeriodDays int    `yaml:"insight_period_days" json:"insight_period_days"`
}

// Portfolio 포트폴리오 구성 방식
type Portfolio struct {
	Construction string `yaml:"construction" json:"construction"` // sector_weighting | equal_weighting
}

// Execution 체결 모델
type Execution struct {
	Model              string          `yaml:"model" json:"model"` // spread | immediate
	AcceptingSpreadPct decimal.Decimal `yaml:"accepting_spread_pct" json:"accepting_spread_pct"`
}

// Risk 리스크 관리 모델
type Risk struct {
	Model          string          `yaml:"model" json:"model"` // null | max_drawdown
	MaxDrawdownPct decimal.Decimal `yaml:"max_drawdown_pct,omitempty" json:"max_drawdown_pct,omitempty"`
}

// Securities 종목 초기화 설정
type Securities struct {
	SlippageModel string  `yaml:"slippage_model" json:"slippage_model"` // volume_share | constant | null
	Leverage      float64 `yaml:"leverage" json:"leverage"`
}

// Hedge 고정 비중 헤지 자산
type Hedge struct {
	Symbol   string          `yaml:"symbol" json:"symbol"`
	Weight   decimal.Decimal `yaml:"weight" json:"weight"`
	Leverage float64         `yaml:"leverage" json:"leverage"`
}

// HedgeWeight returns the total target weight of all hedges
func (c *Config) HedgeWeight() decimal.Decimal {
	total := decimal.Zero
	for _, h := range c.Hedges {
		total = total.Add(h.Weight)
	}
	return total
}

// EquityBudget is the portfolio share left for selected equities
func (c *Config) EquityBudget() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(c.HedgeWeight())
}

// WithThreshold overrides the F-Score threshold when t >= 0
func (c *Config) WithThreshold(t int) *Config {
	if t >= 0 {
		c.Universe.FScoreThreshold = t
	}
	return c
}

// Default returns the reference strategy settings
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID:         "fscore_v1",
			Version:            "1.0.0",
			Timezone:           "America/New_York",
			SelectionTimeLocal: "09:00",
		},
		Backtest: Backtest{
			StartDate: "2008-01-01",
			EndDate:   "2024-10-19",
			Cash:      decimal.NewFromInt(30000),
		},
		Brokerage: Brokerage{Name: "ALPACA", AccountType: "MARGIN"},
		Universe: Universe{
			FScoreThreshold: 7,
			MinPrice:        1.0,
			Resolution:      "MINUTE",
			Leverage:        2,
		},
		Alpha:     Alpha{Direction: "up", InsightPeriodDays: 5},
		Portfolio: Portfolio{Construction: "sector_weighting"},
		Execution: Execution{
			Model:              "spread",
			AcceptingSpreadPct: decimal.RequireFromString("0.005"),
		},
		Risk:       Risk{Model: "null"},
		Securities: Securities{SlippageModel: "volume_share", Leverage: 2},
		Hedges: []Hedge{
			{Symbol: "SPY", Weight: decimal.RequireFromString("0.35"), Leverage: 2},
			{Symbol: "GLD", Weight: decimal.RequireFromString("0.15"), Leverage: 2},
			{Symbol: "VIXY", Weight: decimal.RequireFromString("0.02"), Leverage: 1},
		},
	}
}
