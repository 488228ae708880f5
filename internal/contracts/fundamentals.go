package contracts

// Symbol identifies a tradable security
type Symbol string

// Period holds one figure for the current and the comparison period
type Period struct {
	Current Value `json:"current" yaml:"current"` // most recent quarter (3M)
	Prior   Value `json:"prior" yaml:"prior"`     // one year earlier (1Y)
}

// Both returns current and prior when both are usable
func (p Period) Both() (current, prior float64, ok bool) {
	c, okC := p.Current.Get()
	pr, okP := p.Prior.Get()
	if !okC || !okP {
		return 0, 0, false
	}
	return c, pr, true
}

// P returns a Period with both figures present
func P(current, prior float64) Period {
	return Period{Current: Some(current), Prior: Some(prior)}
}

// CoarseFundamental is the lightweight per-symbol record of the coarse feed
// ⭐ SSOT: host → coarse stage 입력
type CoarseFundamental struct {
	Symbol             Symbol  `json:"symbol" yaml:"symbol"`
	Price              float64 `json:"price" yaml:"price"`
	DollarVolume       float64 `json:"dollar_volume" yaml:"dollar_volume"`
	HasFundamentalData bool    `json:"has_fundamental_data" yaml:"has_fundamental_data"`
}

// FineFundamental is the financial-statement snapshot of one symbol
// ⭐ SSOT: host → fine stage 입력 (F-Score 계산 대상)
type FineFundamental struct {
	Symbol Symbol `json:"symbol" yaml:"symbol"`
	Sector string `json:"sector,omitempty" yaml:"sector,omitempty"`

	// Operation ratios
	ROA                     Period `json:"roa" yaml:"roa"`
	LongTermDebtEquityRatio Period `json:"long_term_debt_equity_ratio" yaml:"long_term_debt_equity_ratio"`
	CurrentRatio            Period `json:"current_ratio" yaml:"current_ratio"`
	GrossMargin             Period `json:"gross_margin" yaml:"gross_margin"`
	AssetsTurnover          Period `json:"assets_turnover" yaml:"assets_turnover"`

	// Financial statements
	OperatingCashFlow Period `json:"operating_cash_flow" yaml:"operating_cash_flow"`
	TotalAssets       Period `json:"total_assets" yaml:"total_assets"`

	// SharesIssued.Prior is the twelve-month (four quarters earlier) figure
	SharesIssued Period `json:"shares_issued" yaml:"shares_issued"`
}
