package fscore

import (
	"github.com/wonny/fscore/internal/contracts"
)

// MaxScore is the highest attainable F-Score
const MaxScore = 9

// Group is the accounting area a sub-score belongs to
type Group string

const (
	GroupProfitability Group = "profitability"
	GroupLeverage      Group = "leverage_liquidity"
	GroupEfficiency    Group = "operating_efficiency"
)

// SubScore computes one binary component of the F-Score
type SubScore func(f *contracts.FineFundamental) int

// Component is a named sub-score
type Component struct {
	Name  string
	Group Group
	Score SubScore
}

// components lists the nine sub-scores in reporting order
// ⭐ SSOT: F-Score 구성 요소는 여기서만 정의
var components = []Component{
	{"roa", GroupProfitability, ROAScore},
	{"operating_cash_flow", GroupProfitability, OperatingCashFlowScore},
	{"roa_change", GroupProfitability, ROAChangeScore},
	{"accruals", GroupProfitability, AccrualsScore},
	{"leverage_change", GroupLeverage, LeverageScore},
	{"liquidity_change", GroupLeverage, LiquidityScore},
	{"share_dilution", GroupLeverage, ShareIssuedScore},
	{"gross_margin_change", GroupEfficiency, GrossMarginScore},
	{"asset_turnover_change", GroupEfficiency, AssetTurnoverScore},
}

// Components returns a copy of the sub-score list
func Components() []Component {
	out := make([]Component, len(components))
	copy(out, components)
	return out
}

// Score returns the Piotroski F-Score (0-9) of a fundamentals snapshot
func Score(f *contracts.FineFundamental) int {
	total := 0
	for _, c := range components {
		total += c.Score(f)
	}
	return total
}

// Breakdown is the per-component result of one evaluation
type Breakdown struct {
	Symbol     contracts.Symbol `json:"symbol"`
	Components map[string]int   `json:"components"`
	Groups     map[Group]int    `json:"groups"`
	Total      int              `json:"total"`
}

// Evaluate scores f and keeps every component result
func Evaluate(f *contracts.FineFundamental) Breakdown {
	b := Breakdown{
		Components: make(map[string]int, len(components)),
		Groups:     make(map[Group]int, 3),
	}
	if f != nil {
		b.Symbol = f.Symbol
	}

	for _, c := range components {
		s := c.Score(f)
		b.Components[c.Name] = s
		b.Groups[c.Group] += s
		b.Total += s
	}
	return b
}

// bool → sub-score
func point(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

// === Profitability ===

// ROAScore: 1 if the current ROA is reported and positive
func ROAScore(f *contracts.FineFundamental) int {
	if f == nil {
		return 0
	}
	roa, ok := f.ROA.Current.Get()
	return point(ok && roa > 0)
}

// OperatingCashFlowScore: 1 if the current operating cash flow is reported and positive
func OperatingCashFlowScore(f *contracts.FineFundamental) int {
	if f == nil {
		return 0
	}
	ocf, ok := f.OperatingCashFlow.Current.Get()
	return point(ok && ocf > 0)
}

// ROAChangeScore: 1 if ROA improved against the prior year
func ROAChangeScore(f *contracts.FineFundamental) int {
	if f == nil {
		return 0
	}
	cur, prior, ok := f.ROA.Both()
	return point(ok && cur > prior)
}

// AccrualsScore: 1 if cash-basis return on assets (OCF / total assets)
// exceeds accrual-basis ROA. Total assets must be positive.
func AccrualsScore(f *contracts.FineFundamental) int {
	if f == nil {
		return 0
	}
	ocf, okOCF := f.OperatingCashFlow.Current.Get()
	assets, okAssets := f.TotalAssets.Current.Get()
	roa, okROA := f.ROA.Current.Get()
	if !okOCF || !okAssets || !okROA || assets <= 0 {
		return 0
	}
	return point(ocf/assets > roa)
}

// === Leverage, liquidity and source of funds ===

// LeverageScore: 1 if long-term debt to equity fell
func LeverageScore(f *contracts.FineFundamental) int {
	if f == nil {
		return 0
	}
	cur, prior, ok := f.LongTermDebtEquityRatio.Both()
	return point(ok && cur < prior)
}

// LiquidityScore: 1 if the current ratio rose
func LiquidityScore(f *contracts.FineFundamental) int {
	if f == nil {
		return 0
	}
	cur, prior, ok := f.CurrentRatio.Both()
	return point(ok && cur > prior)
}

// ShareIssuedScore: 1 if no new shares were issued.
// Compares against the twelve-month figure, not the one-year ratio period.
func ShareIssuedScore(f *contracts.FineFundamental) int {
	if f == nil {
		return 0
	}
	cur, prior, ok := f.SharesIssued.Both()
	return point(ok && cur <= prior)
}

// === Operating efficiency ===

// GrossMarginScore: 1 if gross margin rose
func GrossMarginScore(f *contracts.FineFundamental) int {
	if f == nil {
		return 0
	}
	cur, prior, ok := f.GrossMargin.Both()
	return point(ok && cur > prior)
}

// AssetTurnoverScore: 1 if asset turnover rose
func AssetTurnoverScore(f *contracts.FineFundamental) int {
	if f == nil {
		return 0
	}
	cur, prior, ok := f.AssetsTurnover.Both()
	return point(ok && cur > prior)
}
