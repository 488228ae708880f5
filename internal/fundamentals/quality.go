package fundamentals

import (
	"sort"
	"time"

	"github.com/wonny/fscore/internal/contracts"
)

// DefaultMinCoverage is the quality score under which a fine feed is
// reported as degraded
const DefaultMinCoverage = 0.8

// QualityReport is the field coverage of one fine feed. A field is covered
// when every value the F-Score reads from it is usable.
type QualityReport struct {
	Date     time.Time          `json:"date"`
	Records  int                `json:"records"`
	Complete int                `json:"complete"` // 모든 항목이 있는 레코드 수
	Coverage map[string]float64 `json:"coverage"`
	Score    float64            `json:"score"`
}

// Passed reports whether the score reaches min
func (r *QualityReport) Passed(min float64) bool {
	return r.Score >= min
}

// Weakest returns fields below min, sorted by name
func (r *QualityReport) Weakest(min float64) []string {
	var out []string
	for field, cov := range r.Coverage {
		if cov < min {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}

// qualityField is one F-Score input and how it is checked
type qualityField struct {
	name    string
	covered func(f *contracts.FineFundamental) bool
}

func bothUsable(p func(f *contracts.FineFundamental) contracts.Period) func(f *contracts.FineFundamental) bool {
	return func(f *contracts.FineFundamental) bool {
		_, _, ok := p(f).Both()
		return ok
	}
}

func currentUsable(p func(f *contracts.FineFundamental) contracts.Period) func(f *contracts.FineFundamental) bool {
	return func(f *contracts.FineFundamental) bool {
		_, ok := p(f).Current.Get()
		return ok
	}
}

// ⭐ SSOT: 품질 검사 항목 (F-Score 입력과 1:1)
var qualityFields = []qualityField{
	{"roa", bothUsable(func(f *contracts.FineFundamental) contracts.Period { return f.ROA })},
	{"operating_cash_flow", currentUsable(func(f *contracts.FineFundamental) contracts.Period { return f.OperatingCashFlow })},
	{"total_assets", currentUsable(func(f *contracts.FineFundamental) contracts.Period { return f.TotalAssets })},
	{"long_term_debt_equity_ratio", bothUsable(func(f *contracts.FineFundamental) contracts.Period { return f.LongTermDebtEquityRatio })},
	{"current_ratio", bothUsable(func(f *contracts.FineFundamental) contracts.Period { return f.CurrentRatio })},
	{"shares_issued", bothUsable(func(f *contracts.FineFundamental) contracts.Period { return f.SharesIssued })},
	{"gross_margin", bothUsable(func(f *contracts.FineFundamental) contracts.Period { return f.GrossMargin })},
	{"assets_turnover", bothUsable(func(f *contracts.FineFundamental) contracts.Period { return f.AssetsTurnover })},
}

// CheckQuality measures how much of the fine feed the F-Score can use.
// Missing values score 0 rather than fail, so a thin feed silently shrinks
// the universe; this report makes that visible.
// An empty feed has a score of 0.
func CheckQuality(date time.Time, fine []contracts.FineFundamental) *QualityReport {
	report := &QualityReport{
		Date:     date,
		Records:  len(fine),
		Coverage: make(map[string]float64, len(qualityFields)),
	}

	counts := make([]int, len(qualityFields))
	for i := range fine {
		complete := true
		for j, field := range qualityFields {
			if field.covered(&fine[i]) {
				counts[j]++
			} else {
				complete = false
			}
		}
		if complete {
			report.Complete++
		}
	}

	if len(fine) == 0 {
		for _, field := range qualityFields {
			report.Coverage[field.name] = 0
		}
		return report
	}

	// 항목별 동일 가중치
	total := 0.0
	for j, field := range qualityFields {
		cov := float64(counts[j]) / float64(len(fine))
		report.Coverage[field.name] = cov
		total += cov
	}
	report.Score = total / float64(len(qualityFields))

	return report
}
