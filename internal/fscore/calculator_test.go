package fscore

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fscore/internal/contracts"
)

// healthy returns a snapshot that passes every check
func healthy(symbol contracts.Symbol) *contracts.FineFundamental {
	return &contracts.FineFundamental{
		Symbol:                  symbol,
		ROA:                     contracts.P(0.05, 0.02),
		OperatingCashFlow:       contracts.Period{Current: contracts.Some(100)},
		TotalAssets:             contracts.Period{Current: contracts.Some(1000)},
		LongTermDebtEquityRatio: contracts.P(0.3, 0.5),
		CurrentRatio:            contracts.P(1.8, 1.5),
		SharesIssued:            contracts.P(1_000_000, 1_000_000),
		GrossMargin:             contracts.P(0.42, 0.40),
		AssetsTurnover:          contracts.P(0.9, 0.8),
	}
}

func TestScore_AllPassing(t *testing.T) {
	f := healthy("X")
	assert.Equal(t, 9, Score(f))

	b := Evaluate(f)
	assert.Equal(t, 9, b.Total)
	assert.Equal(t, contracts.Symbol("X"), b.Symbol)
	assert.Equal(t, 4, b.Groups[GroupProfitability])
	assert.Equal(t, 3, b.Groups[GroupLeverage])
	assert.Equal(t, 2, b.Groups[GroupEfficiency])
}

func TestScore_AllAbsent(t *testing.T) {
	f := &contracts.FineFundamental{Symbol: "Y"}
	assert.Equal(t, 0, Score(f))

	for _, c := range Components() {
		assert.Equal(t, 0, c.Score(f), c.Name)
	}
}

func TestScore_NilSnapshot(t *testing.T) {
	assert.Equal(t, 0, Score(nil))
	assert.Equal(t, 0, Evaluate(nil).Total)
}

func TestSubScores(t *testing.T) {
	tests := []struct {
		name   string
		score  SubScore
		mutate func(f *contracts.FineFundamental)
		want   int
	}{
		{"roa positive", ROAScore, nil, 1},
		{"roa zero", ROAScore, func(f *contracts.FineFundamental) { f.ROA.Current = contracts.Some(0) }, 0},
		{"roa negative", ROAScore, func(f *contracts.FineFundamental) { f.ROA.Current = contracts.Some(-0.01) }, 0},
		{"roa absent", ROAScore, func(f *contracts.FineFundamental) { f.ROA.Current = contracts.None() }, 0},

		{"ocf positive", OperatingCashFlowScore, nil, 1},
		{"ocf negative", OperatingCashFlowScore, func(f *contracts.FineFundamental) { f.OperatingCashFlow.Current = contracts.Some(-5) }, 0},
		{"ocf absent", OperatingCashFlowScore, func(f *contracts.FineFundamental) { f.OperatingCashFlow = contracts.Period{} }, 0},

		{"roa improved", ROAChangeScore, nil, 1},
		{"roa flat", ROAChangeScore, func(f *contracts.FineFundamental) { f.ROA = contracts.P(0.02, 0.02) }, 0},
		{"roa prior absent", ROAChangeScore, func(f *contracts.FineFundamental) { f.ROA.Prior = contracts.None() }, 0},

		{"accruals cash beats roa", AccrualsScore, nil, 1},
		{"accruals cash below roa", AccrualsScore, func(f *contracts.FineFundamental) { f.OperatingCashFlow.Current = contracts.Some(10) }, 0},
		{"accruals zero assets", AccrualsScore, func(f *contracts.FineFundamental) { f.TotalAssets.Current = contracts.Some(0) }, 0},
		{"accruals negative assets", AccrualsScore, func(f *contracts.FineFundamental) { f.TotalAssets.Current = contracts.Some(-1000) }, 0},
		{"accruals negative assets and cash flow", AccrualsScore, func(f *contracts.FineFundamental) {
			f.TotalAssets.Current = contracts.Some(-1000)
			f.OperatingCashFlow.Current = contracts.Some(-100)
		}, 0},
		{"accruals assets absent", AccrualsScore, func(f *contracts.FineFundamental) { f.TotalAssets = contracts.Period{} }, 0},
		{"accruals roa absent", AccrualsScore, func(f *contracts.FineFundamental) { f.ROA.Current = contracts.None() }, 0},

		{"leverage lower", LeverageScore, nil, 1},
		{"leverage higher", LeverageScore, func(f *contracts.FineFundamental) { f.LongTermDebtEquityRatio = contracts.P(0.6, 0.5) }, 0},
		{"leverage absent", LeverageScore, func(f *contracts.FineFundamental) { f.LongTermDebtEquityRatio.Current = contracts.None() }, 0},

		{"liquidity higher", LiquidityScore, nil, 1},
		{"liquidity lower", LiquidityScore, func(f *contracts.FineFundamental) { f.CurrentRatio = contracts.P(1.0, 1.5) }, 0},

		{"shares unchanged", ShareIssuedScore, nil, 1},
		{"shares bought back", ShareIssuedScore, func(f *contracts.FineFundamental) { f.SharesIssued = contracts.P(900, 1000) }, 1},
		{"shares diluted", ShareIssuedScore, func(f *contracts.FineFundamental) { f.SharesIssued = contracts.P(1100, 1000) }, 0},
		{"shares prior absent", ShareIssuedScore, func(f *contracts.FineFundamental) { f.SharesIssued.Prior = contracts.None() }, 0},

		{"margin higher", GrossMarginScore, nil, 1},
		{"margin NaN", GrossMarginScore, func(f *contracts.FineFundamental) { f.GrossMargin.Current = contracts.Some(math.NaN()) }, 0},

		{"turnover higher", AssetTurnoverScore, nil, 1},
		{"turnover lower", AssetTurnoverScore, func(f *contracts.FineFundamental) { f.AssetsTurnover = contracts.P(0.7, 0.8) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := healthy("T")
			if tt.mutate != nil {
				tt.mutate(f)
			}
			assert.Equal(t, tt.want, tt.score(f))
		})
	}
}

// randomSnapshot fills every field with either an absent value or a number
// drawn from a small range that includes zero and negatives
func randomSnapshot(r *rand.Rand) *contracts.FineFundamental {
	v := func() contracts.Value {
		switch r.Intn(4) {
		case 0:
			return contracts.None()
		case 1:
			return contracts.Some(0)
		default:
			return contracts.Some(float64(r.Intn(21)-10) / 10)
		}
	}
	p := func() contracts.Period { return contracts.Period{Current: v(), Prior: v()} }

	return &contracts.FineFundamental{
		Symbol:                  "R",
		ROA:                     p(),
		OperatingCashFlow:       p(),
		TotalAssets:             p(),
		LongTermDebtEquityRatio: p(),
		CurrentRatio:            p(),
		SharesIssued:            p(),
		GrossMargin:             p(),
		AssetsTurnover:          p(),
	}
}

func TestScore_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		f := randomSnapshot(r)

		sum := 0
		for _, c := range Components() {
			s := c.Score(f)
			require.Contains(t, []int{0, 1}, s, c.Name)
			sum += s
		}

		total := Score(f)
		require.Equal(t, sum, total, "aggregate must equal the sum of components")
		require.GreaterOrEqual(t, total, 0)
		require.LessOrEqual(t, total, MaxScore)
		require.Equal(t, total, Evaluate(f).Total)

		// passing at a higher threshold implies passing at every lower one
		for t2 := 0; t2 <= MaxScore; t2++ {
			if total >= t2 {
				for t1 := 0; t1 <= t2; t1++ {
					require.GreaterOrEqual(t, total, t1)
				}
			}
		}
	}
}

func TestComponents_IsCopy(t *testing.T) {
	cs := Components()
	require.Len(t, cs, MaxScore)
	cs[0].Score = func(*contracts.FineFundamental) int { return 1 }

	assert.Equal(t, 0, Score(&contracts.FineFundamental{}))
}
