package fundamentals

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fscore/internal/contracts"
)

func complete(symbol contracts.Symbol) contracts.FineFundamental {
	return contracts.FineFundamental{
		Symbol:                  symbol,
		ROA:                     contracts.P(0.05, 0.02),
		OperatingCashFlow:       contracts.Period{Current: contracts.Some(100)},
		TotalAssets:             contracts.Period{Current: contracts.Some(1000)},
		LongTermDebtEquityRatio: contracts.P(0.3, 0.5),
		CurrentRatio:            contracts.P(1.8, 1.5),
		SharesIssued:            contracts.P(1000, 1000),
		GrossMargin:             contracts.P(0.42, 0.40),
		AssetsTurnover:          contracts.P(0.9, 0.8),
	}
}

func TestCheckQuality(t *testing.T) {
	date := time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC)

	partial := complete("B")
	partial.ROA.Prior = contracts.None()
	partial.GrossMargin.Current = contracts.Some(math.NaN())

	report := CheckQuality(date, []contracts.FineFundamental{complete("A"), partial})

	assert.Equal(t, date, report.Date)
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, 1, report.Complete)
	assert.Len(t, report.Coverage, 8)
	assert.Equal(t, 0.5, report.Coverage["roa"])
	assert.Equal(t, 0.5, report.Coverage["gross_margin"])
	assert.Equal(t, 1.0, report.Coverage["total_assets"])
	assert.InDelta(t, 7.0/8.0, report.Score, 1e-9)

	assert.True(t, report.Passed(DefaultMinCoverage))
	assert.Equal(t, []string{"gross_margin", "roa"}, report.Weakest(DefaultMinCoverage))
}

func TestCheckQuality_CurrentOnlyFields(t *testing.T) {
	f := complete("A")
	f.OperatingCashFlow.Prior = contracts.None()
	f.TotalAssets.Prior = contracts.None()

	report := CheckQuality(time.Time{}, []contracts.FineFundamental{f})
	assert.Equal(t, 1.0, report.Score, "prior cash flow and assets are not read")
}

func TestCheckQuality_Empty(t *testing.T) {
	report := CheckQuality(time.Time{}, nil)

	require.NotNil(t, report)
	assert.Zero(t, report.Score)
	assert.False(t, report.Passed(DefaultMinCoverage))
	assert.Len(t, report.Coverage, 8)
}

func TestCheckQuality_Snapshot(t *testing.T) {
	snap, err := LoadSnapshot("testdata/snapshot.yaml")
	require.NoError(t, err)

	report := CheckQuality(snap.Date, snap.Fine)
	assert.Equal(t, 1, report.Complete, "WEAK misses most fields")
	assert.False(t, report.Passed(DefaultMinCoverage))
}
