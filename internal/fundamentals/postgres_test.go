package fundamentals

import (
	"context"
	"math"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/pkg/config"
	"github.com/wonny/fscore/pkg/database"
)

func TestFloat8Conversion(t *testing.T) {
	tests := []struct {
		name string
		in   contracts.Value
		want pgtype.Float8
	}{
		{"present", contracts.Some(1.5), pgtype.Float8{Float64: 1.5, Valid: true}},
		{"zero", contracts.Some(0), pgtype.Float8{Float64: 0, Valid: true}},
		{"absent", contracts.None(), pgtype.Float8{}},
		{"nan", contracts.Some(math.NaN()), pgtype.Float8{}},
		{"inf", contracts.Some(math.Inf(1)), pgtype.Float8{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toFloat8(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in.Present(), fromFloat8(got).Present())
		})
	}
}

func TestFineArgs_ColumnOrder(t *testing.T) {
	f := contracts.FineFundamental{
		ROA:               contracts.P(1, 2),
		OperatingCashFlow: contracts.P(3, 4),
		AssetsTurnover:    contracts.P(15, 16),
	}
	args := fineArgs(&f)
	require.Len(t, args, 16)

	assert.Equal(t, pgtype.Float8{Float64: 1, Valid: true}, args[0])
	assert.Equal(t, pgtype.Float8{Float64: 4, Valid: true}, args[3])
	assert.Equal(t, pgtype.Float8{}, args[4], "total assets absent")
	assert.Equal(t, pgtype.Float8{Float64: 16, Valid: true}, args[15])
}

func TestPostgresSource_RoundTrip(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(ctx))

	snap, err := LoadSnapshot("testdata/snapshot.yaml")
	require.NoError(t, err)

	// far-past date keeps test rows away from real data
	date := day(1999, 1, 4)
	src := NewPostgresSource(db.Pool)
	require.NoError(t, src.Import(ctx, date, snap))
	defer func() {
		_, _ = db.Pool.Exec(ctx, `DELETE FROM fscore.coarse_fundamentals WHERE trade_date = $1`, date)
		_, _ = db.Pool.Exec(ctx, `DELETE FROM fscore.fine_fundamentals WHERE trade_date = $1`, date)
	}()

	coarse, err := src.Coarse(ctx, date)
	require.NoError(t, err)
	assert.Len(t, coarse, len(snap.Coarse))

	fine, err := src.Fine(ctx, date, []contracts.Symbol{"AAPL", "WEAK"})
	require.NoError(t, err)
	require.Len(t, fine, 2)
	assert.Equal(t, snap.Fine[0], fine[0])
	assert.False(t, fine[1].ROA.Prior.Present())

	empty, err := src.Fine(ctx, date, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
