package fundamentals

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fscore/internal/contracts"
)

// PostgresSource reads daily fundamentals from the fscore schema
type PostgresSource struct {
	db *pgxpool.Pool
}

// NewPostgresSource creates a new PostgresSource instance
func NewPostgresSource(db *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{db: db}
}

// fineColumns is the column order shared by reads and writes
const fineColumns = `
	symbol, sector,
	roa_3m, roa_1y,
	ocf_3m, ocf_1y,
	total_assets_3m, total_assets_1y,
	lt_debt_equity_3m, lt_debt_equity_1y,
	current_ratio_3m, current_ratio_1y,
	shares_issued_3m, shares_issued_12m,
	gross_margin_3m, gross_margin_1y,
	asset_turnover_3m, asset_turnover_1y`

// Coarse returns the coarse records for date ordered by symbol
func (s *PostgresSource) Coarse(ctx context.Context, date time.Time) ([]contracts.CoarseFundamental, error) {
	query := `
		SELECT symbol, price, dollar_volume, has_fundamental_data
		FROM fscore.coarse_fundamentals
		WHERE trade_date = $1
		ORDER BY symbol
	`

	rows, err := s.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query coarse fundamentals: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.CoarseFundamental, 0)
	for rows.Next() {
		var (
			c      contracts.CoarseFundamental
			symbol string
		)
		if err := rows.Scan(&symbol, &c.Price, &c.DollarVolume, &c.HasFundamentalData); err != nil {
			return nil, fmt.Errorf("scan coarse fundamental: %w", err)
		}
		c.Symbol = contracts.Symbol(symbol)
		out = append(out, c)
	}

	return out, rows.Err()
}

// Fine returns the fine records for the given symbols on date
func (s *PostgresSource) Fine(ctx context.Context, date time.Time, symbols []contracts.Symbol) ([]contracts.FineFundamental, error) {
	if len(symbols) == 0 {
		return []contracts.FineFundamental{}, nil
	}

	query := `SELECT` + fineColumns + `
		FROM fscore.fine_fundamentals
		WHERE trade_date = $1 AND symbol = ANY($2)
		ORDER BY symbol
	`

	rows, err := s.db.Query(ctx, query, date, symbolStrings(symbols))
	if err != nil {
		return nil, fmt.Errorf("query fine fundamentals: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.FineFundamental, 0, len(symbols))
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	return out, rows.Err()
}

// Import writes a snapshot for date in one batch, replacing rows that
// already exist for the same (date, symbol)
func (s *PostgresSource) Import(ctx context.Context, date time.Time, snap *Snapshot) error {
	batch := &pgx.Batch{}

	for _, c := range snap.Coarse {
		batch.Queue(`
			INSERT INTO fscore.coarse_fundamentals (trade_date, symbol, price, dollar_volume, has_fundamental_data)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (trade_date, symbol) DO UPDATE SET
				price = EXCLUDED.price,
				dollar_volume = EXCLUDED.dollar_volume,
				has_fundamental_data = EXCLUDED.has_fundamental_data
		`, date, string(c.Symbol), c.Price, c.DollarVolume, c.HasFundamentalData)
	}

	for _, f := range snap.Fine {
		batch.Queue(`
			INSERT INTO fscore.fine_fundamentals (trade_date,`+fineColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
			ON CONFLICT (trade_date, symbol) DO UPDATE SET
				sector = EXCLUDED.sector,
				roa_3m = EXCLUDED.roa_3m, roa_1y = EXCLUDED.roa_1y,
				ocf_3m = EXCLUDED.ocf_3m, ocf_1y = EXCLUDED.ocf_1y,
				total_assets_3m = EXCLUDED.total_assets_3m, total_assets_1y = EXCLUDED.total_assets_1y,
				lt_debt_equity_3m = EXCLUDED.lt_debt_equity_3m, lt_debt_equity_1y = EXCLUDED.lt_debt_equity_1y,
				current_ratio_3m = EXCLUDED.current_ratio_3m, current_ratio_1y = EXCLUDED.current_ratio_1y,
				shares_issued_3m = EXCLUDED.shares_issued_3m, shares_issued_12m = EXCLUDED.shares_issued_12m,
				gross_margin_3m = EXCLUDED.gross_margin_3m, gross_margin_1y = EXCLUDED.gross_margin_1y,
				asset_turnover_3m = EXCLUDED.asset_turnover_3m, asset_turnover_1y = EXCLUDED.asset_turnover_1y
		`, append([]interface{}{date, string(f.Symbol), f.Sector}, fineArgs(&f)...)...)
	}

	if batch.Len() == 0 {
		return nil
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("import row %d: %w", i, err)
		}
	}

	return nil
}

func scanFine(rows pgx.Rows) (contracts.FineFundamental, error) {
	var (
		f      contracts.FineFundamental
		symbol string
		v      [16]pgtype.Float8
	)

	dest := []interface{}{&symbol, &f.Sector}
	for i := range v {
		dest = append(dest, &v[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return f, fmt.Errorf("scan fine fundamental: %w", err)
	}

	f.Symbol = contracts.Symbol(symbol)
	for i, p := range finePeriods(&f) {
		p.Current = fromFloat8(v[2*i])
		p.Prior = fromFloat8(v[2*i+1])
	}

	return f, nil
}

// finePeriods lists the periods in fineColumns order
func finePeriods(f *contracts.FineFundamental) []*contracts.Period {
	return []*contracts.Period{
		&f.ROA,
		&f.OperatingCashFlow,
		&f.TotalAssets,
		&f.LongTermDebtEquityRatio,
		&f.CurrentRatio,
		&f.SharesIssued,
		&f.GrossMargin,
		&f.AssetsTurnover,
	}
}

func fineArgs(f *contracts.FineFundamental) []interface{} {
	args := make([]interface{}, 0, 16)
	for _, p := range finePeriods(f) {
		args = append(args, toFloat8(p.Current), toFloat8(p.Prior))
	}
	return args
}

func fromFloat8(f pgtype.Float8) contracts.Value {
	if !f.Valid {
		return contracts.None()
	}
	return contracts.Some(f.Float64)
}

// toFloat8 stores unusable figures (absent, NaN, Inf) as NULL
func toFloat8(v contracts.Value) pgtype.Float8 {
	f, ok := v.Get()
	return pgtype.Float8{Float64: f, Valid: ok}
}

func symbolStrings(symbols []contracts.Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = string(s)
	}
	return out
}
