package universe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fscore/internal/contracts"
)

// ErrNoSelection is returned when no selection has been stored yet
var ErrNoSelection = errors.New("no universe selection stored")

// Repository persists selection results in fscore.universe_selections
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Save stores one selection run
func (r *Repository) Save(ctx context.Context, selection *contracts.Selection) error {
	scoresJSON, err := json.Marshal(selection.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	query := `
		INSERT INTO fscore.universe_selections (
			run_id,
			selection_date,
			threshold,
			coarse_count,
			scored_count,
			symbols,
			scores,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO NOTHING
	`

	_, err = r.db.Exec(ctx, query,
		selection.RunID.String(),
		selection.Date,
		selection.Threshold,
		selection.CoarseCount,
		selection.ScoredCount,
		symbolsToStrings(selection.Symbols),
		scoresJSON,
		selection.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert selection: %w", err)
	}

	return nil
}

// Latest returns the most recent selection
func (r *Repository) Latest(ctx context.Context) (*contracts.Selection, error) {
	query := `
		SELECT run_id::text, selection_date, threshold, coarse_count, scored_count,
		       symbols, scores, created_at
		FROM fscore.universe_selections
		ORDER BY selection_date DESC, created_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(ctx, query))
}

// ByDate returns the newest selection made for date
func (r *Repository) ByDate(ctx context.Context, date time.Time) (*contracts.Selection, error) {
	query := `
		SELECT run_id::text, selection_date, threshold, coarse_count, scored_count,
		       symbols, scores, created_at
		FROM fscore.universe_selections
		WHERE selection_date = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, date))
}

// Prune deletes selections made before the cutoff date
func (r *Repository) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM fscore.universe_selections WHERE selection_date < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune selections: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) scanOne(row pgx.Row) (*contracts.Selection, error) {
	var (
		s          contracts.Selection
		runID      string
		symbols    []string
		scoresJSON []byte
	)

	err := row.Scan(
		&runID,
		&s.Date,
		&s.Threshold,
		&s.CoarseCount,
		&s.ScoredCount,
		&symbols,
		&scoresJSON,
		&s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSelection
	}
	if err != nil {
		return nil, fmt.Errorf("query selection: %w", err)
	}

	if s.RunID, err = uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("parse run id: %w", err)
	}

	s.Symbols = make([]contracts.Symbol, len(symbols))
	for i, sym := range symbols {
		s.Symbols[i] = contracts.Symbol(sym)
	}

	s.Scores = make(map[contracts.Symbol]int)
	if len(scoresJSON) > 0 {
		if err := json.Unmarshal(scoresJSON, &s.Scores); err != nil {
			return nil, fmt.Errorf("unmarshal scores: %w", err)
		}
	}

	return &s, nil
}

func symbolsToStrings(symbols []contracts.Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = string(s)
	}
	return out
}
