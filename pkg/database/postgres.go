package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fscore/pkg/config"
)

// DB wraps the pgxpool.Pool
// ⭐ SSOT: DB 연결은 이 패키지에서만 생성
type DB struct {
	Pool *pgxpool.Pool
}

// schema holds the tables read by the fundamentals source and written by the
// universe repository. Statements are idempotent.
var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS fscore`,
	`CREATE TABLE IF NOT EXISTS fscore.coarse_fundamentals (
		trade_date           DATE        NOT NULL,
		symbol               TEXT        NOT NULL,
		price                DOUBLE PRECISION NOT NULL,
		dollar_volume        DOUBLE PRECISION NOT NULL DEFAULT 0,
		has_fundamental_data BOOLEAN     NOT NULL DEFAULT FALSE,
		PRIMARY KEY (trade_date, symbol)
	)`,
	`CREATE TABLE IF NOT EXISTS fscore.fine_fundamentals (
		trade_date        DATE NOT NULL,
		symbol            TEXT NOT NULL,
		sector            TEXT NOT NULL DEFAULT '',
		roa_3m            DOUBLE PRECISION,
		roa_1y            DOUBLE PRECISION,
		ocf_3m            DOUBLE PRECISION,
		ocf_1y            DOUBLE PRECISION,
		total_assets_3m   DOUBLE PRECISION,
		total_assets_1y   DOUBLE PRECISION,
		lt_debt_equity_3m DOUBLE PRECISION,
		lt_debt_equity_1y DOUBLE PRECISION,
		current_ratio_3m  DOUBLE PRECISION,
		current_ratio_1y  DOUBLE PRECISION,
		shares_issued_3m  DOUBLE PRECISION,
		shares_issued_12m DOUBLE PRECISION,
		gross_margin_3m   DOUBLE PRECISION,
		gross_margin_1y   DOUBLE PRECISION,
		asset_turnover_3m DOUBLE PRECISION,
		asset_turnover_1y DOUBLE PRECISION,
		PRIMARY KEY (trade_date, symbol)
	)`,
	`CREATE TABLE IF NOT EXISTS fscore.universe_selections (
		run_id         UUID        PRIMARY KEY,
		selection_date DATE        NOT NULL,
		threshold      INT         NOT NULL,
		coarse_count   INT         NOT NULL,
		scored_count   INT         NOT NULL,
		symbols        TEXT[]      NOT NULL,
		scores         JSONB       NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_universe_selections_date
		ON fscore.universe_selections (selection_date DESC, created_at DESC)`,
}

// New creates a new database connection pool
// ⭐ SSOT: 유일하게 pgxpool.NewWithConfig()를 호출하는 함수
func New(ctx context.Context, cfg *config.Config) (*DB, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Migrate creates the fscore schema if it does not exist
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// HealthStatus represents the health status of the database
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Timestamp     time.Time     `json:"timestamp"`
	ResponseTime  time.Duration `json:"response_time"`
	Error         string        `json:"error,omitempty"`
	AcquiredConns int32         `json:"acquired_conns"`
	IdleConns     int32         `json:"idle_conns"`
	MaxConns      int32         `json:"max_conns"`
}

// HealthCheck pings the pool and reports connection counts
func (db *DB) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{Timestamp: time.Now()}

	start := time.Now()
	if err := db.Pool.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status, err
	}
	status.ResponseTime = time.Since(start)

	stats := db.Pool.Stat()
	status.AcquiredConns = stats.AcquiredConns()
	status.IdleConns = stats.IdleConns()
	status.MaxConns = stats.MaxConns()
	status.Healthy = true

	return status, nil
}
