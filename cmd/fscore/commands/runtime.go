package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/fundamentals"
	"github.com/wonny/fscore/internal/metrics"
	"github.com/wonny/fscore/internal/strategyconfig"
	"github.com/wonny/fscore/internal/universe"
	"github.com/wonny/fscore/pkg/config"
	"github.com/wonny/fscore/pkg/database"
	"github.com/wonny/fscore/pkg/httputil"
	"github.com/wonny/fscore/pkg/logger"
	"github.com/wonny/fscore/pkg/redis"
)

// runtime holds what every command builds first
type runtime struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config
	metrics  *metrics.Registry
	selector *universe.Selector
}

// setup loads env config, the strategy file and builds the selector.
// Logs go to logOut.
func setup(logOut io.Writer) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.NewTo(cfg, logOut)

	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}
	strategy, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	// 우선순위: --threshold > FSCORE_THRESHOLD > strategy 파일
	strategy.WithThreshold(cfg.FScoreThreshold).WithThreshold(threshold)

	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	m := metrics.New()
	selector, err := universe.NewSelector(universe.Config{
		Threshold: strategy.Universe.FScoreThreshold,
		MinPrice:  strategy.Universe.MinPrice,
	}, log, m)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:      cfg,
		log:      log,
		strategy: strategy,
		metrics:  m,
		selector: selector,
	}, nil
}

// sourceFlags selects where fundamentals come from
type sourceFlags struct {
	file string // YAML/JSON snapshot
	url  string // remote fscore API
	rps  float64
}

// openSource returns the fundamentals source. Without --file or --url the
// source is Postgres, which needs db. For a file source the snapshot date
// is returned as well.
func (rt *runtime) openSource(f sourceFlags, db *database.DB) (contracts.FundamentalsSource, time.Time, error) {
	switch {
	case f.file != "":
		snap, err := fundamentals.LoadSnapshot(f.file)
		if err != nil {
			return nil, time.Time{}, err
		}
		return fundamentals.NewFileSource(snap), snap.Date, nil

	case f.url != "":
		client := httputil.New(rt.log).WithRateLimit(f.rps, 1)
		return fundamentals.NewHTTPSource(client, f.url), time.Time{}, nil

	default:
		if db == nil {
			return nil, time.Time{}, fmt.Errorf("one of --file or --url is required without a database")
		}
		return fundamentals.NewPostgresSource(db.Pool), time.Time{}, nil
	}
}

// connectDB opens and migrates the database
func (rt *runtime) connectDB(ctx context.Context) (*database.DB, error) {
	db, err := database.New(ctx, rt.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	rt.log.Info("Connected to database")
	return db, nil
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(fundamentals.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// backends are the optional persistence targets of a selection run
type backends struct {
	db        *database.DB
	redis     *redis.Client
	repo      *universe.Repository
	publisher *universe.Publisher
}

// openBackends connects Postgres when withDB is set and Redis when the
// config enables it
func (rt *runtime) openBackends(ctx context.Context, withDB bool) (*backends, error) {
	b := &backends{}

	if withDB {
		db, err := rt.connectDB(ctx)
		if err != nil {
			return nil, err
		}
		b.db = db
		b.repo = universe.NewRepository(db.Pool)
	}

	rc, err := redis.New(ctx, rt.cfg)
	if err != nil {
		b.close()
		return nil, err
	}
	b.redis = rc
	if rc.Enabled() {
		b.publisher = universe.NewPublisher(redis.NewStore(rc, "fscore"), rt.log)
		rt.log.Info("Connected to redis")
	}

	return b, nil
}

// store returns the repository as a SelectionStore, nil when no database
func (b *backends) store() contracts.SelectionStore {
	if b.repo == nil {
		return nil
	}
	return b.repo
}

// publish returns the publisher as a SelectionPublisher, nil when Redis is off
func (b *backends) publish() contracts.SelectionPublisher {
	if b.publisher == nil {
		return nil
	}
	return b.publisher
}

func (b *backends) close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		b.db.Close()
	}
}
