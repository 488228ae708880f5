package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fscore/internal/api"
	"github.com/wonny/fscore/internal/api/handlers"
	"github.com/wonny/fscore/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                   - Health check (db, redis)
  GET  /metrics                  - Prometheus metrics
  POST /api/fscore               - F-Score 계산
  GET  /api/universe/latest      - 최신 선정 결과
  GET  /api/universe?date=       - 날짜별 선정 결과
  POST /api/universe/select      - 선정 즉시 실행
  GET  /api/fundamentals/coarse  - coarse 데이터 조회
  POST /api/fundamentals/fine    - fine 데이터 조회
  GET  /api/fundamentals/quality - fine 데이터 커버리지
  GET  /api/jobs                 - 스케줄러 작업 상태 (--with-scheduler)

Example:
  go run ./cmd/fscore api
  go run ./cmd/fscore api --port 8089 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
	apiSource        sourceFlags
	apiRetention     int
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: $PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "run the selection scheduler in-process")
	apiCmd.Flags().StringVar(&apiSource.file, "file", "", "snapshot file source (default: PostgreSQL)")
	apiCmd.Flags().StringVar(&apiSource.url, "url", "", "upstream fscore API source base URL")
	apiCmd.Flags().Float64Var(&apiSource.rps, "rps", 5, "request rate limit for --url (0 = unlimited)")
	apiCmd.Flags().IntVar(&apiRetention, "retention-days", 365, "days of selection history to keep")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	out := cmd.OutOrStdout()

	// 1. Load config + strategy
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	rt.log.WithFields(map[string]interface{}{
		"port":      rt.cfg.Port,
		"env":       rt.cfg.Env,
		"threshold": rt.selector.Threshold(),
	}).Info("Initializing API server")

	// 2. Connect to database / redis
	useDB := rt.cfg.Database.URL != ""
	b, err := rt.openBackends(ctx, useDB)
	if err != nil {
		return err
	}
	defer b.close()

	// 3. Handlers
	h := api.Handlers{
		FScore: handlers.NewFScoreHandler(rt.selector.Threshold(), rt.log),
		Health: map[string]api.HealthChecker{},
	}
	if rt.cfg.MetricsEnabled {
		h.Metrics = rt.metrics.Handler()
	}

	var reader handlers.SelectionReader
	if b.repo != nil {
		reader = b.repo
		h.Health["database"] = b.db.Ping
	}
	var cache handlers.SelectionCache
	if b.publisher != nil {
		cache = b.publisher
		h.Health["redis"] = func(ctx context.Context) error {
			return b.redis.Redis().Ping(ctx).Err()
		}
	}

	// 소스가 없으면 선정/fundamentals 엔드포인트 비활성화
	var runner handlers.SelectionRunner
	if b.db != nil || apiSource.file != "" || apiSource.url != "" {
		source, _, err := rt.openSource(apiSource, b.db)
		if err != nil {
			return err
		}
		h.Fundamentals = handlers.NewFundamentalsHandler(source, rt.log)

		if apiWithScheduler {
			s, err := newScheduled(rt, b, apiSource, apiRetention)
			if err != nil {
				return fmt.Errorf("init scheduler: %w", err)
			}
			s.scheduler.Start()
			defer s.scheduler.Stop()

			runner = s.selection
			h.Jobs = handlers.NewJobsHandler(s.scheduler)
		} else {
			runner = jobs.NewSelectionJob(rt.selector, source, b.store(), b.publish(), "", nil, rt.log)
		}
	} else {
		rt.log.Warn("No fundamentals source configured, selection endpoints disabled")
	}
	h.Universe = handlers.NewUniverseHandler(reader, cache, runner, rt.log)

	// 4. Create router + server
	router := api.NewRouter(h, rt.log)
	server := api.New(rt.cfg, rt.log, router)

	// 5. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	rt.log.Info("API server started successfully")
	PrintSuccess(out, fmt.Sprintf("Server running on http://localhost:%s", rt.cfg.Port))
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	rt.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	rt.log.Info("Server stopped")
	return nil
}

