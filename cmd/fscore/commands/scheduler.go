package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fscore/internal/scheduler"
	"github.com/wonny/fscore/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `유니버스 선정 스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록 + 다음 실행 시각
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/fscore scheduler start
  go run ./cmd/fscore scheduler list
  go run ./cmd/fscore scheduler run universe_selection`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- universe_selection: 평일 meta.selection_time_local (meta.timezone)
- selection_retention: 매주 일요일 03:00 (DB 사용 시)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var (
	schedulerSource    sourceFlags
	schedulerRetention int
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerSource.file, "file", "", "snapshot file source (default: PostgreSQL)")
	schedulerCmd.PersistentFlags().StringVar(&schedulerSource.url, "url", "", "fscore API source base URL")
	schedulerCmd.PersistentFlags().Float64Var(&schedulerSource.rps, "rps", 5, "request rate limit for --url (0 = unlimited)")
	schedulerCmd.PersistentFlags().IntVar(&schedulerRetention, "retention-days", 365, "days of selection history to keep")
}

// scheduled is a scheduler with its selection job
type scheduled struct {
	scheduler *scheduler.Scheduler
	selection *jobs.SelectionJob
}

// newScheduled registers the selection job, plus the retention job when a
// database is connected
func newScheduled(rt *runtime, b *backends, src sourceFlags, retentionDays int) (*scheduled, error) {
	loc, err := time.LoadLocation(rt.strategy.Meta.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	schedule, err := scheduler.DailyAt(rt.strategy.Meta.SelectionTimeLocal)
	if err != nil {
		return nil, err
	}

	source, _, err := rt.openSource(src, b.db)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(rt.log, loc, scheduler.WithRetry(3, 30*time.Second))

	selection := jobs.NewSelectionJob(rt.selector, source, b.store(), b.publish(), schedule, loc, rt.log)
	if err := sched.AddJob(selection); err != nil {
		return nil, err
	}

	if b.repo != nil && retentionDays > 0 {
		retention := time.Duration(retentionDays) * 24 * time.Hour
		if err := sched.AddJob(jobs.NewRetentionJob(b.repo, retention, rt.log)); err != nil {
			return nil, err
		}
	}

	return &scheduled{scheduler: sched, selection: selection}, nil
}

// initScheduler builds everything the scheduler subcommands need
func initScheduler(cmd *cobra.Command) (*scheduled, *backends, error) {
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	useDB := rt.cfg.Database.URL != "" || (schedulerSource.file == "" && schedulerSource.url == "")
	b, err := rt.openBackends(cmdContext(cmd), useDB)
	if err != nil {
		return nil, nil, err
	}

	s, err := newScheduled(rt, b, schedulerSource, schedulerRetention)
	if err != nil {
		b.close()
		return nil, nil, err
	}
	return s, b, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	s, b, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer b.close()

	s.scheduler.Start()

	PrintSuccess(out, "Scheduler started successfully")
	printJobs(out, s.scheduler)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(out, "\nShutting down scheduler...")
	s.scheduler.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	s, b, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer b.close()

	printJobs(cmd.OutOrStdout(), s.scheduler)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	out := cmd.OutOrStdout()

	s, b, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer b.close()

	PrintInfo(out, fmt.Sprintf("Running job: %s", jobName))

	result, err := s.scheduler.RunJob(cmdContext(cmd), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", jobName, result.Error)
	}

	PrintSuccess(out, fmt.Sprintf("%s finished in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func printJobs(w io.Writer, sched *scheduler.Scheduler) {
	widths := []int{22, 18, 20}
	fmt.Fprintln(w, "\nRegistered jobs:")
	PrintTableHeader(w, []string{"Job", "Schedule", "Next run"}, widths)

	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		next := "-"
		if t, ok := sched.NextRun(name); ok && !t.IsZero() {
			next = t.Format("2006-01-02 15:04")
		}
		PrintTableRow(w, []string{name, stats[name].Schedule, next}, widths)
	}
}

// cmdContext returns the command context or Background
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
