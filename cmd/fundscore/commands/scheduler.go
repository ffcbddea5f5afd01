package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscore/internal/collector"
	"github.com/wonny/fundscore/internal/filings"
	"github.com/wonny/fundscore/internal/scheduler"
	"github.com/wonny/fundscore/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 실행합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)

등록되는 작업:
- evaluation: 매일 19:30 (watchlist 전체 평가)
- filings:    15분마다 (신규 실적 공시 → 해당 종목 평가)

Example:
  go run ./cmd/fundscore scheduler start
  go run ./cmd/fundscore scheduler run filings`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
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

var schedulerNoDB bool

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().BoolVar(&schedulerNoDB, "no-db", false, "run jobs without storing results")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := bootstrap(ctx, !schedulerNoDB)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for name, stat := range sched.GetJobStats() {
		next := "-"
		if stat.NextRun != nil {
			next = stat.NextRun.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  - %-12s %-18s next: %s\n", name, stat.Schedule, next)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, cancel := signalContext()
	defer cancel()

	a, err := bootstrap(ctx, !schedulerNoDB)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJob(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %d attempt(s): %s", jobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintJobCompletion(jobName, result.Duration)
	return nil
}

// initScheduler registers the evaluation and filings jobs
func initScheduler(a *app) (*scheduler.Scheduler, error) {
	wl, err := a.watchlist()
	if err != nil {
		return nil, err
	}

	col := a.collector()
	cfg := collector.ConfigFrom(a.cfg)

	observer := filings.NewObserver(a.bse, filings.NewSeenSet(a.redis), wl, 0, a.log)

	sched := scheduler.New(a.log, scheduler.WithRetry(1, 5*time.Minute))

	if err := sched.AddJob(jobs.NewEvaluationJob(col, wl, cfg, "", a.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewFilingsJob(observer, col, wl, cfg, a.log)); err != nil {
		return nil, err
	}

	return sched, nil
}
