package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/fundscore/internal/collector"
	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/internal/watchlist"
	"github.com/wonny/fundscore/pkg/logger"
)

// BulkEvaluator runs a set of watchlist companies (collector.Collector)
type BulkEvaluator interface {
	EvaluateSymbols(ctx context.Context, wl *watchlist.Watchlist, symbols []string, cfg collector.Config) (*contracts.BulkRunSummary, error)
}

// EvaluationJob re-evaluates the whole watchlist daily
// ⭐ SSOT: 일괄 평가 스케줄은 이 Job에서만
type EvaluationJob struct {
	evaluator BulkEvaluator
	watchlist *watchlist.Watchlist
	config    collector.Config
	schedule  string
	logger    *logger.Logger
}

// DefaultEvaluationSchedule runs after the Indian market close
const DefaultEvaluationSchedule = "0 30 19 * * *" // 7:30 PM daily (with seconds)

// NewEvaluationJob creates a new evaluation job; empty schedule = default
func NewEvaluationJob(evaluator BulkEvaluator, wl *watchlist.Watchlist, cfg collector.Config, schedule string, log *logger.Logger) *EvaluationJob {
	if schedule == "" {
		schedule = DefaultEvaluationSchedule
	}
	return &EvaluationJob{
		evaluator: evaluator,
		watchlist: wl,
		config:    cfg,
		schedule:  schedule,
		logger:    log.WithComponent("job.evaluation"),
	}
}

// Name returns the job name
func (j *EvaluationJob) Name() string {
	return "evaluation"
}

// Schedule returns the cron schedule
func (j *EvaluationJob) Schedule() string {
	return j.schedule
}

// Run evaluates every company. Individual company failures do not fail
// the job; only a run that could not start or persist does.
func (j *EvaluationJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled evaluation")

	summary, err := j.evaluator.EvaluateSymbols(ctx, j.watchlist, j.watchlist.Symbols(), j.config)
	if err != nil {
		return fmt.Errorf("bulk evaluation: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":    summary.RunID,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("Scheduled evaluation completed")

	return nil
}
