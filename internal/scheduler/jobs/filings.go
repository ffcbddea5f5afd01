package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/fundscore/internal/collector"
	"github.com/wonny/fundscore/internal/filings"
	"github.com/wonny/fundscore/internal/watchlist"
	"github.com/wonny/fundscore/pkg/logger"
)

// FilingsPoller reports new result filings (filings.Observer)
type FilingsPoller interface {
	Poll(ctx context.Context) ([]filings.Match, error)
	Release(ctx context.Context, m filings.Match) error
}

// FilingsJob polls exchange filings and evaluates the companies that
// just reported
type FilingsJob struct {
	poller    FilingsPoller
	evaluator BulkEvaluator
	watchlist *watchlist.Watchlist
	config    collector.Config
	logger    *logger.Logger
}

// NewFilingsJob creates a new filings job
func NewFilingsJob(poller FilingsPoller, evaluator BulkEvaluator, wl *watchlist.Watchlist, cfg collector.Config, log *logger.Logger) *FilingsJob {
	return &FilingsJob{
		poller:    poller,
		evaluator: evaluator,
		watchlist: wl,
		config:    cfg,
		logger:    log.WithComponent("job.filings"),
	}
}

// Name returns the job name
func (j *FilingsJob) Name() string {
	return "filings"
}

// Schedule returns the cron schedule (every 15 minutes)
func (j *FilingsJob) Schedule() string {
	return "0 */15 * * * *"
}

// Run polls once. Filings of companies whose evaluation failed are
// released so the next poll picks them up again.
func (j *FilingsJob) Run(ctx context.Context) error {
	matches, err := j.poller.Poll(ctx)
	if err != nil {
		return fmt.Errorf("poll filings: %w", err)
	}
	if len(matches) == 0 {
		j.logger.Debug("No new result filings")
		return nil
	}

	symbols := filings.Symbols(matches)
	summary, err := j.evaluator.EvaluateSymbols(ctx, j.watchlist, symbols, j.config)
	if err != nil {
		j.releaseAll(ctx, matches)
		return fmt.Errorf("evaluate filed companies: %w", err)
	}

	failed := make(map[string]bool)
	for _, item := range summary.Items {
		if !item.Success {
			failed[item.Symbol] = true
		}
	}
	for _, m := range matches {
		if failed[m.Symbol] {
			j.release(ctx, m)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"filings":   len(matches),
		"companies": len(symbols),
		"failed":    len(failed),
	}).Info("Evaluated companies with new filings")

	return nil
}

func (j *FilingsJob) releaseAll(ctx context.Context, matches []filings.Match) {
	for _, m := range matches {
		j.release(ctx, m)
	}
}

func (j *FilingsJob) release(ctx context.Context, m filings.Match) {
	if err := j.poller.Release(ctx, m); err != nil {
		j.logger.WithError(err).WithField("filing_id", m.Filing.ID).Warn("Failed to release filing")
	}
}
