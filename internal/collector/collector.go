package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/internal/pipeline"
	"github.com/wonny/fundscore/internal/watchlist"
	"github.com/wonny/fundscore/pkg/config"
	"github.com/wonny/fundscore/pkg/httputil"
	"github.com/wonny/fundscore/pkg/logger"
)

// Runner evaluates a single company (pipeline.Orchestrator)
type Runner interface {
	Run(ctx context.Context, cfg pipeline.RunConfig) (*pipeline.RunResult, error)
}

// Collector evaluates many companies with a bounded worker pool
// ⭐ SSOT: 일괄 평가 오케스트레이션은 이 패키지에서만
type Collector struct {
	runner Runner
	repo   contracts.PerformanceRepository // nil = 저장 안 함
	logger *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers    int           // Number of concurrent workers
	MaxRetries int           // Retries after the first attempt
	RetryDelay time.Duration // Linear backoff step
	Unit       string
	SmoothEPS  bool
	From       contracts.QuarterLabel
	To         contracts.QuarterLabel
}

// ConfigFrom builds a collector config from application config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Workers:    cfg.Pipeline.Workers,
		MaxRetries: cfg.Pipeline.MaxRetries,
		RetryDelay: cfg.Pipeline.RetryDelay,
		Unit:       cfg.Aggregator.Unit,
		SmoothEPS:  cfg.Pipeline.SmoothEPS,
	}
}

// NewCollector creates a new Collector instance
func NewCollector(runner Runner, repo contracts.PerformanceRepository, log *logger.Logger) *Collector {
	return &Collector{
		runner: runner,
		repo:   repo,
		logger: log.WithComponent("collector"),
	}
}

// job is one company queued for a worker
type job struct {
	index int
	entry watchlist.Entry
}

// RunConfigFor maps a watchlist entry onto a pipeline run
func RunConfigFor(wl *watchlist.Watchlist, e watchlist.Entry, cfg Config) pipeline.RunConfig {
	return pipeline.RunConfig{
		Symbol:       e.Symbol,
		PriceSymbol:  e.PriceSym(),
		Consolidated: wl.IsConsolidated(e),
		Entity:       e.Entity(),
		Unit:         cfg.Unit,
		SmoothEPS:    cfg.SmoothEPS,
		From:         cfg.From,
		To:           cfg.To,
	}
}

// EvaluateAll runs every watchlist company
func (c *Collector) EvaluateAll(ctx context.Context, wl *watchlist.Watchlist, cfg Config) (*contracts.BulkRunSummary, error) {
	return c.EvaluateSymbols(ctx, wl, wl.Symbols(), cfg)
}

// EvaluateSymbols runs the given watchlist symbols and returns a run summary.
// Per-company failures are recorded in the summary, never returned.
func (c *Collector) EvaluateSymbols(ctx context.Context, wl *watchlist.Watchlist, symbols []string, cfg Config) (*contracts.BulkRunSummary, error) {
	entries := make([]watchlist.Entry, 0, len(symbols))
	for _, sym := range symbols {
		e, ok := wl.Find(sym)
		if !ok {
			return nil, fmt.Errorf("symbol %s not in watchlist", sym)
		}
		entries = append(entries, e)
	}

	hash, err := watchlist.Hash(wl)
	if err != nil {
		return nil, fmt.Errorf("hash watchlist: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 3
	}

	summary := &contracts.BulkRunSummary{
		RunID:         uuid.New().String(),
		WatchlistHash: hash,
		StartedAt:     time.Now(),
		Total:         len(entries),
		Items:         make([]contracts.ItemResult, len(entries)),
	}

	log := c.logger.WithField("run_id", summary.RunID)
	log.WithFields(map[string]interface{}{
		"companies": len(entries),
		"workers":   workers,
	}).Info("Starting bulk evaluation")

	// Worker pool
	var wg sync.WaitGroup
	jobCh := make(chan job, len(entries))

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.worker(ctx, workerID, wl, cfg, jobCh, summary.Items)
		}(i)
	}

	for i, e := range entries {
		jobCh <- job{index: i, entry: e}
	}
	close(jobCh)

	wg.Wait()

	for _, item := range summary.Items {
		if item.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	summary.FinishedAt = time.Now()

	if c.repo != nil {
		if err := c.repo.SaveRun(ctx, summary); err != nil {
			return summary, fmt.Errorf("save run: %w", err)
		}
	}

	log.WithFields(map[string]interface{}{
		"success":  summary.Succeeded,
		"failed":   summary.Failed,
		"total":    summary.Total,
		"duration": summary.Duration().String(),
	}).Info("Bulk evaluation completed")

	return summary, nil
}

// worker drains jobCh. Each job writes only its own slot in items.
func (c *Collector) worker(ctx context.Context, workerID int, wl *watchlist.Watchlist, cfg Config, jobCh <-chan job, items []contracts.ItemResult) {
	for j := range jobCh {
		item := contracts.ItemResult{Symbol: j.entry.Symbol}

		if err := ctx.Err(); err != nil {
			item.Error = err.Error()
			items[j.index] = item
			continue
		}

		result, attempts, err := c.runWithRetry(ctx, RunConfigFor(wl, j.entry, cfg), cfg)
		item.Attempts = attempts

		if err == nil && c.repo != nil {
			if _, saveErr := c.repo.SaveQuarters(ctx, j.entry.Symbol, result.Quarters); saveErr != nil {
				err = fmt.Errorf("save quarters: %w", saveErr)
			}
		}

		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker":   workerID,
				"symbol":   j.entry.Symbol,
				"attempts": attempts,
			}).Error("Company evaluation failed")
			item.Error = err.Error()
			items[j.index] = item
			continue
		}

		item.Success = true
		item.Quarters = len(result.Quarters)
		items[j.index] = item

		c.logger.WithFields(map[string]interface{}{
			"worker":   workerID,
			"symbol":   j.entry.Symbol,
			"quarters": item.Quarters,
		}).Debug("Company evaluated")
	}
}

// runWithRetry retries transient failures with linear backoff
func (c *Collector) runWithRetry(ctx context.Context, rc pipeline.RunConfig, cfg Config) (*pipeline.RunResult, int, error) {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxRetries+1; attempt++ {
		result, err := c.runner.Run(ctx, rc)
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if !Retryable(err) || attempt > cfg.MaxRetries {
			return nil, attempt, lastErr
		}

		c.logger.WithSymbol(rc.Symbol).WithFields(map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		}).Warn("Retrying company evaluation")

		select {
		case <-ctx.Done():
			return nil, attempt, ctx.Err()
		case <-time.After(cfg.RetryDelay * time.Duration(attempt)):
		}
	}

	return nil, cfg.MaxRetries + 1, lastErr
}

// Retryable reports whether a failed run is worth another attempt.
// Missing pages, empty statements and cancellation are final.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, contracts.ErrNoStatements):
		return false
	case httputil.IsNotFound(err):
		return false
	default:
		return true
	}
}
