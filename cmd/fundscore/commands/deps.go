package commands

import (
	"context"
	"fmt"

	"github.com/wonny/fundscore/internal/collector"
	"github.com/wonny/fundscore/internal/external/aggregator"
	"github.com/wonny/fundscore/internal/external/bse"
	"github.com/wonny/fundscore/internal/external/pricehistory"
	"github.com/wonny/fundscore/internal/pipeline"
	"github.com/wonny/fundscore/internal/repository"
	"github.com/wonny/fundscore/internal/watchlist"
	"github.com/wonny/fundscore/pkg/config"
	"github.com/wonny/fundscore/pkg/database"
	"github.com/wonny/fundscore/pkg/httputil"
	"github.com/wonny/fundscore/pkg/logger"
	"github.com/wonny/fundscore/pkg/redis"
)

// app bundles the wired dependencies shared by commands
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	redis  *redis.Client
	db     *database.DB           // nil unless storage was requested
	repo   *repository.Repository // nil unless storage was requested
	orch   *pipeline.Orchestrator
	bse    *bse.Client
	wlPath string
}

// bootstrap loads config and wires collaborators.
// withDB connects to PostgreSQL and ensures the schema exists.
func bootstrap(ctx context.Context, withDB bool) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Redis (disabled client when REDIS_ENABLED=false)
	rc, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	a := &app{cfg: cfg, log: log, redis: rc, wlPath: cfg.Pipeline.WatchlistPath}
	if watchlistPath != "" {
		a.wlPath = watchlistPath
	}

	// 4. Database
	if withDB {
		db, err := database.New(ctx, cfg)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.repo = repository.NewRepository(db.Pool)

		if err := a.repo.EnsureSchema(ctx); err != nil {
			a.close()
			return nil, err
		}
		log.Info("Connected to database")
	}

	// 5. Collaborator clients (각 클라이언트는 전용 httputil.Client 사용)
	limiter := redis.NewRateLimiter(rc, "fundscore")

	aggHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.AggregatorRateLimit)
	agg := aggregator.NewClient(aggHTTP, redis.NewCache(rc, "fundscore"), cfg.Aggregator.BaseURL, log)

	prices := pricehistory.NewClient(httputil.New(cfg, log), cfg.PriceHistory.BaseURL,
		cfg.PriceHistory.APIKey, cfg.PriceHistory.RateLimit, log)

	bseHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.BSERateLimit)
	a.bse = bse.NewClient(bseHTTP, cfg.BSE.BaseURL, log)

	// 6. Pipeline
	a.orch = pipeline.NewOrchestrator(pipeline.Sources{
		Statements: agg,
		Events:     agg,
		Prices:     prices,
		Shares:     agg,
	}, log)

	return a, nil
}

// watchlist loads the configured watchlist file
func (a *app) watchlist() (*watchlist.Watchlist, error) {
	wl, err := watchlist.Load(a.wlPath)
	if err != nil {
		return nil, fmt.Errorf("load watchlist %s: %w", a.wlPath, err)
	}
	return wl, nil
}

// collector builds a bulk collector writing to the repository when present
func (a *app) collector() *collector.Collector {
	if a.repo == nil {
		return collector.NewCollector(a.orch, nil, a.log)
	}
	return collector.NewCollector(a.orch, a.repo, a.log)
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
