package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/internal/s1_extract"
	"github.com/wonny/fundscore/internal/s2_smoothing"
	"github.com/wonny/fundscore/internal/s3_growth"
	"github.com/wonny/fundscore/internal/s4_reconcile"
	"github.com/wonny/fundscore/internal/s5_scoring"
	"github.com/wonny/fundscore/pkg/logger"
)

// Sources bundles the collaborators a run reads from.
// Events, Prices and Shares are optional.
type Sources struct {
	Statements contracts.StatementSource
	Events     contracts.EventSource
	Prices     contracts.PriceSource
	Shares     contracts.ShareCountSource
}

// Orchestrator coordinates the evaluation pipeline for one company
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	sources Sources

	// Stage components
	extractor  *s1_extract.Extractor
	smoother   *s2_smoothing.Smoother
	calculator *s3_growth.Calculator
	scorer     *s5_scoring.Engine

	logger *logger.Logger
}

// RunConfig holds configuration for a single company run
type RunConfig struct {
	Symbol       string
	PriceSymbol  string // defaults to Symbol
	Consolidated bool
	Entity       contracts.EntityType // forced shape, empty = detect
	Unit         string
	SmoothEPS    bool
	From         contracts.QuarterLabel // zero = open
	To           contracts.QuarterLabel // zero = open
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	Symbol          string
	Success         bool
	CompletedStages []string
	Stages          []contracts.StageResult
	Shares          *float64
	Quarters        []contracts.EvaluatedQuarter
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(sources Sources, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		sources:    sources,
		extractor:  s1_extract.NewExtractor(log),
		smoother:   s2_smoothing.NewSmoother(log),
		calculator: s3_growth.NewCalculator(log),
		scorer:     s5_scoring.NewEngine(log),
		logger:     log.WithComponent("pipeline"),
	}
}

// Run fetches statements and executes every stage
// S0 → S1 → S2 → S3 → S4 → S5
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	startTime := time.Now()
	result := newResult(cfg.Symbol)
	log := o.logger.WithSymbol(cfg.Symbol)

	log.WithFields(map[string]interface{}{
		"consolidated": cfg.Consolidated,
		"entity":       cfg.Entity,
		"from":         labelOrEmpty(cfg.From),
		"to":           labelOrEmpty(cfg.To),
	}).Info("Starting evaluation run")

	if o.sources.Statements == nil {
		return result, fmt.Errorf("S0 failed: no statement source configured")
	}

	// S0: Fetch statements
	stageStart := time.Now()
	stmts, err := o.sources.Statements.GetQuarterlyStatements(ctx, cfg.Symbol, cfg.Consolidated)
	if err != nil {
		result.fail(contracts.StageFetch, stageStart, err)
		return result, fmt.Errorf("S0 failed: %w", err)
	}
	result.complete(contracts.StageFetch, stageStart, 0, len(stmts))

	// S1: Extract canonical records
	stageStart = time.Now()
	records, err := o.extractor.ExtractAll(stmts, s1_extract.Options{Unit: cfg.Unit, Entity: cfg.Entity})
	if err != nil {
		result.fail(contracts.StageExtract, stageStart, err)
		return result, fmt.Errorf("S1 failed: %w", err)
	}
	series := s3_growth.PrepareSeries(records)
	result.complete(contracts.StageExtract, stageStart, len(stmts), len(series))

	if err := ctx.Err(); err != nil {
		return result, err
	}

	// S2: Smooth EPS
	if cfg.SmoothEPS {
		stageStart = time.Now()
		result.Shares = o.shares(ctx, cfg.Symbol)
		series = o.smoother.Smooth(series, result.Shares)
		result.complete(contracts.StageSmoothing, stageStart, len(series), len(series))
	}

	if err := o.runTail(ctx, cfg, series, result); err != nil {
		return result, err
	}

	result.Success = true
	result.Duration = time.Since(startTime)

	log.WithFields(map[string]interface{}{
		"quarters": len(result.Quarters),
		"duration": result.Duration.String(),
	}).Info("Evaluation run completed")

	return result, nil
}

// EvaluateSeries runs growth, reconciliation and scoring over canonical
// records supplied by the caller (S3 → S4 → S5)
func (o *Orchestrator) EvaluateSeries(ctx context.Context, cfg RunConfig, records []contracts.CanonicalQuarterRecord) (*RunResult, error) {
	startTime := time.Now()
	result := newResult(cfg.Symbol)

	if err := o.runTail(ctx, cfg, s3_growth.PrepareSeries(records), result); err != nil {
		return result, err
	}

	result.Success = true
	result.Duration = time.Since(startTime)
	return result, nil
}

// runTail executes S3 → S4 → S5 and stores the quarters on result
func (o *Orchestrator) runTail(ctx context.Context, cfg RunConfig, series []contracts.CanonicalQuarterRecord, result *RunResult) error {
	// S3: Growth over the full series, then cut to the requested range
	stageStart := time.Now()
	growth := s3_growth.FilterRange(o.calculator.Calculate(series), cfg.From, cfg.To)
	result.complete(contracts.StageGrowth, stageStart, len(series), len(growth))

	if err := ctx.Err(); err != nil {
		return err
	}

	// S4: Dates and prices
	stageStart = time.Now()
	events := o.events(ctx, cfg.Symbol)

	reconciler := s4_reconcile.NewReconciler(o.sources.Prices, o.logger)
	dated := reconciler.Reconcile(ctx, priceSymbol(cfg), s4_reconcile.FromGrowth(growth), events)
	result.complete(contracts.StageReconcile, stageStart, len(growth), len(dated))

	if err := ctx.Err(); err != nil {
		return err
	}

	// S5: Scoring
	stageStart = time.Now()
	quarters, err := o.scorer.EvaluateAll(dated)
	if err != nil {
		result.fail(contracts.StageScoring, stageStart, err)
		return fmt.Errorf("S5 failed: %w", err)
	}
	result.complete(contracts.StageScoring, stageStart, len(dated), len(quarters))
	result.Quarters = quarters

	return nil
}

// shares tolerates source failures: smoothing then yields nil EPSSmooth
func (o *Orchestrator) shares(ctx context.Context, symbol string) *float64 {
	if o.sources.Shares == nil {
		return nil
	}

	shares, err := o.sources.Shares.GetSharesOutstanding(ctx, symbol)
	if err != nil {
		o.logger.WithSymbol(symbol).WithError(err).Warn("Share count unavailable, EPSSmooth will be null")
		return nil
	}
	return shares
}

// events tolerates source failures: records then stay undated
func (o *Orchestrator) events(ctx context.Context, symbol string) []contracts.CompanyEvent {
	if o.sources.Events == nil {
		return nil
	}

	events, err := o.sources.Events.GetEvents(ctx, symbol)
	if err != nil {
		o.logger.WithSymbol(symbol).WithError(err).Warn("Events unavailable, dates and prices will be null")
		return nil
	}
	return events
}

func newResult(symbol string) *RunResult {
	return &RunResult{
		Symbol:          symbol,
		CompletedStages: make([]string, 0, len(contracts.AllStages())),
		Stages:          make([]contracts.StageResult, 0, len(contracts.AllStages())),
	}
}

func (r *RunResult) complete(stage contracts.Stage, start time.Time, in, out int) {
	r.CompletedStages = append(r.CompletedStages, stage.String())
	r.Stages = append(r.Stages, contracts.StageResult{
		Stage:       stage,
		Success:     true,
		InputCount:  in,
		OutputCount: out,
		Duration:    time.Since(start).Milliseconds(),
	})
}

func (r *RunResult) fail(stage contracts.Stage, start time.Time, err error) {
	r.Stages = append(r.Stages, contracts.StageResult{
		Stage:    stage,
		Success:  false,
		Duration: time.Since(start).Milliseconds(),
		Error:    err.Error(),
	})
}

func priceSymbol(cfg RunConfig) string {
	if cfg.PriceSymbol != "" {
		return cfg.PriceSymbol
	}
	return cfg.Symbol
}

func labelOrEmpty(q contracts.QuarterLabel) string {
	if q.IsZero() {
		return ""
	}
	return q.String()
}
