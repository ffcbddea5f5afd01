package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/fundscore/internal/collector"
	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/internal/pipeline"
	"github.com/wonny/fundscore/internal/s3_growth"
	"github.com/wonny/fundscore/internal/watchlist"
	"github.com/wonny/fundscore/pkg/httputil"
	"github.com/wonny/fundscore/pkg/logger"
)

// PerformanceHandler serves evaluated quarters and on-demand evaluations
// ⭐ SSOT: 성과 API 핸들러는 이 구조체에서만
type PerformanceHandler struct {
	repo      contracts.PerformanceRepository // nil = 조회 API 비활성
	runner    collector.Runner
	watchlist *watchlist.Watchlist // optional
	config    collector.Config
	logger    *logger.Logger
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(
	repo contracts.PerformanceRepository,
	runner collector.Runner,
	wl *watchlist.Watchlist,
	cfg collector.Config,
	log *logger.Logger,
) *PerformanceHandler {
	return &PerformanceHandler{
		repo:      repo,
		runner:    runner,
		watchlist: wl,
		config:    cfg,
		logger:    log.WithComponent("api.performance"),
	}
}

// EvaluateRequest is the optional body of an evaluate call
type EvaluateRequest struct {
	From         string `json:"from"` // 2023-Jun
	To           string `json:"to"`
	Consolidated *bool  `json:"consolidated"`
	Save         *bool  `json:"save"` // default true when a repository is configured
}

// EvaluateResponse is returned by an evaluate call
type EvaluateResponse struct {
	Symbol     string                       `json:"symbol"`
	Stages     []string                     `json:"stages"`
	DurationMs int64                        `json:"duration_ms"`
	Saved      bool                         `json:"saved"`
	Quarters   []contracts.EvaluatedQuarter `json:"quarters"`
}

// GetPerformance returns stored quarters for a company
// GET /api/performance/{symbol}?from=2023-Jun&to=2024-Mar
func (h *PerformanceHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage not configured")
		return
	}

	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	from, to, err := parseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	quarters, err := h.repo.GetQuarters(r.Context(), symbol)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to get quarters")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve performance")
		return
	}

	quarters = filterQuarters(quarters, from, to)
	if len(quarters) == 0 {
		respondError(w, http.StatusNotFound, "No evaluated quarters for "+symbol)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"count":    len(quarters),
		"quarters": quarters,
	})
}

// Evaluate runs the pipeline for one company now
// POST /api/performance/{symbol}/evaluate
func (h *PerformanceHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := h.config
	cfg.From, cfg.To = from, to
	rc := h.runConfig(symbol, cfg)
	if req.Consolidated != nil {
		rc.Consolidated = *req.Consolidated
	}

	result, err := h.runner.Run(ctx, rc)
	if err != nil {
		status := evaluateStatus(err)
		h.logger.WithError(err).WithField("symbol", symbol).Warn("On-demand evaluation failed")
		respondError(w, status, err.Error())
		return
	}

	resp := EvaluateResponse{
		Symbol:     symbol,
		Stages:     result.CompletedStages,
		DurationMs: result.Duration.Milliseconds(),
		Quarters:   result.Quarters,
	}

	if h.repo != nil && (req.Save == nil || *req.Save) {
		if _, err := h.repo.SaveQuarters(ctx, symbol, result.Quarters); err != nil {
			h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to save quarters")
			respondError(w, http.StatusInternalServerError, "Evaluation succeeded but saving failed")
			return
		}
		resp.Saved = true
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetLatestRun returns the most recent bulk run summary
// GET /api/runs/latest
func (h *PerformanceHandler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage not configured")
		return
	}

	run, err := h.repo.GetLatestRun(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest run")
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "No runs recorded")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// GetWatchlist returns the configured companies
// GET /api/watchlist
func (h *PerformanceHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	if h.watchlist == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"companies": []watchlist.Entry{}})
		return
	}
	respondJSON(w, http.StatusOK, h.watchlist)
}

// runConfig uses the watchlist entry when the symbol is listed
func (h *PerformanceHandler) runConfig(symbol string, cfg collector.Config) pipeline.RunConfig {
	if h.watchlist != nil {
		if e, ok := h.watchlist.Find(symbol); ok {
			return collector.RunConfigFor(h.watchlist, e, cfg)
		}
	}
	return pipeline.RunConfig{
		Symbol:       symbol,
		Consolidated: true,
		Unit:         cfg.Unit,
		SmoothEPS:    cfg.SmoothEPS,
		From:         cfg.From,
		To:           cfg.To,
	}
}

// evaluateStatus maps a pipeline error onto an HTTP status
func evaluateStatus(err error) int {
	switch {
	case httputil.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrNoStatements):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func parseRange(fromStr, toStr string) (contracts.QuarterLabel, contracts.QuarterLabel, error) {
	var from, to contracts.QuarterLabel
	var err error

	if fromStr != "" {
		if from, err = contracts.ParseQuarterLabel(fromStr); err != nil {
			return from, to, err
		}
	}
	if toStr != "" {
		if to, err = contracts.ParseQuarterLabel(toStr); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

// filterQuarters keeps stored quarters within [from, to]
func filterQuarters(quarters []contracts.EvaluatedQuarter, from, to contracts.QuarterLabel) []contracts.EvaluatedQuarter {
	if from.IsZero() && to.IsZero() {
		return quarters
	}

	out := make([]contracts.EvaluatedQuarter, 0, len(quarters))
	for _, q := range quarters {
		if s3_growth.InRange(q.Quarter, from, to) {
			out = append(out, q)
		}
	}
	return out
}
