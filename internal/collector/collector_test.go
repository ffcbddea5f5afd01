package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/internal/pipeline"
	"github.com/wonny/fundscore/internal/watchlist"
	"github.com/wonny/fundscore/pkg/httputil"
	"github.com/wonny/fundscore/pkg/logger"
)

// fakeRunner fails each symbol a configured number of times
type fakeRunner struct {
	mu       sync.Mutex
	failures map[string]int
	errs     map[string]error
	calls    map[string]int
	configs  map[string]pipeline.RunConfig
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		failures: map[string]int{},
		errs:     map[string]error{},
		calls:    map[string]int{},
		configs:  map[string]pipeline.RunConfig{},
	}
}

func (f *fakeRunner) Run(_ context.Context, cfg pipeline.RunConfig) (*pipeline.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[cfg.Symbol]++
	f.configs[cfg.Symbol] = cfg

	if f.calls[cfg.Symbol] <= f.failures[cfg.Symbol] {
		err := f.errs[cfg.Symbol]
		if err == nil {
			err = errors.New("transient")
		}
		return nil, err
	}

	return &pipeline.RunResult{
		Symbol:   cfg.Symbol,
		Success:  true,
		Quarters: make([]contracts.EvaluatedQuarter, 4),
	}, nil
}

type memRepo struct {
	mu       sync.Mutex
	quarters map[string]int
	runs     []*contracts.BulkRunSummary
}

func (m *memRepo) SaveQuarters(_ context.Context, symbol string, q []contracts.EvaluatedQuarter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quarters == nil {
		m.quarters = map[string]int{}
	}
	m.quarters[symbol] = len(q)
	return len(q), nil
}

func (m *memRepo) GetQuarters(context.Context, string) ([]contracts.EvaluatedQuarter, error) {
	return nil, nil
}

func (m *memRepo) SaveRun(_ context.Context, s *contracts.BulkRunSummary) error {
	m.runs = append(m.runs, s)
	return nil
}

func (m *memRepo) GetLatestRun(context.Context) (*contracts.BulkRunSummary, error) {
	return nil, nil
}

func testWatchlist(t *testing.T) *watchlist.Watchlist {
	t.Helper()
	wl, err := watchlist.Parse([]byte(`
defaults:
  consolidated: true
companies:
  - symbol: TCS
    price_symbol: TCS.NS
  - symbol: INFY
  - symbol: BAJFINANCE
    sector: nbfc
    consolidated: false
  - symbol: WIPRO
`))
	require.NoError(t, err)
	return wl
}

func fastConfig() Config {
	return Config{Workers: 2, MaxRetries: 2, RetryDelay: time.Millisecond, Unit: "million", SmoothEPS: true}
}

func TestEvaluateAll(t *testing.T) {
	runner := newFakeRunner()
	runner.failures["INFY"] = 1       // 재시도 후 성공
	runner.failures["WIPRO"] = 10     // 재시도 소진
	runner.failures["BAJFINANCE"] = 1 // 재시도 불가 오류
	runner.errs["BAJFINANCE"] = fmt.Errorf("S1 failed: %w", contracts.ErrNoStatements)

	repo := &memRepo{}
	c := NewCollector(runner, repo, logger.Nop())

	summary, err := c.EvaluateAll(context.Background(), testWatchlist(t), fastConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Len(t, summary.WatchlistHash, 64)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))

	// 결과 순서는 watchlist 순서
	require.Len(t, summary.Items, 4)
	assert.Equal(t, "TCS", summary.Items[0].Symbol)
	assert.True(t, summary.Items[0].Success)
	assert.Equal(t, 1, summary.Items[0].Attempts)
	assert.Equal(t, 4, summary.Items[0].Quarters)

	assert.Equal(t, "INFY", summary.Items[1].Symbol)
	assert.True(t, summary.Items[1].Success)
	assert.Equal(t, 2, summary.Items[1].Attempts)

	assert.Equal(t, "BAJFINANCE", summary.Items[2].Symbol)
	assert.False(t, summary.Items[2].Success)
	assert.Equal(t, 1, summary.Items[2].Attempts)

	assert.Equal(t, "WIPRO", summary.Items[3].Symbol)
	assert.False(t, summary.Items[3].Success)
	assert.Equal(t, 3, summary.Items[3].Attempts)
	assert.Contains(t, summary.Items[3].Error, "transient")

	// 저장
	assert.Equal(t, map[string]int{"TCS": 4, "INFY": 4}, repo.quarters)
	require.Len(t, repo.runs, 1)
	assert.Equal(t, summary.RunID, repo.runs[0].RunID)

	// RunConfig 매핑
	assert.Equal(t, "TCS.NS", runner.configs["TCS"].PriceSymbol)
	assert.True(t, runner.configs["TCS"].Consolidated)
	assert.False(t, runner.configs["BAJFINANCE"].Consolidated)
	assert.Equal(t, contracts.EntityNBFC, runner.configs["BAJFINANCE"].Entity)
	assert.True(t, runner.configs["INFY"].SmoothEPS)
}

func TestEvaluateSymbols_Unknown(t *testing.T) {
	c := NewCollector(newFakeRunner(), nil, logger.Nop())
	_, err := c.EvaluateSymbols(context.Background(), testWatchlist(t), []string{"NOPE"}, fastConfig())
	assert.Error(t, err)
}

func TestEvaluateSymbols_Subset(t *testing.T) {
	runner := newFakeRunner()
	c := NewCollector(runner, nil, logger.Nop())

	summary, err := c.EvaluateSymbols(context.Background(), testWatchlist(t), []string{"wipro"}, fastConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, runner.calls["TCS"])
}

func TestEvaluateAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(newFakeRunner(), nil, logger.Nop())
	summary, err := c.EvaluateAll(ctx, testWatchlist(t), fastConfig())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Failed)
	for _, item := range summary.Items {
		assert.Equal(t, context.Canceled.Error(), item.Error)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"generic", errors.New("boom"), true},
		{"cancelled", fmt.Errorf("x: %w", context.Canceled), false},
		{"deadline", context.DeadlineExceeded, false},
		{"no statements", fmt.Errorf("S1 failed: %w", contracts.ErrNoStatements), false},
		{"not found", fmt.Errorf("S0 failed: %w", &httputil.StatusError{URL: "u", StatusCode: 404}), false},
		{"server error", &httputil.StatusError{URL: "u", StatusCode: 503}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}
