package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscore/internal/collector"
	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/internal/external/bse"
	"github.com/wonny/fundscore/internal/filings"
	"github.com/wonny/fundscore/internal/watchlist"
	"github.com/wonny/fundscore/pkg/config"
	"github.com/wonny/fundscore/pkg/logger"
	"github.com/wonny/fundscore/pkg/redis"
)

type fakeEvaluator struct {
	symbols [][]string
	failing map[string]bool
	err     error
}

func (f *fakeEvaluator) EvaluateSymbols(_ context.Context, _ *watchlist.Watchlist, symbols []string, _ collector.Config) (*contracts.BulkRunSummary, error) {
	f.symbols = append(f.symbols, symbols)
	if f.err != nil {
		return nil, f.err
	}

	s := &contracts.BulkRunSummary{RunID: "run-1", Total: len(symbols)}
	for _, sym := range symbols {
		ok := !f.failing[sym]
		s.Items = append(s.Items, contracts.ItemResult{Symbol: sym, Success: ok})
		if ok {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s, nil
}

type fakePoller struct {
	matches  []filings.Match
	err      error
	released []string
}

func (f *fakePoller) Poll(context.Context) ([]filings.Match, error) {
	return f.matches, f.err
}

func (f *fakePoller) Release(_ context.Context, m filings.Match) error {
	f.released = append(f.released, m.Filing.ID)
	return nil
}

func testWatchlist(t *testing.T) *watchlist.Watchlist {
	t.Helper()
	wl, err := watchlist.Parse([]byte("companies:\n  - symbol: TCS\n  - symbol: INFY\n"))
	require.NoError(t, err)
	return wl
}

func TestEvaluationJob(t *testing.T) {
	ev := &fakeEvaluator{failing: map[string]bool{"INFY": true}}
	job := NewEvaluationJob(ev, testWatchlist(t), collector.Config{}, "", logger.Nop())

	assert.Equal(t, "evaluation", job.Name())
	assert.Equal(t, DefaultEvaluationSchedule, job.Schedule())

	// 개별 종목 실패는 Job 실패가 아님
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, [][]string{{"TCS", "INFY"}}, ev.symbols)

	ev.err = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))
}

func TestFilingsJob(t *testing.T) {
	poller := &fakePoller{matches: []filings.Match{
		{Symbol: "TCS", Filing: bse.Filing{ID: "a"}},
		{Symbol: "INFY", Filing: bse.Filing{ID: "b"}},
		{Symbol: "TCS", Filing: bse.Filing{ID: "c"}},
	}}
	ev := &fakeEvaluator{failing: map[string]bool{"INFY": true}}
	job := NewFilingsJob(poller, ev, testWatchlist(t), collector.Config{}, logger.Nop())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, [][]string{{"TCS", "INFY"}}, ev.symbols)
	assert.Equal(t, []string{"b"}, poller.released)
}

func TestFilingsJob_NothingNew(t *testing.T) {
	ev := &fakeEvaluator{}
	job := NewFilingsJob(&fakePoller{}, ev, testWatchlist(t), collector.Config{}, logger.Nop())

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, ev.symbols)
}

func TestFilingsJob_EvaluationError(t *testing.T) {
	poller := &fakePoller{matches: []filings.Match{{Symbol: "TCS", Filing: bse.Filing{ID: "a"}}}}
	ev := &fakeEvaluator{err: errors.New("boom")}
	job := NewFilingsJob(poller, ev, testWatchlist(t), collector.Config{}, logger.Nop())

	assert.Error(t, job.Run(context.Background()))
	assert.Equal(t, []string{"a"}, poller.released)

	poller.err = errors.New("bse down")
	assert.Error(t, job.Run(context.Background()))
}

type staticLister struct {
	filings []bse.Filing
}

func (l *staticLister) ListResultFilings(context.Context, time.Time, time.Time) ([]bse.Filing, error) {
	return l.filings, nil
}

// failingSeen fails MarkNew for one key until healed
type failingSeen struct {
	*redis.SeenSet
	failKey string
}

func (f *failingSeen) MarkNew(ctx context.Context, key string) (bool, error) {
	if key == f.failKey {
		return false, errors.New("redis blip")
	}
	return f.SeenSet.MarkNew(ctx, key)
}

func TestFilingsJob_SeenSetErrorKeepsFilings(t *testing.T) {
	wl, err := watchlist.Parse([]byte(`
companies:
  - symbol: TCS
    scrip_code: "532540"
  - symbol: INFY
    scrip_code: "500209"
`))
	require.NoError(t, err)

	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)

	seen := &failingSeen{SeenSet: filings.NewSeenSet(client), failKey: redis.FilingKey("500209", "b")}
	lister := &staticLister{filings: []bse.Filing{
		{ID: "a", ScripCode: "532540"},
		{ID: "b", ScripCode: "500209"},
	}}
	observer := filings.NewObserver(lister, seen, wl, time.Hour, logger.Nop())
	ev := &fakeEvaluator{}
	job := NewFilingsJob(observer, ev, wl, collector.Config{}, logger.Nop())

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis blip")
	assert.Empty(t, ev.symbols)

	// 다음 실행에서 두 종목 모두 평가되어야 함
	seen.failKey = ""
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, [][]string{{"TCS", "INFY"}}, ev.symbols)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, ev.symbols, 1)
}
