package filings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscore/internal/external/bse"
	"github.com/wonny/fundscore/internal/watchlist"
	"github.com/wonny/fundscore/pkg/config"
	"github.com/wonny/fundscore/pkg/logger"
	"github.com/wonny/fundscore/pkg/redis"
)

type fakeLister struct {
	filings  []bse.Filing
	err      error
	from, to time.Time
}

func (f *fakeLister) ListResultFilings(_ context.Context, from, to time.Time) ([]bse.Filing, error) {
	f.from, f.to = from, to
	return f.filings, f.err
}

func testWatchlist(t *testing.T) *watchlist.Watchlist {
	t.Helper()
	wl, err := watchlist.Parse([]byte(`
companies:
  - symbol: TCS
    scrip_code: "532540"
  - symbol: INFY
    scrip_code: "500209"
`))
	require.NoError(t, err)
	return wl
}

// flakySeen fails MarkNew for one filing key
type flakySeen struct {
	*redis.SeenSet
	failKey string
}

func (f *flakySeen) MarkNew(ctx context.Context, key string) (bool, error) {
	if key == f.failKey {
		return false, errors.New("redis blip")
	}
	return f.SeenSet.MarkNew(ctx, key)
}

func localSeen(t *testing.T) *redis.SeenSet {
	t.Helper()
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return NewSeenSet(client)
}

func TestObserver_Poll(t *testing.T) {
	now := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	lister := &fakeLister{filings: []bse.Filing{
		{ID: "a1", ScripCode: "532540", Subject: "Financial Results"},
		{ID: "b1", ScripCode: "999999", Subject: "Not watched"},
		{ID: "c1", ScripCode: "500209", Subject: "Financial Results"},
		{ID: "c2", ScripCode: "500209", Subject: "Revised Results"},
	}}

	obs := NewObserver(lister, localSeen(t), testWatchlist(t), 0, logger.Nop())
	obs.now = func() time.Time { return now }

	matches, err := obs.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "TCS", matches[0].Symbol)
	assert.Equal(t, []string{"TCS", "INFY"}, Symbols(matches))
	assert.Equal(t, now.Add(-48*time.Hour), lister.from)
	assert.Equal(t, now, lister.to)

	// 두 번째 폴링: 이미 본 공시는 제외
	matches, err = obs.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestObserver_Release(t *testing.T) {
	lister := &fakeLister{filings: []bse.Filing{{ID: "a1", ScripCode: "532540"}}}
	obs := NewObserver(lister, localSeen(t), testWatchlist(t), time.Hour, logger.Nop())
	ctx := context.Background()

	matches, err := obs.Poll(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	require.NoError(t, obs.Release(ctx, matches[0]))

	matches, err = obs.Poll(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestObserver_ListError(t *testing.T) {
	lister := &fakeLister{err: errors.New("upstream down")}
	obs := NewObserver(lister, localSeen(t), testWatchlist(t), time.Hour, logger.Nop())

	_, err := obs.Poll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestObserver_PollErrorUnmarksEarlierFilings(t *testing.T) {
	lister := &fakeLister{filings: []bse.Filing{
		{ID: "a1", ScripCode: "532540"},
		{ID: "c1", ScripCode: "500209"},
	}}
	seen := &flakySeen{SeenSet: localSeen(t), failKey: redis.FilingKey("500209", "c1")}
	obs := NewObserver(lister, seen, testWatchlist(t), time.Hour, logger.Nop())
	ctx := context.Background()

	matches, err := obs.Poll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis blip")
	assert.Nil(t, matches)

	// a1이 먼저 마킹됐지만 롤백되어 다음 폴링에 다시 나와야 함
	seen.failKey = ""
	matches, err = obs.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS", "INFY"}, Symbols(matches))
}

func TestObserver_PendingDoesNotMark(t *testing.T) {
	lister := &fakeLister{filings: []bse.Filing{
		{ID: "a1", ScripCode: "532540"},
		{ID: "b1", ScripCode: "999999"},
		{ID: "c1", ScripCode: "500209"},
	}}
	obs := NewObserver(lister, localSeen(t), testWatchlist(t), time.Hour, logger.Nop())
	ctx := context.Background()

	pending, err := obs.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS", "INFY"}, Symbols(pending))

	pending, err = obs.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	// 조회 후에도 Poll은 두 공시를 신규로 본다
	matches, err := obs.Poll(ctx)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	pending, err = obs.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
