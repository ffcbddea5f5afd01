package filings

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fundscore/internal/external/bse"
	"github.com/wonny/fundscore/internal/watchlist"
	"github.com/wonny/fundscore/pkg/logger"
	"github.com/wonny/fundscore/pkg/redis"
)

// Lister lists result filings in a window (bse.Client)
type Lister interface {
	ListResultFilings(ctx context.Context, from, to time.Time) ([]bse.Filing, error)
}

// Seen tracks processed filings (redis.SeenSet)
type Seen interface {
	MarkNew(ctx context.Context, key string) (bool, error)
	Has(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

// Match is a new filing for a watched company
type Match struct {
	Symbol string
	Filing bse.Filing
}

// Observer polls result filings and reports the ones not seen before
// ⭐ SSOT: 신규 실적 공시 감지 (watchlist 종목만)
type Observer struct {
	lister    Lister
	seen      Seen
	watchlist *watchlist.Watchlist
	lookback  time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewObserver creates an observer; lookback defaults to 2 days
func NewObserver(lister Lister, seen Seen, wl *watchlist.Watchlist, lookback time.Duration, log *logger.Logger) *Observer {
	if lookback <= 0 {
		lookback = 48 * time.Hour
	}
	return &Observer{
		lister:    lister,
		seen:      seen,
		watchlist: wl,
		lookback:  lookback,
		now:       time.Now,
		logger:    log.WithComponent("filings"),
	}
}

// NewSeenSet is the default seen-set for filings
func NewSeenSet(client *redis.Client) *redis.SeenSet {
	return redis.NewSeenSet(client, "fundscore", redis.TTLSeen)
}

// Poll lists filings in the lookback window, marks the new ones as seen and
// returns them. Filings for companies outside the watchlist are ignored and
// not marked. On error nothing from this call stays marked.
func (o *Observer) Poll(ctx context.Context) ([]Match, error) {
	candidates, err := o.watched(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(candidates))
	for _, m := range candidates {
		isNew, err := o.seen.MarkNew(ctx, matchKey(m))
		if err != nil {
			o.rollback(ctx, matches)
			return nil, fmt.Errorf("mark filing %s: %w", m.Filing.ID, err)
		}
		if !isNew {
			continue
		}

		o.logger.WithFields(map[string]interface{}{
			"symbol":    m.Symbol,
			"filing_id": m.Filing.ID,
			"subject":   m.Filing.Subject,
		}).Info("New result filing")

		matches = append(matches, m)
	}

	return matches, nil
}

// Pending returns the filings Poll would report, without marking them.
// 조회 전용 (CLI 목록 출력)
func (o *Observer) Pending(ctx context.Context) ([]Match, error) {
	candidates, err := o.watched(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]Match, 0, len(candidates))
	for _, m := range candidates {
		seen, err := o.seen.Has(ctx, matchKey(m))
		if err != nil {
			return nil, fmt.Errorf("check filing %s: %w", m.Filing.ID, err)
		}
		if !seen {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// watched lists the lookback window and keeps filings of watched companies
func (o *Observer) watched(ctx context.Context) ([]Match, error) {
	to := o.now()
	from := to.Add(-o.lookback)

	filings, err := o.lister.ListResultFilings(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list filings: %w", err)
	}

	out := make([]Match, 0, len(filings))
	for _, f := range filings {
		entry, ok := o.watchlist.ByScripCode(f.ScripCode)
		if !ok {
			continue
		}
		out = append(out, Match{Symbol: entry.Symbol, Filing: f})
	}
	return out, nil
}

// rollback forgets filings marked earlier in a failed poll
func (o *Observer) rollback(ctx context.Context, marked []Match) {
	for _, m := range marked {
		if err := o.Release(ctx, m); err != nil {
			o.logger.WithError(err).WithField("filing_id", m.Filing.ID).Warn("Failed to unmark filing")
		}
	}
}

// Release forgets a match so the next poll reports it again
// (평가 실패 시 재시도용)
func (o *Observer) Release(ctx context.Context, m Match) error {
	return o.seen.Forget(ctx, matchKey(m))
}

func matchKey(m Match) string {
	return redis.FilingKey(m.Filing.ScripCode, m.Filing.ID)
}

// Symbols returns the distinct symbols of matches in order
func Symbols(matches []Match) []string {
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m.Symbol] {
			continue
		}
		seen[m.Symbol] = true
		out = append(out, m.Symbol)
	}
	return out
}
