package s4_reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/logger"
)

// Backward search bounds for non-trading days
const (
	CurrentDateAttempts = 7
	PriorYearAttempts   = 10
)

type priceKey struct {
	symbol string
	date   string
}

// PriceCache memoizes closes per (symbol, date) for one pipeline run.
// A cached nil means the source had no data for that day.
type PriceCache struct {
	mu      sync.Mutex
	entries map[priceKey]*float64
}

// NewPriceCache creates an empty cache
func NewPriceCache() *PriceCache {
	return &PriceCache{entries: make(map[priceKey]*float64)}
}

func (c *PriceCache) get(symbol, date string) (*float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[priceKey{symbol, date}]
	return v, ok
}

func (c *PriceCache) put(symbol, date string, px *float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[priceKey{symbol, date}] = px
}

// Len returns the number of cached lookups
func (c *PriceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// PriceResolver finds closing prices with a bounded backward search
// ⭐ SSOT: 종가 조회는 이 리졸버를 통해서만 (실행 단위 캐시)
type PriceResolver struct {
	source contracts.PriceSource
	cache  *PriceCache
	logger *logger.Logger
}

// NewPriceResolver creates a resolver owning a fresh cache
func NewPriceResolver(source contracts.PriceSource, log *logger.Logger) *PriceResolver {
	return &PriceResolver{
		source: source,
		cache:  NewPriceCache(),
		logger: log.WithComponent("s4_reconcile"),
	}
}

// Cache exposes the run cache
func (r *PriceResolver) Cache() *PriceCache {
	return r.cache
}

// CloseOnOrBefore tries date, date-1, ... for up to attempts days and returns
// the first close found, or nil
func (r *PriceResolver) CloseOnOrBefore(ctx context.Context, symbol string, date time.Time, attempts int) *float64 {
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return nil
		}

		day := date.AddDate(0, 0, -i).Format(ISODate)
		if px := r.closeAt(ctx, symbol, day); px != nil {
			return px
		}
	}
	return nil
}

func (r *PriceResolver) closeAt(ctx context.Context, symbol, day string) *float64 {
	if cached, ok := r.cache.get(symbol, day); ok {
		return cached
	}

	quote, err := r.source.GetPriceAt(ctx, day, symbol)
	if err != nil {
		// not cached: a later run step may succeed
		r.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"date":   day,
			"error":  err.Error(),
		}).Debug("Price lookup failed")
		return nil
	}

	var px *float64
	if quote != nil {
		if v, ok := contracts.Finite(&quote.Close); ok {
			px = contracts.Float(v)
		}
	}
	r.cache.put(symbol, day, px)
	return px
}

// AttachPrices resolves current and prior-year closes for each record,
// sequentially. Any failure leaves that record's price fields nil.
func (r *PriceResolver) AttachPrices(ctx context.Context, symbol string, records []contracts.DatedPricedRecord) []contracts.DatedPricedRecord {
	out := make([]contracts.DatedPricedRecord, len(records))
	copy(out, records)

	resolved := 0
	for i := range out {
		rec := &out[i]
		rec.CurrentDateClosePrice = nil
		rec.PastYearDateClosePrice = nil
		rec.PriceYoyPct = nil

		if rec.DateTimeRaw == nil {
			rec.PriceQoqPct = nil
			continue
		}

		date, err := ParseEventDate(*rec.DateTimeRaw)
		if err != nil {
			rec.PriceQoqPct = nil
			r.logger.WithFields(map[string]interface{}{
				"symbol":  symbol,
				"quarter": rec.Quarter.String(),
				"raw":     *rec.DateTimeRaw,
			}).Debug("Skipping prices for unparsable date")
			continue
		}

		current := r.CloseOnOrBefore(ctx, symbol, date, CurrentDateAttempts)
		if current == nil {
			rec.PriceQoqPct = nil
			continue
		}
		rec.CurrentDateClosePrice = current
		resolved++

		prior, ok := PriorYearDate(date)
		if !ok {
			continue
		}
		past := r.CloseOnOrBefore(ctx, symbol, prior, PriorYearAttempts)
		rec.PastYearDateClosePrice = past
		if past != nil && *past != 0 {
			rec.PriceYoyPct = contracts.Float((*current - *past) / *past * 100)
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"records":  len(out),
		"resolved": resolved,
		"cached":   r.cache.Len(),
	}).Debug("Attached prices")

	return out
}

// DerivePriceQoq fills missing price_qoq_pct from the nearest earlier record
// (array order) that has a finite close
func DerivePriceQoq(records []contracts.DatedPricedRecord) []contracts.DatedPricedRecord {
	out := make([]contracts.DatedPricedRecord, len(records))
	copy(out, records)

	for i := range out {
		if out[i].PriceQoqPct != nil {
			continue
		}
		current, ok := contracts.Finite(out[i].CurrentDateClosePrice)
		if !ok {
			continue
		}

		for j := i - 1; j >= 0; j-- {
			prev, ok := contracts.Finite(out[j].CurrentDateClosePrice)
			if !ok {
				continue
			}
			if prev != 0 {
				out[i].PriceQoqPct = contracts.Float((current - prev) / prev * 100)
			}
			break
		}
	}

	return out
}
