package s4_reconcile

import (
	"context"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/logger"
)

// Reconciler attaches announcement dates and market prices to growth records
// ⭐ SSOT: S4 발표일/주가 매칭
type Reconciler struct {
	prices *PriceResolver
	logger *logger.Logger
}

// NewReconciler creates a reconciler with a run-scoped price cache.
// A nil price source skips price attachment.
func NewReconciler(prices contracts.PriceSource, log *logger.Logger) *Reconciler {
	r := &Reconciler{logger: log.WithComponent("s4_reconcile")}
	if prices != nil {
		r.prices = NewPriceResolver(prices, log)
	}
	return r
}

// Reconcile runs date attachment, price attachment and price QoQ derivation
func (r *Reconciler) Reconcile(ctx context.Context, symbol string, records []contracts.DatedPricedRecord, events []contracts.CompanyEvent) []contracts.DatedPricedRecord {
	idx := BuildEventIndex(events)
	out := AttachDates(records, idx)

	dated := 0
	for _, rec := range out {
		if rec.DateTimeRaw != nil {
			dated++
		}
	}
	r.logger.WithFields(map[string]interface{}{
		"symbol":  symbol,
		"events":  len(events),
		"indexed": idx.Len(),
		"dated":   dated,
	}).Debug("Attached announcement dates")

	if r.prices != nil {
		out = r.prices.AttachPrices(ctx, symbol, out)
	}

	return DerivePriceQoq(out)
}
