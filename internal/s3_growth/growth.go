package s3_growth

import (
	"sort"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/logger"
)

// Calculator derives QoQ/YoY changes for Sales and EPS
// ⭐ SSOT: S3 성장률 계산은 여기서만
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a new growth calculator
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{
		logger: log.WithComponent("s3_growth"),
	}
}

// PrepareSeries deduplicates by quarter (the last record for a label wins)
// and sorts ascending. The input is not modified.
func PrepareSeries(records []contracts.CanonicalQuarterRecord) []contracts.CanonicalQuarterRecord {
	byLabel := make(map[contracts.QuarterLabel]int, len(records))
	out := make([]contracts.CanonicalQuarterRecord, 0, len(records))

	for _, rec := range records {
		if idx, ok := byLabel[rec.Quarter]; ok {
			out[idx] = rec
			continue
		}
		byLabel[rec.Quarter] = len(out)
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Quarter.Before(out[j].Quarter)
	})

	return out
}

// Calculate computes growth over a prepared series.
// QoQ uses the previous element by position; YoY looks up year-1 by label.
func (c *Calculator) Calculate(series []contracts.CanonicalQuarterRecord) []contracts.GrowthRecord {
	index := make(map[contracts.QuarterLabel]int, len(series))
	for i, rec := range series {
		index[rec.Quarter] = i
	}

	out := make([]contracts.GrowthRecord, len(series))
	yoyCount := 0

	for i, rec := range series {
		g := contracts.GrowthRecord{CanonicalQuarterRecord: rec}

		if i > 0 {
			prev := series[i-1]
			g.SalesQoqChange, g.SalesQoqPct = change(rec.TopLine(), prev.TopLine())
			g.EPSQoqChange, g.EPSQoqPct = change(rec.EPS, prev.EPS)
		}

		if j, ok := index[rec.Quarter.YearAgo()]; ok {
			base := series[j]
			g.SalesYoyChange, g.SalesYoyPct = change(rec.TopLine(), base.TopLine())
			g.EPSYoyChange, g.EPSYoyPct = change(rec.EPS, base.EPS)
			yoyCount++
		}

		out[i] = g
	}

	c.logger.WithFields(map[string]interface{}{
		"records":   len(series),
		"yoy_bases": yoyCount,
	}).Debug("Calculated growth metrics")

	return out
}

// change returns (current-base) and (current-base)/|base|*100.
// Either is nil when an input is missing; the percentage is nil for a zero base.
func change(current, base *float64) (*float64, *float64) {
	cur, ok := contracts.Finite(current)
	if !ok {
		return nil, nil
	}
	prev, ok := contracts.Finite(base)
	if !ok {
		return nil, nil
	}

	diff := cur - prev
	if prev == 0 {
		return contracts.Float(diff), nil
	}

	abs := prev
	if abs < 0 {
		abs = -abs
	}
	return contracts.Float(diff), contracts.Float(diff / abs * 100)
}

// FilterRange keeps records with from <= quarter <= to. A zero bound is open.
func FilterRange(records []contracts.GrowthRecord, from, to contracts.QuarterLabel) []contracts.GrowthRecord {
	out := make([]contracts.GrowthRecord, 0, len(records))
	for _, rec := range records {
		if InRange(rec.Quarter, from, to) {
			out = append(out, rec)
		}
	}
	return out
}

// InRange reports whether q lies in [from, to]; zero bounds are open
func InRange(q, from, to contracts.QuarterLabel) bool {
	if !from.IsZero() && q.Before(from) {
		return false
	}
	if !to.IsZero() && to.Before(q) {
		return false
	}
	return true
}
