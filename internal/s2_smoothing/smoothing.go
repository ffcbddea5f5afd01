package s2_smoothing

import (
	"math"
	"sort"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/logger"
)

const (
	// windowSize is the number of quarters in the rolling window
	windowSize = 6

	// croreToUnits converts crore to currency units
	croreToUnits = 1e7
)

// Smoother adds EPSSmooth to canonical records
// ⭐ SSOT: S2 EPS 평활화는 여기서만
type Smoother struct {
	logger *logger.Logger
}

// NewSmoother creates a new smoother
func NewSmoother(log *logger.Logger) *Smoother {
	return &Smoother{
		logger: log.WithComponent("s2_smoothing"),
	}
}

// Window returns the inclusive index range used for record i of n.
// Short histories borrow later quarters: [0, min(n-1, 5)].
func Window(i, n int) (start, end int) {
	if i >= windowSize-1 {
		return i - (windowSize - 1), i
	}
	end = windowSize - 1
	if n-1 < end {
		end = n - 1
	}
	return 0, end
}

// Smooth returns a copy of records (ascending order) with EPSSmooth set.
// Banks copy their reported EPS; everything else is nil when shares is
// unknown or not positive.
func (s *Smoother) Smooth(records []contracts.CanonicalQuarterRecord, shares *float64) []contracts.CanonicalQuarterRecord {
	out := make([]contracts.CanonicalQuarterRecord, len(records))
	copy(out, records)

	totalShares, ok := contracts.Finite(shares)
	haveShares := ok && totalShares > 0

	smoothed := 0
	for i := range out {
		rec := &out[i]

		if rec.EntityType == contracts.EntityBank {
			if rec.EPS != nil {
				rec.EPSSmooth = contracts.Float(*rec.EPS)
			} else {
				rec.EPSSmooth = nil
			}
			continue
		}

		rec.EPSSmooth = nil
		if !haveShares {
			continue
		}

		operating, ok := contracts.Finite(rec.OperatingLine())
		if !ok {
			continue
		}

		start, end := Window(i, len(out))
		window := out[start : end+1]

		otherIncome := make([]float64, 0, len(window))
		depreciation := make([]float64, 0, len(window))
		interest := make([]float64, 0, len(window))
		taxPercent := make([]float64, 0, len(window))
		for _, w := range window {
			otherIncome = append(otherIncome, w.OtherIncome)
			depreciation = append(depreciation, w.Depreciation)
			interest = append(interest, w.Interest)
			taxPercent = append(taxPercent, w.TaxPercent)
		}

		preTax := operating + Median(otherIncome) - Median(depreciation) - Median(interest)
		afterTax := preTax * croreToUnits * (1 - Mean(taxPercent)/100)

		rec.EPSSmooth = contracts.Float(round2(afterTax / totalShares))
		smoothed++
	}

	s.logger.WithFields(map[string]interface{}{
		"records":  len(out),
		"smoothed": smoothed,
		"shares":   haveShares,
	}).Debug("Smoothed EPS")

	return out
}

// Median ignores non-finite values; an even count averages the middle pair.
// Empty input yields 0.
func Median(values []float64) float64 {
	vals := finiteValues(values)
	if len(vals) == 0 {
		return 0
	}

	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		return (vals[mid-1] + vals[mid]) / 2
	}
	return vals[mid]
}

// Mean ignores non-finite values. Empty input yields 0.
func Mean(values []float64) float64 {
	vals := finiteValues(values)
	if len(vals) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
