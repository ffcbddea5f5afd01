package s5_scoring

import (
	"fmt"
	"math"

	"github.com/wonny/fundscore/internal/contracts"
)

// PEBand maps a PE range [PEMin, PEMax) to an expected YoY growth range (%)
type PEBand struct {
	PEMin  float64
	PEMax  float64
	YoyMin float64
	YoyMax float64
}

// PEBands is the expected-growth table, ascending and contiguous.
// Adjacent bands meet: YoyMax of one band equals YoyMin of the next.
var PEBands = []PEBand{
	{PEMin: 0, PEMax: 10, YoyMin: 5, YoyMax: 8},
	{PEMin: 10, PEMax: 20, YoyMin: 8, YoyMax: 12},
	{PEMin: 20, PEMax: 30, YoyMin: 12, YoyMax: 15},
	{PEMin: 30, PEMax: 50, YoyMin: 15, YoyMax: 25},
	{PEMin: 50, PEMax: 80, YoyMin: 25, YoyMax: 40},
	{PEMin: 80, PEMax: 120, YoyMin: 40, YoyMax: 55},
	{PEMin: 120, PEMax: 200, YoyMin: 55, YoyMax: 70},
	{PEMin: 200, PEMax: math.Inf(1), YoyMin: 70, YoyMax: 100},
}

// PE annualizes quarterly EPS (x4). Nil when EPS <= 0 or either input is
// missing; an error for a negative price.
func PE(price, eps *float64) (*float64, error) {
	p, ok := contracts.Finite(price)
	if !ok {
		return nil, nil
	}
	if p < 0 {
		return nil, fmt.Errorf("%w: %v", contracts.ErrNegativePrice, p)
	}
	e, ok := contracts.Finite(eps)
	if !ok || e <= 0 {
		return nil, nil
	}

	pe := p / (4 * e)
	if math.IsNaN(pe) || math.IsInf(pe, 0) {
		return nil, nil
	}
	return &pe, nil
}

// EstimateGrowth returns the expected YoY growth (%) for a PE.
// The open-ended top band returns its floor. Negative PE has no band.
func EstimateGrowth(pe float64) (float64, bool) {
	if math.IsNaN(pe) || pe < 0 {
		return 0, false
	}

	for _, band := range PEBands {
		if pe < band.PEMin || pe >= band.PEMax {
			continue
		}
		if math.IsInf(band.PEMax, 1) {
			return band.YoyMin, true
		}
		return Lerp(pe, band.PEMin, band.PEMax, band.YoyMin, band.YoyMax), true
	}

	// +Inf falls through every half-open band
	return PEBands[len(PEBands)-1].YoyMin, true
}

// Lerp maps x from [x1, x2] onto [y1, y2], clamping to y1 below x1 and
// to y2 above x2
func Lerp(x, x1, x2, y1, y2 float64) float64 {
	if x <= x1 {
		return y1
	}
	if x >= x2 {
		return y2
	}
	return y1 + (x-x1)/(x2-x1)*(y2-y1)
}

// RatioToScore scores YoY fundamentals growth against expectation
func RatioToScore(ratio float64) float64 {
	switch {
	case ratio < 0.3:
		return -10
	case ratio < 0.7:
		return Lerp(ratio, 0.3, 0.7, -10, 0)
	case ratio < 1:
		return Lerp(ratio, 0.7, 1, 0, 5)
	case ratio < 2:
		return Lerp(ratio, 1, 2, 5, 10)
	default:
		return 10
	}
}

// RatioToQoqScore scores QoQ fundamentals growth. Ratios in (-2, -1) land on
// the lower clamp of the [-1, 0) segment.
func RatioToQoqScore(ratio float64) float64 {
	switch {
	case ratio <= -2:
		return -10
	case ratio < 0:
		return Lerp(ratio, -1, 0, -10, 0)
	case ratio < 1:
		return Lerp(ratio, 0, 1, 0, 3)
	case ratio < 3:
		return Lerp(ratio, 1, 3, 3, 10)
	default:
		return 10
	}
}

// RatioToPriceYoyScore scores YoY price movement against expectation
func RatioToPriceYoyScore(ratio float64) float64 {
	switch {
	case ratio <= -1:
		return -10
	case ratio < 0:
		return Lerp(ratio, -1, 0, -10, -5)
	case ratio < 1:
		return Lerp(ratio, 0, 1, -5, 5)
	case ratio < 3:
		return Lerp(ratio, 1, 3, 5, 10)
	default:
		return 10
	}
}

// RatioToPriceQoqScore scores QoQ price movement against expectation
func RatioToPriceQoqScore(ratio float64) float64 {
	switch {
	case ratio <= -3:
		return -10
	case ratio < 0:
		return Lerp(ratio, -3, 0, -10, -5)
	case ratio < 1:
		return Lerp(ratio, 0, 1, -5, 5)
	case ratio < 6:
		return Lerp(ratio, 1, 6, 5, 10)
	default:
		return 10
	}
}
