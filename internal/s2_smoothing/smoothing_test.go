package s2_smoothing

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/logger"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		i, n       int
		start, end int
	}{
		{i: 0, n: 10, start: 0, end: 5},
		{i: 3, n: 10, start: 0, end: 5},
		{i: 5, n: 10, start: 0, end: 5},
		{i: 6, n: 10, start: 1, end: 6},
		{i: 9, n: 10, start: 4, end: 9},
		{i: 0, n: 3, start: 0, end: 2},
		{i: 2, n: 3, start: 0, end: 2},
		{i: 0, n: 1, start: 0, end: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("i=%d_n=%d", tt.i, tt.n), func(t *testing.T) {
			start, end := Window(tt.i, tt.n)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestMedianAndMean(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 2.0, Median([]float64{math.NaN(), 2}))

	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 2.0, Mean([]float64{1, math.Inf(1), 3}))
	assert.Equal(t, 0.0, Mean([]float64{math.NaN()}))
}

func corporate(label string, op, oi, dep, interest, tax float64) contracts.CanonicalQuarterRecord {
	return contracts.CanonicalQuarterRecord{
		Quarter:         contracts.MustQuarter(label),
		EntityType:      contracts.EntityNonBank,
		OperatingProfit: contracts.Float(op),
		OtherIncome:     oi,
		Depreciation:    dep,
		Interest:        interest,
		TaxPercent:      tax,
		EPS:             contracts.Float(1),
	}
}

func TestSmooth(t *testing.T) {
	s := NewSmoother(logger.Nop())

	records := []contracts.CanonicalQuarterRecord{
		corporate("2020-Mar", 100, 10, 5, 2, 25),
		corporate("2020-Jun", 110, 20, 5, 4, 25),
		corporate("2020-Sep", 120, 30, 7, 6, 25),
	}

	// 1 crore shares: EPS = afterTax crore
	out := s.Smooth(records, contracts.Float(1e7))
	require.Len(t, out, 3)

	// window [0,2] for every record: medians OI=20 Dep=5 Int=4, tax 25%
	// (100 + 20 - 5 - 4) * 0.75 = 83.25
	require.NotNil(t, out[0].EPSSmooth)
	assert.InDelta(t, 83.25, *out[0].EPSSmooth, 1e-9)
	// (120 + 20 - 5 - 4) * 0.75 = 98.25
	assert.InDelta(t, 98.25, *out[2].EPSSmooth, 1e-9)

	// input untouched
	assert.Nil(t, records[0].EPSSmooth)
}

func TestSmooth_RollingWindow(t *testing.T) {
	s := NewSmoother(logger.Nop())

	labels := []string{"2019-Mar", "2019-Jun", "2019-Sep", "2019-Dec", "2020-Mar", "2020-Jun", "2020-Sep"}
	records := make([]contracts.CanonicalQuarterRecord, len(labels))
	for i, l := range labels {
		// other income 0..6, the last window [1,6] has median 3.5
		records[i] = corporate(l, 100, float64(i), 0, 0, 0)
	}

	out := s.Smooth(records, contracts.Float(1e7))
	assert.InDelta(t, 103.5, *out[6].EPSSmooth, 1e-9)
	// window [0,5] median 2.5
	assert.InDelta(t, 102.5, *out[5].EPSSmooth, 1e-9)
	assert.InDelta(t, 102.5, *out[0].EPSSmooth, 1e-9)
}

func TestSmooth_NoShares(t *testing.T) {
	s := NewSmoother(logger.Nop())
	records := []contracts.CanonicalQuarterRecord{corporate("2020-Mar", 100, 10, 5, 2, 25)}

	assert.Nil(t, s.Smooth(records, nil)[0].EPSSmooth)
	assert.Nil(t, s.Smooth(records, contracts.Float(0))[0].EPSSmooth)
	assert.Nil(t, s.Smooth(records, contracts.Float(-5))[0].EPSSmooth)
}

func TestSmooth_BankCopiesEPS(t *testing.T) {
	s := NewSmoother(logger.Nop())
	records := []contracts.CanonicalQuarterRecord{{
		Quarter:         contracts.MustQuarter("2020-Mar"),
		EntityType:      contracts.EntityBank,
		FinancingProfit: contracts.Float(500),
		EPS:             contracts.Float(7.77),
	}}

	out := s.Smooth(records, nil)
	require.NotNil(t, out[0].EPSSmooth)
	assert.Equal(t, 7.77, *out[0].EPSSmooth)
}

func TestSmooth_RoundsToTwoDecimals(t *testing.T) {
	s := NewSmoother(logger.Nop())
	records := []contracts.CanonicalQuarterRecord{corporate("2020-Mar", 1, 0, 0, 0, 0)}

	// 1 crore / 3 shares
	out := s.Smooth(records, contracts.Float(3))
	assert.Equal(t, 3333333.33, *out[0].EPSSmooth)
}
