package s3_growth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/logger"
)

func quarter(label string, sales, eps *float64) contracts.CanonicalQuarterRecord {
	return contracts.CanonicalQuarterRecord{
		Quarter: contracts.MustQuarter(label),
		Sales:   sales,
		EPS:     eps,
	}
}

var f = contracts.Float

func TestCalculate_QoqScenario(t *testing.T) {
	c := NewCalculator(logger.Nop())

	out := c.Calculate(PrepareSeries([]contracts.CanonicalQuarterRecord{
		quarter("2020-Mar", f(18587), f(11.67)),
		quarter("2020-Jun", f(17842), f(10.8)),
	}))
	require.Len(t, out, 2)

	assert.Nil(t, out[0].SalesQoqChange)
	assert.Nil(t, out[0].SalesQoqPct)

	row := out[1]
	require.NotNil(t, row.SalesQoqChange)
	assert.Equal(t, -745.0, *row.SalesQoqChange)
	assert.InDelta(t, -4.008, *row.SalesQoqPct, 0.001)
	assert.Equal(t, (17842.0-18587.0)/18587.0*100, *row.SalesQoqPct)
	assert.InDelta(t, -0.87, *row.EPSQoqChange, 1e-9)

	assert.Nil(t, row.SalesYoyChange)
	assert.Nil(t, row.SalesYoyPct)
	assert.Nil(t, row.EPSYoyChange)
	assert.Nil(t, row.EPSYoyPct)
}

func TestCalculate_YoyByLabelNotPosition(t *testing.T) {
	c := NewCalculator(logger.Nop())

	// 2019-Sep is missing: 2020-Sep has no YoY base even though it sits
	// four positions after 2019-Jun
	out := c.Calculate(PrepareSeries([]contracts.CanonicalQuarterRecord{
		quarter("2019-Jun", f(100), f(1)),
		quarter("2019-Dec", f(110), f(1.1)),
		quarter("2020-Mar", f(120), f(1.2)),
		quarter("2020-Jun", f(150), f(2)),
		quarter("2020-Sep", f(160), f(2.2)),
	}))
	require.Len(t, out, 5)

	jun := out[3]
	assert.Equal(t, "2020-Jun", jun.Quarter.String())
	assert.Equal(t, 50.0, *jun.SalesYoyChange)
	assert.Equal(t, 50.0, *jun.SalesYoyPct)
	assert.Equal(t, 100.0, *jun.EPSYoyPct)

	sep := out[4]
	assert.Nil(t, sep.SalesYoyChange)
	assert.Nil(t, sep.EPSYoyPct)

	// QoQ across the gap uses the previous available record
	dec := out[1]
	assert.Equal(t, 10.0, *dec.SalesQoqChange)
}

func TestCalculate_NullPropagation(t *testing.T) {
	c := NewCalculator(logger.Nop())

	out := c.Calculate([]contracts.CanonicalQuarterRecord{
		quarter("2020-Mar", f(0), nil),
		quarter("2020-Jun", f(100), f(1)),
		quarter("2020-Sep", nil, f(-2)),
		quarter("2020-Dec", f(50), f(1)),
	})

	// zero base: change known, percentage undefined
	assert.Equal(t, 100.0, *out[1].SalesQoqChange)
	assert.Nil(t, out[1].SalesQoqPct)
	// missing base EPS
	assert.Nil(t, out[1].EPSQoqChange)
	assert.Nil(t, out[1].EPSQoqPct)
	// missing current sales
	assert.Nil(t, out[2].SalesQoqChange)
	// negative base uses |base|
	assert.Equal(t, 3.0, *out[3].EPSQoqChange)
	assert.Equal(t, 150.0, *out[3].EPSQoqPct)
}

func TestCalculate_Idempotent(t *testing.T) {
	c := NewCalculator(logger.Nop())
	series := PrepareSeries([]contracts.CanonicalQuarterRecord{
		quarter("2019-Mar", f(90), f(0.9)),
		quarter("2019-Jun", f(95), f(1.0)),
		quarter("2020-Mar", f(120), f(1.3)),
		quarter("2020-Jun", f(118), f(1.25)),
	})

	first := c.Calculate(series)
	second := c.Calculate(series)
	assert.Equal(t, first, second)
}

func TestPrepareSeries(t *testing.T) {
	in := []contracts.CanonicalQuarterRecord{
		quarter("2020-Jun", f(1), nil),
		quarter("2019-Dec", f(2), nil),
		quarter("2020-Jun", f(3), nil),
		quarter("2020-Mar", f(4), nil),
	}

	out := PrepareSeries(in)
	require.Len(t, out, 3)
	assert.Equal(t, "2019-Dec", out[0].Quarter.String())
	assert.Equal(t, "2020-Mar", out[1].Quarter.String())
	assert.Equal(t, "2020-Jun", out[2].Quarter.String())
	assert.Equal(t, 3.0, *out[2].Sales, "last duplicate wins")

	assert.Equal(t, "2020-Jun", in[0].Quarter.String(), "input not reordered")
}

func TestCalculate_BankUsesRevenue(t *testing.T) {
	c := NewCalculator(logger.Nop())

	out := c.Calculate([]contracts.CanonicalQuarterRecord{
		{Quarter: contracts.MustQuarter("2020-Mar"), Revenue: f(200), EPS: f(1)},
		{Quarter: contracts.MustQuarter("2020-Jun"), Revenue: f(220), EPS: f(1)},
	})
	assert.Equal(t, 10.0, *out[1].SalesQoqPct)
}

func TestFilterRange(t *testing.T) {
	c := NewCalculator(logger.Nop())
	out := c.Calculate(PrepareSeries([]contracts.CanonicalQuarterRecord{
		quarter("2019-Jun", f(100), f(1)),
		quarter("2019-Sep", f(100), f(1)),
		quarter("2020-Jun", f(120), f(1)),
		quarter("2020-Sep", f(130), f(1)),
	}))

	filtered := FilterRange(out, contracts.MustQuarter("2020-Jun"), contracts.QuarterLabel{})
	require.Len(t, filtered, 2)
	// YoY base outside the range still resolved
	assert.Equal(t, 20.0, *filtered[0].SalesYoyPct)

	filtered = FilterRange(out, contracts.QuarterLabel{}, contracts.MustQuarter("2019-Sep"))
	assert.Len(t, filtered, 2)
}
