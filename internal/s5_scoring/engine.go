package s5_scoring

import (
	"fmt"
	"math"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/logger"
)

// Engine converts growth metrics into performance scores
// ⭐ SSOT: S5 성과 점수 계산은 여기서만
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new scoring engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		logger: log.WithComponent("s5_scoring"),
	}
}

// expectation holds the PE-implied growth anchor for one quarter
type expectation struct {
	pe  float64
	yoy float64
}

// Evaluate scores one record. Missing inputs null whole blocks; the only
// error is a negative close price.
func (e *Engine) Evaluate(rec contracts.DatedPricedRecord) (contracts.EvaluatedQuarter, error) {
	out := contracts.EvaluatedQuarter{DatedPricedRecord: rec}

	exp, err := e.expect(rec)
	if err != nil {
		return out, fmt.Errorf("quarter %s: %w", rec.Quarter, err)
	}
	if exp == nil {
		return out, nil
	}

	out.Performance.Yoy = yoyBlock(rec, *exp)
	out.Performance.Qoq = qoqBlock(rec, *exp)
	out.Performance.FinalPerformanceScore, out.Performance.FinalPriceScore = aggregate(out.Performance.Yoy, out.Performance.Qoq)

	return out, nil
}

// EvaluateAll scores every record in order
func (e *Engine) EvaluateAll(records []contracts.DatedPricedRecord) ([]contracts.EvaluatedQuarter, error) {
	out := make([]contracts.EvaluatedQuarter, 0, len(records))
	scored := 0

	for _, rec := range records {
		q, err := e.Evaluate(rec)
		if err != nil {
			return nil, err
		}
		if q.Performance.FinalPerformanceScore != nil {
			scored++
		}
		out = append(out, q)
	}

	e.logger.WithFields(map[string]interface{}{
		"records": len(records),
		"scored":  scored,
	}).Debug("Scored quarters")

	return out, nil
}

// expect resolves PE and expected YoY growth, nil when either is undefined
func (e *Engine) expect(rec contracts.DatedPricedRecord) (*expectation, error) {
	pe, err := PE(rec.CurrentDateClosePrice, rec.EPS)
	if err != nil {
		return nil, err
	}
	if pe == nil {
		return nil, nil
	}

	growth, ok := EstimateGrowth(*pe)
	if !ok || growth <= 0 {
		return nil, nil
	}

	return &expectation{pe: *pe, yoy: growth}, nil
}

func yoyBlock(rec contracts.DatedPricedRecord, exp expectation) *contracts.YoyBlock {
	sales, ok1 := contracts.Finite(rec.SalesYoyPct)
	eps, ok2 := contracts.Finite(rec.EPSYoyPct)
	if !ok1 || !ok2 {
		return nil
	}

	return &contracts.YoyBlock{
		PE:                exp.pe,
		ExpectedYoyGrowth: exp.yoy,
		Sales:             component(sales, exp.yoy, RatioToScore),
		EPS:               component(eps, exp.yoy, RatioToScore),
		Price:             optionalComponent(rec.PriceYoyPct, exp.yoy, RatioToPriceYoyScore),
	}
}

func qoqBlock(rec contracts.DatedPricedRecord, exp expectation) *contracts.QoqBlock {
	sales, ok1 := contracts.Finite(rec.SalesQoqPct)
	eps, ok2 := contracts.Finite(rec.EPSQoqPct)
	if !ok1 || !ok2 {
		return nil
	}

	expected := exp.yoy / 4
	return &contracts.QoqBlock{
		PE:                exp.pe,
		ExpectedQoqGrowth: expected,
		Sales:             component(sales, expected, RatioToQoqScore),
		EPS:               component(eps, expected, RatioToQoqScore),
		Price:             optionalComponent(rec.PriceQoqPct, expected, RatioToPriceQoqScore),
	}
}

func component(actual, expected float64, curve func(float64) float64) contracts.ComponentScore {
	ratio := actual / expected
	return contracts.ComponentScore{
		Actual: actual,
		Ratio:  ratio,
		Score:  curve(ratio),
	}
}

func optionalComponent(actual *float64, expected float64, curve func(float64) float64) *contracts.ComponentScore {
	v, ok := contracts.Finite(actual)
	if !ok {
		return nil
	}
	c := component(v, expected, curve)
	return &c
}

// aggregate builds the 4-term performance score and the 2-term price score
func aggregate(yoy *contracts.YoyBlock, qoq *contracts.QoqBlock) (*contracts.AggregateScore, *contracts.AggregateScore) {
	if yoy == nil || qoq == nil {
		return nil, nil
	}

	performance := SignedSquareSum(yoy.Sales.Score, yoy.EPS.Score, qoq.Sales.Score, qoq.EPS.Score)

	var price *contracts.AggregateScore
	if yoy.Price != nil && qoq.Price != nil {
		price = SignedSquareSum(yoy.Price.Score, qoq.Price.Score)
	}

	return performance, price
}

// SignedSquareSum returns x = Σ sign(s)·s² and sqrt(|x|)
func SignedSquareSum(scores ...float64) *contracts.AggregateScore {
	x := 0.0
	for _, s := range scores {
		if s < 0 {
			x -= s * s
		} else {
			x += s * s
		}
	}
	return &contracts.AggregateScore{
		X:        x,
		AbsSqrtX: math.Sqrt(math.Abs(x)),
	}
}
