package contracts

import "math"

// EntityType is the reporting shape detected for a statement
type EntityType string

const (
	EntityNonBank EntityType = "non_bank"
	EntityBank    EntityType = "bank"
	EntityNBFC    EntityType = "nbfc"
)

// IsFinancial reports whether the record uses the Revenue/FinancingProfit shape
func (e EntityType) IsFinancial() bool {
	return e == EntityBank || e == EntityNBFC
}

// CanonicalQuarterRecord is one quarter in the common shape.
// All monetary fields are in crore; percentages and EPS are unscaled.
// ⭐ SSOT: 파이프라인 중심 엔티티 (S1 생성, 이후 단계는 임베드하여 확장)
type CanonicalQuarterRecord struct {
	Quarter    QuarterLabel `json:"Quarter"`
	EntityType EntityType   `json:"EntityType,omitempty"`

	// Non-bank shape
	Sales           *float64 `json:"Sales,omitempty"`
	OperatingProfit *float64 `json:"OperatingProfit,omitempty"`
	OPMPercent      *float64 `json:"OPMPercent,omitempty"`

	// Bank / NBFC shape
	Revenue                *float64 `json:"Revenue,omitempty"`
	FinancingProfit        *float64 `json:"FinancingProfit,omitempty"`
	FinancingMarginPercent *float64 `json:"FinancingMarginPercent,omitempty"`
	GrossNPAPercent        *float64 `json:"GrossNPAPercent,omitempty"`
	NetNPAPercent          *float64 `json:"NetNPAPercent,omitempty"`

	Expenses        float64  `json:"Expenses"`
	OtherIncome     float64  `json:"OtherIncome"`
	Interest        float64  `json:"Interest"`
	Depreciation    float64  `json:"Depreciation"`
	ProfitBeforeTax float64  `json:"ProfitBeforeTax"`
	TaxPercent      float64  `json:"TaxPercent"`
	NetProfit       float64  `json:"NetProfit"`
	EPS             *float64 `json:"EPS"`
	EPSSmooth       *float64 `json:"EPSSmooth,omitempty"`
}

// TopLine returns Sales, or Revenue for the bank/NBFC shape
func (r CanonicalQuarterRecord) TopLine() *float64 {
	if r.Sales != nil {
		return r.Sales
	}
	return r.Revenue
}

// OperatingLine returns OperatingProfit, or FinancingProfit for the bank/NBFC shape
func (r CanonicalQuarterRecord) OperatingLine() *float64 {
	if r.OperatingProfit != nil {
		return r.OperatingProfit
	}
	return r.FinancingProfit
}

// GrowthRecord adds QoQ/YoY change metrics for Sales and EPS.
// Each field is nil unless both the current value and its base are known.
type GrowthRecord struct {
	CanonicalQuarterRecord

	SalesQoqChange *float64 `json:"sales_qoq_change"`
	SalesQoqPct    *float64 `json:"sales_qoq_pct"`
	SalesYoyChange *float64 `json:"sales_yoy_change"`
	SalesYoyPct    *float64 `json:"sales_yoy_pct"`
	EPSQoqChange   *float64 `json:"eps_qoq_change"`
	EPSQoqPct      *float64 `json:"eps_qoq_pct"`
	EPSYoyChange   *float64 `json:"eps_yoy_change"`
	EPSYoyPct      *float64 `json:"eps_yoy_pct"`
}

// DatedPricedRecord adds the announcement date and market prices
type DatedPricedRecord struct {
	GrowthRecord

	DateTimeRaw            *string  `json:"dateTimeRaw"`
	CurrentDateClosePrice  *float64 `json:"currentDateClosePrice"`
	PastYearDateClosePrice *float64 `json:"pastYearDateClosePrice"`
	PriceYoyPct            *float64 `json:"price_yoy_pct"`
	PriceQoqPct            *float64 `json:"price_qoq_pct"`
}

// EvaluatedQuarter is one element of the pipeline output
type EvaluatedQuarter struct {
	DatedPricedRecord

	Performance PerformanceScore `json:"performance"`
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}

// Finite unwraps p when it is non-nil and neither NaN nor Inf
func Finite(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}
