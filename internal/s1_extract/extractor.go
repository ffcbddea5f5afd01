package s1_extract

import (
	"fmt"
	"math"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/config"
	"github.com/wonny/fundscore/pkg/logger"
)

// Options controls one extraction run
type Options struct {
	// Unit of the source values: config.UnitMillion (scaled to crore) or config.UnitCrore
	Unit string

	// Entity forces the shape (contracts.EntityNBFC comes from sector metadata).
	// Empty means detect from the rows.
	Entity contracts.EntityType
}

// Extractor converts raw statements into canonical quarter records
// ⭐ SSOT: S1 표준 분기 레코드 생성은 여기서만
type Extractor struct {
	logger *logger.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(log *logger.Logger) *Extractor {
	return &Extractor{
		logger: log.WithComponent("s1_extract"),
	}
}

// DetectEntityType classifies rows as bank-type when interest earned,
// interest expended and an operating expense line are all present
func DetectEntityType(rows []contracts.RawLabeledRow) contracts.EntityType {
	return detect(NewMatcher(rows))
}

func detect(m *Matcher) contracts.EntityType {
	if !m.Has(conceptInterestEarned) || !m.Has(conceptInterestExpended) {
		return contracts.EntityNonBank
	}

	if m.Has(conceptOperatingExpenses) || m.Has(conceptEmployeeCost) || m.Has(conceptOtherOperatingExpenses) {
		return contracts.EntityBank
	}

	return contracts.EntityNonBank
}

// ExtractAll extracts every statement. A statement whose quarter cannot be
// determined fails the whole call.
func (e *Extractor) ExtractAll(stmts []contracts.QuarterStatement, opts Options) ([]contracts.CanonicalQuarterRecord, error) {
	if len(stmts) == 0 {
		return nil, contracts.ErrNoStatements
	}

	records := make([]contracts.CanonicalQuarterRecord, 0, len(stmts))
	counts := map[contracts.EntityType]int{}

	for i, stmt := range stmts {
		rec, err := e.Extract(stmt, opts)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		counts[rec.EntityType]++
		records = append(records, rec)
	}

	e.logger.WithFields(map[string]interface{}{
		"statements": len(stmts),
		"bank":       counts[contracts.EntityBank],
		"nbfc":       counts[contracts.EntityNBFC],
		"non_bank":   counts[contracts.EntityNonBank],
	}).Debug("Extracted canonical records")

	return records, nil
}

// Extract builds the canonical record for one quarter
func (e *Extractor) Extract(stmt contracts.QuarterStatement, opts Options) (contracts.CanonicalQuarterRecord, error) {
	quarter, err := stmt.Label()
	if err != nil {
		return contracts.CanonicalQuarterRecord{}, err
	}

	m := NewMatcher(stmt.Rows)

	entity := opts.Entity
	if entity == "" {
		entity = detect(m)
	}

	scale := 1.0
	if opts.Unit != config.UnitCrore {
		scale = 10.0 // million → crore
	}

	var rec contracts.CanonicalQuarterRecord
	switch entity {
	case contracts.EntityBank:
		rec = extractBank(m, scale)
	case contracts.EntityNBFC:
		rec = extractNBFC(m, scale)
	default:
		rec = extractNonBank(m, scale)
	}

	rec.Quarter = quarter
	rec.EntityType = entity
	rec.EPS = contracts.Float(eps(m))

	return rec, nil
}

func extractNonBank(m *Matcher, scale float64) contracts.CanonicalQuarterRecord {
	sales := m.Value(conceptSales) / scale
	otherIncome := m.Value(conceptOtherIncome) / scale
	interest := math.Abs(m.Value(conceptInterest)) / scale
	depreciation := math.Abs(m.Value(conceptDepreciation)) / scale
	pbt := m.Value(conceptPBT) / scale

	// Expenses is a plug figure
	expenses := sales + otherIncome - interest - depreciation - pbt
	operatingProfit := sales - expenses

	rec := contracts.CanonicalQuarterRecord{
		Sales:           contracts.Float(sales),
		Expenses:        expenses,
		OperatingProfit: contracts.Float(operatingProfit),
		OPMPercent:      percentOf(operatingProfit, sales),
		OtherIncome:     otherIncome,
		Interest:        interest,
		Depreciation:    depreciation,
		ProfitBeforeTax: pbt,
	}
	applyTax(m, &rec, scale)
	return rec
}

func extractBank(m *Matcher, scale float64) contracts.CanonicalQuarterRecord {
	revenue := m.Value(conceptInterestEarned) / scale
	interest := math.Abs(m.Value(conceptInterestExpended)) / scale
	otherIncome := m.Value(conceptOtherIncome) / scale
	depreciation := math.Abs(m.Value(conceptDepreciation)) / scale

	opex, ok := m.Find(conceptOperatingExpenses)
	if ok {
		opex = math.Abs(opex)
	} else {
		opex = math.Abs(m.Value(conceptEmployeeCost)) + math.Abs(m.Value(conceptOtherOperatingExpenses))
	}
	provisions := math.Abs(m.Value(conceptProvisions))
	expenses := (opex + provisions) / scale

	financingProfit := revenue - interest - expenses

	pbt, ok := m.Find(conceptPBT)
	if ok {
		pbt /= scale
	} else {
		pbt = financingProfit + otherIncome - depreciation
	}

	rec := contracts.CanonicalQuarterRecord{
		Revenue:                contracts.Float(revenue),
		Expenses:               expenses,
		FinancingProfit:        contracts.Float(financingProfit),
		FinancingMarginPercent: percentOf(financingProfit, revenue),
		OtherIncome:            otherIncome,
		Interest:               interest,
		Depreciation:           depreciation,
		ProfitBeforeTax:        pbt,
	}

	if v, ok := m.Find(conceptGrossNPA); ok {
		rec.GrossNPAPercent = contracts.Float(v)
	}
	if v, ok := m.Find(conceptNetNPA); ok {
		rec.NetNPAPercent = contracts.Float(v)
	}

	applyTax(m, &rec, scale)
	return rec
}

func extractNBFC(m *Matcher, scale float64) contracts.CanonicalQuarterRecord {
	revenue := m.Value(conceptSales) / scale
	otherIncome := m.Value(conceptOtherIncome) / scale
	interest := math.Abs(m.Value(conceptInterest)) / scale
	depreciation := math.Abs(m.Value(conceptDepreciation)) / scale
	pbt, hasPBT := m.Find(conceptPBT)
	pbt /= scale

	var expenses float64
	if total, ok := m.Find(conceptTotalExpenses); ok {
		// Total Expenses already includes interest and depreciation
		expenses = math.Abs(total)/scale - interest - depreciation
	} else {
		expenses = revenue + otherIncome - interest - depreciation - pbt
	}

	financingProfit := revenue - interest - expenses
	if !hasPBT {
		pbt = financingProfit + otherIncome - depreciation
	}

	rec := contracts.CanonicalQuarterRecord{
		Revenue:                contracts.Float(revenue),
		Expenses:               expenses,
		FinancingProfit:        contracts.Float(financingProfit),
		FinancingMarginPercent: percentOf(financingProfit, revenue),
		OtherIncome:            otherIncome,
		Interest:               interest,
		Depreciation:           depreciation,
		ProfitBeforeTax:        pbt,
	}
	applyTax(m, &rec, scale)
	return rec
}

// applyTax sets TaxPercent and NetProfit from the (already scaled) PBT
func applyTax(m *Matcher, rec *contracts.CanonicalQuarterRecord, scale float64) {
	tax := math.Abs(m.Value(conceptTax)) / scale

	rec.TaxPercent = 0
	if rec.ProfitBeforeTax > 0 {
		rec.TaxPercent = tax / rec.ProfitBeforeTax * 100
	}

	if np, ok := m.Find(conceptNetProfit); ok {
		rec.NetProfit = np / scale
	} else {
		rec.NetProfit = rec.ProfitBeforeTax - tax
	}
}

// eps prefers the Basic family, then Diluted, else 0. Never scaled.
func eps(m *Matcher) float64 {
	if v, ok := m.Find(conceptBasicEPS); ok {
		return v
	}
	return m.Value(conceptDilutedEPS)
}

func percentOf(part, whole float64) *float64 {
	if whole == 0 {
		return nil
	}
	return contracts.Float(part / whole * 100)
}
