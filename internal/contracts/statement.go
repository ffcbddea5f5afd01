package contracts

import "fmt"

// RawLabeledRow is one line of a source financial statement
type RawLabeledRow struct {
	Label       string   `json:"label"`
	ValueRaw    *string  `json:"valueRaw"`
	ValueNumber *float64 `json:"valueNumber"`
}

// StatementMeta carries the period metadata of a statement column
type StatementMeta struct {
	DateEnd string `json:"dateEnd"`
}

// QuarterStatement is one quarter's raw rows as provided by a statement source
type QuarterStatement struct {
	Quarter *QuarterLabel   `json:"quarter"`
	Meta    *StatementMeta  `json:"meta"`
	Rows    []RawLabeledRow `json:"rows"`
}

// Label returns the explicit quarter, or infers it from Meta.DateEnd
func (s QuarterStatement) Label() (QuarterLabel, error) {
	if s.Quarter != nil {
		return *s.Quarter, nil
	}
	if s.Meta == nil || s.Meta.DateEnd == "" {
		return QuarterLabel{}, fmt.Errorf("%w: statement has neither quarter nor dateEnd", ErrInvalidQuarterLabel)
	}
	return QuarterFromDateEnd(s.Meta.DateEnd)
}
