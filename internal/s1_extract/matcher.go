package s1_extract

import (
	"math"
	"strconv"
	"strings"

	"github.com/wonny/fundscore/internal/contracts"
)

// Concept is a target line item with its acceptable labels in priority order.
// Exclude lists substrings that disqualify a row during the contains pass
// ("Tax" must not pick up "Profit before tax").
type Concept struct {
	Name       string
	Candidates []string
	Exclude    []string
}

// Matcher looks up concept values in one statement's rows
// ⭐ SSOT: 라벨 매칭 규칙 (정확 일치 → 부분 일치, 후보 순서 → 행 순서)
type Matcher struct {
	rows []matchRow
}

type matchRow struct {
	label string // lower-cased, trimmed
	value float64
}

// NewMatcher indexes the rows that carry a numeric value; rows without one
// can never satisfy a concept
func NewMatcher(rows []contracts.RawLabeledRow) *Matcher {
	m := &Matcher{rows: make([]matchRow, 0, len(rows))}
	for _, row := range rows {
		v, ok := RowValue(row)
		if !ok {
			continue
		}
		m.rows = append(m.rows, matchRow{
			label: normalizeLabel(row.Label),
			value: v,
		})
	}
	return m
}

// Find returns the value for c and whether any row matched.
// The exact pass runs over every candidate before the contains pass starts.
func (m *Matcher) Find(c Concept) (float64, bool) {
	for _, candidate := range c.Candidates {
		want := normalizeLabel(candidate)
		for _, row := range m.rows {
			if row.label == want {
				return row.value, true
			}
		}
	}

	for _, candidate := range c.Candidates {
		want := normalizeLabel(candidate)
		for _, row := range m.rows {
			if strings.Contains(row.label, want) && !excluded(row.label, c.Exclude) {
				return row.value, true
			}
		}
	}

	return 0, false
}

// Value returns the matched value, or 0 when nothing matched
func (m *Matcher) Value(c Concept) float64 {
	v, _ := m.Find(c)
	return v
}

// Has reports whether c matched any row
func (m *Matcher) Has(c Concept) bool {
	_, ok := m.Find(c)
	return ok
}

func excluded(label string, exclude []string) bool {
	for _, e := range exclude {
		if strings.Contains(label, strings.ToLower(e)) {
			return true
		}
	}
	return false
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// RowValue prefers the numeric value and falls back to parsing the raw text
func RowValue(row contracts.RawLabeledRow) (float64, bool) {
	if v, ok := contracts.Finite(row.ValueNumber); ok {
		return v, true
	}
	if row.ValueRaw == nil {
		return 0, false
	}
	return ParseNumber(*row.ValueRaw)
}

// ParseNumber parses statement cell text: "1,234.5", "(123)" → -123,
// "12.5%", "--" → not a number
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer(",", "", "₹", "", "%", "", " ", "").Replace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	if s == "" || strings.Trim(s, "-") == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}
