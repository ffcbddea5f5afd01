package contracts

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// QuarterMonth is the calendar month a fiscal quarter ends in
type QuarterMonth int

const (
	Mar QuarterMonth = 3
	Jun QuarterMonth = 6
	Sep QuarterMonth = 9
	Dec QuarterMonth = 12
)

var monthNames = map[QuarterMonth]string{
	Mar: "Mar",
	Jun: "Jun",
	Sep: "Sep",
	Dec: "Dec",
}

// String returns the three-letter month name
func (m QuarterMonth) String() string {
	if name, ok := monthNames[m]; ok {
		return name
	}
	return fmt.Sprintf("QuarterMonth(%d)", int(m))
}

// Valid reports whether m is one of Mar, Jun, Sep, Dec
func (m QuarterMonth) Valid() bool {
	_, ok := monthNames[m]
	return ok
}

// ParseQuarterMonth accepts "Mar", "jun", "SEP", ...
func ParseQuarterMonth(s string) (QuarterMonth, bool) {
	for m, name := range monthNames {
		if strings.EqualFold(name, s) {
			return m, true
		}
	}
	return 0, false
}

// QuarterLabel identifies a fiscal quarter, serialized as "YYYY-Mmm"
// ⭐ SSOT: 분기 식별자 (정렬/중복제거/YoY 조회 키)
type QuarterLabel struct {
	Year  int
	Month QuarterMonth
}

var quarterLabelPattern = regexp.MustCompile(`^(\d{4})-([A-Za-z]{3})$`)

// ParseQuarterLabel parses "2020-Mar"
func ParseQuarterLabel(s string) (QuarterLabel, error) {
	m := quarterLabelPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return QuarterLabel{}, fmt.Errorf("%w: %q", ErrInvalidQuarterLabel, s)
	}

	year, _ := strconv.Atoi(m[1])
	month, ok := ParseQuarterMonth(m[2])
	if !ok {
		return QuarterLabel{}, fmt.Errorf("%w: %q is not a quarter-end month", ErrInvalidQuarterLabel, m[2])
	}

	return QuarterLabel{Year: year, Month: month}, nil
}

// MustQuarter parses a label and panics on error (fixtures and constants)
func MustQuarter(s string) QuarterLabel {
	q, err := ParseQuarterLabel(s)
	if err != nil {
		panic(err)
	}
	return q
}

var dateEndPattern = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})-(\d{2}|\d{4})$`)

// QuarterFromDateEnd infers the label from a period end like "31-Mar-20"
// or "30-Jun-2021". Two-digit years are 20YY.
func QuarterFromDateEnd(dateEnd string) (QuarterLabel, error) {
	m := dateEndPattern.FindStringSubmatch(strings.TrimSpace(dateEnd))
	if m == nil {
		return QuarterLabel{}, fmt.Errorf("%w: period end %q", ErrInvalidQuarterLabel, dateEnd)
	}

	month, ok := ParseQuarterMonth(m[2])
	if !ok {
		return QuarterLabel{}, fmt.Errorf("%w: period end %q is not a quarter end", ErrInvalidQuarterLabel, dateEnd)
	}

	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}

	return QuarterLabel{Year: year, Month: month}, nil
}

// String formats the label as "YYYY-Mmm"
func (q QuarterLabel) String() string {
	return fmt.Sprintf("%04d-%s", q.Year, q.Month)
}

// IsZero reports whether the label is unset
func (q QuarterLabel) IsZero() bool {
	return q.Year == 0 && q.Month == 0
}

// Compare orders by year, then month (Mar < Jun < Sep < Dec)
func (q QuarterLabel) Compare(other QuarterLabel) int {
	switch {
	case q.Year < other.Year:
		return -1
	case q.Year > other.Year:
		return 1
	case q.Month < other.Month:
		return -1
	case q.Month > other.Month:
		return 1
	default:
		return 0
	}
}

// Before reports whether q sorts before other
func (q QuarterLabel) Before(other QuarterLabel) bool {
	return q.Compare(other) < 0
}

// YearAgo returns the same quarter one year earlier (YoY base)
func (q QuarterLabel) YearAgo() QuarterLabel {
	return QuarterLabel{Year: q.Year - 1, Month: q.Month}
}

// MarshalText implements encoding.TextMarshaler
func (q QuarterLabel) MarshalText() ([]byte, error) {
	if !q.Month.Valid() {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidQuarterLabel, int(q.Month))
	}
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (q *QuarterLabel) UnmarshalText(text []byte) error {
	parsed, err := ParseQuarterLabel(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
