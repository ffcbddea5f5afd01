package s4_reconcile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODate is the date layout used for price lookups
const ISODate = "2006-01-02"

var eventDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})(?:\s+\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AaPp][Mm])?)?$`)

// ParseEventDate parses "DD/MM/YYYY" with an optional time and am/pm suffix.
// Only the calendar date is kept.
func ParseEventDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	m := eventDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("unparsable event date %q", raw)
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	d, ok := calendarDate(year, month, day)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid calendar date %q", raw)
	}
	return d, nil
}

// PriorYearDate subtracts one from the year only. Feb 29 has no prior-year
// counterpart in a non-leap year and reports false.
func PriorYearDate(d time.Time) (time.Time, bool) {
	return calendarDate(d.Year()-1, int(d.Month()), d.Day())
}

// calendarDate rejects dates that time.Date would normalize (31/04 → 01/05)
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}
