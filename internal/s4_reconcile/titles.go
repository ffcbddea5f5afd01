package s4_reconcile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wonny/fundscore/internal/contracts"
)

// EventKind distinguishes earnings releases from earnings calls
type EventKind string

const (
	KindRelease EventKind = "release"
	KindCall    EventKind = "call"
)

// Title patterns, tried in order
var (
	quarterTitlePattern = regexp.MustCompile(`(?i)\bQ([1-4])\s+(?:FY\s*)?(\d{2}|\d{4})\s+Earnings\s+(Release|Call)\b`)
	fyTitlePattern      = regexp.MustCompile(`(?i)\bFY\s*(\d{2}|\d{4})\s+Earnings\s+(Release|Call)\b`)
	interimTitlePattern = regexp.MustCompile(`(?i)\bInterim\s+(\d{2}|\d{4})\s+Earnings\s+(Release|Call)\b`)
)

// FiscalQuarterLabel maps quarter n of an April-March fiscal year to its
// calendar label: Q1=Jun, Q2=Sep, Q3=Dec of FY-1, Q4=Mar of FY
func FiscalQuarterLabel(n, fiscalYear int) (contracts.QuarterLabel, bool) {
	switch n {
	case 1:
		return contracts.QuarterLabel{Year: fiscalYear - 1, Month: contracts.Jun}, true
	case 2:
		return contracts.QuarterLabel{Year: fiscalYear - 1, Month: contracts.Sep}, true
	case 3:
		return contracts.QuarterLabel{Year: fiscalYear - 1, Month: contracts.Dec}, true
	case 4:
		return contracts.QuarterLabel{Year: fiscalYear, Month: contracts.Mar}, true
	default:
		return contracts.QuarterLabel{}, false
	}
}

// InferQuarterFromTitle maps an event title like "Q3 2024 Earnings Call"
// to its quarter label. Titles mentioning "Projected" never match.
func InferQuarterFromTitle(title string) (contracts.QuarterLabel, EventKind, bool) {
	if strings.Contains(strings.ToLower(title), "projected") {
		return contracts.QuarterLabel{}, "", false
	}

	if m := quarterTitlePattern.FindStringSubmatch(title); m != nil {
		n, _ := strconv.Atoi(m[1])
		label, ok := FiscalQuarterLabel(n, fiscalYear(m[2]))
		return label, kindOf(m[3]), ok
	}

	if m := fyTitlePattern.FindStringSubmatch(title); m != nil {
		label, ok := FiscalQuarterLabel(4, fiscalYear(m[1]))
		return label, kindOf(m[2]), ok
	}

	if m := interimTitlePattern.FindStringSubmatch(title); m != nil {
		label, ok := FiscalQuarterLabel(2, fiscalYear(m[1]))
		return label, kindOf(m[2]), ok
	}

	return contracts.QuarterLabel{}, "", false
}

func fiscalYear(s string) int {
	fy, _ := strconv.Atoi(s)
	if len(s) == 2 {
		fy += 2000
	}
	return fy
}

func kindOf(s string) EventKind {
	if strings.EqualFold(s, "call") {
		return KindCall
	}
	return KindRelease
}
