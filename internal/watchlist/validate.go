package watchlist

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError 검증 실패
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	symbolPattern = regexp.MustCompile(`^[A-Za-z0-9&._-]+$`)
	scripPattern  = regexp.MustCompile(`^\d{6}$`)
)

// Validate checks symbols, scrip codes and sectors
func Validate(w *Watchlist) error {
	if len(w.Companies) == 0 {
		return ValidationError{"companies", "at least one company required"}
	}

	symbols := map[string]bool{}
	scrips := map[string]bool{}

	for i, e := range w.Companies {
		field := fmt.Sprintf("companies[%d]", i)

		if !symbolPattern.MatchString(e.Symbol) {
			return ValidationError{field + ".symbol", fmt.Sprintf("invalid symbol %q", e.Symbol)}
		}
		key := strings.ToUpper(e.Symbol)
		if symbols[key] {
			return ValidationError{field + ".symbol", fmt.Sprintf("duplicate symbol %q", e.Symbol)}
		}
		symbols[key] = true

		if e.ScripCode != "" {
			if !scripPattern.MatchString(e.ScripCode) {
				return ValidationError{field + ".scrip_code", "must be 6 digits"}
			}
			if scrips[e.ScripCode] {
				return ValidationError{field + ".scrip_code", fmt.Sprintf("duplicate scrip code %s", e.ScripCode)}
			}
			scrips[e.ScripCode] = true
		}

		if e.Sector != "" && !Sectors[strings.ToLower(e.Sector)] {
			return ValidationError{field + ".sector", fmt.Sprintf("unknown sector %q", e.Sector)}
		}
	}

	return nil
}
