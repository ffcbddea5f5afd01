package watchlist

import (
	"strings"

	"github.com/wonny/fundscore/internal/contracts"
)

// Watchlist is the YAML company list evaluated by bulk runs
// ⭐ SSOT: 평가 대상 종목 목록 + 식별자 매핑
type Watchlist struct {
	Defaults  Defaults `yaml:"defaults" json:"defaults"`
	Companies []Entry  `yaml:"companies" json:"companies"`
}

// Defaults apply to entries that leave a field unset
type Defaults struct {
	Consolidated bool `yaml:"consolidated" json:"consolidated"`
}

// Entry is one company
type Entry struct {
	Symbol       string `yaml:"symbol" json:"symbol"`
	PriceSymbol  string `yaml:"price_symbol" json:"price_symbol,omitempty"`
	ScripCode    string `yaml:"scrip_code" json:"scrip_code,omitempty"`
	Sector       string `yaml:"sector" json:"sector,omitempty"`
	Consolidated *bool  `yaml:"consolidated" json:"consolidated,omitempty"`
}

// Sectors accepted in the watchlist (빈 값 = other)
var Sectors = map[string]bool{
	"auto":      true,
	"bank":      true,
	"cement":    true,
	"chemicals": true,
	"consumer":  true,
	"energy":    true,
	"fmcg":      true,
	"infra":     true,
	"insurance": true,
	"it":        true,
	"metals":    true,
	"nbfc":      true,
	"pharma":    true,
	"realty":    true,
	"telecom":   true,
	"other":     true,
}

// Entity maps the sector onto a forced statement shape; empty means detect
func (e Entry) Entity() contracts.EntityType {
	switch strings.ToLower(e.Sector) {
	case "nbfc":
		return contracts.EntityNBFC
	case "bank":
		return contracts.EntityBank
	default:
		return ""
	}
}

// PriceSym returns the price-service symbol, defaulting to Symbol
func (e Entry) PriceSym() string {
	if e.PriceSymbol != "" {
		return e.PriceSymbol
	}
	return e.Symbol
}

// IsConsolidated resolves the entry flag against the defaults
func (w *Watchlist) IsConsolidated(e Entry) bool {
	if e.Consolidated != nil {
		return *e.Consolidated
	}
	return w.Defaults.Consolidated
}

// Find looks up an entry by symbol (case-insensitive)
func (w *Watchlist) Find(symbol string) (Entry, bool) {
	for _, e := range w.Companies {
		if strings.EqualFold(e.Symbol, symbol) {
			return e, true
		}
	}
	return Entry{}, false
}

// ByScripCode resolves an exchange scrip code to its entry
func (w *Watchlist) ByScripCode(scrip string) (Entry, bool) {
	scrip = strings.TrimSpace(scrip)
	for _, e := range w.Companies {
		if e.ScripCode != "" && e.ScripCode == scrip {
			return e, true
		}
	}
	return Entry{}, false
}

// Symbols returns every symbol in file order
func (w *Watchlist) Symbols() []string {
	out := make([]string, len(w.Companies))
	for i, e := range w.Companies {
		out[i] = e.Symbol
	}
	return out
}
