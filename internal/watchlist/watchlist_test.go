package watchlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscore/internal/contracts"
)

const sampleYAML = `
defaults:
  consolidated: true
companies:
  - symbol: TCS
    price_symbol: TCS.NS
    scrip_code: "532540"
    sector: it
  - symbol: BAJFINANCE
    scrip_code: "500034"
    sector: nbfc
    consolidated: false
  - symbol: HDFCBANK
    sector: bank
`

func TestParse(t *testing.T) {
	w, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, w.Companies, 3)

	assert.Equal(t, []string{"TCS", "BAJFINANCE", "HDFCBANK"}, w.Symbols())

	tcs, ok := w.Find("tcs")
	require.True(t, ok)
	assert.Equal(t, "TCS.NS", tcs.PriceSym())
	assert.True(t, w.IsConsolidated(tcs))
	assert.Equal(t, contracts.EntityType(""), tcs.Entity())

	baj, ok := w.ByScripCode("500034")
	require.True(t, ok)
	assert.Equal(t, "BAJFINANCE", baj.Symbol)
	assert.Equal(t, "BAJFINANCE", baj.PriceSym())
	assert.False(t, w.IsConsolidated(baj))
	assert.Equal(t, contracts.EntityNBFC, baj.Entity())

	hdfc, _ := w.Find("HDFCBANK")
	assert.Equal(t, contracts.EntityBank, hdfc.Entity())

	_, ok = w.ByScripCode("999999")
	assert.False(t, ok)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("companies:\n  - symbol: TCS\n    sectr: it\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sectr")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"empty", "companies: []\n", "companies"},
		{"duplicate symbol", "companies:\n  - symbol: TCS\n  - symbol: tcs\n", "companies[1].symbol"},
		{"bad scrip", "companies:\n  - symbol: TCS\n    scrip_code: \"12\"\n", "companies[0].scrip_code"},
		{"unknown sector", "companies:\n  - symbol: TCS\n    sector: crypto\n", "companies[0].sector"},
		{"bad symbol", "companies:\n  - symbol: \"T C S\"\n", "companies[0].symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoadAndHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	w, err := Load(path)
	require.NoError(t, err)

	h1, err := Hash(w)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, _ := Hash(w)
	assert.Equal(t, h1, h2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
