package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Currency
		wantErr bool
	}{
		{"empty uses default", "", DefaultCurrency, false},
		{"lower case normalized", "eur", "EUR", false},
		{"padded", " gbp ", "GBP", false},
		{"too long", "EURO", "", true},
		{"digits", "U5D", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCurrency(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPercentOf(t *testing.T) {
	assert.True(t, PercentOf(decimal.NewFromInt(1000), 25).Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "33.34", PercentOf(decimal.RequireFromString("133.35"), 25).StringFixed(2))
	assert.True(t, PercentOf(decimal.Zero, 25).IsZero())
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("12.50")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	d, err = ParseAmount("  ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseAmount("abc")
	assert.Error(t, err)
}

func TestAddress_String(t *testing.T) {
	a := Address{Line1: " 1 Harbour Rd ", City: "Leith", PostalCode: "EH6", Country: "gb"}
	assert.Equal(t, "1 Harbour Rd, Leith, EH6, GB", a.String())
	assert.True(t, Address{Line1: "  "}.IsEmpty())
	assert.False(t, a.IsEmpty())
}
