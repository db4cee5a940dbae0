package earnings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tim/earnings-engine/earnings"
)

// =============================================================================
// TURKISH AMOUNT PARSING
// =============================================================================

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"30.000,50", "30000.5"},
		{"1.234", "1234"},
		{"500", "500"},
		{"0,75", "0.75"},
		{"₺2.500,00", "2500"},
		{" 1.000 ", "1000"},
		{"-50,25", "-50.25"},
		{"", "0"},
		{"abc", "0"},
		{",,", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := earnings.ParseAmount(tt.in)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

// =============================================================================
// LOCALE RENDERING
// =============================================================================

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₺30.000,50", earnings.FormatCurrency(money(30000.5)))
	assert.Equal(t, "₺1.000,00", earnings.FormatCurrency(money(1000)))
	assert.Equal(t, "₺0,00", earnings.FormatCurrency(money(0)))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.234,56", earnings.FormatAmount(money(1234.56)))
	assert.Equal(t, "500,00", earnings.FormatAmount(money(500)))
}
