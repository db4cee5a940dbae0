/*
money.go - Monetary helpers for the earnings engine

PURPOSE:
  All money in the engine is decimal.Decimal to avoid floating-point drift
  in accrual fractions and overtime multiplication. This file holds the
  boundary helpers: parsing Turkish-formatted user input and rendering
  amounts back in the tr-TR locale.

TURKISH NUMBER FORM:
  Salaries and spend amounts arrive as the user typed them: "30.000,50"
  means thirty thousand and fifty kurus. Dots are thousands separators,
  the comma is the decimal mark. ParseAmount normalizes this at the
  ingestion boundary; internal code only ever sees decimal.Decimal.

SEE ALSO:
  - timecost.go: hourly rate derivation and duration rendering
  - profile.go: daily salary / hourly rate
*/
package earnings

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ParseAmount parses a Turkish-formatted number ("30.000,50" → 30000.50).
// Malformed input degrades to zero; invalid money never crashes the engine.
func ParseAmount(s string) decimal.Decimal {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return decimal.Zero
	}
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	// Strip currency symbols and anything else non-numeric.
	var b strings.Builder
	for _, r := range clean {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

var trPrinter = message.NewPrinter(language.Turkish)

// FormatCurrency renders an amount in the tr-TR locale with the lira sign,
// e.g. 30000.5 → "₺30.000,50".
func FormatCurrency(d decimal.Decimal) string {
	f, _ := d.Float64()
	return trPrinter.Sprintf("₺%v", number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}

// FormatAmount renders an amount in the tr-TR locale without a currency
// sign, e.g. for the formattedEarnings display field.
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return trPrinter.Sprintf("%v", number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}
