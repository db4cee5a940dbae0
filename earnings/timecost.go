package earnings

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIME COST - Money expressed as work duration
// =============================================================================

// ZeroDuration is the rendered form of "no work time" ("0dk").
// Duration strings use the Turkish suffixes sa (hours) and dk (minutes).
const ZeroDuration = "0dk"

// HourlyRateFromSalary derives an hourly rate from a monthly salary,
// working days per month, and hours per day. Any zero input yields zero.
func HourlyRateFromSalary(monthlySalary decimal.Decimal, workingDaysPerMonth int, hoursPerDay float64) decimal.Decimal {
	if monthlySalary.IsZero() || workingDaysPerMonth <= 0 || hoursPerDay <= 0 {
		return decimal.Zero
	}
	totalHours := decimal.NewFromInt(int64(workingDaysPerMonth)).Mul(decimal.NewFromFloat(hoursPerDay))
	if totalHours.IsZero() {
		return decimal.Zero
	}
	return monthlySalary.Div(totalHours)
}

// TimeCost renders a monetary amount as the work time it costs at the
// given hourly rate: "1sa 30dk", "45dk", "2sa". Non-positive inputs yield
// the zero-duration form.
func TimeCost(amount, hourlyRate decimal.Decimal) string {
	if amount.LessThanOrEqual(decimal.Zero) || hourlyRate.LessThanOrEqual(decimal.Zero) {
		return ZeroDuration
	}

	totalHours, _ := amount.Div(hourlyRate).Float64()
	hours := int(totalHours)
	minutes := int((totalHours-float64(hours))*60 + 0.5)

	// Rounding can land exactly on the next hour; carry instead of
	// emitting "60dk".
	if minutes == 60 {
		hours++
		minutes = 0
	}

	switch {
	case hours == 0 && minutes == 0:
		return ZeroDuration
	case hours == 0:
		return fmt.Sprintf("%ddk", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dsa", hours)
	default:
		return fmt.Sprintf("%dsa %ddk", hours, minutes)
	}
}
