package earnings

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD AGGREGATION - Totals over stored attendance
// =============================================================================

// PeriodSummary sums per-day earnings over a date range from the
// attendance log. Today is always excluded: the current day belongs to the
// live accrual engine, and the caller adds its contribution on top. This
// split is what keeps a mid-accrual day from being counted twice.
type PeriodSummary struct {
	TotalEarnings decimal.Decimal
	OvertimePay   decimal.Decimal
	OvertimeHours float64
	WorkedDays    int // worked + paid_leave days
}

// Summarize aggregates the log over the period, excluding today. Rates are
// recomputed from the profile on every call, not read from the records, so
// a salary change reprices history.
func Summarize(log AttendanceLog, profile FinancialProfile, period Period, today Date) PeriodSummary {
	dailySalary := profile.DailySalary()
	hourlyRate := profile.HourlyRate()

	summary := PeriodSummary{
		TotalEarnings: decimal.Zero,
		OvertimePay:   decimal.Zero,
	}

	for date, rec := range log {
		if !period.Contains(date) || date.Equal(today) {
			continue
		}
		rec = rec.Normalize()
		if rec.Status != StatusWorked && rec.Status != StatusPaidLeave {
			continue
		}

		summary.TotalEarnings = summary.TotalEarnings.Add(rec.Earnings(dailySalary, hourlyRate))
		summary.OvertimePay = summary.OvertimePay.Add(rec.OvertimePay(hourlyRate))
		if rec.Status == StatusWorked {
			summary.OvertimeHours += rec.OvertimeHours
		}
		summary.WorkedDays++
	}

	return summary
}

// TotalEarned sums every priced day in the log before today, across all
// periods. This backs the "net balance" figure: past earnings plus the
// live snapshot minus spending.
func TotalEarned(log AttendanceLog, profile FinancialProfile, today Date) decimal.Decimal {
	dailySalary := profile.DailySalary()
	hourlyRate := profile.HourlyRate()

	total := decimal.Zero
	for date, rec := range log {
		if date.Equal(today) {
			continue
		}
		total = total.Add(rec.Normalize().Earnings(dailySalary, hourlyRate))
	}
	return total
}
