package earnings

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkerID string

// =============================================================================
// FINANCIAL PROFILE
// =============================================================================

// FinancialProfile is everything the engine needs to price a day of work.
// It is passed explicitly into every engine call; the engine keeps no
// ambient profile state.
type FinancialProfile struct {
	MonthlySalary       decimal.Decimal `json:"monthlySalary"`
	WorkingDaysPerMonth int             `json:"workingDays"`
	Schedule            WorkSchedule    `json:"schedule"`
}

const defaultWorkingDays = 22

// DailySalary is monthlySalary / workingDaysPerMonth. Zero working days
// degrades to zero rather than dividing by zero.
func (p FinancialProfile) DailySalary() decimal.Decimal {
	days := p.WorkingDaysPerMonth
	if days <= 0 {
		return decimal.Zero
	}
	return p.MonthlySalary.Div(decimal.NewFromInt(int64(days)))
}

// HourlyRate is dailySalary / shiftDurationHours for the active shift.
// A zero-duration shift yields a zero rate.
func (p FinancialProfile) HourlyRate() decimal.Decimal {
	window := ResolveShift(p.Schedule)
	mins := window.DurationMinutes()
	if mins <= 0 {
		return decimal.Zero
	}
	hours := decimal.NewFromInt(int64(mins)).Div(decimal.NewFromInt(60))
	return p.DailySalary().Div(hours)
}

// =============================================================================
// WORKER
// =============================================================================

// Worker is a profile plus identity, as stored. CreatedAt anchors the
// default reconciliation cursor for profiles that have never been checked.
type Worker struct {
	ID        WorkerID
	Name      string
	Profile   FinancialProfile
	CreatedAt time.Time
}
