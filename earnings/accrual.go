/*
accrual.go - Live earnings accrual

PURPOSE:
  Computes, at any instant, how much of the daily salary has been earned.
  Snapshot() is a pure function of (now, profile, today's record): callers
  re-evaluate it on a timer (~1 Hz) for live display and it is safe to
  call any number of times.

STATE MACHINE (today's attendance status):
  absent              -> {0, 0%, not working}; terminal for the day
  worked / paid_leave -> full day credited regardless of clock time,
                         plus overtime pay on worked days
  unset               -> live tracking against the shift window

OVERNIGHT NORMALIZATION:
  For a 22:00-06:00 shift, start/end/now are mapped onto one axis: end
  gets +1440, and when now is in the early-morning tail (before the raw
  end time) now gets +1440 too, so 05:00 compares as "hour 29".

COMMIT-ON-COMPLETION:
  When live progress reaches 100% and no record exists for today yet, an
  implicit worked record is written. This is the only side effect in the
  package and is isolated in CommitCompletedDay; the write is check-then-
  insert so a concurrently entered manual status is never clobbered.

SEE ALSO:
  - schedule.go: shift window resolution
  - reconcile.go: the same rule applied retroactively to missed days
*/
package earnings

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EARNINGS SNAPSHOT
// =============================================================================

// EarningsSnapshot is the instantaneous earnings state for one worker.
type EarningsSnapshot struct {
	InstantEarnings decimal.Decimal
	DailySalary     decimal.Decimal
	ProgressPercent float64 // always in [0, 100]
	IsWorking       bool
	Shift           ShiftWindow
}

// Snapshot computes the live earnings state at the given instant. The
// record pointer is today's attendance entry, nil when the day is unset.
func Snapshot(now time.Time, profile FinancialProfile, record *AttendanceRecord) EarningsSnapshot {
	window := ResolveShift(profile.Schedule)
	dailySalary := profile.DailySalary()

	if record != nil {
		return snapshotFromRecord(*record, profile, dailySalary, window)
	}
	return snapshotLive(now, dailySalary, window)
}

// snapshotFromRecord handles days with a stored status: the clock no
// longer matters.
func snapshotFromRecord(rec AttendanceRecord, profile FinancialProfile, dailySalary decimal.Decimal, window ShiftWindow) EarningsSnapshot {
	rec = rec.Normalize()

	if rec.Status == StatusAbsent {
		return EarningsSnapshot{
			InstantEarnings: decimal.Zero,
			DailySalary:     decimal.Zero,
			Shift:           window,
		}
	}

	// worked or paid_leave: full day credited. Overtime applies only to
	// worked days; Earnings handles that.
	earned := rec.Earnings(dailySalary, profile.HourlyRate())
	return EarningsSnapshot{
		InstantEarnings: earned,
		DailySalary:     dailySalary,
		ProgressPercent: 100,
		Shift:           window,
	}
}

func snapshotLive(now time.Time, dailySalary decimal.Decimal, window ShiftWindow) EarningsSnapshot {
	start := window.Start.Minutes()
	end := window.End.Minutes()
	current := ClockOf(now).Minutes()

	snap := EarningsSnapshot{
		InstantEarnings: decimal.Zero,
		DailySalary:     dailySalary,
		Shift:           window,
	}

	if end < start {
		// Overnight shift: push end past midnight, and if we are in the
		// early-morning tail (before the raw end time) push now too.
		switch {
		case current < end:
			current += minutesPerDay
		case current < start:
			// Between this morning's end and tonight's start: the shift
			// that began yesterday evening is done.
			snap.InstantEarnings = dailySalary
			snap.ProgressPercent = 100
			return snap
		}
		end += minutesPerDay
	}

	switch {
	case current < start:
		// Not started yet.

	case current >= end:
		snap.InstantEarnings = dailySalary
		snap.ProgressPercent = 100

	default:
		total := end - start
		worked := current - start
		if total > 0 {
			fraction := decimal.NewFromInt(int64(worked)).Div(decimal.NewFromInt(int64(total)))
			snap.InstantEarnings = dailySalary.Mul(fraction)
			progress, _ := fraction.Mul(decimal.NewFromInt(100)).Float64()
			snap.ProgressPercent = clampPercent(progress)
			snap.IsWorking = true
		}
	}

	return snap
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// =============================================================================
// COMMIT-ON-COMPLETION
// =============================================================================

// CommitCompletedDay writes an implicit worked record for today when the
// shift has completed and no record exists yet. Write-once and idempotent:
// the store checks for an existing record immediately before inserting, so
// repeated calls and concurrent manual edits are safe. Returns true when a
// record was written.
func CommitCompletedDay(ctx context.Context, store AttendanceStore, workerID WorkerID, profile FinancialProfile, now time.Time) (bool, error) {
	window := ResolveShift(profile.Schedule)
	if !window.Completed(now) {
		return false, nil
	}
	return store.InsertIfAbsent(ctx, workerID, DateOf(now), NewWorkedRecord(SourceAutoCommit))
}
