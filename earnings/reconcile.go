/*
reconcile.go - Attendance gap backfill

PURPOSE:
  Commit-on-completion only fires while a session is live. When the worker
  stays away for days, completed workdays accumulate with no record and
  period totals undercount. The Reconciler repairs this once per session:
  every weekday strictly after the last-checked date, up to the last
  completed workday, gets a plain worked record unless one already exists.

CONTRACT:
  - No-op when lastCheckedDate is already today (idempotent, safe to call
    repeatedly).
  - Effective end is today when today's shift has completed, else
    yesterday.
  - Weekends are skipped (fixed Sat/Sun rule).
  - Existing records are never overwritten; the store's insert-only write
    makes concurrent sessions converge to the same log.
  - Records plus cursor advance persist in one logical write. On failure
    the cursor stays put and the next session retries.

SEE ALSO:
  - accrual.go: the live counterpart of this rule
  - store.go: MergeBackfill semantics
*/
package earnings

import (
	"context"
	"time"
)

// defaultLookbackDays bounds backfill when neither a cursor nor a profile
// creation date is known.
const defaultLookbackDays = 7

// ReconcileResult reports what a reconciliation pass did.
type ReconcileResult struct {
	Backfilled  []Date
	LastChecked Date
	Changed     bool
}

// Reconciler backfills missed workdays against an AttendanceStore.
type Reconciler struct {
	Store AttendanceStore
}

func NewReconciler(store AttendanceStore) *Reconciler {
	return &Reconciler{Store: store}
}

// Reconcile runs one backfill pass for the worker at the given instant.
// The worker's CreatedAt anchors the cursor on first run.
func (r *Reconciler) Reconcile(ctx context.Context, worker Worker, now time.Time) (ReconcileResult, error) {
	today := DateOf(now)

	lastChecked, err := r.Store.LastCheckedDate(ctx, worker.ID)
	if err != nil {
		return ReconcileResult{}, &PersistenceError{Op: "load cursor", Err: err}
	}
	if lastChecked.IsZero() {
		if !worker.CreatedAt.IsZero() {
			lastChecked = DateOf(worker.CreatedAt)
		} else {
			lastChecked = today.AddDays(-defaultLookbackDays)
		}
	}

	// Already checked today: nothing to do.
	if lastChecked.Equal(today) {
		return ReconcileResult{LastChecked: today}, nil
	}

	// Today only counts once its shift has completed.
	effectiveEnd := today
	if !ResolveShift(worker.Profile.Schedule).Completed(now) {
		effectiveEnd = effectiveEnd.AddDays(-1)
	}

	log, err := r.Store.LoadLog(ctx, worker.ID)
	if err != nil {
		return ReconcileResult{}, &PersistenceError{Op: "load attendance log", Err: err}
	}

	backfill := make(map[Date]AttendanceRecord)
	var filled []Date
	for d := lastChecked.AddDays(1); d.BeforeOrEqual(effectiveEnd); d = d.AddDays(1) {
		if d.IsWeekend() {
			continue
		}
		if _, exists := log.Lookup(d); exists {
			continue
		}
		backfill[d] = NewWorkedRecord(SourceAutoBackfill)
		filled = append(filled, d)
	}

	// One logical write: records and cursor together, whether or not any
	// record changed, so the cursor always progresses on success.
	if err := r.Store.MergeBackfill(ctx, worker.ID, backfill, today); err != nil {
		return ReconcileResult{}, &PersistenceError{Op: "merge backfill", Err: err}
	}

	return ReconcileResult{
		Backfilled:  filled,
		LastChecked: today,
		Changed:     len(filled) > 0,
	}, nil
}
