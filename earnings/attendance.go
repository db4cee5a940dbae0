/*
attendance.go - Attendance log and record normalization

PURPOSE:
  The attendance log maps calendar dates to what actually happened on
  them: worked (possibly with overtime), absent, or paid leave. A date
  with no entry is "unset" and is governed by live accrual, not by a
  stored status.

LEGACY RECORD FORM:
  Older logs store a bare status string per date ("worked") instead of
  the object form. Both are accepted at the JSON boundary; internal code
  only ever sees the canonical struct with zeroed overtime.

WRITE DISCIPLINE:
  The log is mutated three ways, each with its own rule:
    - Reconciler backfill:   insert-only, never overwrites (reconcile.go)
    - Commit-on-completion:  write-once for today (accrual.go)
    - Explicit calendar edit: may overwrite (api layer)

SEE ALSO:
  - accrual.go: how a record overrides live computation
  - aggregate.go: period totals over the log
*/
package earnings

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ATTENDANCE STATUS
// =============================================================================

type AttendanceStatus string

const (
	StatusWorked    AttendanceStatus = "worked"
	StatusAbsent    AttendanceStatus = "absent"
	StatusPaidLeave AttendanceStatus = "paid_leave"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusWorked, StatusAbsent, StatusPaidLeave:
		return true
	}
	return false
}

// RecordSource tracks which writer produced a record, for auditability.
type RecordSource string

const (
	SourceManual       RecordSource = "manual"
	SourceAutoBackfill RecordSource = "auto_backfill"
	SourceAutoCommit   RecordSource = "auto_commit"
)

// =============================================================================
// ATTENDANCE RECORD
// =============================================================================

// AttendanceRecord is the value stored per date. Overtime only applies to
// worked days; OvertimeRate is a multiplier on the hourly rate (>= 1).
type AttendanceRecord struct {
	Status        AttendanceStatus `json:"status"`
	OvertimeHours float64          `json:"overtimeHours,omitempty"`
	OvertimeRate  float64          `json:"overtimeRate,omitempty"`
	Source        RecordSource     `json:"source,omitempty"`
}

// NewWorkedRecord returns a plain worked record with no overtime, as
// written by backfill and commit-on-completion.
func NewWorkedRecord(source RecordSource) AttendanceRecord {
	return AttendanceRecord{Status: StatusWorked, OvertimeRate: 1, Source: source}
}

// UnmarshalJSON accepts both the object form and the legacy bare string
// form ("worked" becomes a worked record with zero overtime).
func (r *AttendanceRecord) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = AttendanceRecord{Status: AttendanceStatus(s)}
		r.normalize()
		return nil
	}

	type plain AttendanceRecord
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = AttendanceRecord(p)
	r.normalize()
	return nil
}

// normalize clamps the record into canonical shape: overtime only on
// worked days, multiplier at least 1.
func (r *AttendanceRecord) normalize() {
	if r.Status != StatusWorked {
		r.OvertimeHours = 0
		r.OvertimeRate = 0
		return
	}
	if r.OvertimeHours < 0 {
		r.OvertimeHours = 0
	}
	if r.OvertimeRate < 1 {
		r.OvertimeRate = 1
	}
}

// Normalize returns the canonical form of a record read from storage.
func (r AttendanceRecord) Normalize() AttendanceRecord {
	r.normalize()
	return r
}

// Earnings prices a stored day: base daily salary plus overtime pay for
// worked days, base only for paid leave, zero for absence. Rates are
// supplied by the caller so a changed profile reprices history.
func (r AttendanceRecord) Earnings(dailySalary, hourlyRate decimal.Decimal) decimal.Decimal {
	switch r.Status {
	case StatusWorked:
		return dailySalary.Add(r.OvertimePay(hourlyRate))
	case StatusPaidLeave:
		return dailySalary
	default:
		return decimal.Zero
	}
}

// OvertimePay is overtimeHours * hourlyRate * overtimeRate, zero for
// non-worked statuses.
func (r AttendanceRecord) OvertimePay(hourlyRate decimal.Decimal) decimal.Decimal {
	if r.Status != StatusWorked || r.OvertimeHours <= 0 {
		return decimal.Zero
	}
	rate := r.OvertimeRate
	if rate < 1 {
		rate = 1
	}
	return hourlyRate.
		Mul(decimal.NewFromFloat(r.OvertimeHours)).
		Mul(decimal.NewFromFloat(rate))
}

// =============================================================================
// ATTENDANCE LOG
// =============================================================================

// AttendanceLog maps civil dates to records. For any date at most one
// record exists; insertion order is irrelevant.
type AttendanceLog map[Date]AttendanceRecord

// Lookup returns the record for a date, if any.
func (l AttendanceLog) Lookup(d Date) (AttendanceRecord, bool) {
	rec, ok := l[d]
	return rec, ok
}

// Clone returns a shallow copy. Reconciliation works on a copy so a failed
// persistence attempt cannot corrupt the caller's log.
func (l AttendanceLog) Clone() AttendanceLog {
	out := make(AttendanceLog, len(l))
	for d, r := range l {
		out[d] = r
	}
	return out
}
