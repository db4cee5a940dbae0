/*
store.go - Persistence interfaces for the earnings engine

PURPOSE:
  Defines the boundary between engine logic and storage. Implementations:
    - store/sqlite: production SQLite store
    - earnings/store: in-memory store for tests

MERGE SEMANTICS:
  The persistence sink accepts partial writes only. Attendance mutations
  touch attendance rows and the reconciliation cursor; unrelated profile
  fields are never rewritten.

WRITE RULES (enforced by implementations):
  InsertIfAbsent:  check-then-insert; an existing record always wins.
  MergeBackfill:   insert-only rows plus cursor advance, one logical
                   write. The cursor update is guarded so it can only
                   move forward.
  SetRecord:       explicit user edit; overwrite allowed.

SEE ALSO:
  - reconcile.go: the only caller of MergeBackfill
  - accrual.go: the only caller of InsertIfAbsent
*/
package earnings

import "context"

// =============================================================================
// PROFILE SOURCE
// =============================================================================

// ProfileStore provides worker profiles keyed by an opaque identifier.
type ProfileStore interface {
	GetWorker(ctx context.Context, id WorkerID) (*Worker, error)
	SaveWorker(ctx context.Context, w Worker) error
	UpdateProfile(ctx context.Context, id WorkerID, p FinancialProfile) error
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// =============================================================================
// ATTENDANCE SINK
// =============================================================================

// AttendanceStore persists the attendance log and the reconciliation
// cursor for each worker.
type AttendanceStore interface {
	// LoadLog returns the full attendance log. Legacy string-form records
	// are normalized at read time.
	LoadLog(ctx context.Context, id WorkerID) (AttendanceLog, error)

	// LastCheckedDate returns the reconciliation cursor, zero Date when
	// the worker has never been reconciled.
	LastCheckedDate(ctx context.Context, id WorkerID) (Date, error)

	// SetRecord writes an explicit user edit for a date. Overwrites any
	// existing record.
	SetRecord(ctx context.Context, id WorkerID, date Date, rec AttendanceRecord) error

	// InsertIfAbsent writes a record only when the date has none yet.
	// Returns true when the record was written.
	InsertIfAbsent(ctx context.Context, id WorkerID, date Date, rec AttendanceRecord) (bool, error)

	// MergeBackfill inserts the given records (skipping dates that gained
	// a record since they were read) and advances the cursor to
	// lastChecked, atomically. The cursor never moves backward.
	MergeBackfill(ctx context.Context, id WorkerID, records map[Date]AttendanceRecord, lastChecked Date) error
}

// Store is the full persistence surface the API layer needs.
type Store interface {
	ProfileStore
	AttendanceStore
}
