/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements earnings.Store (profiles, attendance log, reconciliation
  cursor) and spending.Store (spend entries) using SQLite. The same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

MERGE SEMANTICS:
  Attendance writes are partial by construction: each mutation touches
  attendance rows and the cursor row only, never the worker row.
  - InsertIfAbsent/MergeBackfill use INSERT OR IGNORE: an existing record
    for a date always wins, which is what makes backfill and
    commit-on-completion idempotent and race-safe.
  - SetRecord (explicit calendar edit) is the only upsert.
  - The cursor update carries a WHERE guard so it can only move forward.

ATOMICITY:
  MergeBackfill runs rows plus cursor advance inside one SQL transaction:
  either the whole backfill lands and the cursor moves, or neither does.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/tim.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - earnings/store.go: interface definitions and write rules
  - earnings/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/tim/earnings-engine/earnings"
	"github.com/tim/earnings-engine/spending"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ earnings.Store = (*Store)(nil)
	_ spending.Store = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Workers (profile source)
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		monthly_salary TEXT NOT NULL DEFAULT '0',
		working_days INTEGER NOT NULL DEFAULT 22,
		schedule_json TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Attendance log: one record per worker per civil date
	CREATE TABLE IF NOT EXISTS attendance (
		worker_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		overtime_hours REAL NOT NULL DEFAULT 0,
		overtime_rate REAL NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT 'manual',
		created_at TEXT NOT NULL,
		PRIMARY KEY (worker_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_worker_date
		ON attendance(worker_id, date);

	-- Reconciliation cursor: monotonic last-checked date per worker
	CREATE TABLE IF NOT EXISTS reconciliation_cursors (
		worker_id TEXT PRIMARY KEY,
		last_checked_date TEXT NOT NULL
	);

	-- Spend entries
	CREATE TABLE IF NOT EXISTS spend_entries (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		title TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'Genel',
		time_cost TEXT NOT NULL DEFAULT '0dk',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_spend_entries_worker
		ON spend_entries(worker_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROFILE STORE (earnings.ProfileStore interface)
// =============================================================================

func (s *Store) GetWorker(ctx context.Context, id earnings.WorkerID) (*earnings.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, monthly_salary, working_days, schedule_json, created_at
		FROM workers WHERE id = ?`, id)

	w, err := scanWorker(row)
	if err == sql.ErrNoRows {
		return nil, earnings.ErrWorkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

func (s *Store) SaveWorker(ctx context.Context, w earnings.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scheduleJSON, err := json.Marshal(w.Profile.Schedule)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}

	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workers (id, name, monthly_salary, working_days, schedule_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			monthly_salary = excluded.monthly_salary,
			working_days = excluded.working_days,
			schedule_json = excluded.schedule_json,
			updated_at = excluded.updated_at`,
		w.ID, w.Name,
		w.Profile.MonthlySalary.String(),
		w.Profile.WorkingDaysPerMonth,
		string(scheduleJSON),
		createdAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save worker: %w", err)
	}
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, id earnings.WorkerID, p earnings.FinancialProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scheduleJSON, err := json.Marshal(p.Schedule)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE workers
		SET monthly_salary = ?, working_days = ?, schedule_json = ?, updated_at = ?
		WHERE id = ?`,
		p.MonthlySalary.String(), p.WorkingDaysPerMonth, string(scheduleJSON),
		time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return earnings.ErrWorkerNotFound
	}
	return nil
}

func (s *Store) ListWorkers(ctx context.Context) ([]earnings.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, monthly_salary, working_days, schedule_json, created_at
		FROM workers ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	var workers []earnings.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, *w)
	}
	return workers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (*earnings.Worker, error) {
	var (
		w            earnings.Worker
		salary       string
		scheduleJSON string
		createdAt    string
	)
	if err := row.Scan(&w.ID, &w.Name, &salary, &w.Profile.WorkingDaysPerMonth, &scheduleJSON, &createdAt); err != nil {
		return nil, err
	}

	sal, err := decimal.NewFromString(salary)
	if err != nil {
		sal = decimal.Zero
	}
	w.Profile.MonthlySalary = sal

	// Schema drift in the schedule blob degrades to the default schedule
	// rather than failing the read.
	if err := json.Unmarshal([]byte(scheduleJSON), &w.Profile.Schedule); err != nil {
		w.Profile.Schedule = earnings.DefaultSchedule()
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		w.CreatedAt = t
	}
	return &w, nil
}

// =============================================================================
// ATTENDANCE STORE (earnings.AttendanceStore interface)
// =============================================================================

func (s *Store) LoadLog(ctx context.Context, id earnings.WorkerID) (earnings.AttendanceLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, status, overtime_hours, overtime_rate, source
		FROM attendance WHERE worker_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance log: %w", err)
	}
	defer rows.Close()

	log := make(earnings.AttendanceLog)
	for rows.Next() {
		var (
			dateStr string
			rec     earnings.AttendanceRecord
		)
		if err := rows.Scan(&dateStr, &rec.Status, &rec.OvertimeHours, &rec.OvertimeRate, &rec.Source); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		date, err := earnings.ParseDate(dateStr)
		if err != nil {
			continue
		}
		log[date] = rec.Normalize()
	}
	return log, rows.Err()
}

func (s *Store) LastCheckedDate(ctx context.Context, id earnings.WorkerID) (earnings.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dateStr string
	err := s.db.QueryRowContext(ctx,
		"SELECT last_checked_date FROM reconciliation_cursors WHERE worker_id = ?", id,
	).Scan(&dateStr)
	if err == sql.ErrNoRows {
		return earnings.Date{}, nil
	}
	if err != nil {
		return earnings.Date{}, fmt.Errorf("failed to load cursor: %w", err)
	}
	return earnings.ParseDate(dateStr)
}

func (s *Store) SetRecord(ctx context.Context, id earnings.WorkerID, date earnings.Date, rec earnings.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec = rec.Normalize()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (worker_id, date, status, overtime_hours, overtime_rate, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, date) DO UPDATE SET
			status = excluded.status,
			overtime_hours = excluded.overtime_hours,
			overtime_rate = excluded.overtime_rate,
			source = excluded.source`,
		id, date.String(), rec.Status, rec.OvertimeHours, rec.OvertimeRate,
		rec.Source, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to set attendance record: %w", err)
	}
	return nil
}

func (s *Store) InsertIfAbsent(ctx context.Context, id earnings.WorkerID, date earnings.Date, rec earnings.AttendanceRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertIfAbsent(ctx, s.db, id, date, rec)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertIfAbsent(ctx context.Context, db execer, id earnings.WorkerID, date earnings.Date, rec earnings.AttendanceRecord) (bool, error) {
	rec = rec.Normalize()
	res, err := db.ExecContext(ctx, `
		INSERT OR IGNORE INTO attendance (worker_id, date, status, overtime_hours, overtime_rate, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, date.String(), rec.Status, rec.OvertimeHours, rec.OvertimeRate,
		rec.Source, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert attendance record: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) MergeBackfill(ctx context.Context, id earnings.WorkerID, records map[earnings.Date]earnings.AttendanceRecord, lastChecked earnings.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for date, rec := range records {
		if _, err := s.insertIfAbsent(ctx, tx, id, date, rec); err != nil {
			return err
		}
	}

	// Cursor only ever moves forward; date strings compare
	// lexicographically in YYYY-MM-DD form.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reconciliation_cursors (worker_id, last_checked_date)
		VALUES (?, ?)
		ON CONFLICT(worker_id) DO UPDATE SET
			last_checked_date = excluded.last_checked_date
		WHERE excluded.last_checked_date > reconciliation_cursors.last_checked_date`,
		id, lastChecked.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}

	return tx.Commit()
}

// =============================================================================
// SPEND STORE (spending.Store interface)
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, e spending.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spend_entries (id, worker_id, amount, title, category, time_cost, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.WorkerID, e.Amount.String(), e.Title, e.Category, e.TimeCost,
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append spend entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*spending.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, worker_id, amount, title, category, time_cost, created_at, updated_at
		FROM spend_entries WHERE id = ?`, id)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spend entry: %w", err)
	}
	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, workerID earnings.WorkerID) ([]spending.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, amount, title, category, time_cost, created_at, updated_at
		FROM spend_entries WHERE worker_id = ?
		ORDER BY created_at DESC`, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list spend entries: %w", err)
	}
	defer rows.Close()

	var entries []spending.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *Store) UpdateEntry(ctx context.Context, e spending.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE spend_entries
		SET amount = ?, title = ?, category = ?, time_cost = ?, updated_at = ?
		WHERE id = ?`,
		e.Amount.String(), e.Title, e.Category, e.TimeCost,
		e.UpdatedAt.UTC().Format(time.RFC3339), e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update spend entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return spending.ErrEntryNotFound
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM spend_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete spend entry: %w", err)
	}
	return nil
}

func scanEntry(row rowScanner) (*spending.Entry, error) {
	var (
		e         spending.Entry
		amount    string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&e.ID, &e.WorkerID, &amount, &e.Title, &e.Category, &e.TimeCost, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		amt = decimal.Zero
	}
	e.Amount = amt

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		e.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		e.UpdatedAt = t
	}
	return &e, nil
}
