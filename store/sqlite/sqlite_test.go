package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tim/earnings-engine/earnings"
	"github.com/tim/earnings-engine/spending"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testWorker() earnings.Worker {
	sched := earnings.DefaultSchedule()
	sched.Start = earnings.ClockTime{Hour: 8, Minute: 30}
	return earnings.Worker{
		ID:   "w-1",
		Name: "Aylin",
		Profile: earnings.FinancialProfile{
			MonthlySalary:       decimal.NewFromFloat(30000.50),
			WorkingDaysPerMonth: 22,
			Schedule:            sched,
		},
		CreatedAt: time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// WORKERS
// =============================================================================

func TestWorkerRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	w := testWorker()

	require.NoError(t, s.SaveWorker(ctx, w))

	got, err := s.GetWorker(ctx, w.ID)
	require.NoError(t, err)

	assert.Equal(t, w.Name, got.Name)
	assert.True(t, w.Profile.MonthlySalary.Equal(got.Profile.MonthlySalary),
		"salary must survive as an exact decimal")
	assert.Equal(t, 22, got.Profile.WorkingDaysPerMonth)
	assert.Equal(t, earnings.ClockTime{Hour: 8, Minute: 30}, got.Profile.Schedule.Start)
	assert.Equal(t, w.CreatedAt, got.CreatedAt)
}

func TestGetWorker_Missing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetWorker(context.Background(), "nope")
	assert.ErrorIs(t, err, earnings.ErrWorkerNotFound)
}

func TestSaveWorker_UpsertKeepsCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	w := testWorker()

	require.NoError(t, s.SaveWorker(ctx, w))

	w.Name = "Aylin Y."
	w.Profile.MonthlySalary = decimal.NewFromInt(35000)
	require.NoError(t, s.SaveWorker(ctx, w))

	got, err := s.GetWorker(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aylin Y.", got.Name)
	assert.True(t, decimal.NewFromInt(35000).Equal(got.Profile.MonthlySalary))
	assert.Equal(t, w.CreatedAt, got.CreatedAt, "upsert must not touch created_at")
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	w := testWorker()
	require.NoError(t, s.SaveWorker(ctx, w))

	p := w.Profile
	p.WorkingDaysPerMonth = 26
	require.NoError(t, s.UpdateProfile(ctx, w.ID, p))

	got, _ := s.GetWorker(ctx, w.ID)
	assert.Equal(t, 26, got.Profile.WorkingDaysPerMonth)

	assert.ErrorIs(t, s.UpdateProfile(ctx, "nope", p), earnings.ErrWorkerNotFound)
}

func TestListWorkers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testWorker()
	b := testWorker()
	b.ID = "w-2"
	b.CreatedAt = a.CreatedAt.Add(time.Hour)

	require.NoError(t, s.SaveWorker(ctx, a))
	require.NoError(t, s.SaveWorker(ctx, b))

	workers, err := s.ListWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, workers, 2)
	assert.Equal(t, earnings.WorkerID("w-1"), workers[0].ID)
	assert.Equal(t, earnings.WorkerID("w-2"), workers[1].ID)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func TestSetRecord_UpsertOverwrites(t *testing.T) {
	// Explicit calendar edits are the one write allowed to overwrite.
	s := newTestStore(t)
	ctx := context.Background()
	date := earnings.NewDate(2025, 3, 10)

	require.NoError(t, s.SetRecord(ctx, "w-1", date,
		earnings.AttendanceRecord{Status: earnings.StatusWorked, Source: earnings.SourceManual}))
	require.NoError(t, s.SetRecord(ctx, "w-1", date,
		earnings.AttendanceRecord{Status: earnings.StatusAbsent, Source: earnings.SourceManual}))

	log, err := s.LoadLog(ctx, "w-1")
	require.NoError(t, err)
	rec, ok := log.Lookup(date)
	require.True(t, ok)
	assert.Equal(t, earnings.StatusAbsent, rec.Status)
}

func TestInsertIfAbsent_NeverOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	date := earnings.NewDate(2025, 3, 10)

	manual := earnings.AttendanceRecord{
		Status:        earnings.StatusWorked,
		OvertimeHours: 3,
		OvertimeRate:  2,
		Source:        earnings.SourceManual,
	}
	require.NoError(t, s.SetRecord(ctx, "w-1", date, manual))

	inserted, err := s.InsertIfAbsent(ctx, "w-1", date, earnings.NewWorkedRecord(earnings.SourceAutoCommit))
	require.NoError(t, err)
	assert.False(t, inserted)

	log, _ := s.LoadLog(ctx, "w-1")
	rec, _ := log.Lookup(date)
	assert.Equal(t, 3.0, rec.OvertimeHours, "existing record always wins")
	assert.Equal(t, earnings.SourceManual, rec.Source)
}

func TestInsertIfAbsent_EmptyDate(t *testing.T) {
	s := newTestStore(t)

	inserted, err := s.InsertIfAbsent(context.Background(), "w-1",
		earnings.NewDate(2025, 3, 10), earnings.NewWorkedRecord(earnings.SourceAutoCommit))
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestLoadLog_NormalizesOnRead(t *testing.T) {
	// A worked record written without a rate comes back with the 1x floor.
	s := newTestStore(t)
	ctx := context.Background()
	date := earnings.NewDate(2025, 3, 10)

	require.NoError(t, s.SetRecord(ctx, "w-1", date,
		earnings.AttendanceRecord{Status: earnings.StatusWorked, OvertimeHours: 2}))

	log, err := s.LoadLog(ctx, "w-1")
	require.NoError(t, err)
	rec, _ := log.Lookup(date)
	assert.Equal(t, 1.0, rec.OvertimeRate)
}

// =============================================================================
// BACKFILL + CURSOR
// =============================================================================

func TestMergeBackfill(t *testing.T) {
	// GIVEN: one date already recorded manually
	// WHEN: a backfill covering it and two gaps lands
	// THEN: gaps fill, the manual record survives, the cursor advances

	s := newTestStore(t)
	ctx := context.Background()

	existing := earnings.NewDate(2025, 3, 11)
	require.NoError(t, s.SetRecord(ctx, "w-1", existing,
		earnings.AttendanceRecord{Status: earnings.StatusAbsent, Source: earnings.SourceManual}))

	records := map[earnings.Date]earnings.AttendanceRecord{
		earnings.NewDate(2025, 3, 10): earnings.NewWorkedRecord(earnings.SourceAutoBackfill),
		existing:                      earnings.NewWorkedRecord(earnings.SourceAutoBackfill),
		earnings.NewDate(2025, 3, 12): earnings.NewWorkedRecord(earnings.SourceAutoBackfill),
	}
	require.NoError(t, s.MergeBackfill(ctx, "w-1", records, earnings.NewDate(2025, 3, 12)))

	log, err := s.LoadLog(ctx, "w-1")
	require.NoError(t, err)
	require.Len(t, log, 3)

	rec, _ := log.Lookup(existing)
	assert.Equal(t, earnings.StatusAbsent, rec.Status)

	cursor, err := s.LastCheckedDate(ctx, "w-1")
	require.NoError(t, err)
	assert.True(t, cursor.Equal(earnings.NewDate(2025, 3, 12)))
}

func TestMergeBackfill_CursorNeverMovesBackward(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MergeBackfill(ctx, "w-1", nil, earnings.NewDate(2025, 3, 12)))
	require.NoError(t, s.MergeBackfill(ctx, "w-1", nil, earnings.NewDate(2025, 3, 5)))

	cursor, err := s.LastCheckedDate(ctx, "w-1")
	require.NoError(t, err)
	assert.True(t, cursor.Equal(earnings.NewDate(2025, 3, 12)))
}

func TestLastCheckedDate_ZeroWhenUnset(t *testing.T) {
	s := newTestStore(t)

	cursor, err := s.LastCheckedDate(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, cursor.IsZero())
}

// =============================================================================
// SPEND ENTRIES
// =============================================================================

func spendEntry(id string, amount float64, created time.Time) spending.Entry {
	return spending.Entry{
		ID:        id,
		WorkerID:  "w-1",
		Amount:    decimal.NewFromFloat(amount),
		Title:     "market",
		Category:  "Gıda",
		TimeCost:  "1sa 30dk",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestSpendEntryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.AppendEntry(ctx, spendEntry("e-1", 150.75, created)))

	got, err := s.GetEntry(ctx, "e-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, decimal.NewFromFloat(150.75).Equal(got.Amount))
	assert.Equal(t, "Gıda", got.Category)
	assert.Equal(t, "1sa 30dk", got.TimeCost)
	assert.Equal(t, created, got.CreatedAt)
}

func TestGetEntry_MissingReturnsNil(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetEntry(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListEntries_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.AppendEntry(ctx, spendEntry("e-1", 10, base)))
	require.NoError(t, s.AppendEntry(ctx, spendEntry("e-2", 20, base.Add(time.Minute))))

	entries, err := s.ListEntries(ctx, "w-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e-2", entries[0].ID)
	assert.Equal(t, "e-1", entries[1].ID)
}

func TestUpdateEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	e := spendEntry("e-1", 150, created)
	require.NoError(t, s.AppendEntry(ctx, e))

	e.Amount = decimal.NewFromInt(90)
	e.TimeCost = "54dk"
	e.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, s.UpdateEntry(ctx, e))

	got, _ := s.GetEntry(ctx, "e-1")
	assert.True(t, decimal.NewFromInt(90).Equal(got.Amount))
	assert.Equal(t, "54dk", got.TimeCost)

	missing := spendEntry("nope", 1, created)
	assert.ErrorIs(t, s.UpdateEntry(ctx, missing), spending.ErrEntryNotFound)
}

func TestDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.AppendEntry(ctx, spendEntry("e-1", 10, created)))
	require.NoError(t, s.DeleteEntry(ctx, "e-1"))

	got, err := s.GetEntry(ctx, "e-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting a missing entry is a no-op.
	require.NoError(t, s.DeleteEntry(ctx, "e-1"))
}
