package spending_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tim/earnings-engine/earnings"
	"github.com/tim/earnings-engine/earnings/store"
	"github.com/tim/earnings-engine/spending"
)

const workerID = earnings.WorkerID("w-1")

func newLedger() *spending.Ledger {
	return spending.NewLedger(store.NewMemorySpend())
}

func amt(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// =============================================================================
// LEDGER CRUD
// =============================================================================

func TestLedger_AddRendersTimeCost(t *testing.T) {
	// 150 at 100/hour costs an hour and a half of work.
	l := newLedger()

	e, err := l.Add(context.Background(), workerID, amt(150), "Kahve makinesi", "Ev", amt(100))
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "1sa 30dk", e.TimeCost)
	assert.Equal(t, "Ev", e.Category)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestLedger_AddDefaultsCategory(t *testing.T) {
	l := newLedger()

	e, err := l.Add(context.Background(), workerID, amt(50), "Öğle yemeği", "", amt(100))
	require.NoError(t, err)
	assert.Equal(t, spending.DefaultCategory, e.Category)
}

func TestLedger_AddZeroRateRendersZeroDuration(t *testing.T) {
	l := newLedger()

	e, err := l.Add(context.Background(), workerID, amt(150), "x", "y", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, earnings.ZeroDuration, e.TimeCost)
}

func TestLedger_EditRerendersTimeCost(t *testing.T) {
	// GIVEN: an entry priced at the old hourly rate
	// WHEN: edited after a raise
	// THEN: the same amount costs less work time

	l := newLedger()
	ctx := context.Background()

	e, err := l.Add(ctx, workerID, amt(150), "Kulaklık", "Teknoloji", amt(100))
	require.NoError(t, err)
	require.Equal(t, "1sa 30dk", e.TimeCost)

	edited, err := l.Edit(ctx, e.ID, amt(150), "Kulaklık", "", amt(200))
	require.NoError(t, err)

	assert.Equal(t, "45dk", edited.TimeCost)
	assert.Equal(t, "Teknoloji", edited.Category, "empty category keeps the existing one")
	assert.True(t, edited.UpdatedAt.After(e.CreatedAt) || edited.UpdatedAt.Equal(e.CreatedAt))
}

func TestLedger_EditMissingEntry(t *testing.T) {
	l := newLedger()

	_, err := l.Edit(context.Background(), "nope", amt(10), "x", "", amt(100))
	assert.ErrorIs(t, err, spending.ErrEntryNotFound)
}

func TestLedger_DeleteThenList(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	a, _ := l.Add(ctx, workerID, amt(10), "a", "", amt(100))
	b, _ := l.Add(ctx, workerID, amt(20), "b", "", amt(100))

	require.NoError(t, l.Delete(ctx, a.ID))

	entries, err := l.List(ctx, workerID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, b.ID, entries[0].ID)
}

func TestLedger_ListNewestFirst(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	first, _ := l.Add(ctx, workerID, amt(10), "first", "", amt(100))
	second, _ := l.Add(ctx, workerID, amt(20), "second", "", amt(100))

	entries, err := l.List(ctx, workerID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
}

// =============================================================================
// CATEGORY BREAKDOWN
// =============================================================================

func TestLedger_Breakdown(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	l.Add(ctx, workerID, amt(300), "market", "Gıda", amt(100))
	l.Add(ctx, workerID, amt(200), "kırtasiye", "", amt(100))
	l.Add(ctx, workerID, amt(150), "kahve", "Gıda", amt(100))
	l.Add(ctx, workerID, amt(350), "fatura", "Ev", amt(100))

	byCategory, total, err := l.Breakdown(ctx, workerID)
	require.NoError(t, err)

	assert.True(t, amt(1000).Equal(total))
	require.Len(t, byCategory, 3)

	assert.Equal(t, "Gıda", byCategory[0].Category)
	assert.True(t, amt(450).Equal(byCategory[0].Total))
	assert.Equal(t, "Ev", byCategory[1].Category)
	assert.Equal(t, spending.DefaultCategory, byCategory[2].Category)
	assert.True(t, amt(200).Equal(byCategory[2].Total))
}

func TestLedger_BreakdownTieSortsByName(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	l.Add(ctx, workerID, amt(100), "a", "Ulaşım", amt(100))
	l.Add(ctx, workerID, amt(100), "b", "Eğlence", amt(100))

	byCategory, _, err := l.Breakdown(ctx, workerID)
	require.NoError(t, err)
	require.Len(t, byCategory, 2)
	assert.Equal(t, "Eğlence", byCategory[0].Category)
	assert.Equal(t, "Ulaşım", byCategory[1].Category)
}

func TestLedger_BreakdownIsolatedPerWorker(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	l.Add(ctx, workerID, amt(100), "a", "Gıda", amt(100))
	l.Add(ctx, earnings.WorkerID("w-2"), amt(999), "b", "Gıda", amt(100))

	_, total, err := l.Breakdown(ctx, workerID)
	require.NoError(t, err)
	assert.True(t, amt(100).Equal(total))
}
