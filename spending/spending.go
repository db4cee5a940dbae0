/*
Package spending implements the spend ledger: the record of what the worker
bought, and what each purchase cost in hours of work.

PURPOSE:
  Every entry carries a rendered time-cost ("1sa 30dk") computed from the
  worker's hourly rate at write time. Editing an entry re-renders the
  time-cost with the current rate. Entries feed the category breakdown and
  the net balance figure (earned minus spent).

CATEGORIES:
  Free-form strings; an empty category falls back to "Genel". The
  breakdown groups by category and sorts by total, descending.

SEE ALSO:
  - earnings/timecost.go: duration rendering
  - store/sqlite: persistence
*/
package spending

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tim/earnings-engine/earnings"
)

// DefaultCategory is used when an entry has no category.
const DefaultCategory = "Genel"

var ErrEntryNotFound = errors.New("spend entry not found")

// =============================================================================
// ENTRY
// =============================================================================

type Entry struct {
	ID        string
	WorkerID  earnings.WorkerID
	Amount    decimal.Decimal
	Title     string
	Category  string
	TimeCost  string // rendered work-time equivalent at last write
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	AppendEntry(ctx context.Context, e Entry) error
	GetEntry(ctx context.Context, id string) (*Entry, error)
	ListEntries(ctx context.Context, workerID earnings.WorkerID) ([]Entry, error)
	UpdateEntry(ctx context.Context, e Entry) error
	DeleteEntry(ctx context.Context, id string) error
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger wraps a Store with time-cost rendering and category analytics.
type Ledger struct {
	Store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{Store: store}
}

// Add records a purchase. The hourly rate is the worker's current rate;
// a zero rate renders the zero-duration form.
func (l *Ledger) Add(ctx context.Context, workerID earnings.WorkerID, amount decimal.Decimal, title, category string, hourlyRate decimal.Decimal) (Entry, error) {
	if title == "" {
		title = DefaultCategory
	}
	if category == "" {
		category = DefaultCategory
	}

	now := time.Now()
	e := Entry{
		ID:        uuid.NewString(),
		WorkerID:  workerID,
		Amount:    amount,
		Title:     title,
		Category:  category,
		TimeCost:  earnings.TimeCost(amount, hourlyRate),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.Store.AppendEntry(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Edit updates amount, title, and category, re-rendering the time-cost
// with the current hourly rate. An empty category keeps the existing one.
func (l *Ledger) Edit(ctx context.Context, id string, amount decimal.Decimal, title, category string, hourlyRate decimal.Decimal) (Entry, error) {
	existing, err := l.Store.GetEntry(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if existing == nil {
		return Entry{}, ErrEntryNotFound
	}

	e := *existing
	e.Amount = amount
	e.Title = title
	if category != "" {
		e.Category = category
	}
	e.TimeCost = earnings.TimeCost(amount, hourlyRate)
	e.UpdatedAt = time.Now()

	if err := l.Store.UpdateEntry(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (l *Ledger) Delete(ctx context.Context, id string) error {
	return l.Store.DeleteEntry(ctx, id)
}

func (l *Ledger) List(ctx context.Context, workerID earnings.WorkerID) ([]Entry, error) {
	return l.Store.ListEntries(ctx, workerID)
}

// =============================================================================
// ANALYTICS
// =============================================================================

// CategoryTotal is one slice of the spending breakdown.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// Breakdown groups a worker's entries by category, sorted by total
// descending. The second return is the overall spend.
func (l *Ledger) Breakdown(ctx context.Context, workerID earnings.WorkerID) ([]CategoryTotal, decimal.Decimal, error) {
	entries, err := l.Store.ListEntries(ctx, workerID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	byCategory := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, e := range entries {
		cat := e.Category
		if cat == "" {
			cat = DefaultCategory
		}
		byCategory[cat] = byCategory[cat].Add(e.Amount)
		total = total.Add(e.Amount)
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for cat, sum := range byCategory {
		out = append(out, CategoryTotal{Category: cat, Total: sum})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Equal(out[j].Total) {
			return out[i].Category < out[j].Category
		}
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out, total, nil
}
