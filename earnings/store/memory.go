// Package store provides an in-memory Store implementation (for testing/dev).
package store

import (
	"context"
	"sync"

	"github.com/tim/earnings-engine/earnings"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	workers map[earnings.WorkerID]earnings.Worker
	logs    map[earnings.WorkerID]earnings.AttendanceLog
	cursors map[earnings.WorkerID]earnings.Date

	// FailNextMerge makes the next MergeBackfill fail, for testing the
	// cursor-not-advanced contract.
	FailNextMerge error
}

func NewMemory() *Memory {
	return &Memory{
		workers: make(map[earnings.WorkerID]earnings.Worker),
		logs:    make(map[earnings.WorkerID]earnings.AttendanceLog),
		cursors: make(map[earnings.WorkerID]earnings.Date),
	}
}

var _ earnings.Store = (*Memory)(nil)

// =============================================================================
// PROFILE STORE
// =============================================================================

func (m *Memory) GetWorker(_ context.Context, id earnings.WorkerID) (*earnings.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.workers[id]
	if !ok {
		return nil, earnings.ErrWorkerNotFound
	}
	return &w, nil
}

func (m *Memory) SaveWorker(_ context.Context, w earnings.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[w.ID] = w
	return nil
}

func (m *Memory) UpdateProfile(_ context.Context, id earnings.WorkerID, p earnings.FinancialProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.workers[id]
	if !ok {
		return earnings.ErrWorkerNotFound
	}
	w.Profile = p
	m.workers[id] = w
	return nil
}

func (m *Memory) ListWorkers(_ context.Context) ([]earnings.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]earnings.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		out = append(out, w)
	}
	return out, nil
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

func (m *Memory) LoadLog(_ context.Context, id earnings.WorkerID) (earnings.AttendanceLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logs[id].Clone(), nil
}

func (m *Memory) LastCheckedDate(_ context.Context, id earnings.WorkerID) (earnings.Date, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursors[id], nil
}

func (m *Memory) SetRecord(_ context.Context, id earnings.WorkerID, date earnings.Date, rec earnings.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logs[id] == nil {
		m.logs[id] = make(earnings.AttendanceLog)
	}
	m.logs[id][date] = rec.Normalize()
	return nil
}

func (m *Memory) InsertIfAbsent(_ context.Context, id earnings.WorkerID, date earnings.Date, rec earnings.AttendanceRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logs[id] == nil {
		m.logs[id] = make(earnings.AttendanceLog)
	}
	if _, exists := m.logs[id][date]; exists {
		return false, nil
	}
	m.logs[id][date] = rec.Normalize()
	return true, nil
}

func (m *Memory) MergeBackfill(_ context.Context, id earnings.WorkerID, records map[earnings.Date]earnings.AttendanceRecord, lastChecked earnings.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNextMerge != nil {
		err := m.FailNextMerge
		m.FailNextMerge = nil
		return err
	}

	if m.logs[id] == nil {
		m.logs[id] = make(earnings.AttendanceLog)
	}
	for d, rec := range records {
		if _, exists := m.logs[id][d]; exists {
			continue
		}
		m.logs[id][d] = rec.Normalize()
	}

	// Monotonic cursor: never move backward.
	if cur := m.cursors[id]; cur.IsZero() || cur.Before(lastChecked) {
		m.cursors[id] = lastChecked
	}
	return nil
}
