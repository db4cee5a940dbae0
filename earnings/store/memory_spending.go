package store

import (
	"context"

	"github.com/tim/earnings-engine/earnings"
	"github.com/tim/earnings-engine/spending"
)

// =============================================================================
// MEMORY SPEND STORE
// =============================================================================

// MemorySpend is an in-memory spending.Store.
type MemorySpend struct {
	*Memory
	entries map[string]spending.Entry
	order   []string
}

func NewMemorySpend() *MemorySpend {
	return &MemorySpend{
		Memory:  NewMemory(),
		entries: make(map[string]spending.Entry),
	}
}

var _ spending.Store = (*MemorySpend)(nil)

func (m *MemorySpend) AppendEntry(_ context.Context, e spending.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	m.order = append(m.order, e.ID)
	return nil
}

func (m *MemorySpend) GetEntry(_ context.Context, id string) (*spending.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MemorySpend) ListEntries(_ context.Context, workerID earnings.WorkerID) ([]spending.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []spending.Entry
	// Newest first, matching the sqlite ordering.
	for i := len(m.order) - 1; i >= 0; i-- {
		if e, ok := m.entries[m.order[i]]; ok && e.WorkerID == workerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemorySpend) UpdateEntry(_ context.Context, e spending.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[e.ID]; !ok {
		return spending.ErrEntryNotFound
	}
	m.entries[e.ID] = e
	return nil
}

func (m *MemorySpend) DeleteEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
