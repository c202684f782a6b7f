package outbox

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"transparency/internal/audit"
)

// Memory is an in-process outbox for tests and runs without a database.
type Memory struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]Entry
	processed map[uuid.UUID]time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries:   make(map[uuid.UUID]Entry),
		processed: make(map[uuid.UUID]time.Time),
	}
}

func (m *Memory) Append(_ context.Context, event audit.Event) error {
	entry, err := entryFromEvent(event)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *Memory) FetchPending(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := make([]Entry, 0)
	for id, e := range m.entries {
		if _, done := m.processed[id]; !done {
			pending = append(pending, e)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (m *Memory) MarkProcessed(_ context.Context, ids []uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if _, ok := m.entries[id]; ok {
			m.processed[id] = at
		}
	}
	return nil
}

// Len reports how many entries were ever appended.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
