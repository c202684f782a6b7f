package record

import (
	"context"
	"sort"
	"sync"

	"transparency/internal/finance/models"
	"transparency/pkg/domain"
	"transparency/pkg/platform/sentinel"
)

// InMemory keeps records in a map guarded by a mutex.
type InMemory struct {
	mu      sync.RWMutex
	records map[domain.RecordID]*models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[domain.RecordID]*models.Record)}
}

func (s *InMemory) Create(_ context.Context, r *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[r.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	c := *r
	s.records[r.ID] = &c
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID domain.TenantID, id domain.RecordID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok || r.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	c := *r
	return &c, nil
}

// List returns one page of matching records ordered by period, newest first.
func (s *InMemory) List(_ context.Context, tenantID domain.TenantID, filter models.ListFilter) ([]*models.Record, error) {
	filter = filter.Normalize()
	matched := s.collect(tenantID, filter)
	if filter.Offset >= len(matched) {
		return []*models.Record{}, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	return matched[filter.Offset:end], nil
}

// AllByTenant returns every record of tenantID, optionally for one year.
func (s *InMemory) AllByTenant(_ context.Context, tenantID domain.TenantID, year *int) ([]*models.Record, error) {
	return s.collect(tenantID, models.ListFilter{Year: year}), nil
}

func (s *InMemory) collect(tenantID domain.TenantID, filter models.ListFilter) []*models.Record {
	s.mu.RLock()
	out := make([]*models.Record, 0)
	for _, r := range s.records {
		if r.TenantID == tenantID && filter.Matches(r) {
			c := *r
			out = append(out, &c)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func less(a, b *models.Record) bool {
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	if a.Month != b.Month {
		return a.Month > b.Month
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}
