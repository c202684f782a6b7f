package request

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-sql/civil"

	"transparency/internal/esic/models"
	"transparency/pkg/domain"
	"transparency/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded request store for tests and single-node dev runs.
// Stored values are cloned on the way in and out.
type InMemory struct {
	mu         sync.RWMutex
	requests   map[domain.RequestID]*models.InformationRequest
	byProtocol map[string]domain.RequestID
}

func NewInMemory() *InMemory {
	return &InMemory{
		requests:   make(map[domain.RequestID]*models.InformationRequest),
		byProtocol: make(map[string]domain.RequestID),
	}
}

func (s *InMemory) Create(_ context.Context, req *models.InformationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.byProtocol[req.Protocol]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.requests[req.ID] = req.Clone()
	s.byProtocol[req.Protocol] = req.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID domain.TenantID, id domain.RequestID) (*models.InformationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok || req.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	return req.Clone(), nil
}

func (s *InMemory) FindByProtocol(_ context.Context, tenantID domain.TenantID, protocol string) (*models.InformationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byProtocol[protocol]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	req := s.requests[id]
	if req.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	return req.Clone(), nil
}

func (s *InMemory) ListByTenant(_ context.Context, tenantID domain.TenantID, filter models.ListFilter) ([]*models.InformationRequest, error) {
	filter = filter.Normalize()
	matched := s.collect(func(r *models.InformationRequest) bool {
		return r.TenantID == tenantID && (filter.Status == nil || r.Status == *filter.Status)
	})
	return page(matched, filter.Limit, filter.Offset), nil
}

func (s *InMemory) AllByTenant(_ context.Context, tenantID domain.TenantID) ([]*models.InformationRequest, error) {
	return s.collect(func(r *models.InformationRequest) bool {
		return r.TenantID == tenantID
	}), nil
}

func (s *InMemory) ListAwaitingDueBefore(_ context.Context, tenantID domain.TenantID, date civil.Date) ([]*models.InformationRequest, error) {
	return s.collect(func(r *models.InformationRequest) bool {
		return r.TenantID == tenantID && r.Status.AwaitingResponse() && r.DueDate.Before(date)
	}), nil
}

func (s *InMemory) SearchPublic(_ context.Context, tenantID domain.TenantID, filter models.SearchFilter) ([]*models.InformationRequest, int, error) {
	filter = filter.Normalize()
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	matched := s.collect(func(r *models.InformationRequest) bool {
		if r.TenantID != tenantID || !r.IsPublic {
			return false
		}
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(r.Protocol), q) ||
			strings.Contains(strings.ToLower(r.Subject), q) ||
			strings.Contains(strings.ToLower(r.Description), q)
	})
	return page(matched, filter.Limit, filter.Offset), len(matched), nil
}

// UpdateIfStatus replaces the stored request only while its status still
// equals expected. Visibility is owned by SetPublic and is kept as stored.
func (s *InMemory) UpdateIfStatus(_ context.Context, req *models.InformationRequest, expected models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.requests[req.ID]
	if !ok || current.TenantID != req.TenantID {
		return sentinel.ErrNotFound
	}
	if current.Status != expected {
		return sentinel.ErrInvalidState
	}
	if current.Protocol != req.Protocol {
		return sentinel.ErrInvalidState
	}
	next := req.Clone()
	next.IsPublic = current.IsPublic
	s.requests[req.ID] = next
	return nil
}

// SetPublic flips only the visibility flag and its timestamp.
func (s *InMemory) SetPublic(_ context.Context, tenantID domain.TenantID, id domain.RequestID, public bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.requests[id]
	if !ok || current.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	current.IsPublic = public
	current.UpdatedAt = at
	return nil
}

// collect returns clones of matching requests, newest first.
func (s *InMemory) collect(keep func(*models.InformationRequest) bool) []*models.InformationRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.InformationRequest, 0)
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.After(out[j].RequestedAt)
		}
		return out[i].Protocol < out[j].Protocol
	})
	return out
}

func page(items []*models.InformationRequest, limit, offset int) []*models.InformationRequest {
	if offset >= len(items) {
		return []*models.InformationRequest{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
