package models

import (
	"time"

	"github.com/golang-sql/civil"

	"transparency/pkg/domain"
)

// Requester identifies the citizen who filed a request.
type Requester struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Document string `json:"document,omitempty"`
}

// InformationRequest is a citizen-filed access-to-information request.
//
// Invariants:
//   - Protocol is unique across the system and never changes after Submit
//   - DueDate is the reference-zone date of RequestedAt plus 20 days, set once
//   - AppealDueDate, when present, is the date of AppealedAt plus 10 days
//   - Status only moves forward through the transitions table
//
// Values are treated as immutable by the lifecycle engine: every operation
// returns a new value built from Clone.
type InformationRequest struct {
	ID          domain.RequestID `json:"id"`
	TenantID    domain.TenantID  `json:"tenant_id"`
	Protocol    string           `json:"protocol"`
	Requester   Requester        `json:"requester"`
	Subject     string           `json:"subject"`
	Description string           `json:"description"`
	Category    Category         `json:"category"`
	Status      Status           `json:"status"`
	RequestedAt time.Time        `json:"requested_at"`
	DueDate     civil.Date       `json:"due_date"`

	ResponseText string     `json:"response_text,omitempty"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`

	HasAppeal         bool        `json:"has_appeal"`
	AppealDescription string      `json:"appeal_description,omitempty"`
	AppealedAt        *time.Time  `json:"appealed_at,omitempty"`
	AppealDueDate     *civil.Date `json:"appeal_due_date,omitempty"`
	AppealResponse    string      `json:"appeal_response,omitempty"`
	AppealRespondedAt *time.Time  `json:"appeal_responded_at,omitempty"`

	AssignedUserID     *domain.UserID `json:"assigned_user_id,omitempty"`
	AssignedDepartment string         `json:"assigned_department,omitempty"`
	IsPublic           bool           `json:"is_public"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Clone returns a deep copy so callers can derive a new state without
// touching the original.
func (r *InformationRequest) Clone() *InformationRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.RespondedAt = cloneTime(r.RespondedAt)
	c.AppealedAt = cloneTime(r.AppealedAt)
	c.AppealRespondedAt = cloneTime(r.AppealRespondedAt)
	if r.AppealDueDate != nil {
		d := *r.AppealDueDate
		c.AppealDueDate = &d
	}
	if r.AssignedUserID != nil {
		u := *r.AssignedUserID
		c.AssignedUserID = &u
	}
	return &c
}

// HasResponse reports whether a first answer has been recorded.
func (r *InformationRequest) HasResponse() bool {
	return r.RespondedAt != nil
}

// ResponseDuration is the wall-clock time between filing and first answer.
func (r *InformationRequest) ResponseDuration() (time.Duration, bool) {
	if r.RespondedAt == nil {
		return 0, false
	}
	return r.RespondedAt.Sub(r.RequestedAt), true
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// ListFilter narrows a tenant's request listing.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// SearchFilter narrows the public search over published requests.
type SearchFilter struct {
	Query  string
	Limit  int
	Offset int
}

const (
	DefaultListLimit   = 100
	DefaultSearchLimit = 10
	MaxPageLimit       = 500
)

// Normalize clamps pagination to sane bounds.
func (f ListFilter) Normalize() ListFilter {
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset, DefaultListLimit)
	return f
}

func (f SearchFilter) Normalize() SearchFilter {
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset, DefaultSearchLimit)
	return f
}

func clampPage(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// SearchResult is one page of public search hits with the unpaged total.
type SearchResult struct {
	Items []*PublicRequest `json:"items"`
	Total int              `json:"total"`
}

// PublicRequest is the citizen-facing projection of a published request.
// Requester contact details are never exposed.
type PublicRequest struct {
	Protocol       string     `json:"protocol"`
	Subject        string     `json:"subject"`
	Description    string     `json:"description"`
	Category       Category   `json:"category"`
	Status         Status     `json:"status"`
	RequestedAt    time.Time  `json:"requested_at"`
	DueDate        civil.Date `json:"due_date"`
	ResponseText   string     `json:"response_text,omitempty"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	AppealResponse string     `json:"appeal_response,omitempty"`
}

// Public builds the public projection.
func (r *InformationRequest) Public() *PublicRequest {
	return &PublicRequest{
		Protocol:       r.Protocol,
		Subject:        r.Subject,
		Description:    r.Description,
		Category:       r.Category,
		Status:         r.Status,
		RequestedAt:    r.RequestedAt,
		DueDate:        r.DueDate,
		ResponseText:   r.ResponseText,
		RespondedAt:    cloneTime(r.RespondedAt),
		AppealResponse: r.AppealResponse,
	}
}
