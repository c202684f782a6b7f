package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
)

// Kind separates the revenue and expense streams.
type Kind string

const (
	KindRevenue Kind = "revenue"
	KindExpense Kind = "expense"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindRevenue, KindExpense:
		return k, nil
	}
	return "", dErrors.Field("kind", fmt.Sprintf("unknown kind %q", s))
}

// categories lists the budget categories accepted for each stream.
var categories = map[Kind][]string{
	KindRevenue: {"taxes", "transfers", "services", "investments", "other"},
	KindExpense: {"personnel", "materials", "services", "investments", "debt", "other"},
}

// Categories returns the accepted categories for k.
func Categories(k Kind) []string {
	return append([]string(nil), categories[k]...)
}

func validCategory(k Kind, c string) bool {
	for _, known := range categories[k] {
		if known == c {
			return true
		}
	}
	return false
}

const (
	minYear              = 1900
	maxYear              = 9999
	maxDescriptionLength = 500
	amountScale          = 2
)

// Record is a single revenue or expense entry of a tenant.
//
// Invariants:
//   - Amount is non-negative with at most two decimal places
//   - Month is 1..12
//   - Category belongs to the Kind's category set
type Record struct {
	ID          domain.RecordID `json:"id"`
	TenantID    domain.TenantID `json:"tenant_id"`
	Kind        Kind            `json:"kind"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewRecordInput carries the caller-supplied fields of a record.
type NewRecordInput struct {
	TenantID    domain.TenantID
	Kind        Kind
	Category    string
	Description string
	Amount      decimal.Decimal
	Year        int
	Month       int
}

// NewRecord validates in and builds a record.
func NewRecord(id domain.RecordID, in NewRecordInput, now time.Time) (*Record, error) {
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Description = strings.TrimSpace(in.Description)

	if in.TenantID.IsNil() {
		return nil, dErrors.Field("tenant_id", "tenant id is required")
	}
	if _, err := ParseKind(string(in.Kind)); err != nil {
		return nil, err
	}
	if !validCategory(in.Kind, in.Category) {
		return nil, dErrors.Field("category", fmt.Sprintf("category %q is not valid for %s", in.Category, in.Kind))
	}
	if in.Description == "" {
		return nil, dErrors.Field("description", "description is required")
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		return nil, dErrors.Field("description", "description must be 500 characters or less")
	}
	if in.Amount.IsNegative() {
		return nil, dErrors.Field("amount", "amount must not be negative")
	}
	if !in.Amount.Equal(in.Amount.Truncate(amountScale)) {
		return nil, dErrors.Field("amount", "amount must have at most two decimal places")
	}
	if in.Year < minYear || in.Year > maxYear {
		return nil, dErrors.Field("year", "year is out of range")
	}
	if in.Month < 1 || in.Month > 12 {
		return nil, dErrors.Field("month", "month must be between 1 and 12")
	}

	return &Record{
		ID:          id,
		TenantID:    in.TenantID,
		Kind:        in.Kind,
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount,
		Year:        in.Year,
		Month:       in.Month,
		CreatedAt:   now,
	}, nil
}

// ListFilter narrows a tenant's record listing. Nil fields do not filter.
type ListFilter struct {
	Kind     *Kind
	Year     *int
	Month    *int
	Category string
	Limit    int
	Offset   int
}

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	return f
}

// Matches applies the non-paging parts of the filter to r.
func (f ListFilter) Matches(r *Record) bool {
	if f.Kind != nil && r.Kind != *f.Kind {
		return false
	}
	if f.Year != nil && r.Year != *f.Year {
		return false
	}
	if f.Month != nil && r.Month != *f.Month {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	return true
}
