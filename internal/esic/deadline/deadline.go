// Package deadline computes statutory response deadlines for information
// requests. All arithmetic is on calendar dates in a single reference zone;
// no business-day exclusion applies.
package deadline

import (
	"time"

	"github.com/golang-sql/civil"

	"transparency/internal/esic/models"
)

const (
	// ResponseDays is the statutory window for the first answer.
	ResponseDays = 20
	// AppealDays is the statutory window for answering an appeal.
	AppealDays = 10

	DefaultZone = "America/Sao_Paulo"
)

// Calculator reduces instants to dates in its reference zone before any
// arithmetic, so the same instant always yields the same deadline.
type Calculator struct {
	loc *time.Location
}

// New returns a Calculator for loc. A nil loc means UTC.
func New(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{loc: loc}
}

// Default returns a Calculator for DefaultZone, falling back to a fixed
// UTC-3 offset when the zone database is unavailable.
func Default() *Calculator {
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		loc = time.FixedZone("BRT", -3*60*60)
	}
	return New(loc)
}

func (c *Calculator) Location() *time.Location {
	return c.loc
}

// DateOf is the reference-zone calendar date of t.
func (c *Calculator) DateOf(t time.Time) civil.Date {
	return civil.DateOf(t.In(c.loc))
}

func (c *Calculator) DueDate(requestedAt time.Time) civil.Date {
	return c.DateOf(requestedAt).AddDays(ResponseDays)
}

func (c *Calculator) AppealDueDate(appealedAt time.Time) civil.Date {
	return c.DateOf(appealedAt).AddDays(AppealDays)
}

// IsOverdue reports whether now falls after the due date of a request whose
// answer is not settled. Answered, AppealAnswered and Closed are never overdue.
func (c *Calculator) IsOverdue(req *models.InformationRequest, now time.Time) bool {
	if settled(req.Status) {
		return false
	}
	return c.DateOf(now).After(req.DueDate)
}

// DaysRemaining is the whole number of days until the due date, never negative.
func (c *Calculator) DaysRemaining(req *models.InformationRequest, now time.Time) int {
	if settled(req.Status) {
		return 0
	}
	return nonNegative(req.DueDate.DaysSince(c.DateOf(now)))
}

// AppealDaysRemaining is the whole number of days until the appeal due date.
// It is zero when no appeal is pending.
func (c *Calculator) AppealDaysRemaining(req *models.InformationRequest, now time.Time) int {
	if !req.HasAppeal || req.AppealDueDate == nil {
		return 0
	}
	if req.Status == models.StatusAppealAnswered || req.AppealRespondedAt != nil {
		return 0
	}
	return nonNegative(req.AppealDueDate.DaysSince(c.DateOf(now)))
}

// Deadlines is the derived deadline view returned alongside a request.
type Deadlines struct {
	IsOverdue           bool `json:"is_overdue"`
	DaysRemaining       int  `json:"days_remaining"`
	AppealDaysRemaining int  `json:"appeal_days_remaining"`
}

func (c *Calculator) Evaluate(req *models.InformationRequest, now time.Time) Deadlines {
	return Deadlines{
		IsOverdue:           c.IsOverdue(req, now),
		DaysRemaining:       c.DaysRemaining(req, now),
		AppealDaysRemaining: c.AppealDaysRemaining(req, now),
	}
}

func settled(s models.Status) bool {
	switch s {
	case models.StatusAnswered, models.StatusAppealAnswered, models.StatusClosed:
		return true
	}
	return false
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
