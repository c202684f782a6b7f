// Package lifecycle owns the state machine of an information request.
//
// The engine is pure: every operation takes the current request and an
// explicit now, and returns a new request value. Inputs are never mutated and
// nothing is persisted here; callers store the result with a conditional
// write keyed on the status they read.
package lifecycle

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-sql/civil"

	"transparency/internal/esic/models"
	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
	"transparency/pkg/email"
)

const (
	maxSubjectLength    = 500
	maxNameLength       = 255
	maxDepartmentLength = 100
)

// DeadlineCalculator supplies the date arithmetic the engine stamps onto requests.
type DeadlineCalculator interface {
	DateOf(t time.Time) civil.Date
	DueDate(requestedAt time.Time) civil.Date
	AppealDueDate(appealedAt time.Time) civil.Date
}

type Engine struct {
	calc DeadlineCalculator
}

func New(calc DeadlineCalculator) *Engine {
	return &Engine{calc: calc}
}

// SubmitInput carries everything needed to file a request. ID and Protocol
// are allocated by the caller; the engine only requires them to be present.
type SubmitInput struct {
	ID          domain.RequestID
	TenantID    domain.TenantID
	Protocol    string
	Requester   models.Requester
	Subject     string
	Description string
	Category    models.Category
}

// Submit validates in and returns a new pending request with its due date set.
func (e *Engine) Submit(in SubmitInput, now time.Time) (*models.InformationRequest, error) {
	in.Protocol = strings.TrimSpace(in.Protocol)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = strings.TrimSpace(in.Description)
	in.Requester = models.Requester{
		Name:     strings.TrimSpace(in.Requester.Name),
		Email:    email.Normalize(in.Requester.Email),
		Phone:    strings.TrimSpace(in.Requester.Phone),
		Document: strings.TrimSpace(in.Requester.Document),
	}
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	return &models.InformationRequest{
		ID:          in.ID,
		TenantID:    in.TenantID,
		Protocol:    in.Protocol,
		Requester:   in.Requester,
		Subject:     in.Subject,
		Description: in.Description,
		Category:    in.Category,
		Status:      models.StatusPending,
		RequestedAt: now,
		DueDate:     e.calc.DueDate(now),
		UpdatedAt:   now,
	}, nil
}

func validateSubmit(in SubmitInput) error {
	switch {
	case in.ID.IsNil():
		return dErrors.Field("id", "request id is required")
	case in.TenantID.IsNil():
		return dErrors.Field("tenant_id", "tenant id is required")
	case in.Protocol == "":
		return dErrors.Field("protocol", "protocol is required")
	case in.Requester.Name == "":
		return dErrors.Field("requester.name", "requester name is required")
	case utf8.RuneCountInString(in.Requester.Name) > maxNameLength:
		return dErrors.Field("requester.name", "requester name must be 255 characters or less")
	case in.Requester.Email == "":
		return dErrors.Field("requester.email", "requester email is required")
	case !email.IsValid(in.Requester.Email):
		return dErrors.Field("requester.email", "requester email is not a valid address")
	case in.Subject == "":
		return dErrors.Field("subject", "subject is required")
	case utf8.RuneCountInString(in.Subject) > maxSubjectLength:
		return dErrors.Field("subject", "subject must be 500 characters or less")
	case in.Description == "":
		return dErrors.Field("description", "description is required")
	}
	if _, err := models.ParseCategory(string(in.Category)); err != nil {
		return err
	}
	return nil
}

// StartProcessing moves a pending request into progress, recording who is
// handling it.
func (e *Engine) StartProcessing(req *models.InformationRequest, assignee *domain.UserID, department string, now time.Time) (*models.InformationRequest, error) {
	department = strings.TrimSpace(department)
	return e.transition(req, models.OpStartProcessing, now, func(next *models.InformationRequest) error {
		if assignee == nil && department == "" {
			return dErrors.Field("assigned_user_id", "an assignee or department is required")
		}
		if utf8.RuneCountInString(department) > maxDepartmentLength {
			return dErrors.Field("assigned_department", "department must be 100 characters or less")
		}
		if assignee != nil {
			u := *assignee
			next.AssignedUserID = &u
		}
		next.AssignedDepartment = department
		return nil
	})
}

// RecordResponse stores the first answer. Legal from Pending or InProgress.
func (e *Engine) RecordResponse(req *models.InformationRequest, text string, now time.Time) (*models.InformationRequest, error) {
	text = strings.TrimSpace(text)
	return e.transition(req, models.OpRespond, now, func(next *models.InformationRequest) error {
		if text == "" {
			return dErrors.Field("response_text", "response text is required")
		}
		at := now
		next.ResponseText = text
		next.RespondedAt = &at
		return nil
	})
}

// FileAppeal records the requester's challenge to an answer. Legal from Answered.
func (e *Engine) FileAppeal(req *models.InformationRequest, description string, now time.Time) (*models.InformationRequest, error) {
	description = strings.TrimSpace(description)
	return e.transition(req, models.OpFileAppeal, now, func(next *models.InformationRequest) error {
		if description == "" {
			return dErrors.Field("appeal_description", "appeal description is required")
		}
		at := now
		due := e.calc.AppealDueDate(now)
		next.HasAppeal = true
		next.AppealDescription = description
		next.AppealedAt = &at
		next.AppealDueDate = &due
		return nil
	})
}

// ResolveAppeal stores the answer to an appeal. Legal from Appealed.
func (e *Engine) ResolveAppeal(req *models.InformationRequest, text string, now time.Time) (*models.InformationRequest, error) {
	text = strings.TrimSpace(text)
	return e.transition(req, models.OpResolveAppeal, now, func(next *models.InformationRequest) error {
		if text == "" {
			return dErrors.Field("appeal_response", "appeal response is required")
		}
		at := now
		next.AppealResponse = text
		next.AppealRespondedAt = &at
		return nil
	})
}

// Close finishes an answered request. Legal from Answered or AppealAnswered.
func (e *Engine) Close(req *models.InformationRequest, now time.Time) (*models.InformationRequest, error) {
	return e.transition(req, models.OpClose, now, nil)
}

// EvaluateExpiry expires a request still awaiting its first answer once the
// reference date of now is past its due date. Any other request is returned
// unchanged; the second result reports whether the status changed.
// Applying it again to its own result is a no-op.
func (e *Engine) EvaluateExpiry(req *models.InformationRequest, now time.Time) (*models.InformationRequest, bool) {
	if req == nil {
		return nil, false
	}
	if !req.Status.CanApply(models.OpExpire) || req.HasResponse() {
		return req.Clone(), false
	}
	if !e.calc.DateOf(now).After(req.DueDate) {
		return req.Clone(), false
	}
	next, err := e.transition(req, models.OpExpire, now, nil)
	if err != nil {
		return req.Clone(), false
	}
	return next, true
}

// SetVisibility publishes or withdraws a request from public search. It never
// changes status.
func (e *Engine) SetVisibility(req *models.InformationRequest, public bool, now time.Time) (*models.InformationRequest, error) {
	if req == nil {
		return nil, errNilRequest
	}
	next := req.Clone()
	if next.IsPublic != public {
		next.IsPublic = public
		next.UpdatedAt = now
	}
	return next, nil
}

var errNilRequest = dErrors.New(dErrors.CodeInternal, "lifecycle: nil request")

func (e *Engine) transition(req *models.InformationRequest, op models.Operation, now time.Time, mutate func(*models.InformationRequest) error) (*models.InformationRequest, error) {
	if req == nil {
		return nil, errNilRequest
	}
	to, err := req.Status.Next(op)
	if err != nil {
		return nil, err
	}
	next := req.Clone()
	if mutate != nil {
		if err := mutate(next); err != nil {
			return nil, err
		}
	}
	next.Status = to
	next.UpdatedAt = now
	return next, nil
}
