package handler

import (
	"strings"

	"transparency/internal/esic/models"
	"transparency/internal/esic/service"
	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST .../esic/requests.
type SubmitRequest struct {
	Requester   RequesterBody `json:"requester"`
	Subject     string        `json:"subject"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
}

type RequesterBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

// Command parses the category and builds the service command. Field-level
// validation happens in the lifecycle engine.
func (r *SubmitRequest) Command() (service.SubmitCommand, error) {
	category, err := models.ParseCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return service.SubmitCommand{}, err
	}
	return service.SubmitCommand{
		Requester: models.Requester{
			Name:     r.Requester.Name,
			Email:    r.Requester.Email,
			Phone:    r.Requester.Phone,
			Document: r.Requester.Document,
		},
		Subject:     r.Subject,
		Description: r.Description,
		Category:    category,
	}, nil
}

type AssignRequest struct {
	AssignedUserID *int64 `json:"assigned_user_id"`
	Department     string `json:"assigned_department"`
}

func (r *AssignRequest) Command() (service.AssignCommand, error) {
	cmd := service.AssignCommand{Department: r.Department}
	if r.AssignedUserID != nil {
		if *r.AssignedUserID <= 0 {
			return cmd, dErrors.Field("assigned_user_id", "assigned_user_id must be positive")
		}
		id := domain.UserID(*r.AssignedUserID)
		cmd.AssignedUserID = &id
	}
	return cmd, nil
}

type RespondRequest struct {
	ResponseText string `json:"response_text"`
}

type AppealRequest struct {
	AppealDescription string `json:"appeal_description"`
}

type AppealResponseRequest struct {
	AppealResponse string `json:"appeal_response"`
}

type VisibilityRequest struct {
	IsPublic *bool `json:"is_public"`
}

func (r *VisibilityRequest) Validate() error {
	if r.IsPublic == nil {
		return dErrors.Field("is_public", "is_public is required")
	}
	return nil
}
