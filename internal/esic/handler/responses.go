package handler

import (
	"transparency/internal/esic/deadline"
	"transparency/internal/esic/models"
)

// RequestResponse is a stored request plus its deadline view at request time.
type RequestResponse struct {
	*models.InformationRequest
	Deadlines deadline.Deadlines `json:"deadlines"`
}

type ListResponse struct {
	Items  []RequestResponse `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type SweepResponse struct {
	Expired int `json:"expired"`
}
