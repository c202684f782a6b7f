package models

import (
	"fmt"

	dErrors "transparency/pkg/domain-errors"
)

// Category is the subject area a requester files under.
type Category string

const (
	CategoryFinancial      Category = "financial"
	CategoryContracts      Category = "contracts"
	CategoryPersonnel      Category = "personnel"
	CategoryServices       Category = "services"
	CategoryInfrastructure Category = "infrastructure"
	CategoryHealth         Category = "health"
	CategoryEducation      Category = "education"
	CategoryOther          Category = "other"
)

func Categories() []Category {
	return []Category{
		CategoryFinancial,
		CategoryContracts,
		CategoryPersonnel,
		CategoryServices,
		CategoryInfrastructure,
		CategoryHealth,
		CategoryEducation,
		CategoryOther,
	}
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", dErrors.Field("category", fmt.Sprintf("unknown category %q", s))
	}
	return c, nil
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryFinancial, CategoryContracts, CategoryPersonnel, CategoryServices,
		CategoryInfrastructure, CategoryHealth, CategoryEducation, CategoryOther:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
