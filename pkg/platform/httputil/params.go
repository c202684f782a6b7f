package httputil

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
	"transparency/pkg/requestcontext"
)

// Actor returns the authenticated actor stored by the auth middleware.
func Actor(ctx context.Context) (domain.Actor, error) {
	actor, ok := requestcontext.Actor(ctx)
	if !ok {
		return domain.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}

// TenantParam parses the {tenantID} route parameter.
func TenantParam(r *http.Request) (domain.TenantID, error) {
	id, err := domain.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		return 0, dErrors.Field("tenant_id", "invalid tenant id")
	}
	return id, nil
}

// QueryInt parses an optional integer query parameter. A missing or blank
// parameter yields nil.
func QueryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, dErrors.Field(name, name+" must be an integer")
	}
	return &n, nil
}

// QueryIntOr is QueryInt with a default for missing parameters.
func QueryIntOr(r *http.Request, name string, def int) (int, error) {
	n, err := QueryInt(r, name)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return def, nil
	}
	return *n, nil
}
