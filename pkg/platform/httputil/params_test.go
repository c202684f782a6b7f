package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
	"transparency/pkg/requestcontext"
)

func withTenantParam(r *http.Request, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("tenantID", value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestTenantParam(t *testing.T) {
	r := withTenantParam(httptest.NewRequest(http.MethodGet, "/", nil), "42")
	id, err := TenantParam(r)
	require.NoError(t, err)
	assert.Equal(t, domain.TenantID(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := TenantParam(withTenantParam(httptest.NewRequest(http.MethodGet, "/", nil), bad))
		assert.Equal(t, "tenant_id", dErrors.FieldOf(err), "input %q", bad)
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?year=2024&limit=&bad=x", nil)

	year, err := QueryInt(r, "year")
	require.NoError(t, err)
	require.NotNil(t, year)
	assert.Equal(t, 2024, *year)

	limit, err := QueryInt(r, "limit")
	require.NoError(t, err)
	assert.Nil(t, limit)

	_, err = QueryInt(r, "bad")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	offset, err := QueryIntOr(r, "offset", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, offset)
}

func TestActor(t *testing.T) {
	_, err := Actor(context.Background())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	want := domain.Actor{ID: 1, Role: domain.RoleViewer, TenantID: 2}
	got, err := Actor(requestcontext.WithActor(context.Background(), want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
