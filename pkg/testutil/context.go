package testutil

import (
	"net/http"
	"time"

	"transparency/pkg/domain"
	"transparency/pkg/requestcontext"
)

// WithActor attaches an authenticated actor to the request, as the auth
// middleware would for a valid bearer token.
func WithActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// Actor builds an actor value for tests.
func Actor(role domain.Role, tenantID domain.TenantID) domain.Actor {
	return domain.Actor{ID: 100 + domain.UserID(role.Rank()), Role: role, TenantID: tenantID}
}
