package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"transparency/pkg/domain"
	"transparency/pkg/platform/httputil"
	"transparency/pkg/requestcontext"

	dErrors "transparency/pkg/domain-errors"
)

// ActorValidator turns a bearer token into an authenticated actor.
type ActorValidator interface {
	ValidateToken(tokenString string) (domain.Actor, error)
}

// RequireActor rejects requests without a valid bearer token and stores the
// resolved actor on the request context for handlers to pass on explicitly.
func RequireActor(validator ActorValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			actor, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}
