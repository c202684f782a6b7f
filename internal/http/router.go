package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"transparency/pkg/platform/httputil"
	"transparency/pkg/platform/middleware/auth"
	"transparency/pkg/platform/middleware/metadata"
	"transparency/pkg/platform/middleware/request"
	"transparency/pkg/platform/middleware/requesttime"
)

// Routes is implemented by every feature handler.
type Routes interface {
	Register(r chi.Router)
}

// PublicRoutes is implemented by handlers exposing anonymous endpoints.
type PublicRoutes interface {
	RegisterPublic(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config carries everything the router needs. Observer and Metrics may be nil.
type Config struct {
	Logger    *slog.Logger
	Validator auth.ActorValidator
	Observer  request.LatencyObserver
	Metrics   http.Handler
	Clock     requesttime.Clock
	Checks    map[string]HealthCheck
	// PublicLimit wraps anonymous routes, typically a per-IP rate limiter.
	PublicLimit func(http.Handler) http.Handler
	Public      []PublicRoutes
	Protected   []Routes
}

const healthTimeout = 2 * time.Second

// NewRouter builds the chi router. Metadata runs first so every later log
// line carries request_id; recovery is innermost so panics are still logged
// with their final status.
func NewRouter(cfg Config) http.Handler {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	r := chi.NewRouter()
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.WithClock(clock))
	r.Use(request.Logger(cfg.Logger, cfg.Observer))
	r.Use(request.Recovery(cfg.Logger))

	r.Get("/healthz", healthHandler(cfg.Checks))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	r.Group(func(r chi.Router) {
		if cfg.PublicLimit != nil {
			r.Use(cfg.PublicLimit)
		}
		for _, p := range cfg.Public {
			p.RegisterPublic(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireActor(cfg.Validator, cfg.Logger))
		for _, h := range cfg.Protected {
			h.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
