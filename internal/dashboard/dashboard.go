package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"transparency/internal/reporting"
	"transparency/pkg/domain"
	"transparency/pkg/platform/httputil"
	"transparency/pkg/requestcontext"
)

const aggregationTimeout = 10 * time.Second

type RequestStatistics interface {
	Statistics(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, filter reporting.StatsFilter, now time.Time) (reporting.RequestStats, error)
}

type FinanceSummaries interface {
	Summary(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, filter reporting.SummaryFilter) (reporting.FinanceSummary, error)
}

// Dashboard is the combined per-tenant view served at /dashboard.
type Dashboard struct {
	TenantID    domain.TenantID          `json:"tenant_id"`
	Year        *int                     `json:"year,omitempty"`
	Requests    reporting.RequestStats   `json:"requests"`
	Finance     reporting.FinanceSummary `json:"finance"`
	GeneratedAt time.Time                `json:"generated_at"`
}

type Service struct {
	requests RequestStatistics
	finance  FinanceSummaries
}

func NewService(requests RequestStatistics, finance FinanceSummaries) *Service {
	return &Service{requests: requests, finance: finance}
}

// Build gathers request statistics and the financial summary in parallel.
// The first failure cancels the other half.
func (s *Service) Build(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, year *int, now time.Time) (*Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, aggregationTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	d := &Dashboard{TenantID: tenantID, Year: year, GeneratedAt: now}

	g.Go(func() error {
		stats, err := s.requests.Statistics(ctx, actor, tenantID, reporting.StatsFilter{Year: year}, now)
		if err != nil {
			return err
		}
		d.Requests = stats
		return nil
	})
	g.Go(func() error {
		summary, err := s.finance.Summary(ctx, actor, tenantID, reporting.SummaryFilter{Year: year})
		if err != nil {
			return err
		}
		d.Finance = summary
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/tenants/{tenantID}/dashboard", h.HandleDashboard)
}

// HandleDashboard handles GET /tenants/{tenantID}/dashboard?year=.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := h.build(r)
	if err != nil {
		h.logger.WarnContext(ctx, "dashboard failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) build(r *http.Request) (*Dashboard, error) {
	ctx := r.Context()
	actor, err := httputil.Actor(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := httputil.TenantParam(r)
	if err != nil {
		return nil, err
	}
	year, err := httputil.QueryInt(r, "year")
	if err != nil {
		return nil, err
	}
	return h.service.Build(ctx, actor, tenantID, year, requestcontext.Now(ctx))
}
