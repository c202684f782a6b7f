package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"transparency/internal/finance/models"
	"transparency/internal/reporting"
	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
	"transparency/pkg/platform/httputil"
	"transparency/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, in models.NewRecordInput, now time.Time) (*models.Record, error)
	Get(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RecordID) (*models.Record, error)
	List(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, filter models.ListFilter) ([]*models.Record, error)
	Summary(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, filter reporting.SummaryFilter) (reporting.FinanceSummary, error)
}

// Handler wires financial record endpoints to the finance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/tenants/{tenantID}/finance", func(r chi.Router) {
		r.Post("/records", h.HandleCreate)
		r.Get("/records", h.HandleList)
		r.Get("/records/{recordID}", h.HandleGet)
		r.Get("/summary", h.HandleSummary)
	})
}

// CreateRecordRequest is the HTTP request body for POST .../finance/records.
// Amount is a decimal string so no precision is lost in transit.
type CreateRecordRequest struct {
	Kind        string          `json:"kind"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
}

type ListResponse struct {
	Items  []*models.Record `json:"items"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// HandleCreate handles POST /tenants/{tenantID}/finance/records.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, tenantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var body CreateRecordRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.fail(ctx, w, "create", err)
		return
	}
	kind, err := models.ParseKind(strings.TrimSpace(body.Kind))
	if err != nil {
		h.fail(ctx, w, "create", err)
		return
	}
	record, err := h.service.Create(ctx, actor, tenantID, models.NewRecordInput{
		Kind:        kind,
		Category:    body.Category,
		Description: body.Description,
		Amount:      body.Amount,
		Year:        body.Year,
		Month:       body.Month,
	}, requestcontext.Now(ctx))
	if err != nil {
		h.fail(ctx, w, "create", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

// HandleList handles GET /tenants/{tenantID}/finance/records?kind=&year=&month=&category=&limit=&offset=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, tenantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	filter, err := listFilter(r)
	if err != nil {
		h.fail(ctx, w, "list", err)
		return
	}
	items, err := h.service.List(ctx, actor, tenantID, filter)
	if err != nil {
		h.fail(ctx, w, "list", err)
		return
	}
	filter = filter.Normalize()
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Items: items, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, tenantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, err := domain.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		h.fail(ctx, w, "get", dErrors.Field("record_id", "invalid record id"))
		return
	}
	record, err := h.service.Get(ctx, actor, tenantID, id)
	if err != nil {
		h.fail(ctx, w, "get", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleSummary handles GET /tenants/{tenantID}/finance/summary?year=.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, tenantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	year, err := httputil.QueryInt(r, "year")
	if err != nil {
		h.fail(ctx, w, "summary", err)
		return
	}
	summary, err := h.service.Summary(ctx, actor, tenantID, reporting.SummaryFilter{Year: year})
	if err != nil {
		h.fail(ctx, w, "summary", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (domain.Actor, domain.TenantID, bool) {
	ctx := r.Context()
	actor, err := httputil.Actor(ctx)
	if err != nil {
		h.fail(ctx, w, "scope", err)
		return domain.Actor{}, 0, false
	}
	tenantID, err := httputil.TenantParam(r)
	if err != nil {
		h.fail(ctx, w, "scope", err)
		return domain.Actor{}, 0, false
	}
	return actor, tenantID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.logger.WarnContext(ctx, "finance operation failed",
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"error", err,
	)
	httputil.WriteError(w, err)
}

func listFilter(r *http.Request) (models.ListFilter, error) {
	var filter models.ListFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
		kind, err := models.ParseKind(raw)
		if err != nil {
			return filter, err
		}
		filter.Kind = &kind
	}
	var err error
	if filter.Year, err = httputil.QueryInt(r, "year"); err != nil {
		return filter, err
	}
	if filter.Month, err = httputil.QueryInt(r, "month"); err != nil {
		return filter, err
	}
	filter.Category = r.URL.Query().Get("category")
	if filter.Limit, err = httputil.QueryIntOr(r, "limit", 0); err != nil {
		return filter, err
	}
	if filter.Offset, err = httputil.QueryIntOr(r, "offset", 0); err != nil {
		return filter, err
	}
	return filter, nil
}
