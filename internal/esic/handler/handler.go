package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"transparency/internal/esic/deadline"
	"transparency/internal/esic/models"
	"transparency/internal/esic/service"
	"transparency/internal/reporting"
	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
	"transparency/pkg/platform/httputil"
	"transparency/pkg/requestcontext"
)

// Service defines the request operations the handler exposes.
type Service interface {
	Submit(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, cmd service.SubmitCommand, now time.Time) (*models.InformationRequest, error)
	Get(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID) (*models.InformationRequest, error)
	GetByProtocol(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, protocol string) (*models.InformationRequest, error)
	List(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, filter models.ListFilter) ([]*models.InformationRequest, error)
	PublicSearch(ctx context.Context, tenantID domain.TenantID, filter models.SearchFilter) (*models.SearchResult, error)
	StartProcessing(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, cmd service.AssignCommand, now time.Time) (*models.InformationRequest, error)
	RecordResponse(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, text string, now time.Time) (*models.InformationRequest, error)
	FileAppeal(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, description string, now time.Time) (*models.InformationRequest, error)
	ResolveAppeal(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, text string, now time.Time) (*models.InformationRequest, error)
	Close(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, now time.Time) (*models.InformationRequest, error)
	SetVisibility(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, public bool, now time.Time) (*models.InformationRequest, error)
	SweepExpired(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, now time.Time) (int, error)
	Statistics(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, filter reporting.StatsFilter, now time.Time) (reporting.RequestStats, error)
	Deadlines(req *models.InformationRequest, now time.Time) deadline.Deadlines
}

// Handler wires information request endpoints to the request service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the authenticated endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tenants/{tenantID}/esic", func(r chi.Router) {
		r.Post("/requests", h.HandleSubmit)
		r.Get("/requests", h.HandleList)
		r.Get("/requests/{requestID}", h.HandleGet)
		r.Post("/requests/{requestID}/assign", h.HandleAssign)
		r.Post("/requests/{requestID}/respond", h.HandleRespond)
		r.Post("/requests/{requestID}/appeal", h.HandleAppeal)
		r.Post("/requests/{requestID}/appeal-response", h.HandleAppealResponse)
		r.Post("/requests/{requestID}/close", h.HandleClose)
		r.Post("/requests/{requestID}/visibility", h.HandleVisibility)
		r.Get("/protocols/{protocol}", h.HandleGetByProtocol)
		r.Post("/expiry-sweep", h.HandleSweep)
		r.Get("/stats", h.HandleStats)
	})
}

// RegisterPublic mounts the anonymous citizen-facing search.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/public/tenants/{tenantID}/esic", h.HandlePublicSearch)
}

// HandleSubmit handles POST /tenants/{tenantID}/esic/requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, tenantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var body SubmitRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.fail(ctx, w, "submit", err)
		return
	}
	cmd, err := body.Command()
	if err != nil {
		h.fail(ctx, w, "submit", err)
		return
	}
	now := requestcontext.Now(ctx)
	req, err := h.service.Submit(ctx, actor, tenantID, cmd, now)
	if err != nil {
		h.fail(ctx, w, "submit", err)
		return
	}
	h.logger.InfoContext(ctx, "information request submitted",
		"request_id", requestcontext.RequestID(ctx),
		"tenant_id", tenantID,
		"protocol", req.Protocol,
	)
	httputil.WriteJSON(w, http.StatusCreated, h.toResponse(req, now))
}

// HandleList handles GET /tenants/{tenantID}/esic/requests?status=&limit=&offset=.
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
	now := requestcontext.Now(ctx)
	filter = filter.Normalize()
	resp := ListResponse{Items: make([]RequestResponse, 0, len(items)), Limit: filter.Limit, Offset: filter.Offset}
	for _, req := range items {
		resp.Items = append(resp.Items, h.toResponse(req, now))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /tenants/{tenantID}/esic/requests/{requestID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, tenantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, err := requestIDParam(r)
	if err != nil {
		h.fail(ctx, w, "get", err)
		return
	}
	req, err := h.service.Get(ctx, actor, tenantID, id)
	if err != nil {
		h.fail(ctx, w, "get", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponse(req, requestcontext.Now(ctx)))
}

// HandleGetByProtocol handles GET /tenants/{tenantID}/esic/protocols/{protocol}.
func (h *Handler) HandleGetByProtocol(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, tenantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	protocol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "protocol")))
	req, err := h.service.GetByProtocol(ctx, actor, tenantID, protocol)
	if err != nil {
		h.fail(ctx, w, "get_by_protocol", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponse(req, requestcontext.Now(ctx)))
}

func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var body AssignRequest
	h.transition(w, r, "assign", &body, func(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, now time.Time) (*models.InformationRequest, error) {
		cmd, err := body.Command()
		if err != nil {
			return nil, err
		}
		return h.service.StartProcessing(ctx, actor, tenantID, id, cmd, now)
	})
}

func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	var body RespondRequest
	h.transition(w, r, "respond", &body, func(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, now time.Time) (*models.InformationRequest, error) {
		return h.service.RecordResponse(ctx, actor, tenantID, id, body.ResponseText, now)
	})
}

func (h *Handler) HandleAppeal(w http.ResponseWriter, r *http.Request) {
	var body AppealRequest
	h.transition(w, r, "appeal", &body, func(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, now time.Time) (*models.InformationRequest, error) {
		return h.service.FileAppeal(ctx, actor, tenantID, id, body.AppealDescription, now)
	})
}

func (h *Handler) HandleAppealResponse(w http.ResponseWriter, r *http.Request) {
	var body AppealResponseRequest
	h.transition(w, r, "appeal_response", &body, func(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, now time.Time) (*models.InformationRequest, error) {
		return h.service.ResolveAppeal(ctx, actor, tenantID, id, body.AppealResponse, now)
	})
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "close", nil, func(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, now time.Time) (*models.InformationRequest, error) {
		return h.service.Close(ctx, actor, tenantID, id, now)
	})
}

func (h *Handler) HandleVisibility(w http.ResponseWriter, r *http.Request) {
	var body VisibilityRequest
	h.transition(w, r, "visibility", &body, func(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, now time.Time) (*models.InformationRequest, error) {
		if err := body.Validate(); err != nil {
			return nil, err
		}
		return h.service.SetVisibility(ctx, actor, tenantID, id, *body.IsPublic, now)
	})
}

// HandleSweep handles POST /tenants/{tenantID}/esic/expiry-sweep.
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, tenantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	n, err := h.service.SweepExpired(ctx, actor, tenantID, requestcontext.Now(ctx))
	if err != nil {
		h.fail(ctx, w, "expiry_sweep", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SweepResponse{Expired: n})
}

// HandleStats handles GET /tenants/{tenantID}/esic/stats?year=.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, tenantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	year, err := httputil.QueryInt(r, "year")
	if err != nil {
		h.fail(ctx, w, "stats", err)
		return
	}
	stats, err := h.service.Statistics(ctx, actor, tenantID, reporting.StatsFilter{Year: year}, requestcontext.Now(ctx))
	if err != nil {
		h.fail(ctx, w, "stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// HandlePublicSearch handles GET /public/tenants/{tenantID}/esic?q=&limit=&offset=.
func (h *Handler) HandlePublicSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, err := httputil.TenantParam(r)
	if err != nil {
		h.fail(ctx, w, "public_search", err)
		return
	}
	limit, err := httputil.QueryIntOr(r, "limit", 0)
	if err != nil {
		h.fail(ctx, w, "public_search", err)
		return
	}
	offset, err := httputil.QueryIntOr(r, "offset", 0)
	if err != nil {
		h.fail(ctx, w, "public_search", err)
		return
	}
	result, err := h.service.PublicSearch(ctx, tenantID, models.SearchFilter{
		Query:  r.URL.Query().Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.fail(ctx, w, "public_search", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type transitionFunc func(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, now time.Time) (*models.InformationRequest, error)

// transition decodes body when present and runs one lifecycle operation.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op string, body any, fn transitionFunc) {
	ctx := r.Context()
	actor, tenantID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, err := requestIDParam(r)
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}
	if body != nil {
		if err := httputil.DecodeJSON(r, body); err != nil {
			h.fail(ctx, w, op, err)
			return
		}
	}
	now := requestcontext.Now(ctx)
	req, err := fn(ctx, actor, tenantID, id, now)
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponse(req, now))
}

// scope resolves the caller and the tenant named by the route.
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
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "information request operation failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, "information request operation rejected", attrs...)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) toResponse(req *models.InformationRequest, now time.Time) RequestResponse {
	return RequestResponse{InformationRequest: req, Deadlines: h.service.Deadlines(req, now)}
}

func requestIDParam(r *http.Request) (domain.RequestID, error) {
	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		return domain.RequestID{}, dErrors.Field("request_id", "invalid request id")
	}
	return id, nil
}

func listFilter(r *http.Request) (models.ListFilter, error) {
	var filter models.ListFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	var err error
	if filter.Limit, err = httputil.QueryIntOr(r, "limit", 0); err != nil {
		return filter, err
	}
	if filter.Offset, err = httputil.QueryIntOr(r, "offset", 0); err != nil {
		return filter, err
	}
	return filter, nil
}
