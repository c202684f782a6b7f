package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-sql/civil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"transparency/internal/access"
	"transparency/internal/audit"
	"transparency/internal/esic/deadline"
	"transparency/internal/esic/lifecycle"
	"transparency/internal/esic/metrics"
	"transparency/internal/esic/models"
	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
	"transparency/pkg/platform/sentinel"
	"transparency/pkg/platform/tx"
	"transparency/pkg/requestcontext"
)

type RequestStore interface {
	Create(ctx context.Context, req *models.InformationRequest) error
	FindByID(ctx context.Context, tenantID domain.TenantID, id domain.RequestID) (*models.InformationRequest, error)
	FindByProtocol(ctx context.Context, tenantID domain.TenantID, protocol string) (*models.InformationRequest, error)
	ListByTenant(ctx context.Context, tenantID domain.TenantID, filter models.ListFilter) ([]*models.InformationRequest, error)
	AllByTenant(ctx context.Context, tenantID domain.TenantID) ([]*models.InformationRequest, error)
	ListAwaitingDueBefore(ctx context.Context, tenantID domain.TenantID, date civil.Date) ([]*models.InformationRequest, error)
	SearchPublic(ctx context.Context, tenantID domain.TenantID, filter models.SearchFilter) ([]*models.InformationRequest, int, error)
	UpdateIfStatus(ctx context.Context, req *models.InformationRequest, expected models.Status) error
	SetPublic(ctx context.Context, tenantID domain.TenantID, id domain.RequestID, public bool, at time.Time) error
}

// ProtocolAllocator hands out receipt codes. Implementations only promise
// uniqueness with high probability; the store's unique key is authoritative.
type ProtocolAllocator interface {
	Allocate(ctx context.Context, now time.Time) (string, error)
}

type Authorizer interface {
	Check(actor domain.Actor, target domain.TenantID, perm access.Permission) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TxRunner scopes a store mutation and its audit entry to one transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const maxProtocolAttempts = 3

// Service orchestrates the information request lifecycle: authorization,
// persistence, audit and metrics around the pure lifecycle engine.
type Service struct {
	requests       RequestStore
	protocols      ProtocolAllocator
	policy         Authorizer
	calc           *deadline.Calculator
	engine         *lifecycle.Engine
	tx             TxRunner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTx(runner TxRunner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service.
func New(requests RequestStore, protocols ProtocolAllocator, policy Authorizer, calc *deadline.Calculator, opts ...Option) *Service {
	s := &Service{
		requests:  requests,
		protocols: protocols,
		policy:    policy,
		calc:      calc,
		engine:    lifecycle.New(calc),
		tx:        tx.Passthrough{},
		logger:    slog.Default(),
		tracer:    otel.Tracer("transparency/esic"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitCommand is the caller-supplied part of a new request.
type SubmitCommand struct {
	Requester   models.Requester
	Subject     string
	Description string
	Category    models.Category
}

// Submit files a new request under tenantID with a freshly allocated protocol.
func (s *Service) Submit(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, cmd SubmitCommand, now time.Time) (*models.InformationRequest, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "esic.Submit", tenantID)
	defer span.End()

	if err := s.policy.Check(actor, tenantID, access.SubmitRequest); err != nil {
		return nil, s.fail(span, err)
	}

	var created *models.InformationRequest
	for attempt := 1; ; attempt++ {
		protocol, err := s.protocols.Allocate(ctx, now)
		if err != nil {
			return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate protocol"))
		}
		req, err := s.engine.Submit(lifecycle.SubmitInput{
			ID:          domain.NewRequestID(),
			TenantID:    tenantID,
			Protocol:    protocol,
			Requester:   cmd.Requester,
			Subject:     cmd.Subject,
			Description: cmd.Description,
			Category:    cmd.Category,
		}, now)
		if err != nil {
			return nil, s.fail(span, err)
		}

		err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.requests.Create(txCtx, req); err != nil {
				return err
			}
			return s.emit(txCtx, actor, audit.EventRequestSubmitted, nil, req)
		})
		if err == nil {
			created = req
			break
		}
		if errors.Is(err, sentinel.ErrAlreadyUsed) && attempt < maxProtocolAttempts {
			s.logger.WarnContext(ctx, "protocol collision, retrying",
				"protocol", protocol,
				"attempt", attempt,
				"request_id", requestcontext.RequestID(ctx),
			)
			continue
		}
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, s.fail(span, dErrors.New(dErrors.CodeConflict, "could not allocate a unique protocol"))
		}
		return nil, s.fail(span, wrapStoreErr(err, "failed to create request"))
	}

	s.logger.InfoContext(ctx, string(audit.EventRequestSubmitted),
		"event", audit.EventRequestSubmitted,
		"log_type", "audit",
		"tenant_id", tenantID,
		"protocol", created.Protocol,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementSubmitted()
		s.metrics.ObserveSubmit(start)
	}
	return created, nil
}

// Get returns one request of tenantID.
func (s *Service) Get(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID) (*models.InformationRequest, error) {
	if err := s.policy.Check(actor, tenantID, access.ReadRequests); err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load request")
	}
	return req, nil
}

// GetByProtocol looks a request up by its receipt code.
func (s *Service) GetByProtocol(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, protocol string) (*models.InformationRequest, error) {
	if err := s.policy.Check(actor, tenantID, access.ReadRequests); err != nil {
		return nil, err
	}
	if protocol == "" {
		return nil, dErrors.Field("protocol", "protocol is required")
	}
	req, err := s.requests.FindByProtocol(ctx, tenantID, protocol)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load request")
	}
	return req, nil
}

// List returns one page of the tenant's requests, newest first.
func (s *Service) List(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, filter models.ListFilter) ([]*models.InformationRequest, error) {
	if err := s.policy.Check(actor, tenantID, access.ReadRequests); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, dErrors.Field("status", "invalid status")
	}
	items, err := s.requests.ListByTenant(ctx, tenantID, filter.Normalize())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return items, nil
}

// PublicSearch searches the tenant's published requests. It needs no actor
// and never exposes requester details.
func (s *Service) PublicSearch(ctx context.Context, tenantID domain.TenantID, filter models.SearchFilter) (*models.SearchResult, error) {
	if tenantID.IsNil() {
		return nil, dErrors.Field("tenant_id", "tenant_id is required")
	}
	items, total, err := s.requests.SearchPublic(ctx, tenantID, filter.Normalize())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search requests")
	}
	result := &models.SearchResult{Items: make([]*models.PublicRequest, 0, len(items)), Total: total}
	for _, r := range items {
		result.Items = append(result.Items, r.Public())
	}
	return result, nil
}

// AssignCommand names who handles a request. At least one field is required.
type AssignCommand struct {
	AssignedUserID *domain.UserID
	Department     string
}

// StartProcessing moves a pending request to in-progress with an assignee.
func (s *Service) StartProcessing(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, cmd AssignCommand, now time.Time) (*models.InformationRequest, error) {
	return s.mutate(ctx, actor, tenantID, id, mutation{
		op:    models.OpStartProcessing,
		perm:  access.AssignRequest,
		event: audit.EventRequestAssigned,
		apply: func(req *models.InformationRequest) (*models.InformationRequest, error) {
			return s.engine.StartProcessing(req, cmd.AssignedUserID, cmd.Department, now)
		},
	})
}

// RecordResponse records the first answer.
func (s *Service) RecordResponse(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, text string, now time.Time) (*models.InformationRequest, error) {
	return s.mutate(ctx, actor, tenantID, id, mutation{
		op:    models.OpRespond,
		perm:  access.RespondRequest,
		event: audit.EventRequestAnswered,
		apply: func(req *models.InformationRequest) (*models.InformationRequest, error) {
			return s.engine.RecordResponse(req, text, now)
		},
	})
}

// FileAppeal contests an answered request.
func (s *Service) FileAppeal(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, description string, now time.Time) (*models.InformationRequest, error) {
	return s.mutate(ctx, actor, tenantID, id, mutation{
		op:    models.OpFileAppeal,
		perm:  access.FileAppeal,
		event: audit.EventAppealFiled,
		apply: func(req *models.InformationRequest) (*models.InformationRequest, error) {
			return s.engine.FileAppeal(req, description, now)
		},
	})
}

// ResolveAppeal answers a pending appeal.
func (s *Service) ResolveAppeal(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, text string, now time.Time) (*models.InformationRequest, error) {
	return s.mutate(ctx, actor, tenantID, id, mutation{
		op:    models.OpResolveAppeal,
		perm:  access.ResolveAppeal,
		event: audit.EventAppealResolved,
		apply: func(req *models.InformationRequest) (*models.InformationRequest, error) {
			return s.engine.ResolveAppeal(req, text, now)
		},
	})
}

func (s *Service) Close(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, now time.Time) (*models.InformationRequest, error) {
	return s.mutate(ctx, actor, tenantID, id, mutation{
		op:    models.OpClose,
		perm:  access.CloseRequest,
		event: audit.EventRequestClosed,
		apply: func(req *models.InformationRequest) (*models.InformationRequest, error) {
			return s.engine.Close(req, now)
		},
	})
}

// SetVisibility publishes or withdraws a request from public search.
func (s *Service) SetVisibility(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, public bool, now time.Time) (*models.InformationRequest, error) {
	return s.mutate(ctx, actor, tenantID, id, mutation{
		op:    "set_visibility",
		perm:  access.PublishRequest,
		event: audit.EventVisibilityChanged,
		apply: func(req *models.InformationRequest) (*models.InformationRequest, error) {
			return s.engine.SetVisibility(req, public, now)
		},
		write: func(ctx context.Context, _, next *models.InformationRequest) error {
			return s.requests.SetPublic(ctx, next.TenantID, next.ID, next.IsPublic, next.UpdatedAt)
		},
	})
}

// SweepExpired expires every request of tenantID that passed its due date
// without an answer and returns how many changed. Requests that another
// writer moved in the meantime are skipped.
func (s *Service) SweepExpired(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, now time.Time) (int, error) {
	ctx, span := s.startSpan(ctx, "esic.SweepExpired", tenantID)
	defer span.End()

	if err := s.policy.Check(actor, tenantID, access.SweepExpired); err != nil {
		return 0, s.fail(span, err)
	}
	candidates, err := s.requests.ListAwaitingDueBefore(ctx, tenantID, s.calc.DateOf(now))
	if err != nil {
		return 0, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expiry candidates"))
	}

	expired := 0
	for _, req := range candidates {
		next, changed := s.engine.EvaluateExpiry(req, now)
		if !changed {
			continue
		}
		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.requests.UpdateIfStatus(txCtx, next, req.Status); err != nil {
				return err
			}
			return s.emit(txCtx, actor, audit.EventRequestExpired, req, next)
		})
		if errors.Is(err, sentinel.ErrInvalidState) || errors.Is(err, sentinel.ErrNotFound) {
			s.incrementConflict()
			continue
		}
		if err != nil {
			return expired, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to expire request"))
		}
		expired++
	}

	span.SetAttributes(attribute.Int("esic.expired", expired))
	if expired > 0 {
		s.logger.InfoContext(ctx, string(audit.EventRequestExpired),
			"event", audit.EventRequestExpired,
			"log_type", "audit",
			"tenant_id", tenantID,
			"count", expired,
		)
	}
	if s.metrics != nil {
		s.metrics.AddExpired(expired)
	}
	return expired, nil
}

// Deadlines evaluates the derived deadline fields of req at now.
func (s *Service) Deadlines(req *models.InformationRequest, now time.Time) deadline.Deadlines {
	return s.calc.Evaluate(req, now)
}

type mutation struct {
	op    models.Operation
	perm  access.Permission
	event audit.EventType
	apply func(*models.InformationRequest) (*models.InformationRequest, error)
	// write persists next. Nil means a full write guarded by current's status.
	write func(ctx context.Context, current, next *models.InformationRequest) error
}

// mutate loads a request, derives its next state and writes it back only if
// no other writer changed its status in between.
func (s *Service) mutate(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RequestID, m mutation) (*models.InformationRequest, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "esic."+string(m.op), tenantID)
	defer span.End()

	if err := s.policy.Check(actor, tenantID, m.perm); err != nil {
		return nil, s.fail(span, err)
	}

	var updated *models.InformationRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.requests.FindByID(txCtx, tenantID, id)
		if err != nil {
			return wrapStoreErr(err, "failed to load request")
		}
		next, err := m.apply(current)
		if err != nil {
			return err
		}
		write := m.write
		if write == nil {
			write = func(ctx context.Context, current, next *models.InformationRequest) error {
				return s.requests.UpdateIfStatus(ctx, next, current.Status)
			}
		}
		if err := write(txCtx, current, next); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				s.incrementConflict()
				return dErrors.New(dErrors.CodeConflict, "request was modified concurrently")
			}
			return wrapStoreErr(err, "failed to update request")
		}
		if err := s.emit(txCtx, actor, m.event, current, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "request operation rejected",
			"operation", m.op,
			"tenant_id", tenantID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, s.fail(span, err)
	}

	if s.metrics != nil {
		s.metrics.IncrementTransition(string(m.op))
		s.metrics.ObserveTransition(string(m.op), start)
	}
	return updated, nil
}

func (s *Service) emit(ctx context.Context, actor domain.Actor, eventType audit.EventType, from, to *models.InformationRequest) error {
	if s.auditPublisher == nil {
		return nil
	}
	event := audit.Event{
		Type:        eventType,
		TenantID:    to.TenantID,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		AggregateID: to.ID.String(),
		Protocol:    to.Protocol,
		ToStatus:    string(to.Status),
		RequestID:   requestcontext.RequestID(ctx),
	}
	if from != nil {
		event.FromStatus = string(from.Status)
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, tenantID domain.TenantID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.Int64("tenant.id", int64(tenantID))))
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}

func (s *Service) incrementConflict() {
	if s.metrics != nil {
		s.metrics.IncrementConflict()
	}
}

func wrapStoreErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "request not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "protocol already in use")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
