package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"transparency/internal/access"
	"transparency/internal/audit"
	"transparency/internal/finance/metrics"
	"transparency/internal/finance/models"
	"transparency/internal/reporting"
	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
	"transparency/pkg/platform/sentinel"
	"transparency/pkg/platform/tx"
	"transparency/pkg/requestcontext"
)

type RecordStore interface {
	Create(ctx context.Context, r *models.Record) error
	FindByID(ctx context.Context, tenantID domain.TenantID, id domain.RecordID) (*models.Record, error)
	List(ctx context.Context, tenantID domain.TenantID, filter models.ListFilter) ([]*models.Record, error)
	AllByTenant(ctx context.Context, tenantID domain.TenantID, year *int) ([]*models.Record, error)
}

type Authorizer interface {
	Check(actor domain.Actor, target domain.TenantID, perm access.Permission) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service manages a tenant's revenue and expense records.
type Service struct {
	records        RecordStore
	policy         Authorizer
	tx             TxRunner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

func New(records RecordStore, policy Authorizer, opts ...Option) *Service {
	s := &Service{
		records: records,
		policy:  policy,
		tx:      tx.Passthrough{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a record under tenantID.
func (s *Service) Create(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, in models.NewRecordInput, now time.Time) (*models.Record, error) {
	if err := s.policy.Check(actor, tenantID, access.WriteFinance); err != nil {
		return nil, err
	}
	in.TenantID = tenantID
	record, err := models.NewRecord(domain.NewRecordID(), in, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.records.Create(txCtx, record); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "record already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create financial record")
		}
		if s.auditPublisher == nil {
			return nil
		}
		if err := s.auditPublisher.Emit(txCtx, audit.Event{
			Type:        audit.EventFinanceRecordAdded,
			TenantID:    tenantID,
			ActorID:     actor.ID,
			ActorRole:   actor.Role,
			AggregateID: record.ID.String(),
			RequestID:   requestcontext.RequestID(txCtx),
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, string(audit.EventFinanceRecordAdded),
		"event", audit.EventFinanceRecordAdded,
		"log_type", "audit",
		"tenant_id", tenantID,
		"kind", record.Kind,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated(string(record.Kind))
	}
	return record, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, id domain.RecordID) (*models.Record, error) {
	if err := s.policy.Check(actor, tenantID, access.ReadFinance); err != nil {
		return nil, err
	}
	r, err := s.records.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "financial record not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load financial record")
	}
	return r, nil
}

// List returns one page of records matching filter.
func (s *Service) List(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, filter models.ListFilter) ([]*models.Record, error) {
	if err := s.policy.Check(actor, tenantID, access.ReadFinance); err != nil {
		return nil, err
	}
	if filter.Month != nil && (*filter.Month < 1 || *filter.Month > 12) {
		return nil, dErrors.Field("month", "month must be between 1 and 12")
	}
	items, err := s.records.List(ctx, tenantID, filter.Normalize())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list financial records")
	}
	return items, nil
}

// Summary totals revenue and expense for the tenant, optionally for one year.
func (s *Service) Summary(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, filter reporting.SummaryFilter) (reporting.FinanceSummary, error) {
	start := time.Now()
	if err := s.policy.Check(actor, tenantID, access.ReadFinance); err != nil {
		return reporting.FinanceSummary{}, err
	}
	records, err := s.records.AllByTenant(ctx, tenantID, filter.Year)
	if err != nil {
		return reporting.FinanceSummary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load financial records")
	}
	revenues, expenses := reporting.SplitByKind(records)
	summary := reporting.FinancialSummary(revenues, expenses, filter)
	if s.metrics != nil {
		s.metrics.ObserveSummary(start)
	}
	return summary, nil
}
