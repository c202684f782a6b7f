package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"transparency/internal/access"
	"transparency/internal/audit"
	"transparency/internal/audit/outbox"
	"transparency/internal/finance/metrics"
	"transparency/internal/finance/models"
	"transparency/internal/finance/store/record"
	"transparency/internal/reporting"
	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
)

type FinanceServiceSuite struct {
	suite.Suite
	outbox  *outbox.Memory
	metrics *metrics.Metrics
	service *Service
	ctx     context.Context
	now     time.Time
	manager domain.Actor
	viewer  domain.Actor
}

func TestFinanceServiceSuite(t *testing.T) {
	suite.Run(t, new(FinanceServiceSuite))
}

func (s *FinanceServiceSuite) SetupTest() {
	policy, err := access.NewPolicy()
	s.Require().NoError(err)
	s.outbox = outbox.NewMemory()
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.service = New(record.NewInMemory(), policy,
		WithAuditPublisher(audit.NewPublisher(s.outbox)),
		WithMetrics(s.metrics),
	)
	s.ctx = context.Background()
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.manager = domain.Actor{ID: 1, Role: domain.RoleManager, TenantID: 5}
	s.viewer = domain.Actor{ID: 2, Role: domain.RoleViewer, TenantID: 5}
}

func (s *FinanceServiceSuite) create(kind models.Kind, category, amount string, year, month int) *models.Record {
	r, err := s.service.Create(s.ctx, s.manager, 5, models.NewRecordInput{
		Kind:        kind,
		Category:    category,
		Description: "ledger entry",
		Amount:      decimal.RequireFromString(amount),
		Year:        year,
		Month:       month,
	}, s.now)
	s.Require().NoError(err)
	return r
}

func (s *FinanceServiceSuite) TestCreate() {
	s.Run("stores the record and appends an audit entry", func() {
		r := s.create(models.KindRevenue, "taxes", "1500.75", 2024, 5)
		s.Equal(domain.TenantID(5), r.TenantID)

		got, err := s.service.Get(s.ctx, s.viewer, 5, r.ID)
		s.Require().NoError(err)
		s.True(got.Amount.Equal(r.Amount))

		pending, err := s.outbox.FetchPending(s.ctx, 10)
		s.Require().NoError(err)
		s.Require().Len(pending, 1)
		s.Equal(string(audit.EventFinanceRecordAdded), pending[0].EventType)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RecordsCreated.WithLabelValues("revenue")))
	})

	s.Run("tenant in the input is ignored in favour of the route", func() {
		r, err := s.service.Create(s.ctx, s.manager, 5, models.NewRecordInput{
			TenantID:    99,
			Kind:        models.KindExpense,
			Category:    "materials",
			Description: "paper",
			Amount:      decimal.NewFromInt(10),
			Year:        2024,
			Month:       1,
		}, s.now)
		s.Require().NoError(err)
		s.Equal(domain.TenantID(5), r.TenantID)
	})

	s.Run("viewer may not write", func() {
		_, err := s.service.Create(s.ctx, s.viewer, 5, models.NewRecordInput{}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("category must match the kind", func() {
		_, err := s.service.Create(s.ctx, s.manager, 5, models.NewRecordInput{
			Kind:        models.KindRevenue,
			Category:    "personnel",
			Description: "salaries",
			Amount:      decimal.NewFromInt(1),
			Year:        2024,
			Month:       1,
		}, s.now)
		s.Equal("category", dErrors.FieldOf(err))
	})
}

func (s *FinanceServiceSuite) TestListAndSummary() {
	s.create(models.KindRevenue, "taxes", "1000.10", 2024, 1)
	s.create(models.KindRevenue, "transfers", "500.20", 2024, 2)
	s.create(models.KindExpense, "personnel", "700.05", 2024, 1)
	s.create(models.KindExpense, "materials", "99.99", 2023, 12)

	s.Run("list by kind", func() {
		kind := models.KindExpense
		items, err := s.service.List(s.ctx, s.viewer, 5, models.ListFilter{Kind: &kind})
		s.Require().NoError(err)
		s.Len(items, 2)
	})

	s.Run("list rejects invalid month", func() {
		month := 13
		_, err := s.service.List(s.ctx, s.viewer, 5, models.ListFilter{Month: &month})
		s.Equal("month", dErrors.FieldOf(err))
	})

	s.Run("summary for one year", func() {
		year := 2024
		summary, err := s.service.Summary(s.ctx, s.viewer, 5, reporting.SummaryFilter{Year: &year})
		s.Require().NoError(err)
		s.Equal("1500.3", summary.Revenue.Total.String())
		s.Equal("700.05", summary.Expense.Total.String())
		s.Equal("800.25", summary.Balance.String())
		s.Equal(2, summary.Revenue.Count)
		s.Equal("1000.1", summary.Revenue.ByMonth[1].String())
	})

	s.Run("summary across years", func() {
		summary, err := s.service.Summary(s.ctx, s.viewer, 5, reporting.SummaryFilter{})
		s.Require().NoError(err)
		s.Equal("800.04", summary.Expense.Total.String())
	})

	s.Run("other tenant is denied", func() {
		_, err := s.service.Summary(s.ctx, domain.Actor{ID: 3, Role: domain.RoleAdmin, TenantID: 6}, 5, reporting.SummaryFilter{})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
