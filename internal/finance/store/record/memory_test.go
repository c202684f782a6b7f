package record

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"transparency/internal/finance/models"
	"transparency/pkg/domain"
	"transparency/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) add(tenant domain.TenantID, kind models.Kind, category string, amount string, year, month int) *models.Record {
	r, err := models.NewRecord(domain.NewRecordID(), models.NewRecordInput{
		TenantID:    tenant,
		Kind:        kind,
		Category:    category,
		Description: "entry",
		Amount:      decimal.RequireFromString(amount),
		Year:        year,
		Month:       month,
	}, time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, r))
	return r
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	r := s.add(1, models.KindRevenue, "taxes", "100.50", 2024, 3)

	found, err := s.store.FindByID(s.ctx, 1, r.ID)
	s.Require().NoError(err)
	s.True(found.Amount.Equal(decimal.RequireFromString("100.5")))

	_, err = s.store.FindByID(s.ctx, 2, r.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Create(s.ctx, r), sentinel.ErrAlreadyUsed)
}

func (s *InMemoryStoreSuite) TestListFilters() {
	s.add(1, models.KindRevenue, "taxes", "10", 2023, 12)
	s.add(1, models.KindRevenue, "transfers", "20", 2024, 1)
	s.add(1, models.KindExpense, "personnel", "5", 2024, 1)
	s.add(1, models.KindExpense, "materials", "7", 2024, 2)
	s.add(2, models.KindExpense, "materials", "9", 2024, 2)

	s.Run("tenant scoped and ordered newest period first", func() {
		items, err := s.store.List(s.ctx, 1, models.ListFilter{})
		s.Require().NoError(err)
		s.Require().Len(items, 4)
		s.Equal(2, items[0].Month)
		s.Equal(2023, items[3].Year)
	})

	s.Run("kind, year and month", func() {
		kind := models.KindExpense
		year, month := 2024, 1
		items, err := s.store.List(s.ctx, 1, models.ListFilter{Kind: &kind, Year: &year, Month: &month})
		s.Require().NoError(err)
		s.Require().Len(items, 1)
		s.Equal("personnel", items[0].Category)
	})

	s.Run("category is case-insensitive", func() {
		items, err := s.store.List(s.ctx, 1, models.ListFilter{Category: " Taxes "})
		s.Require().NoError(err)
		s.Len(items, 1)
	})

	s.Run("pagination", func() {
		items, err := s.store.List(s.ctx, 1, models.ListFilter{Limit: 2, Offset: 3})
		s.Require().NoError(err)
		s.Len(items, 1)

		items, err = s.store.List(s.ctx, 1, models.ListFilter{Offset: 10})
		s.Require().NoError(err)
		s.Empty(items)
	})

	s.Run("all by tenant for a year", func() {
		year := 2024
		items, err := s.store.AllByTenant(s.ctx, 1, &year)
		s.Require().NoError(err)
		s.Len(items, 3)

		all, err := s.store.AllByTenant(s.ctx, 1, nil)
		s.Require().NoError(err)
		s.Len(all, 4)
	})
}
