//go:build integration

package record_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"transparency/internal/finance/models"
	"transparency/internal/finance/store/record"
	"transparency/pkg/domain"
	"transparency/pkg/platform/sentinel"
	"transparency/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *record.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = record.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "financial_records"))
}

func (s *PostgresStoreSuite) add(tenant domain.TenantID, kind models.Kind, category, amount string, year, month int) *models.Record {
	r, err := models.NewRecord(domain.NewRecordID(), models.NewRecordInput{
		TenantID:    tenant,
		Kind:        kind,
		Category:    category,
		Description: "entry",
		Amount:      decimal.RequireFromString(amount),
		Year:        year,
		Month:       month,
	}, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, r))
	return r
}

func (s *PostgresStoreSuite) TestAmountsRoundTripExactly() {
	r := s.add(1, models.KindRevenue, "taxes", "1234567890123.45", 2024, 4)

	found, err := s.store.FindByID(s.ctx, 1, r.ID)
	s.Require().NoError(err)
	s.Equal("1234567890123.45", found.Amount.StringFixed(2))
	s.Equal(models.KindRevenue, found.Kind)
	s.Equal(4, found.Month)

	_, err = s.store.FindByID(s.ctx, 2, r.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Create(s.ctx, r), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestListFilters() {
	s.add(1, models.KindRevenue, "taxes", "10.00", 2023, 12)
	s.add(1, models.KindRevenue, "transfers", "20.00", 2024, 1)
	s.add(1, models.KindExpense, "personnel", "5.25", 2024, 1)
	s.add(1, models.KindExpense, "materials", "7.00", 2024, 2)
	s.add(2, models.KindExpense, "materials", "9.00", 2024, 2)

	items, err := s.store.List(s.ctx, 1, models.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(items, 4)
	s.Equal(2, items[0].Month)

	kind := models.KindExpense
	year := 2024
	items, err = s.store.List(s.ctx, 1, models.ListFilter{Kind: &kind, Year: &year, Category: "personnel"})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.True(items[0].Amount.Equal(decimal.RequireFromString("5.25")))

	items, err = s.store.List(s.ctx, 1, models.ListFilter{Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Len(items, 1)

	all, err := s.store.AllByTenant(s.ctx, 1, &year)
	s.Require().NoError(err)
	s.Len(all, 3)
}
