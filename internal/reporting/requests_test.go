package reporting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transparency/internal/esic/deadline"
	"transparency/internal/esic/models"
)

var calc = deadline.New(time.UTC)

func filed(calc *deadline.Calculator, at time.Time, cat models.Category, status models.Status) *models.InformationRequest {
	return &models.InformationRequest{
		Category:    cat,
		Status:      status,
		RequestedAt: at,
		DueDate:     calc.DueDate(at),
	}
}

func answeredAfter(r *models.InformationRequest, d time.Duration) *models.InformationRequest {
	at := r.RequestedAt.Add(d)
	r.RespondedAt = &at
	return r
}

func TestRequestStatisticsScenario(t *testing.T) {
	jan := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)
	requests := []*models.InformationRequest{
		filed(calc, jan, models.CategoryFinancial, models.StatusPending),
		filed(calc, feb, models.CategoryFinancial, models.StatusPending),
		filed(calc, jan, models.CategoryContracts, models.StatusPending),
	}

	stats := RequestStatistics(requests, StatsFilter{}, calc, feb)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, map[models.Category]int{models.CategoryFinancial: 2, models.CategoryContracts: 1}, stats.ByCategory)
	assert.Equal(t, map[string]int{"2024-01": 2, "2024-02": 1}, stats.ByMonth)
	assert.Equal(t, map[models.Status]int{models.StatusPending: 3}, stats.ByStatus)
	assert.Nil(t, stats.AverageResponseDays, "no responses means no average")
	assert.True(t, stats.ResponseRate.IsZero())
}

func TestRequestStatisticsCounts(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)

	appealed := answeredAfter(filed(calc, base, models.CategoryHealth, models.StatusAppealed), 36*time.Hour)
	appealed.HasAppeal = true

	// Response times: 1.0, 3.0 and 1.5 days.
	requests := []*models.InformationRequest{
		filed(calc, base, models.CategoryHealth, models.StatusPending),
		filed(calc, now.AddDate(0, 0, -2), models.CategoryHealth, models.StatusInProgress),
		filed(calc, base, models.CategoryHealth, models.StatusExpired),
		answeredAfter(filed(calc, base, models.CategoryOther, models.StatusAnswered), 24*time.Hour),
		answeredAfter(filed(calc, base, models.CategoryOther, models.StatusClosed), 72*time.Hour),
		appealed,
	}

	stats := RequestStatistics(requests, StatsFilter{}, calc, now)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 3, stats.Open)
	assert.Equal(t, 1, stats.Closed)
	assert.Equal(t, 3, stats.Answered)
	assert.Equal(t, 1, stats.Appealed)
	assert.Equal(t, 2, stats.Overdue, "pending and expired are past due without a response")
	require.NotNil(t, stats.AverageResponseDays)
	assert.Equal(t, "1.8", stats.AverageResponseDays.String())
	assert.Equal(t, "50", stats.ResponseRate.String())
	assert.Equal(t, "33.3", stats.AppealRate.String())

	sum := 0
	for _, n := range stats.ByStatus {
		sum += n
	}
	assert.Equal(t, stats.Total, sum)
}

func TestRequestStatisticsYearFilter(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	zoned := deadline.New(loc)

	// 02:00 UTC on Jan 1 2025 is still Dec 31 2024 in the reference zone.
	edge := time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC)
	requests := []*models.InformationRequest{
		filed(zoned, edge, models.CategoryOther, models.StatusPending),
		filed(zoned, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), models.CategoryOther, models.StatusPending),
	}

	y2024 := 2024
	stats := RequestStatistics(requests, StatsFilter{Year: &y2024}, zoned, edge)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, map[string]int{"2024-12": 1}, stats.ByMonth)

	y2030 := 2030
	empty := RequestStatistics(requests, StatsFilter{Year: &y2030}, zoned, edge)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.ByMonth)
	assert.Nil(t, empty.AverageResponseDays)
	assert.True(t, empty.AppealRate.IsZero())
}

func TestAverageRoundsHalfToEven(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	// 0.25 days rounds to 0.2, not 0.3.
	requests := []*models.InformationRequest{
		answeredAfter(filed(calc, base, models.CategoryOther, models.StatusAnswered), 6*time.Hour),
	}
	stats := RequestStatistics(requests, StatsFilter{}, calc, base)
	require.NotNil(t, stats.AverageResponseDays)
	assert.True(t, stats.AverageResponseDays.Equal(decimal.RequireFromString("0.2")))
}
