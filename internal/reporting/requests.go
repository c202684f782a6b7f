package reporting

import (
	"fmt"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"

	"transparency/internal/esic/models"
)

// Calendar reduces instants to reference-zone dates and answers the overdue
// question. deadline.Calculator satisfies it.
type Calendar interface {
	DateOf(t time.Time) civil.Date
	IsOverdue(req *models.InformationRequest, now time.Time) bool
}

// StatsFilter restricts statistics to requests filed in Year when set.
type StatsFilter struct {
	Year *int
}

// RequestStats is a computed snapshot over a tenant's requests.
type RequestStats struct {
	Total    int `json:"total_requests"`
	Open     int `json:"open_requests"`
	Closed   int `json:"closed_requests"`
	Answered int `json:"answered_requests"`
	Appealed int `json:"appealed_requests"`
	Overdue  int `json:"overdue_requests"`

	// AverageResponseDays is nil when no request in the set has a response.
	AverageResponseDays *decimal.Decimal `json:"average_response_time_days"`
	ResponseRate        decimal.Decimal  `json:"response_rate"`
	AppealRate          decimal.Decimal  `json:"appeal_rate"`

	ByMonth    map[string]int          `json:"requests_by_month"`
	ByStatus   map[models.Status]int   `json:"requests_by_status"`
	ByCategory map[models.Category]int `json:"requests_by_category"`
}

var (
	secondsPerDay = decimal.NewFromInt(24 * 60 * 60)
	hundred       = decimal.NewFromInt(100)
)

// RequestStatistics summarizes requests as of now.
//
// Open counts requests that never received a response and were not closed.
// Average response time is elapsed wall-clock time between filing and first
// response, in 86400-second days, rounded half-to-even to one decimal.
// Month keys are the YYYY-MM of the filing date in the calendar's zone.
func RequestStatistics(requests []*models.InformationRequest, filter StatsFilter, cal Calendar, now time.Time) RequestStats {
	if filter.Year != nil {
		year := *filter.Year
		requests = Filter(requests, func(r *models.InformationRequest) bool {
			return cal.DateOf(r.RequestedAt).Year == year
		})
	}

	count := CountOnly[*models.InformationRequest]
	byStatus := GroupBy(requests, func(r *models.InformationRequest) models.Status { return r.Status }, count)
	byCategory := GroupBy(requests, func(r *models.InformationRequest) models.Category { return r.Category }, count)
	byMonth := GroupBy(requests, func(r *models.InformationRequest) string {
		return monthKey(cal.DateOf(r.RequestedAt))
	}, count)

	answered := Filter(requests, (*models.InformationRequest).HasResponse)
	responseTime := Summarize(answered, responseDays)

	stats := RequestStats{
		Total:      len(requests),
		Closed:     byStatus[models.StatusClosed].Count,
		Answered:   len(answered),
		ByMonth:    byMonth.Counts(),
		ByStatus:   byStatus.Counts(),
		ByCategory: byCategory.Counts(),
	}
	for _, r := range requests {
		if !r.HasResponse() && r.Status != models.StatusClosed {
			stats.Open++
		}
		if r.HasAppeal {
			stats.Appealed++
		}
		// An appealed request is past due under IsOverdue but already answered.
		if cal.IsOverdue(r, now) && !r.HasResponse() {
			stats.Overdue++
		}
	}
	if mean, ok := responseTime.Mean(); ok {
		avg := mean.RoundBank(1)
		stats.AverageResponseDays = &avg
	}
	stats.ResponseRate = percentage(stats.Answered, stats.Total)
	stats.AppealRate = percentage(stats.Appealed, stats.Answered)
	return stats
}

func responseDays(r *models.InformationRequest) decimal.Decimal {
	d, _ := r.ResponseDuration()
	return decimal.NewFromInt(d.Milliseconds()).Div(decimal.NewFromInt(1000)).Div(secondsPerDay)
}

func percentage(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole))).RoundBank(1)
}

func monthKey(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}
