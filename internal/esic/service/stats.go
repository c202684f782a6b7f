package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"transparency/internal/access"
	"transparency/internal/reporting"
	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
)

// Statistics aggregates the tenant's requests, optionally for one reference
// year. now decides which requests count as overdue.
func (s *Service) Statistics(ctx context.Context, actor domain.Actor, tenantID domain.TenantID, filter reporting.StatsFilter, now time.Time) (reporting.RequestStats, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "esic.Statistics", tenantID)
	defer span.End()

	if err := s.policy.Check(actor, tenantID, access.ReadReports); err != nil {
		return reporting.RequestStats{}, s.fail(span, err)
	}
	all, err := s.requests.AllByTenant(ctx, tenantID)
	if err != nil {
		return reporting.RequestStats{}, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load requests"))
	}
	stats := reporting.RequestStatistics(all, filter, s.calc, now)
	span.SetAttributes(attribute.Int("esic.total", stats.Total))

	if s.metrics != nil {
		s.metrics.ObserveStats(start)
	}
	return stats, nil
}
