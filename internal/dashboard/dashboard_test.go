package dashboard

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transparency/internal/reporting"
	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
	"transparency/pkg/testutil"
)

type statsFunc func(ctx context.Context, filter reporting.StatsFilter) (reporting.RequestStats, error)

func (f statsFunc) Statistics(ctx context.Context, _ domain.Actor, _ domain.TenantID, filter reporting.StatsFilter, _ time.Time) (reporting.RequestStats, error) {
	return f(ctx, filter)
}

type summaryFunc func(ctx context.Context, filter reporting.SummaryFilter) (reporting.FinanceSummary, error)

func (f summaryFunc) Summary(ctx context.Context, _ domain.Actor, _ domain.TenantID, filter reporting.SummaryFilter) (reporting.FinanceSummary, error) {
	return f(ctx, filter)
}

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestBuild(t *testing.T) {
	actor := testutil.Actor(domain.RoleViewer, 4)
	year := 2024

	t.Run("combines both halves", func(t *testing.T) {
		svc := NewService(
			statsFunc(func(_ context.Context, f reporting.StatsFilter) (reporting.RequestStats, error) {
				require.Equal(t, 2024, *f.Year)
				return reporting.RequestStats{Total: 7}, nil
			}),
			summaryFunc(func(_ context.Context, f reporting.SummaryFilter) (reporting.FinanceSummary, error) {
				require.Equal(t, 2024, *f.Year)
				return reporting.FinanceSummary{Balance: decimal.RequireFromString("10.5")}, nil
			}),
		)
		d, err := svc.Build(context.Background(), actor, 4, &year, now)
		require.NoError(t, err)
		assert.Equal(t, domain.TenantID(4), d.TenantID)
		assert.Equal(t, 7, d.Requests.Total)
		assert.Equal(t, "10.5", d.Finance.Balance.String())
		assert.Equal(t, now, d.GeneratedAt)
	})

	t.Run("first failure cancels the other half", func(t *testing.T) {
		svc := NewService(
			statsFunc(func(context.Context, reporting.StatsFilter) (reporting.RequestStats, error) {
				return reporting.RequestStats{}, dErrors.New(dErrors.CodeForbidden, "denied")
			}),
			summaryFunc(func(ctx context.Context, _ reporting.SummaryFilter) (reporting.FinanceSummary, error) {
				<-ctx.Done()
				return reporting.FinanceSummary{}, ctx.Err()
			}),
		)
		_, err := svc.Build(context.Background(), actor, 4, nil, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestHandleDashboard(t *testing.T) {
	svc := NewService(
		statsFunc(func(_ context.Context, f reporting.StatsFilter) (reporting.RequestStats, error) {
			return reporting.RequestStats{Total: 3}, nil
		}),
		summaryFunc(func(context.Context, reporting.SummaryFilter) (reporting.FinanceSummary, error) {
			return reporting.FinanceSummary{}, nil
		}),
	)
	r := chi.NewRouter()
	NewHandler(svc, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Register(r)

	withActor := func(req *http.Request) *http.Request {
		return testutil.WithTime(testutil.WithActor(req, testutil.Actor(domain.RoleViewer, 4)), now)
	}

	rr := testutil.DoJSON(t, r, http.MethodGet, "/tenants/4/dashboard?year=2024", nil, withActor)
	testutil.AssertStatus(t, rr, http.StatusOK)
	body := testutil.UnmarshalResponse[struct {
		Year     int `json:"year"`
		Requests struct {
			Total int `json:"total_requests"`
		} `json:"requests"`
	}](t, rr)
	assert.Equal(t, 2024, body.Year)
	assert.Equal(t, 3, body.Requests.Total)

	rr = testutil.DoJSON(t, r, http.MethodGet, "/tenants/4/dashboard?year=x", nil, withActor)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = testutil.DoJSON(t, r, http.MethodGet, "/tenants/4/dashboard", nil)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}
