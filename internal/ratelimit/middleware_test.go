package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"transparency/internal/ratelimit/metrics"
	"transparency/pkg/platform/middleware/metadata"
	httptest "transparency/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (Result, error) {
	return Result{}, errors.New("redis down")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestPerIP(t *testing.T) {
	m := metrics.NewWith(prometheus.NewRegistry())
	quiet := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	limiter := NewLimiter(NewInMemory(), 1, time.Minute, WithLogger(quiet), WithMetrics(m))
	handler := metadata.ClientMetadata(limiter.PerIP(okHandler()))

	from := func(ip string) *http.Request {
		req := httptest.NewRequest(t, http.MethodGet, "/public/tenants/1/esic")
		req.Header.Set("X-Forwarded-For", ip)
		return req
	}

	rr := httptest.DoRequest(handler, from("10.0.0.1"))
	httptest.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = httptest.DoRequest(handler, from("10.0.0.1"))
	httptest.AssertStatus(t, rr, http.StatusTooManyRequests)
	body := httptest.UnmarshalResponse[exceededResponse](t, rr)
	assert.Equal(t, "rate_limit_exceeded", body.Error)
	assert.Positive(t, body.RetryAfter)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Rejected))

	rr = httptest.DoRequest(handler, from("10.0.0.2"))
	httptest.AssertStatus(t, rr, http.StatusOK)

	t.Run("store failure fails open", func(t *testing.T) {
		limiter := NewLimiter(failingStore{}, 1, time.Minute, WithLogger(quiet), WithMetrics(m))
		rr := httptest.DoRequest(metadata.ClientMetadata(limiter.PerIP(okHandler())), from("10.0.0.3"))
		httptest.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreFailures))
	})
}
