package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected      prometheus.Counter
	StoreFailures prometheus.Counter
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "transparency_ratelimit_rejected_total",
			Help: "Total number of anonymous requests rejected by the rate limiter",
		}),
		StoreFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "transparency_ratelimit_store_failures_total",
			Help: "Total number of rate limit checks that failed open",
		}),
	}
}

func (m *Metrics) IncrementRejected() {
	m.Rejected.Inc()
}

func (m *Metrics) IncrementStoreFailures() {
	m.StoreFailures.Inc()
}
