package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the financial records module.
type Metrics struct {
	RecordsCreated  *prometheus.CounterVec
	SummaryDuration prometheus.Histogram
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transparency_finance_records_created_total",
			Help: "Financial records created, by kind",
		}, []string{"kind"}),
		SummaryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "transparency_finance_summary_duration_seconds",
			Help:    "Duration of financial summary aggregation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementCreated(kind string) {
	m.RecordsCreated.WithLabelValues(kind).Inc()
}

// ObserveSummary records the duration of a Summary operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSummary(start time.Time) {
	m.SummaryDuration.Observe(time.Since(start).Seconds())
}
