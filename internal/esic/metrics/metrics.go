package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics provides observability for the information request module.
// Tracks submissions, lifecycle transitions, write conflicts and sweep results.
type Metrics struct {
	RequestsSubmitted  prometheus.Counter
	Transitions        *prometheus.CounterVec
	Conflicts          prometheus.Counter
	ExpiredSwept       prometheus.Counter
	SubmitDuration     prometheus.Histogram
	TransitionDuration *prometheus.HistogramVec
	StatsDuration      prometheus.Histogram
}

// New creates a new Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on reg. Tests pass a fresh registry to avoid duplicate
// registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "transparency_esic_requests_submitted_total",
			Help: "Total number of information requests submitted",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transparency_esic_transitions_total",
			Help: "Lifecycle transitions applied, by operation",
		}, []string{"operation"}),
		Conflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "transparency_esic_write_conflicts_total",
			Help: "Conditional writes lost to a concurrent update",
		}),
		ExpiredSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "transparency_esic_expired_swept_total",
			Help: "Requests moved to expired by the sweep",
		}),
		SubmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "transparency_esic_submit_duration_seconds",
			Help:    "Duration of Submit operations",
			Buckets: durationBuckets,
		}),
		TransitionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transparency_esic_transition_duration_seconds",
			Help:    "Duration of lifecycle operations, by operation",
			Buckets: durationBuckets,
		}, []string{"operation"}),
		StatsDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "transparency_esic_stats_duration_seconds",
			Help:    "Duration of statistics aggregation",
			Buckets: durationBuckets,
		}),
	}
}

// IncrementSubmitted records a successful submission.
func (m *Metrics) IncrementSubmitted() {
	m.RequestsSubmitted.Inc()
}

// IncrementTransition records a persisted lifecycle transition.
func (m *Metrics) IncrementTransition(op string) {
	m.Transitions.WithLabelValues(op).Inc()
}

func (m *Metrics) IncrementConflict() {
	m.Conflicts.Inc()
}

func (m *Metrics) AddExpired(n int) {
	m.ExpiredSwept.Add(float64(n))
}

// ObserveSubmit records the duration of a Submit operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

// ObserveTransition records the duration of a lifecycle operation.
func (m *Metrics) ObserveTransition(op string, start time.Time) {
	m.TransitionDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveStats(start time.Time) {
	m.StatsDuration.Observe(time.Since(start).Seconds())
}
