package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := NewWith(prometheus.NewRegistry())

	m.IncrementSubmitted()
	m.IncrementSubmitted()
	m.IncrementTransition("respond")
	m.IncrementConflict()
	m.AddExpired(3)
	m.ObserveTransition("respond", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("respond")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Transitions.WithLabelValues("close")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conflicts))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ExpiredSwept))
}
