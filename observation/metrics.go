package observation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the work done by a Runtime. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// notifications counts delivered notifications.
	// Labels: kind (value, collection)
	notifications *prometheus.CounterVec

	// effectRuns counts effect executions.
	// Labels: outcome (ok, error, recursion)
	effectRuns *prometheus.CounterVec

	// effectDuration measures how long one effect execution takes.
	effectDuration prometheus.Histogram

	// batchFlushes counts outermost batches flushed.
	batchFlushes prometheus.Counter

	// subscriptions tracks the dependencies held by connectables.
	subscriptions prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg. A nil reg
// creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "observe",
			Subsystem: "observation",
			Name:      "notifications_total",
			Help:      "Total change notifications delivered to subscribers",
		}, []string{"kind"}),
		effectRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "observe",
			Subsystem: "effect",
			Name:      "runs_total",
			Help:      "Total effect executions by outcome",
		}, []string{"outcome"}),
		effectDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "observe",
			Subsystem: "effect",
			Name:      "run_duration_seconds",
			Help:      "Duration of a single effect execution",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		batchFlushes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "observe",
			Subsystem: "batch",
			Name:      "flushes_total",
			Help:      "Total batches flushed",
		}),
		subscriptions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "observe",
			Subsystem: "observation",
			Name:      "subscriptions",
			Help:      "Dependencies currently held by connectables",
		}),
	}
}

func (m *Metrics) notified(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) effectRan(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.effectRuns.WithLabelValues(outcome).Inc()
	m.effectDuration.Observe(seconds)
}

func (m *Metrics) batchFlushed() {
	if m == nil {
		return
	}
	m.batchFlushes.Inc()
}

func (m *Metrics) subscribed(delta float64) {
	if m == nil || delta == 0 {
		return
	}
	m.subscriptions.Add(delta)
}
