package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for metadata routing and propagation.
type Metrics struct {
	// Operations by name, owning store and outcome
	Operations *prometheus.CounterVec

	// Operation latency by name and owning store
	Latency *prometheus.HistogramVec

	// Parent collections re-aggregated after a leaf write, by key
	Propagations *prometheus.CounterVec

	// Counter corrections issued during size corrections, by counter kind
	CounterAdjustments *prometheus.CounterVec
}

// New creates a Metrics instance registered against reg. Passing nil
// registers nothing, which keeps repeated construction in tests safe.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "didmeta_operations_total",
			Help: "Total metadata operations by operation, store and outcome",
		}, []string{"operation", "store", "outcome"}),

		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "didmeta_operation_duration_seconds",
			Help:    "Duration of metadata operations by operation and store",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation", "store"}),

		Propagations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "didmeta_propagations_total",
			Help: "Parent collections re-aggregated after a leaf attribute changed",
		}, []string{"key"}),

		CounterAdjustments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "didmeta_counter_adjustments_total",
			Help: "Usage counter corrections issued by size corrections",
		}, []string{"counter"}), // counter: "account", "rse"
	}
}

// ObserveOperation records the outcome and latency of one operation.
func (m *Metrics) ObserveOperation(operation, store string, start time.Time, err error) {
	if m == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	m.Operations.WithLabelValues(operation, store, outcome).Inc()
	m.Latency.WithLabelValues(operation, store).Observe(time.Since(start).Seconds())
}

// AddPropagations records how many parents were re-aggregated for key.
func (m *Metrics) AddPropagations(key string, parents int) {
	if m != nil && parents > 0 {
		m.Propagations.WithLabelValues(key).Add(float64(parents))
	}
}

// IncrementCounterAdjustment records one decrease/increase pair on a counter.
func (m *Metrics) IncrementCounterAdjustment(counter string) {
	if m != nil {
		m.CounterAdjustments.WithLabelValues(counter).Inc()
	}
}
