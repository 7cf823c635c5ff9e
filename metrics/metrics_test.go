package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("set", "hardcoded", time.Now(), nil)
	m.ObserveOperation("set", "hardcoded", time.Now(), errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("set", "hardcoded", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("set", "hardcoded", "error")))
}

func TestMetrics_Propagations(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AddPropagations("bytes", 3)
	m.AddPropagations("bytes", 0)
	m.IncrementCounterAdjustment("account")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Propagations.WithLabelValues("bytes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterAdjustments.WithLabelValues("account")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveOperation("get", "generic", time.Now(), nil)
		m.AddPropagations("events", 1)
		m.IncrementCounterAdjustment("rse")
	})
}
