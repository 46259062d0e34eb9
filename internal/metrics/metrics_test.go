package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryOp(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.MemoryOp("add", "ok")
	m.MemoryOp("add", "ok")
	m.MemoryOp("delete", "error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.memoryOps.WithLabelValues("add", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.memoryOps.WithLabelValues("delete", "error")))
}

func TestCompletion(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.Completion("anthropic", 120*time.Millisecond, 40, 8, nil)
	m.Completion("anthropic", time.Second, 99, 99, errors.New("rate limited"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("anthropic", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("anthropic", "error")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.completionTokens.WithLabelValues("anthropic", "input")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.completionTokens.WithLabelValues("anthropic", "output")))
}

func TestFallbackAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.Fallback("greeting")
	m.SetStoresCached(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("greeting")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.storesCached))
}

func TestMustNewMetricsReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := MustNewMetrics(reg)
	b := MustNewMetrics(reg)

	a.MemoryOp("add", "ok")
	assert.Equal(t, 1.0, testutil.ToFloat64(b.memoryOps.WithLabelValues("add", "ok")))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "the memory op series plus the cache gauge")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.MemoryOp("add", "ok")
		m.Completion("x", 0, 0, 0, nil)
		m.Fallback("x")
		m.SetStoresCached(1)
	})
}
