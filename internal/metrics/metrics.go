// Package metrics exposes Prometheus collectors for memory writes, completions
// and fallback replies.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "buddy"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	memoryOps          *prometheus.CounterVec
	completions        *prometheus.CounterVec
	completionTokens   *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	fallbacks          *prometheus.CounterVec
	storesCached       prometheus.Gauge
}

// MustNewMetrics creates the collectors and registers them with reg, or with
// the default registerer when reg is nil. Collectors that are already
// registered are reused; any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		memoryOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_operations_total",
			Help:      "Memory store operations by operation and outcome.",
		}, []string{"op", "status"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_requests_total",
			Help:      "Completion requests by provider and outcome.",
		}, []string{"provider", "status"}),
		completionTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_tokens_total",
			Help:      "Tokens billed by the completion provider.",
		}, []string{"provider", "direction"}),
		completionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Latency of completion requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_responses_total",
			Help:      "Canned replies served in fallback mode, by rule.",
		}, []string{"rule"}),
		storesCached: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_stores_cached",
			Help:      "Per-user memory stores currently held in the registry.",
		}),
	}

	m.memoryOps = register(reg, m.memoryOps)
	m.completions = register(reg, m.completions)
	m.completionTokens = register(reg, m.completionTokens)
	m.completionDuration = register(reg, m.completionDuration)
	m.fallbacks = register(reg, m.fallbacks)
	m.storesCached = register(reg, m.storesCached)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// MemoryOp counts one memory store operation. It satisfies memory.Recorder.
func (m *Metrics) MemoryOp(op, status string) {
	if m == nil {
		return
	}
	m.memoryOps.WithLabelValues(op, status).Inc()
}

// Completion records a completion request.
func (m *Metrics) Completion(provider string, d time.Duration, inputTokens, outputTokens int64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.completions.WithLabelValues(provider, status).Inc()
	m.completionDuration.WithLabelValues(provider).Observe(d.Seconds())
	if err == nil {
		m.completionTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
		m.completionTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}

// Fallback counts a canned reply served by rule.
func (m *Metrics) Fallback(rule string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(rule).Inc()
}

// SetStoresCached reports the size of the memory store registry.
func (m *Metrics) SetStoresCached(n int) {
	if m == nil {
		return
	}
	m.storesCached.Set(float64(n))
}
