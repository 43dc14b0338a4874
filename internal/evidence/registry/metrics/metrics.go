package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registry lookups.
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Upstream lookup latency by outcome ("ok", error category)
	LookupDuration *prometheus.HistogramVec

	// Stale records served while the registry circuit is open
	FallbackServed prometheus.Counter

	// 1 while the registry circuit is open
	CircuitOpen prometheus.Gauge
}

// New creates a new Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poliza_registry_cache_hits_total",
			Help: "Total vital status lookups served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poliza_registry_cache_misses_total",
			Help: "Total vital status lookups not found in cache",
		}),
		LookupDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poliza_registry_lookup_duration_seconds",
			Help:    "Duration of upstream civil registry lookups",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}),
		FallbackServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poliza_registry_fallback_served_total",
			Help: "Total stale cached records served while the registry circuit was open",
		}),
		CircuitOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "poliza_registry_circuit_open",
			Help: "Whether the civil registry circuit breaker is open (1) or closed (0)",
		}),
	}
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) ObserveLookup(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.LookupDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) RecordFallback() {
	if m == nil {
		return
	}
	m.FallbackServed.Inc()
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitOpen.Set(1)
		return
	}
	m.CircuitOpen.Set(0)
}
