// Package metrics exposes prometheus instrumentation for the core:
// request outcomes and latency, retry counts, token/cost accumulation,
// and completion-cache behaviour.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the metric namespace shared by all collectors.
const Namespace = "aiduino"

// Metrics bundles every collector the core records into. All Record
// methods are safe for concurrent use.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec

	tokensTotal *prometheus.CounterVec
	costTotal   *prometheus.CounterVec

	cacheHitsTotal      *prometheus.CounterVec
	cacheMissesTotal    *prometheus.CounterVec
	cacheEvictionsTotal *prometheus.CounterVec
	cacheEntries        *prometheus.GaugeVec
}

// New creates and registers all collectors with the provided registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "requests_total",
				Help:      "Total provider requests by outcome",
			},
			[]string{"provider", "outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "request_duration_seconds",
				Help:      "Provider request duration in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "retries_total",
				Help:      "Total retry attempts by provider",
			},
			[]string{"provider"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "tokens_total",
				Help:      "Estimated tokens by provider and direction",
			},
			[]string{"provider", "direction"},
		),

		costTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cost_usd_total",
				Help:      "Estimated cost in USD by provider",
			},
			[]string{"provider"},
		),

		cacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cache_hits_total",
				Help:      "Total cache hits",
			},
			[]string{"cache"},
		),

		cacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cache_misses_total",
				Help:      "Total cache misses",
			},
			[]string{"cache"},
		),

		cacheEvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cache_evictions_total",
				Help:      "Total cache evictions",
			},
			[]string{"cache"},
		),

		cacheEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "cache_entries",
				Help:      "Current number of cache entries",
			},
			[]string{"cache"},
		),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.retriesTotal,
		m.tokensTotal,
		m.costTotal,
		m.cacheHitsTotal,
		m.cacheMissesTotal,
		m.cacheEvictionsTotal,
		m.cacheEntries,
	)

	return m
}

// RecordRequest records one finished provider request.
func (m *Metrics) RecordRequest(provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(provider, outcome).Inc()
	m.requestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordRetry records one retry attempt.
func (m *Metrics) RecordRetry(provider string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(provider).Inc()
}

// RecordUsage records estimated tokens and cost for one call.
func (m *Metrics) RecordUsage(provider string, inputTokens, outputTokens int, costUSD float64) {
	if m == nil {
		return
	}
	m.tokensTotal.WithLabelValues(provider, "input").Add(float64(inputTokens))
	m.tokensTotal.WithLabelValues(provider, "output").Add(float64(outputTokens))
	if costUSD > 0 {
		m.costTotal.WithLabelValues(provider).Add(costUSD)
	}
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordCacheEviction records a capacity or TTL eviction.
func (m *Metrics) RecordCacheEviction(cache string) {
	if m == nil {
		return
	}
	m.cacheEvictionsTotal.WithLabelValues(cache).Inc()
}

// SetCacheEntries updates the current entry-count gauge.
func (m *Metrics) SetCacheEntries(cache string, n int) {
	if m == nil {
		return
	}
	m.cacheEntries.WithLabelValues(cache).Set(float64(n))
}
