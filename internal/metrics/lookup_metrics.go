package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LookupMetrics records outbound catalog traffic and decklist resolution outcomes.
// A nil *LookupMetrics is valid and records nothing.
type LookupMetrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	retries   *prometheus.CounterVec
	resolved  *prometheus.CounterVec
	throttled prometheus.Histogram
}

// NewLookupMetrics registers the lookup metrics on the provided registerer.
func NewLookupMetrics(reg prometheus.Registerer) *LookupMetrics {
	if reg == nil {
		return &LookupMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Outbound catalog requests by endpoint and HTTP status (0 for network errors).",
	}, []string{"endpoint", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Duration of outbound catalog requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_request_retries_total",
		Help: "Catalog request retries by endpoint.",
	}, []string{"endpoint"})
	resolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "decklist_entries_resolved_total",
		Help: "Decklist entries by resolution tier (batch, fuzzy, language, any, not_found).",
	}, []string{"tier"})
	throttled := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_throttle_wait_seconds",
		Help:    "Time spent waiting on the client-side rate limiter.",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
	reg.MustRegister(requests, latency, retries, resolved, throttled)
	return &LookupMetrics{
		requests:  requests,
		latency:   latency,
		retries:   retries,
		resolved:  resolved,
		throttled: throttled,
	}
}

// ObserveRequest records one completed HTTP attempt.
func (m *LookupMetrics) ObserveRequest(endpoint string, status int, duration time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	m.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncRetry increments the retry counter for the endpoint.
func (m *LookupMetrics) IncRetry(endpoint string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

// ObserveThrottle records time spent blocked on the rate limiter.
func (m *LookupMetrics) ObserveThrottle(wait time.Duration) {
	if m == nil || m.throttled == nil {
		return
	}
	m.throttled.Observe(wait.Seconds())
}

// IncResolved increments the counter for the tier that resolved an entry.
func (m *LookupMetrics) IncResolved(tier string) {
	if m == nil || m.resolved == nil {
		return
	}
	m.resolved.WithLabelValues(normalizeLabel(tier)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
