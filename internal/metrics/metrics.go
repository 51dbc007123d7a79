// Package metrics defines the geosearch Prometheus instrumentation.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// CacheTotal counts cache lookups by namespace and result (hit/miss/error).
	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geosearch",
			Name:      "cache_requests_total",
			Help:      "Cache lookups by namespace and result",
		},
		[]string{"namespace", "result"},
	)

	// CacheInvalidations counts pattern invalidations by namespace.
	CacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geosearch",
			Name:      "cache_invalidations_total",
			Help:      "Cache pattern invalidations by namespace",
		},
		[]string{"namespace"},
	)

	// GeocodeAttempts counts geocode provider calls by provider and outcome
	// (ok/not_found/error).
	GeocodeAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geosearch",
			Name:      "geocode_provider_attempts_total",
			Help:      "Geocode provider calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// WriteEvents counts consumed write-notification events by entity kind.
	WriteEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geosearch",
			Name:      "write_events_total",
			Help:      "Consumed write-notification events by entity kind and op",
		},
		[]string{"kind", "op"},
	)
)

// RegisterCoreMetrics registers the non-HTTP collectors explicitly (no init()).
func RegisterCoreMetrics() {
	prometheus.MustRegister(CacheTotal)
	prometheus.MustRegister(CacheInvalidations)
	prometheus.MustRegister(GeocodeAttempts)
	prometheus.MustRegister(WriteEvents)
}
