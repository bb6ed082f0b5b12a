// Package metrics bundles the Prometheus instruments for the
// decomposition service. Each Collector owns a private registry, so
// tests can build isolated instances without duplicate-registration
// panics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for resolution metrics.
const (
	OutcomeAccepted  = "accepted"
	OutcomeExhausted = "exhausted"
	OutcomeTransport = "transport_error"
)

// Collector holds the service's Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	Resolutions        *prometheus.CounterVec
	ResolutionDuration *prometheus.HistogramVec
	Generations        *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
}

// NewCollector creates a collector with all metrics registered under the
// given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	resolutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Resolutions by terminal outcome",
		},
		[]string{"outcome"},
	)

	resolutionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Wall time of a full resolution, all attempts included",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	generations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_attempts_total",
			Help:      "Generator calls by client and status",
		},
		[]string{"client", "status"},
	)

	generationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of individual generator calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"client"},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Decomposition cache hits",
		},
	)

	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Decomposition cache misses",
		},
	)

	registry.MustRegister(
		resolutions,
		resolutionDuration,
		generations,
		generationDuration,
		cacheHits,
		cacheMisses,
	)

	return &Collector{
		registry:           registry,
		Resolutions:        resolutions,
		ResolutionDuration: resolutionDuration,
		Generations:        generations,
		GenerationDuration: generationDuration,
		CacheHits:          cacheHits,
		CacheMisses:        cacheMisses,
	}
}

// Handler serves this collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveResolution records one finished resolution.
func (c *Collector) ObserveResolution(outcome string, d time.Duration) {
	c.Resolutions.WithLabelValues(outcome).Inc()
	c.ResolutionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveGeneration records one generator call. It satisfies
// llmclient.GenerationObserver.
func (c *Collector) ObserveGeneration(client string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.Generations.WithLabelValues(client, status).Inc()
	c.GenerationDuration.WithLabelValues(client).Observe(d.Seconds())
}
