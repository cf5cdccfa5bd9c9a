// Package metrics exposes Prometheus instrumentation for the judge service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Name:      "evaluations_total",
		Help:      "Evaluations by language and final status.",
	}, []string{"language", "status"})

	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "judge",
		Name:      "evaluation_duration_seconds",
		Help:      "Wall time of one evaluation, acquisition included.",
		Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"language"})

	batchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "judge",
		Name:      "batch_size",
		Help:      "Number of cases per optimized batch.",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
	}, []string{"language"})

	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "judge",
		Name:      "batch_duration_seconds",
		Help:      "Wall time of one optimized batch.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"language"})

	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Name:      "verdict_cache_events_total",
		Help:      "Verdict cache hits and misses.",
	}, []string{"event"})
)

// ObserveEvaluation records one finished evaluation.
func ObserveEvaluation(language, status string, d time.Duration) {
	evaluations.WithLabelValues(language, status).Inc()
	evaluationDuration.WithLabelValues(language).Observe(d.Seconds())
}

// ObserveBatch records one finished optimized batch.
func ObserveBatch(language string, size int, d time.Duration) {
	batchSize.WithLabelValues(language).Observe(float64(size))
	batchDuration.WithLabelValues(language).Observe(d.Seconds())
}

// ObserveCache records a verdict cache hit or miss.
func ObserveCache(hit bool) {
	if hit {
		cacheHits.WithLabelValues("hit").Inc()
	} else {
		cacheHits.WithLabelValues("miss").Inc()
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
