// Package metrics exposes Prometheus collectors for the advisor pipeline.
// A nil *Metrics is valid and records nothing, so components can take it as
// an optional dependency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skillsage"

type Metrics struct {
	registry     *prometheus.Registry
	runs         *prometheus.CounterVec
	confidence   prometheus.Histogram
	passes       prometheus.Histogram
	fallbacks    *prometheus.CounterVec
	degraded     *prometheus.CounterVec
	stageSeconds *prometheus.HistogramVec
	embedCache   *prometheus.CounterVec
	ingested     *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome (ok, draft_failed, error).",
		}, []string{"outcome"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_confidence",
			Help:      "Confidence of returned answers.",
			Buckets:   []float64{0.1, 0.3, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),
		passes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "composer_passes",
			Help:      "Reason/Draft/Refine/Verify passes per answer.",
			Buckets:   []float64{1, 2, 3, 4},
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_fallbacks_total",
			Help:      "Retrievals served by the keyword fallback.",
		}, []string{"kind", "reason"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_degraded_total",
			Help:      "Collaborator calls replaced by a fallback value.",
		}, []string{"op"}),
		stageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		embedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_lookups_total",
			Help:      "Embedding cache lookups by result.",
		}, []string{"result"}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_records_total",
			Help:      "Records written by the ingestion path.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		m.runs, m.confidence, m.passes, m.fallbacks,
		m.degraded, m.stageSeconds, m.embedCache, m.ingested,
	)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RunFinished(outcome string, confidence float64, passes int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.confidence.Observe(confidence)
	if passes > 0 {
		m.passes.Observe(float64(passes))
	}
}

func (m *Metrics) RetrievalFallback(kind, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) Degraded(op string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(op).Inc()
}

func (m *Metrics) StageDuration(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.embedCache.WithLabelValues(result).Inc()
}

func (m *Metrics) Ingested(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ingested.WithLabelValues(kind).Add(float64(n))
}
