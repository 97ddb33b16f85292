// Package metrics exposes the daemon's Prometheus instrumentation. All
// methods are nil-safe so the pipeline can run without a collector wired in,
// which keeps tests and the CLI free of registry setup.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline holds the collectors for the ingestion pipeline.
type Pipeline struct {
	registry *prometheus.Registry

	stepDuration *prometheus.HistogramVec
	jobsInFlight prometheus.Gauge
	queueDepth   prometheus.Gauge
	jobsTotal    *prometheus.CounterVec
}

// New registers the pipeline collectors on a fresh registry.
func New() *Pipeline {
	registry := prometheus.NewRegistry()
	p := &Pipeline{
		registry: registry,
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reelforge",
			Name:      "step_duration_seconds",
			Help:      "Wall-clock duration of pipeline steps.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"step", "outcome"}),
		jobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reelforge",
			Name:      "jobs_in_flight",
			Help:      "Jobs currently holding an admission slot.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reelforge",
			Name:      "admission_queue_depth",
			Help:      "Submissions waiting for an admission slot.",
		}),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reelforge",
			Name:      "jobs_total",
			Help:      "Finished jobs by terminal status.",
		}, []string{"status"}),
	}
	registry.MustRegister(p.stepDuration, p.jobsInFlight, p.queueDepth, p.jobsTotal)
	return p
}

// Handler serves the registry in Prometheus exposition format.
func (p *Pipeline) Handler() http.Handler {
	if p == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// ObserveStep records one step execution.
func (p *Pipeline) ObserveStep(step, outcome string, d time.Duration) {
	if p == nil {
		return
	}
	p.stepDuration.WithLabelValues(step, outcome).Observe(d.Seconds())
}

// JobFinished counts one terminal job status.
func (p *Pipeline) JobFinished(status string) {
	if p == nil {
		return
	}
	p.jobsTotal.WithLabelValues(status).Inc()
}

// SetInFlight publishes the current admitted-job count.
func (p *Pipeline) SetInFlight(n int) {
	if p == nil {
		return
	}
	p.jobsInFlight.Set(float64(n))
}

// SetQueueDepth publishes the current waiter count.
func (p *Pipeline) SetQueueDepth(n int) {
	if p == nil {
		return
	}
	p.queueDepth.Set(float64(n))
}
