// Package metrics exposes roster batch and reconciliation counters in
// Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orgsync"

// Batch result labels.
const (
	ResultProcessed = "processed"
	ResultRejected  = "rejected"
)

// Recorder holds the app's collectors. A nil *Recorder records nothing.
type Recorder struct {
	created      prometheus.Counter
	updated      prometheus.Counter
	recordErrors prometheus.Counter
	batches      *prometheus.CounterVec
	duration     prometheus.Histogram
	resolved     prometheus.Counter
	pending      prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		created: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "employees_created_total",
			Help:      "Employees created by roster batches.",
		}),
		updated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "employees_updated_total",
			Help:      "Employee records updated by roster batches.",
		}),
		recordErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_errors_total",
			Help:      "Per-record problems reported by roster batches.",
		}),
		batches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Roster batches by result (processed or rejected).",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time to process one roster batch.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		resolved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_resolved_total",
			Help:      "Pending manager references resolved by reconciliation.",
		}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_managers",
			Help:      "Employees whose manager reference was unresolved after the last reconciliation.",
		}),
	}
}

// ObserveBatch records a processed batch.
func (r *Recorder) ObserveBatch(created, updated, errs int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.created.Add(float64(created))
	r.updated.Add(float64(updated))
	r.recordErrors.Add(float64(errs))
	r.batches.WithLabelValues(ResultProcessed).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// ObserveRejected records a file that could not be read at all.
func (r *Recorder) ObserveRejected() {
	if r == nil {
		return
	}
	r.batches.WithLabelValues(ResultRejected).Inc()
}

// ObserveReconcile records one reconciliation pass.
func (r *Recorder) ObserveReconcile(resolved, pending int) {
	if r == nil {
		return
	}
	r.resolved.Add(float64(resolved))
	r.pending.Set(float64(pending))
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
