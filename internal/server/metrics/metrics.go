// Package metrics exposes receiver counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "classroom_media"

// Metrics holds the receiver counters and the registry they live in.
type Metrics struct {
	Uploads        *prometheus.CounterVec
	UploadFailures *prometheus.CounterVec
	UploadedBytes  prometheus.Counter
	Deletes        *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the counters and registers them, along with the Go runtime
// collector, in a private registry.
func New() *Metrics {
	m := &Metrics{
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "total",
			Help:      "Stored uploads by media type.",
		}, []string{"media_type"}),
		UploadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "failures_total",
			Help:      "Rejected or failed uploads by reason.",
		}, []string{"reason"}),
		UploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "bytes_total",
			Help:      "Bytes written to object storage.",
		}),
		Deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delete",
			Name:      "total",
			Help:      "Delete requests by outcome.",
		}, []string{"outcome"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(collectors.NewGoCollector())
	for _, c := range m.Collectors() {
		m.registry.MustRegister(c)
	}
	return m
}

// Collectors returns the receiver's own collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Uploads, m.UploadFailures, m.UploadedBytes, m.Deletes}
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Uploaded records one stored upload.
func (m *Metrics) Uploaded(mediaType string, size int) {
	m.Uploads.WithLabelValues(mediaType).Inc()
	m.UploadedBytes.Add(float64(size))
}

// UploadFailed records one upload that was not stored.
func (m *Metrics) UploadFailed(reason string) {
	m.UploadFailures.WithLabelValues(reason).Inc()
}

// Deleted records a delete request outcome ("deleted", "not_found", "error").
func (m *Metrics) Deleted(outcome string) {
	m.Deletes.WithLabelValues(outcome).Inc()
}
