package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the export service.
type Metrics struct {
	PreviewFetchTotal    *prometheus.CounterVec
	PreviewCacheHitTotal prometheus.Counter
	ExportTotal          *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered on a
// private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		PreviewFetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimove_preview_fetch_total",
				Help: "Total number of preview HTML fetches by result",
			},
			[]string{"result"},
		),
		PreviewCacheHitTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "optimove_preview_cache_hits_total",
				Help: "Total number of preview requests served from cache",
			},
		),
		ExportTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimove_export_total",
				Help: "Total number of template export attempts by status",
			},
			[]string{"status"},
		),
		registry: reg,
	}

	reg.MustRegister(m.PreviewFetchTotal, m.PreviewCacheHitTotal, m.ExportTotal)

	return m
}

// Handler returns the HTTP handler serving the registry in Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
