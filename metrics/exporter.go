package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter serves the metrics of registered clients on its own registry.
type Exporter struct {
	registry *prometheus.Registry
}

func NewExporter() *Exporter {
	return &Exporter{registry: prometheus.NewRegistry()}
}

// Register adds a client under the given name. Names must be unique.
func (e *Exporter) Register(client string, source StatsSource) error {
	return e.registry.Register(NewCollector(client, source))
}

// Registry returns the underlying registry, e.g. to add process metrics.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns an HTTP handler serving the metrics.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
