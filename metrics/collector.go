// Package metrics exports client statistics to Prometheus.
//
// A Collector reads a snapshot of the client on every scrape, so metric
// values never lag the client and nothing runs in the background.
package metrics

import (
	"github.com/pior/momento"
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource is implemented by every momento client.
type StatsSource interface {
	Stats() momento.ClientStats
	EndpointStats() []momento.EndpointStats
}

// Collector is a prometheus.Collector over one client.
type Collector struct {
	client string
	source StatsSource

	operations *prometheus.Desc
	getHits    *prometheus.Desc
	errors     *prometheus.Desc

	channels   *prometheus.Desc
	picks      *prometheus.Desc
	reconnects *prometheus.Desc
	redials    *prometheus.Desc
	oldestIdle *prometheus.Desc

	circuitState    *prometheus.Desc
	circuitRequests *prometheus.Desc
	circuitFailures *prometheus.Desc
}

// NewCollector returns a collector for source; client labels every metric,
// e.g. "cache" or "topics".
func NewCollector(client string, source StatsSource) *Collector {
	clientLabel := prometheus.Labels{"client": client}
	endpointLabels := []string{"endpoint", "target"}

	return &Collector{
		client: client,
		source: source,

		operations: prometheus.NewDesc("momento_operations_total",
			"Operations performed, by kind", []string{"op"}, clientLabel),
		getHits: prometheus.NewDesc("momento_get_hits_total",
			"Get calls that found the key", nil, clientLabel),
		errors: prometheus.NewDesc("momento_errors_total",
			"Failed calls of any kind", nil, clientLabel),

		channels: prometheus.NewDesc("momento_channels",
			"gRPC channels by connectivity state", append(endpointLabels, "state"), clientLabel),
		picks: prometheus.NewDesc("momento_channel_picks_total",
			"Channels handed out for calls", endpointLabels, clientLabel),
		reconnects: prometheus.NewDesc("momento_channel_reconnects_total",
			"Failing channels whose connect backoff was reset", endpointLabels, clientLabel),
		redials: prometheus.NewDesc("momento_channel_redials_total",
			"Shut down channels replaced by a new one", endpointLabels, clientLabel),
		oldestIdle: prometheus.NewDesc("momento_channel_oldest_idle_seconds",
			"Time since the least recently used channel was picked", endpointLabels, clientLabel),

		circuitState: prometheus.NewDesc("momento_circuit_breaker_state",
			"Circuit breaker state (0=closed, 1=half-open, 2=open)", endpointLabels, clientLabel),
		circuitRequests: prometheus.NewDesc("momento_circuit_breaker_requests",
			"Requests counted in the current breaker generation", endpointLabels, clientLabel),
		circuitFailures: prometheus.NewDesc("momento_circuit_breaker_failures",
			"Breaker failure counts", append(endpointLabels, "type"), clientLabel),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.operations
	ch <- c.getHits
	ch <- c.errors
	ch <- c.channels
	ch <- c.picks
	ch <- c.reconnects
	ch <- c.redials
	ch <- c.oldestIdle
	ch <- c.circuitState
	ch <- c.circuitRequests
	ch <- c.circuitFailures
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()

	ops := []struct {
		name  string
		value uint64
	}{
		{"get", s.Gets},
		{"set", s.Sets},
		{"delete", s.Deletes},
		{"increment", s.Increments},
		{"collection_read", s.CollectionReads},
		{"collection_write", s.CollectionWrites},
		{"publish", s.Publishes},
		{"subscribe", s.Subscriptions},
	}
	for _, op := range ops {
		ch <- prometheus.MustNewConstMetric(c.operations, prometheus.CounterValue, float64(op.value), op.name)
	}
	ch <- prometheus.MustNewConstMetric(c.getHits, prometheus.CounterValue, float64(s.GetHits))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(s.Errors))

	for _, e := range c.source.EndpointStats() {
		labels := []string{e.Name, e.Target}
		p := e.PoolStats

		ch <- prometheus.MustNewConstMetric(c.channels, prometheus.GaugeValue, float64(p.Ready), e.Name, e.Target, "ready")
		ch <- prometheus.MustNewConstMetric(c.channels, prometheus.GaugeValue, float64(p.Connecting), e.Name, e.Target, "connecting")
		ch <- prometheus.MustNewConstMetric(c.channels, prometheus.GaugeValue, float64(p.Failing), e.Name, e.Target, "failing")
		ch <- prometheus.MustNewConstMetric(c.picks, prometheus.CounterValue, float64(p.Picks), labels...)
		ch <- prometheus.MustNewConstMetric(c.reconnects, prometheus.CounterValue, float64(p.Reconnects), labels...)
		ch <- prometheus.MustNewConstMetric(c.redials, prometheus.CounterValue, float64(p.Redials), labels...)
		ch <- prometheus.MustNewConstMetric(c.oldestIdle, prometheus.GaugeValue, p.OldestIdle.Seconds(), labels...)

		ch <- prometheus.MustNewConstMetric(c.circuitState, prometheus.GaugeValue, float64(e.CircuitBreakerState), labels...)
		ch <- prometheus.MustNewConstMetric(c.circuitRequests, prometheus.GaugeValue, float64(e.CircuitBreakerCount.Requests), labels...)
		ch <- prometheus.MustNewConstMetric(c.circuitFailures, prometheus.GaugeValue, float64(e.CircuitBreakerCount.TotalFailures), e.Name, e.Target, "total")
		ch <- prometheus.MustNewConstMetric(c.circuitFailures, prometheus.GaugeValue, float64(e.CircuitBreakerCount.ConsecutiveFailures), e.Name, e.Target, "consecutive")
	}
}
