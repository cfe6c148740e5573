package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pior/momento"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	stats     momento.ClientStats
	endpoints []momento.EndpointStats
}

func (f *fakeSource) Stats() momento.ClientStats             { return f.stats }
func (f *fakeSource) EndpointStats() []momento.EndpointStats { return f.endpoints }

func newFakeSource() *fakeSource {
	return &fakeSource{
		stats: momento.ClientStats{Gets: 10, GetHits: 7, Sets: 3, Errors: 2},
		endpoints: []momento.EndpointStats{{
			Name:   "cache",
			Target: "cache.example.com:443",
			PoolStats: momento.PoolStats{
				Channels:   2,
				Ready:      1,
				Connecting: 1,
				Picks:      42,
				Reconnects: 1,
				OldestIdle: 1500 * time.Millisecond,
			},
			CircuitBreakerState: gobreaker.StateOpen,
			CircuitBreakerCount: gobreaker.Counts{Requests: 5, TotalFailures: 4, ConsecutiveFailures: 3},
		}},
	}
}

func TestCollectorGather(t *testing.T) {
	exporter := NewExporter()
	require.NoError(t, exporter.Register("cache", newFakeSource()))

	families, err := exporter.Registry().Gather()
	require.NoError(t, err)

	byName := map[string]int{}
	for _, f := range families {
		byName[f.GetName()] = len(f.GetMetric())
	}

	assert.Equal(t, 8, byName["momento_operations_total"])
	assert.Equal(t, 1, byName["momento_get_hits_total"])
	assert.Equal(t, 1, byName["momento_errors_total"])
	assert.Equal(t, 3, byName["momento_channels"])
	assert.Equal(t, 1, byName["momento_channel_picks_total"])
	assert.Equal(t, 1, byName["momento_circuit_breaker_state"])
	assert.Equal(t, 2, byName["momento_circuit_breaker_failures"])
}

func TestCollectorReadsOnEveryScrape(t *testing.T) {
	source := newFakeSource()
	exporter := NewExporter()
	require.NoError(t, exporter.Register("cache", source))

	source.stats.Errors = 9

	families, err := exporter.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "momento_errors_total" {
			assert.Equal(t, 9.0, f.GetMetric()[0].GetCounter().GetValue())
			return
		}
	}
	t.Fatal("momento_errors_total not gathered")
}

func TestExporterRegisterDuplicate(t *testing.T) {
	exporter := NewExporter()
	require.NoError(t, exporter.Register("cache", newFakeSource()))
	require.Error(t, exporter.Register("cache", newFakeSource()))
	require.NoError(t, exporter.Register("topics", &fakeSource{}))
}

func TestExporterHandler(t *testing.T) {
	exporter := NewExporter()
	require.NoError(t, exporter.Register("cache", newFakeSource()))

	srv := httptest.NewServer(exporter.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `momento_operations_total{client="cache",op="get"} 10`)
	assert.Contains(t, text, `momento_get_hits_total{client="cache"} 7`)
	assert.Contains(t, text, `momento_channels{client="cache",endpoint="cache",state="ready",target="cache.example.com:443"} 1`)
	assert.Contains(t, text, `momento_channel_oldest_idle_seconds{client="cache",endpoint="cache",target="cache.example.com:443"} 1.5`)
	assert.Contains(t, text, `momento_circuit_breaker_state{client="cache",endpoint="cache",target="cache.example.com:443"} 2`)
}
