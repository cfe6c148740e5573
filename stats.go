package momento

import (
	"sync/atomic"
	"time"

	"github.com/pior/momento/internal/transport"
	"github.com/sony/gobreaker/v2"
)

// ClientStats contains statistics about client operations.
// All fields are safe for concurrent access.
//
// For Prometheus integration, expose these as:
//   - Counters: Gets, Sets, Deletes, Increments, Errors
//   - Counters: CollectionReads, CollectionWrites, Publishes, Subscriptions
//   - Counter: GetHits (derive hit rate as GetHits/Gets)
type ClientStats struct {
	Gets             uint64 // Get calls, including each key of a GetBatch
	GetHits          uint64 // Get calls that found the key
	Sets             uint64 // Set and SetIf calls, including each item of a SetBatch
	Deletes          uint64
	Increments       uint64
	CollectionReads  uint64 // dictionary, set, list and sorted set reads
	CollectionWrites uint64 // dictionary, set, list and sorted set writes
	Publishes        uint64
	Subscriptions    uint64 // subscribe calls, including resubscriptions
	Errors           uint64 // failed calls of any kind
}

// PoolStats is a snapshot of the gRPC channels to one endpoint.
type PoolStats struct {
	Channels   int
	Ready      int
	Connecting int
	Failing    int
	Picks      uint64
	Reconnects uint64
	Redials    uint64
	OldestIdle time.Duration
}

// EndpointStats contains stats for a single endpoint.
type EndpointStats struct {
	Name                string // "cache", "control", "topics", "leaderboard" or "token"
	Target              string
	PoolStats           PoolStats
	CircuitBreakerState gobreaker.State
	CircuitBreakerCount gobreaker.Counts
}

func poolStatsFrom(s transport.Stats) PoolStats {
	return PoolStats{
		Channels:   s.Channels,
		Ready:      s.Ready,
		Connecting: s.Connecting,
		Failing:    s.Failing,
		Picks:      s.Picks,
		Reconnects: s.Reconnects,
		Redials:    s.Redials,
		OldestIdle: s.OldestIdle,
	}
}

// clientStatsCollector provides internal methods for updating client stats.
type clientStatsCollector struct {
	stats ClientStats
}

func (c *clientStatsCollector) recordGet(found bool) {
	atomic.AddUint64(&c.stats.Gets, 1)
	if found {
		atomic.AddUint64(&c.stats.GetHits, 1)
	}
}

func (c *clientStatsCollector) recordSet() {
	atomic.AddUint64(&c.stats.Sets, 1)
}

func (c *clientStatsCollector) recordDelete() {
	atomic.AddUint64(&c.stats.Deletes, 1)
}

func (c *clientStatsCollector) recordIncrement() {
	atomic.AddUint64(&c.stats.Increments, 1)
}

func (c *clientStatsCollector) recordCollectionRead() {
	atomic.AddUint64(&c.stats.CollectionReads, 1)
}

func (c *clientStatsCollector) recordCollectionWrite() {
	atomic.AddUint64(&c.stats.CollectionWrites, 1)
}

func (c *clientStatsCollector) recordPublish() {
	atomic.AddUint64(&c.stats.Publishes, 1)
}

func (c *clientStatsCollector) recordSubscription() {
	atomic.AddUint64(&c.stats.Subscriptions, 1)
}

func (c *clientStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Gets:             atomic.LoadUint64(&c.stats.Gets),
		GetHits:          atomic.LoadUint64(&c.stats.GetHits),
		Sets:             atomic.LoadUint64(&c.stats.Sets),
		Deletes:          atomic.LoadUint64(&c.stats.Deletes),
		Increments:       atomic.LoadUint64(&c.stats.Increments),
		CollectionReads:  atomic.LoadUint64(&c.stats.CollectionReads),
		CollectionWrites: atomic.LoadUint64(&c.stats.CollectionWrites),
		Publishes:        atomic.LoadUint64(&c.stats.Publishes),
		Subscriptions:    atomic.LoadUint64(&c.stats.Subscriptions),
		Errors:           atomic.LoadUint64(&c.stats.Errors),
	}
}
