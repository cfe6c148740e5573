package transport

import (
	"sync/atomic"
	"time"
)

// Stats is a snapshot of a pool.
//
// For Prometheus integration, expose these as:
//   - Gauges: Channels, Ready, Connecting, Failing
//   - Counters: Picks, Reconnects, Redials
type Stats struct {
	Target     string
	Channels   int
	Ready      int // channels in connectivity.Ready
	Connecting int // channels in Idle or Connecting
	Failing    int // channels in TransientFailure
	Picks      uint64
	Reconnects uint64 // backoff resets on failing channels
	Redials    uint64 // channels replaced after shutdown
	OldestIdle time.Duration
}

type statsCollector struct {
	picks      atomic.Uint64
	reconnects atomic.Uint64
	redials    atomic.Uint64
}

func (c *statsCollector) recordPick() {
	c.picks.Add(1)
}

func (c *statsCollector) recordReconnect() {
	c.reconnects.Add(1)
}

func (c *statsCollector) recordRedial() {
	c.redials.Add(1)
}
