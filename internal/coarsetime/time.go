// Package coarsetime keeps a clock that is refreshed every 50ms by a
// background goroutine. Reading it is far cheaper than time.Now(), which
// matters on per-call paths such as channel bookkeeping.
package coarsetime

import (
	"sync/atomic"
	"time"
)

const tick = 50 * time.Millisecond

var nanos atomic.Int64

func init() {
	nanos.Store(time.Now().UnixNano())

	ticker := time.NewTicker(tick)
	go func() {
		for t := range ticker.C {
			nanos.Store(t.UnixNano())
		}
	}()
}

// UnixNano returns the coarse clock as nanoseconds since the epoch.
func UnixNano() int64 {
	return nanos.Load()
}

func Now() time.Time {
	return time.Unix(0, nanos.Load())
}

// Since reports the time elapsed since the given coarse timestamp.
// The result is never negative.
func Since(unixNano int64) time.Duration {
	d := time.Duration(nanos.Load() - unixNano)
	if d < 0 {
		return 0
	}
	return d
}
