package coarsetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowAdvances(t *testing.T) {
	first := UnixNano()
	assert.Eventually(t, func() bool {
		return UnixNano() > first
	}, time.Second, 10*time.Millisecond)
}

func TestNowCloseToWallClock(t *testing.T) {
	assert.WithinDuration(t, time.Now(), Now(), 2*tick)
}

func TestSinceNeverNegative(t *testing.T) {
	assert.Equal(t, time.Duration(0), Since(UnixNano()+int64(time.Hour)))
	assert.GreaterOrEqual(t, Since(UnixNano()-int64(time.Second)), time.Second)
}

// BenchmarkTimeNow/time-8         	35926340	         32.82 ns/op	       0 B/op	       0 allocs/op
// BenchmarkTimeNow/coarsetime-8   	609668066	         1.950 ns/op	       0 B/op	       0 allocs/op
func BenchmarkTimeNow(b *testing.B) {
	var t int64

	b.Run("time", func(b *testing.B) {
		for b.Loop() {
			t = time.Now().UnixNano()
		}
	})

	b.Run("coarsetime", func(b *testing.B) {
		for b.Loop() {
			t = UnixNano()
		}
	})

	_ = t
}
