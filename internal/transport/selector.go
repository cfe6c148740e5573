package transport

import "github.com/zeebo/xxh3"

// Selector picks a channel index in [0, n) for a key.
type Selector func(key []byte, n int) int

// JumpSelector spreads keys over channels with Jump Hash on an xxh3 digest.
// A key keeps its channel as long as the channel count does not change.
func JumpSelector(key []byte, n int) int {
	return jumpHash(xxh3.Hash(key), n)
}

// jumpHash is Google's Jump consistent hash (https://arxiv.org/abs/1406.2294),
// after https://github.com/dgryski/go-jump.
func jumpHash(key uint64, buckets int) int {
	if buckets <= 0 {
		return 0
	}

	var b int64 = -1
	var j int64

	for j < int64(buckets) {
		b = j
		key = key*2862933555777941757 + 1
		j = int64(float64(b+1) * (float64(int64(1)<<31) / float64((key>>33)+1)))
	}

	return int(b)
}
