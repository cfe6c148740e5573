package momento

import (
	"time"

	"github.com/pior/momento/wire"
)

// CollectionTTL decides the TTL applied by a collection write.
//
// TTL zero means the client default. Refresh resets the TTL of an existing
// collection; without it the TTL is only set when the write creates the
// collection.
type CollectionTTL struct {
	TTL     time.Duration
	Refresh bool
}

// DefaultCollectionTTL uses the client TTL and refreshes it on every write.
var DefaultCollectionTTL = CollectionTTL{Refresh: true}

// RefreshOnUpdate sets ttl and refreshes it on every write.
func RefreshOnUpdate(ttl time.Duration) CollectionTTL {
	return CollectionTTL{TTL: ttl, Refresh: true}
}

// InitializeOnly sets ttl when the collection is created and leaves it
// untouched afterwards.
func InitializeOnly(ttl time.Duration) CollectionTTL {
	return CollectionTTL{TTL: ttl, Refresh: false}
}

// RefreshIfProvided refreshes the TTL only when ttl is set, otherwise it
// behaves like InitializeOnly with the client default.
func RefreshIfProvided(ttl time.Duration) CollectionTTL {
	return CollectionTTL{TTL: ttl, Refresh: ttl > 0}
}

func (c CollectionTTL) toWire(defaultTTL time.Duration) (wire.CollectionTTL, error) {
	if err := validateTTL(c.TTL); err != nil {
		return wire.CollectionTTL{}, err
	}
	ttl := c.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	return wire.CollectionTTL{TTLMillis: ttlMillis(ttl), Refresh: c.Refresh}, nil
}
