package momento

import (
	"context"
	"errors"
	"time"

	"github.com/pior/momento/internal/transport"
	"github.com/pior/momento/wire"
	"github.com/rs/zerolog"
)

// CacheClient performs cache operations: control plane calls (create,
// delete, list and flush caches) and data calls on scalar and collection
// items. It is safe for concurrent use.
type CacheClient struct {
	control *endpoint
	data    *endpoint

	defaultTTL  time.Duration
	keyAffinity bool
	logger      zerolog.Logger

	stats clientStatsCollector
}

// NewCacheClient creates a cache client. defaultTTL applies to writes that
// do not specify a TTL and must be at least 1ms.
//
// Channels connect lazily unless Configuration.EagerConnectTimeout is set.
func NewCacheClient(creds CredentialProvider, cfg Configuration, defaultTTL time.Duration, opts ...Option) (*CacheClient, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if defaultTTL < time.Millisecond {
		return nil, invalidArgument("default TTL must be at least 1ms, got %s", defaultTTL)
	}

	o := applyOptions(opts)

	control, err := newEndpoint("control", creds.controlEndpoint, 1, creds, cfg, "cache", o)
	if err != nil {
		return nil, err
	}
	data, err := newEndpoint("cache", creds.cacheEndpoint, cfg.Grpc.NumChannels, creds, cfg, "cache", o)
	if err != nil {
		_ = control.close()
		return nil, err
	}

	o.logger.Debug().
		Str("cache_endpoint", creds.cacheEndpoint).
		Str("control_endpoint", creds.controlEndpoint).
		Int("channels", cfg.Grpc.NumChannels).
		Dur("timeout", cfg.ClientTimeout()).
		Msg("cache client created")

	return &CacheClient{
		control:     control,
		data:        data,
		defaultTTL:  defaultTTL,
		keyAffinity: o.keyAffinity,
		logger:      o.logger,
	}, nil
}

// Close closes every channel. Calls in flight fail.
func (c *CacheClient) Close() error {
	return errors.Join(c.data.close(), c.control.close())
}

// DefaultTTL returns the TTL applied to writes without one.
func (c *CacheClient) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Stats returns a snapshot of client statistics.
func (c *CacheClient) Stats() ClientStats {
	return c.stats.snapshot()
}

// EndpointStats returns stats for the control and cache endpoints.
func (c *CacheClient) EndpointStats() []EndpointStats {
	return []EndpointStats{c.control.stats(), c.data.stats()}
}

// ttl resolves an item TTL, zero meaning the client default.
func (c *CacheClient) ttl(ttl time.Duration) (uint64, error) {
	if err := validateTTL(ttl); err != nil {
		return 0, err
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	return ttlMillis(ttl), nil
}

func (c *CacheClient) collectionTTL(ttl CollectionTTL) (wire.CollectionTTL, error) {
	return ttl.toWire(c.defaultTTL)
}

// call sends a data plane request for cache. key routes the call when key
// affinity is enabled.
func (c *CacheClient) call(ctx context.Context, cache string, key []byte, method string, req, resp any) error {
	if err := validateCacheName(cache); err != nil {
		c.stats.recordError()
		return err
	}

	var affinity []byte
	if c.keyAffinity {
		affinity = key
	}

	err := c.data.invoke(transport.WithCacheName(ctx, cache), affinity, method, req, resp)
	if err != nil {
		c.stats.recordError()
	}
	return err
}

// fail records a locally detected error.
func (c *CacheClient) fail(err error) error {
	c.stats.recordError()
	return err
}

func (c *CacheClient) collectionRead(ctx context.Context, cache string, name []byte, method string, req, resp any) error {
	if err := c.call(ctx, cache, name, method, req, resp); err != nil {
		return err
	}
	c.stats.recordCollectionRead()
	return nil
}

func (c *CacheClient) collectionWrite(ctx context.Context, cache string, name []byte, method string, req, resp any) error {
	if err := c.call(ctx, cache, name, method, req, resp); err != nil {
		return err
	}
	c.stats.recordCollectionWrite()
	return nil
}
