package momento

import (
	"context"
	"errors"

	"github.com/pior/momento/wire"
)

// CreateCacheResult tells whether CreateCache made a new cache.
type CreateCacheResult int

const (
	CacheCreated CreateCacheResult = iota
	CacheAlreadyExists
)

func (r CreateCacheResult) String() string {
	if r == CacheAlreadyExists {
		return "AlreadyExists"
	}
	return "Created"
}

// CacheLimits are the per-cache limits reported by ListCaches.
type CacheLimits struct {
	MaxTrafficRate      uint32
	MaxThroughputKbps   uint32
	MaxItemSizeKb       uint32
	MaxTTLSeconds       uint64
	MaxSubscriptionRate uint32
}

type CacheInfo struct {
	Name   string
	Limits CacheLimits
}

func (c *CacheClient) controlCall(ctx context.Context, method string, req, resp any) error {
	err := c.control.invoke(ctx, nil, method, req, resp)
	if err != nil {
		c.stats.recordError()
	}
	return err
}

// CreateCache creates a cache. An existing cache is not an error.
func (c *CacheClient) CreateCache(ctx context.Context, name string) (CreateCacheResult, error) {
	if err := validateCacheName(name); err != nil {
		return 0, c.fail(err)
	}

	err := c.control.invoke(ctx, nil, wire.MethodCreateCache, &wire.CreateCacheRequest{CacheName: name}, &wire.Empty{})
	switch {
	case err == nil:
		return CacheCreated, nil
	case errors.Is(err, ErrAlreadyExists):
		return CacheAlreadyExists, nil
	default:
		return 0, c.fail(err)
	}
}

// DeleteCache deletes a cache and everything in it.
func (c *CacheClient) DeleteCache(ctx context.Context, name string) error {
	if err := validateCacheName(name); err != nil {
		return c.fail(err)
	}
	return c.controlCall(ctx, wire.MethodDeleteCache, &wire.DeleteCacheRequest{CacheName: name}, &wire.Empty{})
}

// FlushCache removes every item of a cache and keeps the cache.
func (c *CacheClient) FlushCache(ctx context.Context, name string) error {
	if err := validateCacheName(name); err != nil {
		return c.fail(err)
	}
	return c.controlCall(ctx, wire.MethodFlushCache, &wire.FlushCacheRequest{CacheName: name}, &wire.Empty{})
}

// ListCaches returns every cache of the account, following pagination.
func (c *CacheClient) ListCaches(ctx context.Context) ([]CacheInfo, error) {
	var (
		caches []CacheInfo
		token  string
	)
	for {
		var resp wire.ListCachesResponse
		if err := c.controlCall(ctx, wire.MethodListCaches, &wire.ListCachesRequest{NextToken: token}, &resp); err != nil {
			return nil, err
		}
		for _, ci := range resp.Caches {
			caches = append(caches, CacheInfo{
				Name: ci.Name,
				Limits: CacheLimits{
					MaxTrafficRate:      ci.Limits.MaxTrafficRate,
					MaxThroughputKbps:   ci.Limits.MaxThroughputKbps,
					MaxItemSizeKb:       ci.Limits.MaxItemSizeKb,
					MaxTTLSeconds:       ci.Limits.MaxTTLSeconds,
					MaxSubscriptionRate: ci.Limits.MaxSubscriptionRate,
				},
			})
		}
		if resp.NextToken == "" {
			return caches, nil
		}
		token = resp.NextToken
	}
}
