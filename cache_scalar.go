package momento

import (
	"context"
	"time"

	"github.com/pior/momento/wire"
	"golang.org/x/sync/errgroup"
)

// batchConcurrency bounds the calls in flight for GetBatch and SetBatch.
const batchConcurrency = 16

// Get retrieves a single item. A missing key is not an error: the item is
// returned with Found false.
func (c *CacheClient) Get(ctx context.Context, cache, key string) (Item, error) {
	var resp wire.GetResponse
	if err := c.call(ctx, cache, []byte(key), wire.MethodGet, &wire.GetRequest{Key: []byte(key)}, &resp); err != nil {
		return Item{}, err
	}

	switch resp.Result {
	case wire.ResultHit:
		c.stats.recordGet(true)
		return Item{Key: key, Value: resp.Value, Found: true}, nil
	case wire.ResultMiss:
		c.stats.recordGet(false)
		return Item{Key: key}, nil
	default:
		return Item{}, c.fail(unknownError("unexpected get result", nil))
	}
}

// Set stores an item. A zero TTL selects the client default.
func (c *CacheClient) Set(ctx context.Context, cache string, item Item) error {
	ttl, err := c.ttl(item.TTL)
	if err != nil {
		return c.fail(err)
	}

	req := &wire.SetRequest{Key: []byte(item.Key), Value: item.Value, TTLMillis: ttl}
	if err := c.call(ctx, cache, req.Key, wire.MethodSet, req, &wire.Empty{}); err != nil {
		return err
	}

	c.stats.recordSet()
	return nil
}

// Delete removes an item. Deleting a missing key succeeds.
func (c *CacheClient) Delete(ctx context.Context, cache, key string) error {
	if err := c.call(ctx, cache, []byte(key), wire.MethodDelete, &wire.DeleteRequest{Key: []byte(key)}, &wire.Empty{}); err != nil {
		return err
	}

	c.stats.recordDelete()
	return nil
}

// GetBatch retrieves several items concurrently. Items are returned in the
// order of keys. The first failure cancels the remaining calls.
func (c *CacheClient) GetBatch(ctx context.Context, cache string, keys []string) ([]Item, error) {
	if err := validateCacheName(cache); err != nil {
		return nil, c.fail(err)
	}

	items := make([]Item, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, key := range keys {
		g.Go(func() error {
			item, err := c.Get(ctx, cache, key)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// SetBatch stores several items concurrently. The first failure cancels the
// remaining calls; items already stored stay stored.
func (c *CacheClient) SetBatch(ctx context.Context, cache string, items []Item) error {
	if err := validateCacheName(cache); err != nil {
		return c.fail(err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for _, item := range items {
		g.Go(func() error {
			return c.Set(ctx, cache, item)
		})
	}

	return g.Wait()
}

// Increment adds amount to the integer stored under key and returns the
// result. A missing key counts as zero.
func (c *CacheClient) Increment(ctx context.Context, cache, key string, amount int64, ttl time.Duration) (int64, error) {
	ttlMs, err := c.ttl(ttl)
	if err != nil {
		return 0, c.fail(err)
	}

	req := &wire.IncrementRequest{Key: []byte(key), Amount: amount, TTLMillis: ttlMs}
	var resp wire.IncrementResponse
	if err := c.call(ctx, cache, req.Key, wire.MethodIncrement, req, &resp); err != nil {
		return 0, err
	}

	c.stats.recordIncrement()
	return resp.Value, nil
}

func (c *CacheClient) setIf(ctx context.Context, cache string, item Item, cond wire.Condition, compare []byte) (bool, error) {
	ttl, err := c.ttl(item.TTL)
	if err != nil {
		return false, c.fail(err)
	}

	req := &wire.SetIfRequest{
		Key:       []byte(item.Key),
		Value:     item.Value,
		TTLMillis: ttl,
		Condition: cond,
		Compare:   compare,
	}
	var resp wire.SetIfResponse
	if err := c.call(ctx, cache, req.Key, wire.MethodSetIf, req, &resp); err != nil {
		return false, err
	}

	c.stats.recordSet()
	return resp.Stored, nil
}

// SetIfAbsent stores item only if its key does not exist. It reports
// whether the item was stored.
func (c *CacheClient) SetIfAbsent(ctx context.Context, cache string, item Item) (bool, error) {
	return c.setIf(ctx, cache, item, wire.ConditionAbsent, nil)
}

// SetIfPresent stores item only if its key exists.
func (c *CacheClient) SetIfPresent(ctx context.Context, cache string, item Item) (bool, error) {
	return c.setIf(ctx, cache, item, wire.ConditionPresent, nil)
}

// SetIfEqual stores item only if the current value equals equal.
func (c *CacheClient) SetIfEqual(ctx context.Context, cache string, item Item, equal []byte) (bool, error) {
	return c.setIf(ctx, cache, item, wire.ConditionEqual, equal)
}

// SetIfNotEqual stores item if the key is missing or its value differs
// from notEqual.
func (c *CacheClient) SetIfNotEqual(ctx context.Context, cache string, item Item, notEqual []byte) (bool, error) {
	return c.setIf(ctx, cache, item, wire.ConditionNotEqual, notEqual)
}

// SetIfPresentAndNotEqual stores item only if the key exists and its value
// differs from notEqual.
func (c *CacheClient) SetIfPresentAndNotEqual(ctx context.Context, cache string, item Item, notEqual []byte) (bool, error) {
	return c.setIf(ctx, cache, item, wire.ConditionPresentAndNotEqual, notEqual)
}

// SetIfAbsentOrEqual stores item if the key is missing or its value equals
// equal.
func (c *CacheClient) SetIfAbsentOrEqual(ctx context.Context, cache string, item Item, equal []byte) (bool, error) {
	return c.setIf(ctx, cache, item, wire.ConditionAbsentOrEqual, equal)
}

// KeyExists reports whether key exists.
func (c *CacheClient) KeyExists(ctx context.Context, cache, key string) (bool, error) {
	exists, err := c.KeysExist(ctx, cache, []string{key})
	if err != nil {
		return false, err
	}
	return exists[0], nil
}

// KeysExist reports, for each key in order, whether it exists.
func (c *CacheClient) KeysExist(ctx context.Context, cache string, keys []string) ([]bool, error) {
	if err := validateCacheName(cache); err != nil {
		return nil, c.fail(err)
	}
	if len(keys) == 0 {
		return []bool{}, nil
	}

	req := &wire.KeysExistRequest{Keys: make([][]byte, len(keys))}
	for i, k := range keys {
		req.Keys[i] = []byte(k)
	}

	var resp wire.KeysExistResponse
	if err := c.call(ctx, cache, nil, wire.MethodKeysExist, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Exists) != len(keys) {
		return nil, c.fail(unknownError("keys exist response does not match the request", nil))
	}
	return resp.Exists, nil
}

// ItemGetType returns the type of the item under key. ok is false when the
// key does not exist.
func (c *CacheClient) ItemGetType(ctx context.Context, cache, key string) (t ItemType, ok bool, err error) {
	var resp wire.ItemGetTypeResponse
	if err := c.call(ctx, cache, []byte(key), wire.MethodItemGetType, &wire.ItemGetTypeRequest{Key: []byte(key)}, &resp); err != nil {
		return 0, false, err
	}
	if !resp.Found {
		return 0, false, nil
	}
	return ItemType(resp.Type), true, nil
}

// ItemGetTTL returns the remaining TTL of the item under key. ok is false
// when the key does not exist.
func (c *CacheClient) ItemGetTTL(ctx context.Context, cache, key string) (ttl time.Duration, ok bool, err error) {
	var resp wire.ItemGetTTLResponse
	if err := c.call(ctx, cache, []byte(key), wire.MethodItemGetTTL, &wire.ItemGetTTLRequest{Key: []byte(key)}, &resp); err != nil {
		return 0, false, err
	}
	if !resp.Found {
		return 0, false, nil
	}
	return time.Duration(resp.RemainingTTLMillis) * time.Millisecond, true, nil
}

func (c *CacheClient) updateTTL(ctx context.Context, cache, key string, ttl time.Duration, mode wire.TTLMode) (TTLUpdateResult, error) {
	if ttl < time.Millisecond {
		return 0, c.fail(invalidArgument("TTL must be at least 1ms, got %s", ttl))
	}

	req := &wire.UpdateTTLRequest{Key: []byte(key), Mode: mode, TTLMillis: ttlMillis(ttl)}
	var resp wire.UpdateTTLResponse
	if err := c.call(ctx, cache, req.Key, wire.MethodUpdateTTL, req, &resp); err != nil {
		return 0, err
	}

	switch resp.Result {
	case wire.TTLSet:
		return TTLUpdated, nil
	case wire.TTLNotSet:
		return TTLNotUpdated, nil
	case wire.TTLMissing:
		return TTLMiss, nil
	default:
		return 0, c.fail(unknownError("unexpected update TTL result", nil))
	}
}

// UpdateTTL overwrites the TTL of an existing item.
func (c *CacheClient) UpdateTTL(ctx context.Context, cache, key string, ttl time.Duration) (TTLUpdateResult, error) {
	return c.updateTTL(ctx, cache, key, ttl, wire.TTLOverwrite)
}

// IncreaseTTL sets the TTL only if it is longer than the current one.
func (c *CacheClient) IncreaseTTL(ctx context.Context, cache, key string, ttl time.Duration) (TTLUpdateResult, error) {
	return c.updateTTL(ctx, cache, key, ttl, wire.TTLIncreaseTo)
}

// DecreaseTTL sets the TTL only if it is shorter than the current one.
func (c *CacheClient) DecreaseTTL(ctx context.Context, cache, key string, ttl time.Duration) (TTLUpdateResult, error) {
	return c.updateTTL(ctx, cache, key, ttl, wire.TTLDecreaseTo)
}
