package momento

import (
	"context"

	"github.com/pior/momento/wire"
)

// SetAddElement adds one element, creating the set if needed.
func (c *CacheClient) SetAddElement(ctx context.Context, cache, set string, element []byte, ttl CollectionTTL) error {
	return c.SetAddElements(ctx, cache, set, [][]byte{element}, ttl)
}

func (c *CacheClient) SetAddElements(ctx context.Context, cache, set string, elements [][]byte, ttl CollectionTTL) error {
	if err := validateName("Set", set); err != nil {
		return c.fail(err)
	}
	if err := validateNotEmpty("Elements", elements); err != nil {
		return c.fail(err)
	}
	wttl, err := c.collectionTTL(ttl)
	if err != nil {
		return c.fail(err)
	}

	req := &wire.SetUnionRequest{SetName: []byte(set), Elements: elements, TTL: wttl}
	return c.collectionWrite(ctx, cache, req.SetName, wire.MethodSetUnion, req, &wire.Empty{})
}

// SetRemoveElement removes one element. Removing a missing element succeeds.
func (c *CacheClient) SetRemoveElement(ctx context.Context, cache, set string, element []byte) error {
	return c.SetRemoveElements(ctx, cache, set, [][]byte{element})
}

func (c *CacheClient) SetRemoveElements(ctx context.Context, cache, set string, elements [][]byte) error {
	if err := validateName("Set", set); err != nil {
		return c.fail(err)
	}
	if err := validateNotEmpty("Elements", elements); err != nil {
		return c.fail(err)
	}

	req := &wire.SetDifferenceRequest{SetName: []byte(set), Elements: elements}
	return c.collectionWrite(ctx, cache, req.SetName, wire.MethodSetDifference, req, &wire.Empty{})
}

// SetFetch returns every element of a set, in no particular order. ok is
// false when the set does not exist.
func (c *CacheClient) SetFetch(ctx context.Context, cache, set string) (elements [][]byte, ok bool, err error) {
	if err := validateName("Set", set); err != nil {
		return nil, false, c.fail(err)
	}

	req := &wire.SetFetchRequest{SetName: []byte(set)}
	var resp wire.SetFetchResponse
	if err := c.collectionRead(ctx, cache, req.SetName, wire.MethodSetFetch, req, &resp); err != nil {
		return nil, false, err
	}
	return resp.Elements, resp.Found, nil
}

// SetLength returns the number of elements. ok is false when the set does
// not exist.
func (c *CacheClient) SetLength(ctx context.Context, cache, set string) (length uint32, ok bool, err error) {
	if err := validateName("Set", set); err != nil {
		return 0, false, c.fail(err)
	}

	req := &wire.SetLengthRequest{SetName: []byte(set)}
	var resp wire.LengthResponse
	if err := c.collectionRead(ctx, cache, req.SetName, wire.MethodSetLength, req, &resp); err != nil {
		return 0, false, err
	}
	return resp.Length, resp.Found, nil
}
