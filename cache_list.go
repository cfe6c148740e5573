package momento

import (
	"context"

	"github.com/pior/momento/wire"
)

// ListPushFront prepends value and returns the new length. A non-zero
// truncateBackToSize drops elements from the back beyond that size.
func (c *CacheClient) ListPushFront(ctx context.Context, cache, list string, value []byte, truncateBackToSize uint32, ttl CollectionTTL) (uint32, error) {
	return c.listPush(ctx, cache, list, value, true, truncateBackToSize, ttl)
}

// ListPushBack appends value and returns the new length. A non-zero
// truncateFrontToSize drops elements from the front beyond that size.
func (c *CacheClient) ListPushBack(ctx context.Context, cache, list string, value []byte, truncateFrontToSize uint32, ttl CollectionTTL) (uint32, error) {
	return c.listPush(ctx, cache, list, value, false, truncateFrontToSize, ttl)
}

func (c *CacheClient) listPush(ctx context.Context, cache, list string, value []byte, front bool, truncate uint32, ttl CollectionTTL) (uint32, error) {
	if err := validateName("List", list); err != nil {
		return 0, c.fail(err)
	}
	wttl, err := c.collectionTTL(ttl)
	if err != nil {
		return 0, c.fail(err)
	}

	req := &wire.ListPushRequest{
		ListName:       []byte(list),
		Value:          value,
		Front:          front,
		TruncateToSize: truncate,
		TTL:            wttl,
	}
	var resp wire.ListLengthResponse
	if err := c.collectionWrite(ctx, cache, req.ListName, wire.MethodListPush, req, &resp); err != nil {
		return 0, err
	}
	return resp.ListLength, nil
}

// ListConcatenateFront prepends values, keeping their order, and returns the
// new length.
func (c *CacheClient) ListConcatenateFront(ctx context.Context, cache, list string, values [][]byte, truncateBackToSize uint32, ttl CollectionTTL) (uint32, error) {
	return c.listConcatenate(ctx, cache, list, values, true, truncateBackToSize, ttl)
}

// ListConcatenateBack appends values and returns the new length.
func (c *CacheClient) ListConcatenateBack(ctx context.Context, cache, list string, values [][]byte, truncateFrontToSize uint32, ttl CollectionTTL) (uint32, error) {
	return c.listConcatenate(ctx, cache, list, values, false, truncateFrontToSize, ttl)
}

func (c *CacheClient) listConcatenate(ctx context.Context, cache, list string, values [][]byte, front bool, truncate uint32, ttl CollectionTTL) (uint32, error) {
	if err := validateName("List", list); err != nil {
		return 0, c.fail(err)
	}
	if err := validateNotEmpty("Values", values); err != nil {
		return 0, c.fail(err)
	}
	wttl, err := c.collectionTTL(ttl)
	if err != nil {
		return 0, c.fail(err)
	}

	req := &wire.ListConcatenateRequest{
		ListName:       []byte(list),
		Values:         values,
		Front:          front,
		TruncateToSize: truncate,
		TTL:            wttl,
	}
	var resp wire.ListLengthResponse
	if err := c.collectionWrite(ctx, cache, req.ListName, wire.MethodListConcatenate, req, &resp); err != nil {
		return 0, err
	}
	return resp.ListLength, nil
}

// ListPopFront removes and returns the first element. ok is false when the
// list does not exist.
func (c *CacheClient) ListPopFront(ctx context.Context, cache, list string) (value []byte, ok bool, err error) {
	return c.listPop(ctx, cache, list, true)
}

// ListPopBack removes and returns the last element.
func (c *CacheClient) ListPopBack(ctx context.Context, cache, list string) (value []byte, ok bool, err error) {
	return c.listPop(ctx, cache, list, false)
}

func (c *CacheClient) listPop(ctx context.Context, cache, list string, front bool) ([]byte, bool, error) {
	if err := validateName("List", list); err != nil {
		return nil, false, c.fail(err)
	}

	req := &wire.ListPopRequest{ListName: []byte(list), Front: front}
	var resp wire.ListPopResponse
	if err := c.collectionWrite(ctx, cache, req.ListName, wire.MethodListPop, req, &resp); err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Found, nil
}

// ListFetch returns the elements selected by r. Use IndexRange{} for the
// whole list. ok is false when the list does not exist.
func (c *CacheClient) ListFetch(ctx context.Context, cache, list string, r IndexRange) (values [][]byte, ok bool, err error) {
	if err := validateName("List", list); err != nil {
		return nil, false, c.fail(err)
	}
	if err := r.validate(); err != nil {
		return nil, false, c.fail(err)
	}

	req := &wire.ListFetchRequest{ListName: []byte(list), StartIndex: r.Start, EndIndex: r.End}
	var resp wire.ListFetchResponse
	if err := c.collectionRead(ctx, cache, req.ListName, wire.MethodListFetch, req, &resp); err != nil {
		return nil, false, err
	}
	return resp.Values, resp.Found, nil
}

// ListLength returns the number of elements. ok is false when the list does
// not exist.
func (c *CacheClient) ListLength(ctx context.Context, cache, list string) (length uint32, ok bool, err error) {
	if err := validateName("List", list); err != nil {
		return 0, false, c.fail(err)
	}

	req := &wire.ListLengthRequest{ListName: []byte(list)}
	var resp wire.LengthResponse
	if err := c.collectionRead(ctx, cache, req.ListName, wire.MethodListLength, req, &resp); err != nil {
		return 0, false, err
	}
	return resp.Length, resp.Found, nil
}

// ListRemoveValue removes every element equal to value.
func (c *CacheClient) ListRemoveValue(ctx context.Context, cache, list string, value []byte) error {
	if err := validateName("List", list); err != nil {
		return c.fail(err)
	}

	req := &wire.ListRemoveRequest{ListName: []byte(list), Value: value}
	return c.collectionWrite(ctx, cache, req.ListName, wire.MethodListRemove, req, &wire.Empty{})
}
