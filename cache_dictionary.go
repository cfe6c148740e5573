package momento

import (
	"context"
	"slices"

	"github.com/pior/momento/wire"
)

// DictionaryFetch returns every field of a dictionary. ok is false when the
// dictionary does not exist.
func (c *CacheClient) DictionaryFetch(ctx context.Context, cache, dictionary string) (fields map[string][]byte, ok bool, err error) {
	if err := validateName("Dictionary", dictionary); err != nil {
		return nil, false, c.fail(err)
	}

	req := &wire.DictionaryFetchRequest{DictionaryName: []byte(dictionary)}
	var resp wire.DictionaryFetchResponse
	if err := c.collectionRead(ctx, cache, req.DictionaryName, wire.MethodDictionaryFetch, req, &resp); err != nil {
		return nil, false, err
	}
	if !resp.Found {
		return nil, false, nil
	}

	fields = make(map[string][]byte, len(resp.Items))
	for _, item := range resp.Items {
		fields[string(item.Field)] = item.Value
	}
	return fields, true, nil
}

// DictionaryGetField returns one field. ok is false when the dictionary or
// the field does not exist.
func (c *CacheClient) DictionaryGetField(ctx context.Context, cache, dictionary, field string) (value []byte, ok bool, err error) {
	values, found, err := c.DictionaryGetFields(ctx, cache, dictionary, []string{field})
	if err != nil || !found {
		return nil, false, err
	}
	value, ok = values[field]
	return value, ok, nil
}

// DictionaryGetFields returns the requested fields that exist. found is
// false when the dictionary does not exist.
func (c *CacheClient) DictionaryGetFields(ctx context.Context, cache, dictionary string, fields []string) (values map[string][]byte, found bool, err error) {
	if err := validateName("Dictionary", dictionary); err != nil {
		return nil, false, c.fail(err)
	}
	if err := validateNotEmpty("Fields", fields); err != nil {
		return nil, false, c.fail(err)
	}

	req := &wire.DictionaryGetRequest{DictionaryName: []byte(dictionary), Fields: toBytes(fields)}
	var resp wire.DictionaryGetResponse
	if err := c.collectionRead(ctx, cache, req.DictionaryName, wire.MethodDictionaryGet, req, &resp); err != nil {
		return nil, false, err
	}
	if !resp.Found {
		return nil, false, nil
	}
	if len(resp.Items) != len(fields) {
		return nil, false, c.fail(unknownError("dictionary get response does not match the request", nil))
	}

	values = make(map[string][]byte, len(fields))
	for i, part := range resp.Items {
		if part.Found {
			values[fields[i]] = part.Value
		}
	}
	return values, true, nil
}

// DictionarySetField sets one field, creating the dictionary if needed.
func (c *CacheClient) DictionarySetField(ctx context.Context, cache, dictionary, field string, value []byte, ttl CollectionTTL) error {
	return c.DictionarySetFields(ctx, cache, dictionary, map[string][]byte{field: value}, ttl)
}

// DictionarySetFields sets several fields at once.
func (c *CacheClient) DictionarySetFields(ctx context.Context, cache, dictionary string, fields map[string][]byte, ttl CollectionTTL) error {
	if err := validateName("Dictionary", dictionary); err != nil {
		return c.fail(err)
	}
	if len(fields) == 0 {
		return c.fail(invalidArgument("Fields cannot be empty"))
	}
	wttl, err := c.collectionTTL(ttl)
	if err != nil {
		return c.fail(err)
	}

	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	slices.Sort(names)

	items := make([]wire.FieldValue, len(names))
	for i, f := range names {
		items[i] = wire.FieldValue{Field: []byte(f), Value: fields[f]}
	}

	req := &wire.DictionarySetRequest{DictionaryName: []byte(dictionary), Items: items, TTL: wttl}
	return c.collectionWrite(ctx, cache, req.DictionaryName, wire.MethodDictionarySet, req, &wire.Empty{})
}

// DictionaryIncrement adds amount to an integer field and returns the
// result. A missing field counts as zero.
func (c *CacheClient) DictionaryIncrement(ctx context.Context, cache, dictionary, field string, amount int64, ttl CollectionTTL) (int64, error) {
	if err := validateName("Dictionary", dictionary); err != nil {
		return 0, c.fail(err)
	}
	wttl, err := c.collectionTTL(ttl)
	if err != nil {
		return 0, c.fail(err)
	}

	req := &wire.DictionaryIncrementRequest{
		DictionaryName: []byte(dictionary),
		Field:          []byte(field),
		Amount:         amount,
		TTL:            wttl,
	}
	var resp wire.DictionaryIncrementResponse
	if err := c.collectionWrite(ctx, cache, req.DictionaryName, wire.MethodDictionaryIncrement, req, &resp); err != nil {
		return 0, err
	}
	return resp.Value, nil
}

// DictionaryRemoveField removes one field. Removing a missing field succeeds.
func (c *CacheClient) DictionaryRemoveField(ctx context.Context, cache, dictionary, field string) error {
	return c.DictionaryRemoveFields(ctx, cache, dictionary, []string{field})
}

func (c *CacheClient) DictionaryRemoveFields(ctx context.Context, cache, dictionary string, fields []string) error {
	if err := validateName("Dictionary", dictionary); err != nil {
		return c.fail(err)
	}
	if err := validateNotEmpty("Fields", fields); err != nil {
		return c.fail(err)
	}

	req := &wire.DictionaryDeleteRequest{DictionaryName: []byte(dictionary), Fields: toBytes(fields)}
	return c.collectionWrite(ctx, cache, req.DictionaryName, wire.MethodDictionaryDelete, req, &wire.Empty{})
}

// DictionaryLength returns the number of fields. ok is false when the
// dictionary does not exist.
func (c *CacheClient) DictionaryLength(ctx context.Context, cache, dictionary string) (length uint32, ok bool, err error) {
	if err := validateName("Dictionary", dictionary); err != nil {
		return 0, false, c.fail(err)
	}

	req := &wire.DictionaryLengthRequest{DictionaryName: []byte(dictionary)}
	var resp wire.LengthResponse
	if err := c.collectionRead(ctx, cache, req.DictionaryName, wire.MethodDictionaryLength, req, &resp); err != nil {
		return 0, false, err
	}
	return resp.Length, resp.Found, nil
}

func toBytes(values []string) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out
}
