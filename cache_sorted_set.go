package momento

import (
	"context"
	"time"

	"github.com/pior/momento/wire"
)

// SortedSetElement is a value and its score.
type SortedSetElement struct {
	Value []byte
	Score float64
}

// SortedSetScore is the score lookup result of one value.
type SortedSetScore struct {
	Score float64
	Found bool
}

// Aggregate combines the scores of a value present in several union sources.
type Aggregate int

const (
	AggregateSum Aggregate = iota
	AggregateMin
	AggregateMax
)

// SortedSetUnionSource is a set read by SortedSetUnionStore; its scores are
// multiplied by Weight.
type SortedSetUnionSource struct {
	SetName string
	Weight  float64
}

// SortedSetPutElement adds value with score, or updates its score.
func (c *CacheClient) SortedSetPutElement(ctx context.Context, cache, set string, value []byte, score float64, ttl CollectionTTL) error {
	return c.SortedSetPutElements(ctx, cache, set, []SortedSetElement{{Value: value, Score: score}}, ttl)
}

func (c *CacheClient) SortedSetPutElements(ctx context.Context, cache, set string, elements []SortedSetElement, ttl CollectionTTL) error {
	if err := validateName("Sorted set", set); err != nil {
		return c.fail(err)
	}
	if err := validateNotEmpty("Elements", elements); err != nil {
		return c.fail(err)
	}
	wttl, err := c.collectionTTL(ttl)
	if err != nil {
		return c.fail(err)
	}

	req := &wire.SortedSetPutRequest{SetName: []byte(set), Elements: toWireElements(elements), TTL: wttl}
	return c.collectionWrite(ctx, cache, req.SetName, wire.MethodSortedSetPut, req, &wire.Empty{})
}

// SortedSetFetchByRank returns the elements whose rank in order falls in r.
// ok is false when the set does not exist.
func (c *CacheClient) SortedSetFetchByRank(ctx context.Context, cache, set string, r IndexRange, order SortOrder) (elements []SortedSetElement, ok bool, err error) {
	if err := r.validate(); err != nil {
		return nil, false, c.fail(err)
	}
	return c.sortedSetFetch(ctx, cache, set, &wire.SortedSetFetchRequest{
		Order:  order.toWire(),
		ByRank: &wire.RankRange{Start: r.Start, End: r.End},
	})
}

// SortedSetFetchByScore returns the elements whose score falls in r, skipping
// offset elements and returning at most count. A zero count means no limit.
func (c *CacheClient) SortedSetFetchByScore(ctx context.Context, cache, set string, r ScoreRange, order SortOrder, offset, count uint32) (elements []SortedSetElement, ok bool, err error) {
	if err := r.validate(); err != nil {
		return nil, false, c.fail(err)
	}

	byScore := &wire.ScoreRange{
		Min:          r.Min,
		MinExclusive: r.MinExclusive,
		Max:          r.Max,
		MaxExclusive: r.MaxExclusive,
		Offset:       offset,
	}
	if count > 0 {
		n := int32(min(count, 1<<31-1))
		byScore.Count = &n
	}

	return c.sortedSetFetch(ctx, cache, set, &wire.SortedSetFetchRequest{Order: order.toWire(), ByScore: byScore})
}

func (c *CacheClient) sortedSetFetch(ctx context.Context, cache, set string, req *wire.SortedSetFetchRequest) ([]SortedSetElement, bool, error) {
	if err := validateName("Sorted set", set); err != nil {
		return nil, false, c.fail(err)
	}
	req.SetName = []byte(set)

	var resp wire.SortedSetFetchResponse
	if err := c.collectionRead(ctx, cache, req.SetName, wire.MethodSortedSetFetch, req, &resp); err != nil {
		return nil, false, err
	}
	if !resp.Found {
		return nil, false, nil
	}

	elements := make([]SortedSetElement, len(resp.Elements))
	for i, e := range resp.Elements {
		elements[i] = SortedSetElement{Value: e.Value, Score: e.Score}
	}
	return elements, true, nil
}

// SortedSetGetScore returns the score of value. ok is false when the set or
// the value does not exist.
func (c *CacheClient) SortedSetGetScore(ctx context.Context, cache, set string, value []byte) (score float64, ok bool, err error) {
	scores, found, err := c.SortedSetGetScores(ctx, cache, set, [][]byte{value})
	if err != nil || !found {
		return 0, false, err
	}
	return scores[0].Score, scores[0].Found, nil
}

// SortedSetGetScores returns a score per value, in order. found is false
// when the set does not exist.
func (c *CacheClient) SortedSetGetScores(ctx context.Context, cache, set string, values [][]byte) (scores []SortedSetScore, found bool, err error) {
	if err := validateName("Sorted set", set); err != nil {
		return nil, false, c.fail(err)
	}
	if err := validateNotEmpty("Values", values); err != nil {
		return nil, false, c.fail(err)
	}

	req := &wire.SortedSetGetScoreRequest{SetName: []byte(set), Values: values}
	var resp wire.SortedSetGetScoreResponse
	if err := c.collectionRead(ctx, cache, req.SetName, wire.MethodSortedSetGetScore, req, &resp); err != nil {
		return nil, false, err
	}
	if !resp.Found {
		return nil, false, nil
	}
	if len(resp.Scores) != len(values) {
		return nil, false, c.fail(unknownError("sorted set get score response does not match the request", nil))
	}

	scores = make([]SortedSetScore, len(resp.Scores))
	for i, s := range resp.Scores {
		scores[i] = SortedSetScore{Score: s.Score, Found: s.Found}
	}
	return scores, true, nil
}

// SortedSetGetRank returns the 0-based rank of value in order. ok is false
// when the set or the value does not exist.
func (c *CacheClient) SortedSetGetRank(ctx context.Context, cache, set string, value []byte, order SortOrder) (rank uint64, ok bool, err error) {
	if err := validateName("Sorted set", set); err != nil {
		return 0, false, c.fail(err)
	}

	req := &wire.SortedSetGetRankRequest{SetName: []byte(set), Value: value, Order: order.toWire()}
	var resp wire.SortedSetGetRankResponse
	if err := c.collectionRead(ctx, cache, req.SetName, wire.MethodSortedSetGetRank, req, &resp); err != nil {
		return 0, false, err
	}
	return resp.Rank, resp.Found, nil
}

// SortedSetRemoveElement removes value. Removing a missing value succeeds.
func (c *CacheClient) SortedSetRemoveElement(ctx context.Context, cache, set string, value []byte) error {
	return c.SortedSetRemoveElements(ctx, cache, set, [][]byte{value})
}

func (c *CacheClient) SortedSetRemoveElements(ctx context.Context, cache, set string, values [][]byte) error {
	if err := validateName("Sorted set", set); err != nil {
		return c.fail(err)
	}
	if err := validateNotEmpty("Values", values); err != nil {
		return c.fail(err)
	}

	req := &wire.SortedSetRemoveRequest{SetName: []byte(set), Values: values}
	return c.collectionWrite(ctx, cache, req.SetName, wire.MethodSortedSetRemove, req, &wire.Empty{})
}

// SortedSetIncrementScore adds amount to the score of value and returns the
// new score. A missing value starts at zero.
func (c *CacheClient) SortedSetIncrementScore(ctx context.Context, cache, set string, value []byte, amount float64, ttl CollectionTTL) (float64, error) {
	if err := validateName("Sorted set", set); err != nil {
		return 0, c.fail(err)
	}
	wttl, err := c.collectionTTL(ttl)
	if err != nil {
		return 0, c.fail(err)
	}

	req := &wire.SortedSetIncrementRequest{SetName: []byte(set), Value: value, Amount: amount, TTL: wttl}
	var resp wire.SortedSetIncrementResponse
	if err := c.collectionWrite(ctx, cache, req.SetName, wire.MethodSortedSetIncrement, req, &resp); err != nil {
		return 0, err
	}
	return resp.Score, nil
}

// SortedSetLength returns the number of elements. ok is false when the set
// does not exist.
func (c *CacheClient) SortedSetLength(ctx context.Context, cache, set string) (length uint32, ok bool, err error) {
	if err := validateName("Sorted set", set); err != nil {
		return 0, false, c.fail(err)
	}

	req := &wire.SortedSetLengthRequest{SetName: []byte(set)}
	var resp wire.LengthResponse
	if err := c.collectionRead(ctx, cache, req.SetName, wire.MethodSortedSetLength, req, &resp); err != nil {
		return 0, false, err
	}
	return resp.Length, resp.Found, nil
}

// SortedSetLengthByScore counts the elements whose score falls in r.
func (c *CacheClient) SortedSetLengthByScore(ctx context.Context, cache, set string, r ScoreRange) (length uint32, ok bool, err error) {
	if err := validateName("Sorted set", set); err != nil {
		return 0, false, c.fail(err)
	}
	if err := r.validate(); err != nil {
		return 0, false, c.fail(err)
	}

	req := &wire.SortedSetLengthByScoreRequest{
		SetName:      []byte(set),
		Min:          r.Min,
		MinExclusive: r.MinExclusive,
		Max:          r.Max,
		MaxExclusive: r.MaxExclusive,
	}
	var resp wire.LengthResponse
	if err := c.collectionRead(ctx, cache, req.SetName, wire.MethodSortedSetLengthByScore, req, &resp); err != nil {
		return 0, false, err
	}
	return resp.Length, resp.Found, nil
}

// SortedSetUnionStore replaces destination with the weighted union of
// sources and returns its length. A zero ttl selects the client default.
func (c *CacheClient) SortedSetUnionStore(ctx context.Context, cache, destination string, sources []SortedSetUnionSource, aggregate Aggregate, ttl time.Duration) (uint32, error) {
	if err := validateName("Sorted set", destination); err != nil {
		return 0, c.fail(err)
	}
	if err := validateNotEmpty("Sources", sources); err != nil {
		return 0, c.fail(err)
	}
	ttlMs, err := c.ttl(ttl)
	if err != nil {
		return 0, c.fail(err)
	}

	req := &wire.SortedSetUnionStoreRequest{
		SetName:   []byte(destination),
		Sources:   make([]wire.UnionSource, len(sources)),
		Aggregate: wire.Aggregate(aggregate),
		TTLMillis: ttlMs,
	}
	for i, s := range sources {
		if err := validateName("Sorted set", s.SetName); err != nil {
			return 0, c.fail(err)
		}
		req.Sources[i] = wire.UnionSource{SetName: []byte(s.SetName), Weight: s.Weight}
	}

	var resp wire.SortedSetUnionStoreResponse
	if err := c.collectionWrite(ctx, cache, req.SetName, wire.MethodSortedSetUnionStore, req, &resp); err != nil {
		return 0, err
	}
	return resp.Length, nil
}

func toWireElements(elements []SortedSetElement) []wire.SortedSetElement {
	out := make([]wire.SortedSetElement, len(elements))
	for i, e := range elements {
		out[i] = wire.SortedSetElement{Value: e.Value, Score: e.Score}
	}
	return out
}
