package momento

import (
	"context"
	"math"

	"github.com/pior/momento/internal/transport"
	"github.com/pior/momento/wire"
)

// MaxLeaderboardFetch is the most elements a single fetch returns.
const MaxLeaderboardFetch = 8192

// LeaderboardElement is an element id and its score.
type LeaderboardElement struct {
	ID    uint32
	Score float64
}

// RankedElement is an element with its 0-based rank.
type RankedElement struct {
	ID    uint32
	Rank  uint32
	Score float64
}

// RankRange selects ranks [Start, End).
type RankRange struct {
	Start uint32
	End   uint32
}

func (r RankRange) validate() error {
	if r.Start >= r.End {
		return invalidArgument("rank range start must be less than end, got [%d, %d)", r.Start, r.End)
	}
	if r.End-r.Start > MaxLeaderboardFetch {
		return invalidArgument("rank range cannot span more than %d elements, got %d", MaxLeaderboardFetch, r.End-r.Start)
	}
	return nil
}

// LeaderboardScoreRange selects scores in [Min, Max). A nil bound is
// unbounded.
type LeaderboardScoreRange struct {
	Min *float64
	Max *float64
}

// LeaderboardScores returns the range [lo, hi). Infinite bounds are
// unbounded.
func LeaderboardScores(lo, hi float64) LeaderboardScoreRange {
	return LeaderboardScoreRange{Min: &lo, Max: &hi}
}

func (r LeaderboardScoreRange) validate() error {
	if r.Min != nil && (math.IsNaN(*r.Min) || math.IsInf(*r.Min, 1)) {
		return invalidArgument("min score must be finite or negative infinity; got %v", *r.Min)
	}
	if r.Max != nil && (math.IsNaN(*r.Max) || math.IsInf(*r.Max, -1)) {
		return invalidArgument("max score must be finite or positive infinity; got %v", *r.Max)
	}
	return nil
}

func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// LeaderboardClient gives access to leaderboards. It is safe for concurrent
// use; calls are spread round-robin over the channels.
type LeaderboardClient struct {
	endpoint *endpoint
	stats    clientStatsCollector
}

func NewLeaderboardClient(creds CredentialProvider, cfg Configuration, opts ...Option) (*LeaderboardClient, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	e, err := newEndpoint("leaderboard", creds.cacheEndpoint, cfg.Grpc.NumChannels, creds, cfg, "leaderboard", o)
	if err != nil {
		return nil, err
	}
	return &LeaderboardClient{endpoint: e}, nil
}

func (c *LeaderboardClient) Close() error {
	return c.endpoint.close()
}

// Stats returns a snapshot of client statistics. Only Errors is counted.
func (c *LeaderboardClient) Stats() ClientStats {
	return c.stats.snapshot()
}

// EndpointStats returns stats for the leaderboard endpoint.
func (c *LeaderboardClient) EndpointStats() []EndpointStats {
	return []EndpointStats{c.endpoint.stats()}
}

// Leaderboard returns a handle on the named leaderboard. Names are checked
// on each call.
func (c *LeaderboardClient) Leaderboard(cache, name string) *Leaderboard {
	return &Leaderboard{client: c, cache: cache, name: name}
}

// Leaderboard is a handle on one leaderboard of a cache.
type Leaderboard struct {
	client *LeaderboardClient
	cache  string
	name   string
}

func (l *Leaderboard) Cache() string { return l.cache }
func (l *Leaderboard) Name() string  { return l.name }

func (l *Leaderboard) call(ctx context.Context, method string, req, resp any) error {
	if err := l.check(); err != nil {
		return err
	}
	err := l.client.endpoint.invoke(transport.WithCacheName(ctx, l.cache), nil, method, req, resp)
	if err != nil {
		l.client.stats.recordError()
	}
	return err
}

func (l *Leaderboard) check() error {
	if err := validateCacheName(l.cache); err != nil {
		return l.fail(err)
	}
	if err := validateName("Leaderboard", l.name); err != nil {
		return l.fail(err)
	}
	return nil
}

func (l *Leaderboard) fail(err error) error {
	l.client.stats.recordError()
	return err
}

// Upsert inserts elements or updates their score.
func (l *Leaderboard) Upsert(ctx context.Context, elements []LeaderboardElement) error {
	if err := validateNotEmpty("Elements", elements); err != nil {
		return l.fail(err)
	}

	req := &wire.UpsertElementsRequest{
		CacheName:   l.cache,
		Leaderboard: l.name,
		Elements:    make([]wire.LeaderboardElement, len(elements)),
	}
	for i, e := range elements {
		req.Elements[i] = wire.LeaderboardElement{ID: e.ID, Score: e.Score}
	}
	return l.call(ctx, wire.MethodUpsertElements, req, &wire.Empty{})
}

// UpsertScores is Upsert for a map of id to score.
func (l *Leaderboard) UpsertScores(ctx context.Context, scores map[uint32]float64) error {
	elements := make([]LeaderboardElement, 0, len(scores))
	for id, score := range scores {
		elements = append(elements, LeaderboardElement{ID: id, Score: score})
	}
	return l.Upsert(ctx, elements)
}

// FetchByRank returns the elements ranked in r.
func (l *Leaderboard) FetchByRank(ctx context.Context, r RankRange, order SortOrder) ([]RankedElement, error) {
	if err := r.validate(); err != nil {
		return nil, l.fail(err)
	}

	req := &wire.GetByRankRequest{
		CacheName:      l.cache,
		Leaderboard:    l.name,
		StartInclusive: r.Start,
		EndExclusive:   r.End,
		Order:          order.toWire(),
	}
	return l.ranked(ctx, wire.MethodGetByRank, req)
}

// FetchByScore returns the elements whose score falls in r, skipping offset
// elements and returning at most count. A zero count returns up to
// MaxLeaderboardFetch elements.
func (l *Leaderboard) FetchByScore(ctx context.Context, r LeaderboardScoreRange, order SortOrder, offset, count uint32) ([]RankedElement, error) {
	if err := r.validate(); err != nil {
		return nil, l.fail(err)
	}
	if count == 0 {
		count = MaxLeaderboardFetch
	}

	req := &wire.GetByScoreRequest{
		CacheName:   l.cache,
		Leaderboard: l.name,
		Min:         finiteOrNil(r.Min),
		Max:         finiteOrNil(r.Max),
		Offset:      offset,
		Limit:       count,
		Order:       order.toWire(),
	}
	return l.ranked(ctx, wire.MethodGetByScore, req)
}

// GetRank returns the rank of each id present in the leaderboard. Ties get
// distinct consecutive ranks.
func (l *Leaderboard) GetRank(ctx context.Context, ids []uint32, order SortOrder) ([]RankedElement, error) {
	return l.getRank(ctx, wire.MethodGetRank, ids, order)
}

// GetCompetitionRank is GetRank with tied scores sharing a rank and the next
// rank skipping accordingly.
func (l *Leaderboard) GetCompetitionRank(ctx context.Context, ids []uint32, order SortOrder) ([]RankedElement, error) {
	return l.getRank(ctx, wire.MethodGetCompetitionRank, ids, order)
}

func (l *Leaderboard) getRank(ctx context.Context, method string, ids []uint32, order SortOrder) ([]RankedElement, error) {
	if err := validateNotEmpty("Ids", ids); err != nil {
		return nil, l.fail(err)
	}

	req := &wire.GetRankRequest{CacheName: l.cache, Leaderboard: l.name, IDs: ids, Order: order.toWire()}
	return l.ranked(ctx, method, req)
}

func (l *Leaderboard) ranked(ctx context.Context, method string, req any) ([]RankedElement, error) {
	var resp wire.RankedElementsResponse
	if err := l.call(ctx, method, req, &resp); err != nil {
		return nil, err
	}

	elements := make([]RankedElement, len(resp.Elements))
	for i, e := range resp.Elements {
		elements[i] = RankedElement{ID: e.ID, Rank: e.Rank, Score: e.Score}
	}
	return elements, nil
}

// Length returns the number of elements.
func (l *Leaderboard) Length(ctx context.Context) (uint32, error) {
	req := &wire.GetLeaderboardLengthRequest{CacheName: l.cache, Leaderboard: l.name}
	var resp wire.GetLeaderboardLengthResponse
	if err := l.call(ctx, wire.MethodGetLeaderboardLength, req, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// RemoveElements removes ids. Missing ids are ignored.
func (l *Leaderboard) RemoveElements(ctx context.Context, ids []uint32) error {
	if err := validateNotEmpty("Ids", ids); err != nil {
		return l.fail(err)
	}
	req := &wire.RemoveElementsRequest{CacheName: l.cache, Leaderboard: l.name, IDs: ids}
	return l.call(ctx, wire.MethodRemoveElements, req, &wire.Empty{})
}

// Delete removes the leaderboard.
func (l *Leaderboard) Delete(ctx context.Context) error {
	req := &wire.DeleteLeaderboardRequest{CacheName: l.cache, Leaderboard: l.name}
	return l.call(ctx, wire.MethodDeleteLeaderboard, req, &wire.Empty{})
}
