package momento

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pior/momento/internal/momentotest"
	"github.com/pior/momento/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakeStore is a thread-safe key/value map behind the scalar handlers.
type fakeStore struct {
	mu   sync.Mutex
	data map[string]fakeEntry
}

type fakeEntry struct {
	value     []byte
	ttlMillis uint64
}

func newFakeStore(srv *momentotest.Server) *fakeStore {
	s := &fakeStore{data: make(map[string]fakeEntry)}

	srv.Handle(wire.MethodGet, momentotest.Unary(func(_ context.Context, req *wire.GetRequest) (*wire.GetResponse, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, ok := s.data[string(req.Key)]
		if !ok {
			return &wire.GetResponse{Result: wire.ResultMiss}, nil
		}
		return &wire.GetResponse{Result: wire.ResultHit, Value: e.value}, nil
	}))
	srv.Handle(wire.MethodSet, momentotest.Unary(func(_ context.Context, req *wire.SetRequest) (*wire.Empty, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.data[string(req.Key)] = fakeEntry{value: req.Value, ttlMillis: req.TTLMillis}
		return &wire.Empty{}, nil
	}))
	srv.Handle(wire.MethodDelete, momentotest.Unary(func(_ context.Context, req *wire.DeleteRequest) (*wire.Empty, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.data, string(req.Key))
		return &wire.Empty{}, nil
	}))

	return s
}

func (s *fakeStore) entry(key string) (fakeEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	return e, ok
}

func TestGetSetDelete(t *testing.T) {
	srv := momentotest.NewServer(t)
	store := newFakeStore(srv)
	client := newTestCacheClient(t, srv)
	ctx := context.Background()

	item, err := client.Get(ctx, "c", "k")
	require.NoError(t, err)
	assert.False(t, item.Found)
	assert.Equal(t, "k", item.Key)

	require.NoError(t, client.Set(ctx, "c", Item{Key: "k", Value: []byte("v")}))

	item, err = client.Get(ctx, "c", "k")
	require.NoError(t, err)
	assert.True(t, item.Found)
	assert.Equal(t, []byte("v"), item.Value)

	require.NoError(t, client.Delete(ctx, "c", "k"))
	require.NoError(t, client.Delete(ctx, "c", "k"), "deleting a missing key succeeds")

	_, ok := store.entry("k")
	assert.False(t, ok)

	stats := client.Stats()
	assert.Equal(t, uint64(2), stats.Gets)
	assert.Equal(t, uint64(1), stats.GetHits)
	assert.Equal(t, uint64(1), stats.Sets)
	assert.Equal(t, uint64(2), stats.Deletes)
	assert.Zero(t, stats.Errors)
}

func TestSetTTL(t *testing.T) {
	srv := momentotest.NewServer(t)
	store := newFakeStore(srv)
	client := newTestCacheClient(t, srv)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "c", Item{Key: "default", Value: []byte("v")}))
	require.NoError(t, client.Set(ctx, "c", Item{Key: "explicit", Value: []byte("v"), TTL: 5 * time.Second}))

	e, _ := store.entry("default")
	assert.Equal(t, uint64(time.Minute.Milliseconds()), e.ttlMillis)
	e, _ = store.entry("explicit")
	assert.Equal(t, uint64(5000), e.ttlMillis)

	err := client.Set(ctx, "c", Item{Key: "negative", Value: []byte("v"), TTL: -time.Second})
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 2, srv.CallCount(wire.MethodSet))
}

func TestSubMillisecondTTLRejected(t *testing.T) {
	srv := momentotest.NewServer(t)
	store := newFakeStore(srv)
	client := newTestCacheClient(t, srv)
	ctx := context.Background()

	tooShort := 500 * time.Microsecond

	err := client.Set(ctx, "c", Item{Key: "k", Value: []byte("v"), TTL: tooShort})
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = client.Increment(ctx, "c", "n", 1, tooShort)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = client.UpdateTTL(ctx, "c", "k", tooShort)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = client.SortedSetUnionStore(ctx, "c", "dst", []SortedSetUnionSource{{SetName: "a", Weight: 1}}, AggregateSum, tooShort)
	require.ErrorIs(t, err, ErrInvalidArgument)
	err = client.DictionarySetField(ctx, "c", "d", "f", []byte("v"), RefreshOnUpdate(tooShort))
	require.ErrorIs(t, err, ErrInvalidArgument)

	assert.Zero(t, srv.CallCount(wire.MethodSet))
	assert.Equal(t, uint64(5), client.Stats().Errors)

	require.NoError(t, client.Set(ctx, "c", Item{Key: "k", Value: []byte("v"), TTL: time.Millisecond}))
	e, _ := store.entry("k")
	assert.Equal(t, uint64(1), e.ttlMillis)

	_, err = NewCacheClient(testCredentials(t), testConfig(), tooShort, WithDialOptions(srv.DialOption()))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetUnexpectedResult(t *testing.T) {
	srv := momentotest.NewServer(t)
	srv.Handle(wire.MethodGet, momentotest.Unary(func(context.Context, *wire.GetRequest) (*wire.GetResponse, error) {
		return &wire.GetResponse{Result: wire.ResultInvalid}, nil
	}))
	client := newTestCacheClient(t, srv)

	_, err := client.Get(context.Background(), "c", "k")
	require.Error(t, err)
	assert.Equal(t, UnknownError, CodeOf(err))
}

func TestGetBatchSetBatch(t *testing.T) {
	srv := momentotest.NewServer(t)
	newFakeStore(srv)
	client := newTestCacheClient(t, srv)
	ctx := context.Background()

	var items []Item
	for i := range 40 {
		items = append(items, Item{Key: fmt.Sprintf("key-%d", i), Value: []byte(fmt.Sprintf("value-%d", i))})
	}
	require.NoError(t, client.SetBatch(ctx, "c", items))

	keys := []string{"key-3", "missing", "key-39", "key-0"}
	got, err := client.GetBatch(ctx, "c", keys)
	require.NoError(t, err)
	require.Len(t, got, len(keys))

	for i, key := range keys {
		assert.Equal(t, key, got[i].Key)
	}
	assert.Equal(t, []byte("value-3"), got[0].Value)
	assert.False(t, got[1].Found)
	assert.Equal(t, []byte("value-39"), got[2].Value)
	assert.Equal(t, []byte("value-0"), got[3].Value)

	assert.Equal(t, uint64(40), client.Stats().Sets)
	assert.Equal(t, uint64(4), client.Stats().Gets)
}

func TestGetBatchFailure(t *testing.T) {
	srv := momentotest.NewServer(t)
	srv.Handle(wire.MethodGet, momentotest.Unary(func(_ context.Context, req *wire.GetRequest) (*wire.GetResponse, error) {
		if strings.HasPrefix(string(req.Key), "bad") {
			return nil, status.Error(codes.PermissionDenied, "denied")
		}
		return &wire.GetResponse{Result: wire.ResultMiss}, nil
	}))
	client := newTestCacheClient(t, srv)

	_, err := client.GetBatch(context.Background(), "c", []string{"ok-1", "bad-1", "ok-2"})
	require.ErrorIs(t, err, ErrPermission)

	_, err = client.GetBatch(context.Background(), "", []string{"k"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIncrement(t *testing.T) {
	srv := momentotest.NewServer(t)

	var (
		mu      sync.Mutex
		counter int64
		ttls    []uint64
	)
	srv.Handle(wire.MethodIncrement, momentotest.Unary(func(_ context.Context, req *wire.IncrementRequest) (*wire.IncrementResponse, error) {
		mu.Lock()
		defer mu.Unlock()
		counter += req.Amount
		ttls = append(ttls, req.TTLMillis)
		return &wire.IncrementResponse{Value: counter}, nil
	}))
	client := newTestCacheClient(t, srv)
	ctx := context.Background()

	v, err := client.Increment(ctx, "c", "n", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = client.Increment(ctx, "c", "n", -7, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), v)

	mu.Lock()
	assert.Equal(t, []uint64{60000, 1000}, ttls)
	mu.Unlock()
	assert.Equal(t, uint64(2), client.Stats().Increments)
}

func TestSetIf(t *testing.T) {
	srv := momentotest.NewServer(t)

	requests := make(chan *wire.SetIfRequest, 10)
	srv.Handle(wire.MethodSetIf, momentotest.Unary(func(_ context.Context, req *wire.SetIfRequest) (*wire.SetIfResponse, error) {
		requests <- req
		return &wire.SetIfResponse{Stored: req.Condition != wire.ConditionPresent}, nil
	}))
	client := newTestCacheClient(t, srv)
	ctx := context.Background()
	item := Item{Key: "k", Value: []byte("v")}

	tests := []struct {
		name      string
		call      func() (bool, error)
		condition wire.Condition
		compare   []byte
		stored    bool
	}{
		{"absent", func() (bool, error) { return client.SetIfAbsent(ctx, "c", item) }, wire.ConditionAbsent, nil, true},
		{"present", func() (bool, error) { return client.SetIfPresent(ctx, "c", item) }, wire.ConditionPresent, nil, false},
		{"equal", func() (bool, error) { return client.SetIfEqual(ctx, "c", item, []byte("x")) }, wire.ConditionEqual, []byte("x"), true},
		{"not equal", func() (bool, error) { return client.SetIfNotEqual(ctx, "c", item, []byte("x")) }, wire.ConditionNotEqual, []byte("x"), true},
		{"present and not equal", func() (bool, error) { return client.SetIfPresentAndNotEqual(ctx, "c", item, []byte("x")) }, wire.ConditionPresentAndNotEqual, []byte("x"), true},
		{"absent or equal", func() (bool, error) { return client.SetIfAbsentOrEqual(ctx, "c", item, []byte("x")) }, wire.ConditionAbsentOrEqual, []byte("x"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, tt.stored, stored)

			req := <-requests
			assert.Equal(t, tt.condition, req.Condition)
			assert.Equal(t, tt.compare, req.Compare)
			assert.Equal(t, []byte("k"), req.Key)
			assert.Equal(t, uint64(60000), req.TTLMillis)
		})
	}
}

func TestKeysExist(t *testing.T) {
	srv := momentotest.NewServer(t)
	srv.Handle(wire.MethodKeysExist, momentotest.Unary(func(_ context.Context, req *wire.KeysExistRequest) (*wire.KeysExistResponse, error) {
		resp := &wire.KeysExistResponse{}
		for _, k := range req.Keys {
			resp.Exists = append(resp.Exists, strings.HasPrefix(string(k), "yes"))
		}
		return resp, nil
	}))
	client := newTestCacheClient(t, srv)
	ctx := context.Background()

	exists, err := client.KeysExist(ctx, "c", []string{"yes-1", "no", "yes-2"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, exists)

	ok, err := client.KeyExists(ctx, "c", "no")
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err = client.KeysExist(ctx, "c", nil)
	require.NoError(t, err)
	assert.Empty(t, exists)
	assert.Equal(t, 2, srv.CallCount(wire.MethodKeysExist))

	_, err = client.KeysExist(ctx, "  ", nil)
	require.ErrorIs(t, err, ErrInvalidArgument, "the cache name is checked even without keys")
	_, err = client.KeyExists(ctx, "", "k")
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 2, srv.CallCount(wire.MethodKeysExist))
}

func TestKeysExistShortResponse(t *testing.T) {
	srv := momentotest.NewServer(t)
	srv.Handle(wire.MethodKeysExist, momentotest.Unary(func(context.Context, *wire.KeysExistRequest) (*wire.KeysExistResponse, error) {
		return &wire.KeysExistResponse{Exists: []bool{true}}, nil
	}))
	client := newTestCacheClient(t, srv)

	_, err := client.KeysExist(context.Background(), "c", []string{"a", "b"})
	assert.Equal(t, UnknownError, CodeOf(err))
}

func TestItemGetTypeAndTTL(t *testing.T) {
	srv := momentotest.NewServer(t)
	srv.Handle(wire.MethodItemGetType, momentotest.Unary(func(_ context.Context, req *wire.ItemGetTypeRequest) (*wire.ItemGetTypeResponse, error) {
		if string(req.Key) == "missing" {
			return &wire.ItemGetTypeResponse{}, nil
		}
		return &wire.ItemGetTypeResponse{Found: true, Type: wire.ItemTypeSortedSet}, nil
	}))
	srv.Handle(wire.MethodItemGetTTL, momentotest.Unary(func(_ context.Context, req *wire.ItemGetTTLRequest) (*wire.ItemGetTTLResponse, error) {
		if string(req.Key) == "missing" {
			return &wire.ItemGetTTLResponse{}, nil
		}
		return &wire.ItemGetTTLResponse{Found: true, RemainingTTLMillis: 1500}, nil
	}))
	client := newTestCacheClient(t, srv)
	ctx := context.Background()

	typ, ok, err := client.ItemGetType(ctx, "c", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ItemTypeSortedSet, typ)
	assert.Equal(t, "sorted-set", typ.String())

	_, ok, err = client.ItemGetType(ctx, "c", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, ok, err := client.ItemGetTTL(ctx, "c", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, ttl)

	_, ok, err = client.ItemGetTTL(ctx, "c", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateTTL(t *testing.T) {
	srv := momentotest.NewServer(t)

	requests := make(chan *wire.UpdateTTLRequest, 10)
	srv.Handle(wire.MethodUpdateTTL, momentotest.Unary(func(_ context.Context, req *wire.UpdateTTLRequest) (*wire.UpdateTTLResponse, error) {
		requests <- req
		switch string(req.Key) {
		case "missing":
			return &wire.UpdateTTLResponse{Result: wire.TTLMissing}, nil
		case "kept":
			return &wire.UpdateTTLResponse{Result: wire.TTLNotSet}, nil
		default:
			return &wire.UpdateTTLResponse{Result: wire.TTLSet}, nil
		}
	}))
	client := newTestCacheClient(t, srv)
	ctx := context.Background()

	res, err := client.UpdateTTL(ctx, "c", "k", 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, TTLUpdated, res)
	req := <-requests
	assert.Equal(t, wire.TTLOverwrite, req.Mode)
	assert.Equal(t, uint64(3000), req.TTLMillis)

	res, err = client.IncreaseTTL(ctx, "c", "kept", time.Second)
	require.NoError(t, err)
	assert.Equal(t, TTLNotUpdated, res)
	assert.Equal(t, wire.TTLIncreaseTo, (<-requests).Mode)

	res, err = client.DecreaseTTL(ctx, "c", "missing", time.Second)
	require.NoError(t, err)
	assert.Equal(t, TTLMiss, res)
	assert.Equal(t, "Miss", res.String())
	assert.Equal(t, wire.TTLDecreaseTo, (<-requests).Mode)

	_, err = client.UpdateTTL(ctx, "c", "k", 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 3, srv.CallCount(wire.MethodUpdateTTL))
}
