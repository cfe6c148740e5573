package momento

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jackc/puddle/v2"
	"github.com/pior/momento/internal/transport"
	"github.com/pior/momento/wire"
	"github.com/rs/zerolog"
)

// TopicValue is a message published on a topic: either text or bytes.
type TopicValue struct {
	text   string
	binary []byte
	isText bool
}

// TextValue returns a text message.
func TextValue(s string) TopicValue {
	return TopicValue{text: s, isText: true}
}

// BinaryValue returns a binary message.
func BinaryValue(b []byte) TopicValue {
	return TopicValue{binary: b}
}

// IsText reports whether the message was published as text.
func (v TopicValue) IsText() bool { return v.isText }

// Text returns the message as a string. Binary messages are converted.
func (v TopicValue) Text() string {
	if v.isText {
		return v.text
	}
	return string(v.binary)
}

// Bytes returns the message bytes. Text messages are converted.
func (v TopicValue) Bytes() []byte {
	if v.isText {
		return []byte(v.text)
	}
	return v.binary
}

func (v TopicValue) toWire() wire.TopicValue {
	return wire.TopicValue{Text: v.text, Binary: v.binary, IsText: v.isText}
}

func topicValueFromWire(v wire.TopicValue) TopicValue {
	return TopicValue{text: v.Text, binary: v.Binary, isText: v.IsText}
}

// streamSlot pins a subscription to one channel of the pool.
type streamSlot struct {
	channel int
}

// TopicClient publishes to and subscribes on topics. It is safe for
// concurrent use.
type TopicClient struct {
	endpoint *endpoint
	logger   zerolog.Logger

	slots      *puddle.Pool[*streamSlot]
	slotCount  atomic.Uint64
	active     atomic.Int64
	maxStreams int
	stats      clientStatsCollector

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewTopicClient creates a topic client on the cache endpoint. Each of the
// configured channels carries at most MaxConcurrentStreamsPerChannel
// subscriptions.
func NewTopicClient(creds CredentialProvider, cfg Configuration, opts ...Option) (*TopicClient, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)

	e, err := newEndpoint("topics", creds.cacheEndpoint, cfg.Grpc.NumChannels, creds, cfg, "topic", o)
	if err != nil {
		return nil, err
	}

	c := &TopicClient{
		endpoint:   e,
		logger:     o.logger,
		maxStreams: cfg.Grpc.NumChannels * MaxConcurrentStreamsPerChannel,
		subs:       make(map[*Subscription]struct{}),
	}

	c.slots, err = puddle.NewPool(&puddle.Config[*streamSlot]{
		Constructor: func(context.Context) (*streamSlot, error) {
			n := c.slotCount.Add(1) - 1
			return &streamSlot{channel: int(n % uint64(cfg.Grpc.NumChannels))}, nil
		},
		Destructor: func(*streamSlot) {},
		MaxSize:    int32(c.maxStreams),
	})
	if err != nil {
		_ = e.close()
		return nil, invalidArgument("could not create the stream pool: %v", err)
	}

	return c, nil
}

// Close ends every subscription and closes the channels.
func (c *TopicClient) Close() error {
	c.mu.Lock()
	c.closed = true
	subs := make([]*Subscription, 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		_ = s.Close()
	}

	// Blocks until every slot is released.
	c.slots.Close()
	return c.endpoint.close()
}

// Stats returns a snapshot of client statistics.
func (c *TopicClient) Stats() ClientStats {
	return c.stats.snapshot()
}

// EndpointStats returns stats for the topics endpoint.
func (c *TopicClient) EndpointStats() []EndpointStats {
	return []EndpointStats{c.endpoint.stats()}
}

// ActiveSubscriptions returns the number of open subscriptions.
func (c *TopicClient) ActiveSubscriptions() int {
	return int(c.active.Load())
}

// Publish sends value to every subscriber of topic.
func (c *TopicClient) Publish(ctx context.Context, cache, topic string, value TopicValue) error {
	if err := validateCacheName(cache); err != nil {
		return c.fail(err)
	}
	if err := validateName("Topic", topic); err != nil {
		return c.fail(err)
	}

	req := &wire.PublishRequest{CacheName: cache, Topic: topic, Value: value.toWire()}
	if err := c.endpoint.invoke(transport.WithCacheName(ctx, cache), nil, wire.MethodPublish, req, &wire.Empty{}); err != nil {
		return c.fail(err)
	}
	c.stats.recordPublish()
	return nil
}

// Subscribe opens a subscription on topic. With resumeAt > 0 the service
// replays what it retained from that sequence number on.
//
// The subscription holds a stream slot until it is closed. When every slot
// is taken Subscribe fails with ClientResourceExhaustedError.
func (c *TopicClient) Subscribe(ctx context.Context, cache, topic string, resumeAt uint64) (*Subscription, error) {
	if err := validateCacheName(cache); err != nil {
		return nil, c.fail(err)
	}
	if err := validateName("Topic", topic); err != nil {
		return nil, c.fail(err)
	}

	slot, err := c.acquireSlot(ctx)
	if err != nil {
		return nil, c.fail(err)
	}

	s := newSubscription(c, slot, cache, topic, resumeAt)
	if !c.track(s) {
		s.release()
		return nil, c.fail(translateError(transport.ErrPoolClosed, nil))
	}
	if err := s.open(ctx); err != nil {
		_ = s.Close()
		return nil, c.fail(err)
	}
	return s, nil
}

// track registers s so Close can end it. It fails once the client is closed.
func (c *TopicClient) track(s *Subscription) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.subs[s] = struct{}{}
	return true
}

func (c *TopicClient) acquireSlot(ctx context.Context) (*puddle.Resource[*streamSlot], error) {
	if n := c.active.Add(1); n > int64(c.maxStreams) {
		c.active.Add(-1)
		return nil, maxConcurrentStreamsError(int(n-1), c.endpoint.pool.Size(), MaxConcurrentStreamsPerChannel)
	}

	res, err := c.slots.Acquire(ctx)
	if err != nil {
		c.active.Add(-1)
		if errors.Is(err, puddle.ErrClosedPool) {
			return nil, translateError(transport.ErrPoolClosed, nil)
		}
		return nil, translateError(err, nil)
	}
	return res, nil
}

func (c *TopicClient) release(s *Subscription) {
	c.mu.Lock()
	delete(c.subs, s)
	c.mu.Unlock()

	s.slot.Release()
	c.active.Add(-1)
}

func (c *TopicClient) fail(err error) error {
	c.stats.recordError()
	return err
}
