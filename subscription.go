package momento

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/puddle/v2"
	"github.com/pior/momento/internal/transport"
	"github.com/pior/momento/wire"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
)

// ErrSubscriptionClosed is returned by Item once the subscription is closed.
var ErrSubscriptionClosed = &Error{Code: FailedPreconditionError, Message: "The subscription is closed"}

var subscribeDesc = &grpc.StreamDesc{StreamName: "Subscribe", ServerStreams: true}

// TopicItem is one item of a subscription. It carries either a published
// value or, when Discontinuity is set, a gap in the topic sequence.
type TopicItem struct {
	Value          TopicValue
	SequenceNumber uint64
	SequencePage   uint64
	PublisherID    string

	Discontinuity *Discontinuity
}

// Discontinuity reports that messages between LastSequenceNumber and
// NewSequenceNumber were lost. LastSequenceNumber is zero when unknown, as
// for an item whose value kind the client does not support.
type Discontinuity struct {
	LastSequenceNumber uint64
	NewSequenceNumber  uint64
	NewSequencePage    uint64
}

type received struct {
	item wire.SubscriptionItem
	err  error
}

// Subscription is an open subscription on a topic. Interrupted streams are
// reopened from the last sequence number seen.
//
// Item must not be called concurrently with itself.
type Subscription struct {
	client *TopicClient
	slot   *puddle.Resource[*streamSlot]
	cache  string
	topic  string
	logger zerolog.Logger

	ctx    context.Context // cancelled by Close
	cancel context.CancelFunc

	mu           sync.Mutex
	items        chan received
	streamCancel context.CancelFunc
	sequence     uint64
	page         uint64
	retry        *backoff.ExponentialBackOff

	closeOnce sync.Once
}

func newSubscription(c *TopicClient, slot *puddle.Resource[*streamSlot], cache, topic string, resumeAt uint64) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 100 * time.Millisecond
	retry.MaxInterval = 5 * time.Second

	return &Subscription{
		client:   c,
		slot:     slot,
		cache:    cache,
		topic:    topic,
		logger:   c.logger.With().Str("cache", cache).Str("topic", topic).Logger(),
		ctx:      ctx,
		cancel:   cancel,
		sequence: resumeAt,
		retry:    retry,
	}
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string { return s.topic }

// SequenceNumber returns the sequence number of the last item received.
func (s *Subscription) SequenceNumber() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence
}

// open starts a stream and waits until the service accepts it, bounded by
// ctx and the client timeout.
func (s *Subscription) open(ctx context.Context) error {
	conn, err := s.client.endpoint.pool.Index(s.slot.Value().channel)
	if err != nil {
		return translateError(err, nil)
	}

	streamCtx, cancel := context.WithCancel(transport.WithCacheName(s.ctx, s.cache))
	stream, err := conn.NewStream(streamCtx, subscribeDesc, wire.MethodSubscribe)
	if err != nil {
		cancel()
		return translateError(err, nil)
	}

	req := &wire.SubscribeRequest{
		CacheName:              s.cache,
		Topic:                  s.topic,
		ResumeAtSequenceNumber: s.sequence,
		SequencePage:           s.page,
	}
	// io.EOF means the stream already ended; its status is read below.
	if err := stream.SendMsg(req); err != nil && !errors.Is(err, io.EOF) {
		cancel()
		return translateError(err, nil)
	}
	if err := stream.CloseSend(); err != nil {
		cancel()
		return translateError(err, nil)
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, s.client.endpoint.timeout)
	defer waitCancel()

	accepted := make(chan error, 1)
	go func() { accepted <- awaitAccepted(stream) }()

	select {
	case err = <-accepted:
		if err != nil {
			cancel()
			return translateError(err, stream.Trailer())
		}
	case <-waitCtx.Done():
		cancel()
		return translateError(waitCtx.Err(), nil)
	}

	items := make(chan received)
	go receive(stream, items, streamCtx.Done())

	s.items = items
	s.streamCancel = cancel
	s.client.stats.recordSubscription()
	s.logger.Debug().Uint64("resume_at", s.sequence).Int("channel", s.slot.Value().channel).Msg("subscribed")
	return nil
}

// awaitAccepted waits for the response headers. A stream rejected by the
// service ends without headers and its status is returned.
func awaitAccepted(stream grpc.ClientStream) error {
	md, err := stream.Header()
	if err != nil {
		return err
	}
	if md != nil {
		return nil
	}

	var item wire.SubscriptionItem
	err = stream.RecvMsg(&item)
	if err == nil || errors.Is(err, io.EOF) {
		return unknownError("The subscription ended before it started", err)
	}
	return err
}

func receive(stream grpc.ClientStream, out chan<- received, done <-chan struct{}) {
	for {
		var r received
		r.err = stream.RecvMsg(&r.item)

		select {
		case out <- r:
		case <-done:
			return
		}
		if r.err != nil {
			return
		}
	}
}

// Item returns the next value or discontinuity, waiting for one as long as
// ctx allows. Heartbeats are consumed silently.
//
// A failed stream is reopened transparently. Item returns an error when ctx
// is done, the subscription is closed, or the service rejects the
// resubscription for a reason retrying cannot fix.
func (s *Subscription) Item(ctx context.Context) (TopicItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.ctx.Err() != nil {
			return TopicItem{}, ErrSubscriptionClosed
		}

		if s.items == nil {
			if err := s.resubscribe(ctx); err != nil {
				return TopicItem{}, err
			}
			continue
		}

		var r received
		select {
		case r = <-s.items:
		case <-ctx.Done():
			return TopicItem{}, translateError(ctx.Err(), nil)
		case <-s.ctx.Done():
			return TopicItem{}, ErrSubscriptionClosed
		}

		if r.err != nil {
			s.logger.Debug().Err(r.err).Msg("subscription stream ended, resubscribing")
			s.dropStream()
			continue
		}

		if item, ok := s.accept(r.item); ok {
			return item, nil
		}
	}
}

// accept tracks the sequence position and reports whether item is returned
// to the caller.
func (s *Subscription) accept(msg wire.SubscriptionItem) (TopicItem, bool) {
	switch msg.Kind {
	case wire.KindItem:
		if msg.Item == nil {
			s.logger.Debug().Msg("subscription item without a position, skipping")
			return TopicItem{}, false
		}
		s.sequence, s.page = msg.Item.SequenceNumber, msg.Item.SequencePage
		if msg.Item.Value == nil {
			// The position is still known, so the gap is reported.
			s.logger.Debug().Uint64("sequence", msg.Item.SequenceNumber).Msg("subscription item without a value")
			return TopicItem{
				SequenceNumber: msg.Item.SequenceNumber,
				SequencePage:   msg.Item.SequencePage,
				Discontinuity: &Discontinuity{
					NewSequenceNumber: msg.Item.SequenceNumber,
					NewSequencePage:   msg.Item.SequencePage,
				},
			}, true
		}
		return TopicItem{
			Value:          topicValueFromWire(*msg.Item.Value),
			SequenceNumber: msg.Item.SequenceNumber,
			SequencePage:   msg.Item.SequencePage,
			PublisherID:    msg.Item.PublisherID,
		}, true

	case wire.KindDiscontinuity:
		if msg.Discontinuity == nil {
			s.logger.Debug().Msg("discontinuity without positions, skipping")
			return TopicItem{}, false
		}
		d := msg.Discontinuity
		s.logger.Debug().Uint64("last", d.LastSequence).Uint64("new", d.NewSequence).Msg("discontinuity")
		s.sequence, s.page = d.NewSequence, d.NewSequencePage
		return TopicItem{
			SequenceNumber: d.NewSequence,
			SequencePage:   d.NewSequencePage,
			Discontinuity: &Discontinuity{
				LastSequenceNumber: d.LastSequence,
				NewSequenceNumber:  d.NewSequence,
				NewSequencePage:    d.NewSequencePage,
			},
		}, true

	case wire.KindHeartbeat:
		s.logger.Trace().Msg("heartbeat")
		return TopicItem{}, false

	default:
		s.logger.Debug().Int("kind", int(msg.Kind)).Msg("unknown subscription item, skipping")
		return TopicItem{}, false
	}
}

// resubscribe reopens the stream, backing off between failed attempts.
func (s *Subscription) resubscribe(ctx context.Context) error {
	for {
		err := s.open(ctx)
		if err == nil {
			s.retry.Reset()
			return nil
		}
		if s.ctx.Err() != nil {
			return ErrSubscriptionClosed
		}
		if !isEndpointFailure(err) {
			s.client.stats.recordError()
			return err
		}

		delay := s.retry.NextBackOff()
		s.logger.Debug().Err(err).Dur("delay", delay).Msg("resubscribe failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return translateError(ctx.Err(), nil)
		case <-s.ctx.Done():
			timer.Stop()
			return ErrSubscriptionClosed
		}
	}
}

func (s *Subscription) dropStream() {
	if s.streamCancel != nil {
		s.streamCancel()
	}
	s.items = nil
	s.streamCancel = nil
}

// Close ends the subscription and releases its stream slot. A concurrent
// Item call returns ErrSubscriptionClosed.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()

		s.mu.Lock()
		s.dropStream()
		s.mu.Unlock()

		s.release()
		s.logger.Debug().Msg("subscription closed")
	})
	return nil
}

func (s *Subscription) release() {
	s.cancel()
	s.client.release(s)
}
