// Package transport maintains pools of gRPC channels to one endpoint.
//
// A Pool holds a fixed number of channels. Calls are spread over them
// round-robin, or pinned to one by key. A channel found in
// TransientFailure has its connect backoff reset so the next call retries
// immediately. A channel found shut down is dialed again and replaced.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pior/momento/internal/coarsetime"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
)

var ErrPoolClosed = errors.New("transport: pool closed")

type channel struct {
	conn     *grpc.ClientConn
	lastUsed atomic.Int64
}

func (ch *channel) touch() {
	ch.lastUsed.Store(coarsetime.UnixNano())
}

// Pool is a fixed-size set of gRPC channels to a single target.
type Pool struct {
	target string
	dial   DialConfig
	logger zerolog.Logger

	mu       sync.RWMutex
	channels []*channel
	closed   bool

	next  atomic.Uint64
	stats statsCollector
}

// NewPool creates size channels to target. Channels connect lazily, on
// their first call or on Connect.
func NewPool(target string, size int, dial DialConfig, logger zerolog.Logger) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("transport: pool size must be > 0, got %d", size)
	}

	p := &Pool{
		target:   target,
		dial:     dial,
		logger:   logger.With().Str("target", target).Logger(),
		channels: make([]*channel, 0, size),
	}

	for range size {
		ch, err := p.newChannel()
		if err != nil {
			p.Close()
			return nil, err
		}
		p.channels = append(p.channels, ch)
	}

	return p, nil
}

func (p *Pool) newChannel() (*channel, error) {
	conn, err := grpc.NewClient(p.target, p.dial.options()...)
	if err != nil {
		return nil, &DialError{Target: p.target, Err: err}
	}
	ch := &channel{conn: conn}
	ch.touch()
	return ch, nil
}

// Target returns the dialed target.
func (p *Pool) Target() string {
	return p.target
}

// Size returns the number of channels.
func (p *Pool) Size() int {
	return cap(p.channels)
}

// Next returns the next channel in round-robin order.
func (p *Pool) Next() (*grpc.ClientConn, error) {
	n := p.next.Add(1) - 1
	return p.get(int(n % uint64(p.Size())))
}

// ForKey returns the channel the key is pinned to.
func (p *Pool) ForKey(key []byte, selector Selector) (*grpc.ClientConn, error) {
	if selector == nil {
		selector = JumpSelector
	}
	return p.get(selector(key, p.Size()))
}

// Index returns the channel at position i, for callers that track
// per-channel resources themselves.
func (p *Pool) Index(i int) (*grpc.ClientConn, error) {
	if i < 0 || i >= p.Size() {
		return nil, fmt.Errorf("transport: channel index %d out of range", i)
	}
	return p.get(i)
}

func (p *Pool) get(i int) (*grpc.ClientConn, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrPoolClosed
	}
	ch := p.channels[i]
	p.mu.RUnlock()

	switch ch.conn.GetState() {
	case connectivity.TransientFailure:
		p.stats.recordReconnect()
		p.logger.Debug().Int("channel", i).Msg("channel failing, resetting connect backoff")
		ch.conn.ResetConnectBackoff()
	case connectivity.Shutdown:
		var err error
		ch, err = p.redial(i, ch)
		if err != nil {
			return nil, err
		}
	}

	p.stats.recordPick()
	ch.touch()
	return ch.conn, nil
}

// redial replaces a shut down channel unless another caller already did.
func (p *Pool) redial(i int, old *channel) (*channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	if current := p.channels[i]; current != old {
		return current, nil
	}

	ch, err := p.newChannel()
	if err != nil {
		p.logger.Warn().Err(err).Int("channel", i).Msg("channel redial failed")
		return nil, err
	}
	p.channels[i] = ch
	p.stats.recordRedial()
	p.logger.Debug().Int("channel", i).Msg("channel redialed")
	return ch, nil
}

// Connect starts connecting every channel and waits until all are ready
// or ctx is done.
func (p *Pool) Connect(ctx context.Context) error {
	p.mu.RLock()
	channels := append([]*channel(nil), p.channels...)
	closed := p.closed
	p.mu.RUnlock()

	if closed {
		return ErrPoolClosed
	}

	for i, ch := range channels {
		ch.conn.Connect()
		for {
			state := ch.conn.GetState()
			if state == connectivity.Ready {
				break
			}
			if state == connectivity.Shutdown {
				return ErrPoolClosed
			}
			if !ch.conn.WaitForStateChange(ctx, state) {
				return fmt.Errorf("transport: channel %d to %s not ready (%s): %w", i, p.target, state, ctx.Err())
			}
		}
	}
	return nil
}

// Stats returns a snapshot of the pool.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Stats{
		Target:     p.target,
		Channels:   len(p.channels),
		Picks:      p.stats.picks.Load(),
		Reconnects: p.stats.reconnects.Load(),
		Redials:    p.stats.redials.Load(),
	}
	for _, ch := range p.channels {
		switch ch.conn.GetState() {
		case connectivity.Ready:
			s.Ready++
		case connectivity.Idle, connectivity.Connecting:
			s.Connecting++
		case connectivity.TransientFailure:
			s.Failing++
		}
		if idle := coarsetime.Since(ch.lastUsed.Load()); idle > s.OldestIdle {
			s.OldestIdle = idle
		}
	}
	return s
}

// Close closes every channel. Calls in flight fail with Canceled.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	for _, ch := range p.channels {
		if err := ch.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
