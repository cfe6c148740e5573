package momento

import (
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
)

// Option customizes a client.
type Option func(*options)

type options struct {
	logger            zerolog.Logger
	dialOptions       []grpc.DialOption
	newCircuitBreaker func(endpoint string) *CircuitBreaker
	keyAffinity       bool
}

func defaultOptions() options {
	return options{logger: zerolog.Nop()}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. Clients log nothing by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDialOptions appends gRPC dial options to every channel. They are
// applied last and override the ones derived from the Configuration.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) {
		o.dialOptions = append(o.dialOptions, opts...)
	}
}

// WithCircuitBreaker guards each endpoint with a breaker built by newBreaker,
// called once per endpoint. See NewCircuitBreakerConfig.
func WithCircuitBreaker(newBreaker func(endpoint string) *CircuitBreaker) Option {
	return func(o *options) {
		o.newCircuitBreaker = newBreaker
	}
}

// WithKeyAffinity pins the calls on a given key to the same channel instead
// of spreading them round-robin. Only meaningful with several channels.
func WithKeyAffinity() Option {
	return func(o *options) {
		o.keyAffinity = true
	}
}
