package momento

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultMaxMessageBytes bounds the size of a single request or response.
const DefaultMaxMessageBytes = 5_243_000

// GrpcConfiguration holds the transport settings of a client.
type GrpcConfiguration struct {
	// Deadline bounds every unary call. Required: must be > 0.
	Deadline time.Duration

	// NumChannels is the number of gRPC channels in each endpoint pool.
	// Each channel carries at most 100 concurrent topic subscriptions.
	NumChannels int

	// KeepAliveWhileIdle sends keepalive pings without active calls.
	KeepAliveWhileIdle bool

	// KeepAliveInterval between keepalive pings. Zero disables keepalives.
	KeepAliveInterval time.Duration

	// KeepAliveTimeout after which an unanswered ping closes the connection.
	KeepAliveTimeout time.Duration

	// MaxSendMessageBytes and MaxRecvMessageBytes cap message sizes.
	// Zero leaves the gRPC defaults.
	MaxSendMessageBytes int
	MaxRecvMessageBytes int
}

// Configuration tunes a client. Start from a preset such as InRegion and
// adjust it with the With methods, which return modified copies.
type Configuration struct {
	Grpc GrpcConfiguration

	// EagerConnectTimeout makes client constructors connect every channel
	// and wait up to this long. Zero connects lazily on first use.
	EagerConnectTimeout time.Duration
}

func defaultGrpc(deadline time.Duration) GrpcConfiguration {
	return GrpcConfiguration{
		Deadline:            deadline,
		NumChannels:         1,
		KeepAliveWhileIdle:  true,
		KeepAliveInterval:   5 * time.Second,
		KeepAliveTimeout:    time.Second,
		MaxSendMessageBytes: DefaultMaxMessageBytes,
		MaxRecvMessageBytes: DefaultMaxMessageBytes,
	}
}

// Laptop suits development environments with high latency variance.
func Laptop() Configuration {
	return Configuration{Grpc: defaultGrpc(15 * time.Second)}
}

// InRegion suits servers in the same region as the cache.
func InRegion() Configuration {
	return Configuration{Grpc: defaultGrpc(1100 * time.Millisecond)}
}

// LowLatency favors failing fast over waiting on a slow call.
func LowLatency() Configuration {
	return Configuration{Grpc: defaultGrpc(500 * time.Millisecond)}
}

// Lambda suits short-lived serverless environments: a single channel and no
// keepalives, which would fail while the environment is frozen.
func Lambda() Configuration {
	g := defaultGrpc(1100 * time.Millisecond)
	g.KeepAliveWhileIdle = false
	g.KeepAliveInterval = 0
	g.KeepAliveTimeout = 0
	return Configuration{Grpc: g}
}

// ClientTimeout returns the deadline applied to every unary call.
func (c Configuration) ClientTimeout() time.Duration {
	return c.Grpc.Deadline
}

func (c Configuration) WithClientTimeout(d time.Duration) Configuration {
	c.Grpc.Deadline = d
	return c
}

func (c Configuration) WithNumChannels(n int) Configuration {
	c.Grpc.NumChannels = n
	return c
}

func (c Configuration) WithKeepAlive(whileIdle bool, interval, timeout time.Duration) Configuration {
	c.Grpc.KeepAliveWhileIdle = whileIdle
	c.Grpc.KeepAliveInterval = interval
	c.Grpc.KeepAliveTimeout = timeout
	return c
}

func (c Configuration) WithoutKeepAlive() Configuration {
	return c.WithKeepAlive(false, 0, 0)
}

func (c Configuration) WithMaxMessageBytes(send, recv int) Configuration {
	c.Grpc.MaxSendMessageBytes = send
	c.Grpc.MaxRecvMessageBytes = recv
	return c
}

func (c Configuration) WithEagerConnectTimeout(d time.Duration) Configuration {
	c.EagerConnectTimeout = d
	return c
}

// Validate reports the first invalid setting.
func (c Configuration) Validate() error {
	g := c.Grpc
	switch {
	case g.Deadline <= 0:
		return invalidArgument("client timeout must be > 0, got %s", g.Deadline)
	case g.NumChannels < 1:
		return invalidArgument("number of channels must be >= 1, got %d", g.NumChannels)
	case g.KeepAliveInterval < 0 || g.KeepAliveTimeout < 0:
		return invalidArgument("keepalive durations must not be negative")
	case g.MaxSendMessageBytes < 0 || g.MaxRecvMessageBytes < 0:
		return invalidArgument("message size limits must not be negative")
	case c.EagerConnectTimeout < 0:
		return invalidArgument("eager connect timeout must not be negative")
	}
	return nil
}

// envConfiguration lists the variables read by ConfigurationFromEnv.
type envConfiguration struct {
	ClientTimeout       time.Duration `env:"MOMENTO_CLIENT_TIMEOUT"`
	NumChannels         int           `env:"MOMENTO_NUM_CHANNELS"`
	KeepAliveWhileIdle  bool          `env:"MOMENTO_KEEPALIVE_WHILE_IDLE"`
	KeepAliveInterval   time.Duration `env:"MOMENTO_KEEPALIVE_INTERVAL"`
	KeepAliveTimeout    time.Duration `env:"MOMENTO_KEEPALIVE_TIMEOUT"`
	MaxSendMessageBytes int           `env:"MOMENTO_MAX_SEND_MESSAGE_BYTES"`
	MaxRecvMessageBytes int           `env:"MOMENTO_MAX_RECV_MESSAGE_BYTES"`
	EagerConnectTimeout time.Duration `env:"MOMENTO_EAGER_CONNECT_TIMEOUT"`
}

// ConfigurationFromEnv overrides base with the MOMENTO_* variables that are
// set. Durations use time.ParseDuration syntax.
func ConfigurationFromEnv(base Configuration) (Configuration, error) {
	e := envConfiguration{
		ClientTimeout:       base.Grpc.Deadline,
		NumChannels:         base.Grpc.NumChannels,
		KeepAliveWhileIdle:  base.Grpc.KeepAliveWhileIdle,
		KeepAliveInterval:   base.Grpc.KeepAliveInterval,
		KeepAliveTimeout:    base.Grpc.KeepAliveTimeout,
		MaxSendMessageBytes: base.Grpc.MaxSendMessageBytes,
		MaxRecvMessageBytes: base.Grpc.MaxRecvMessageBytes,
		EagerConnectTimeout: base.EagerConnectTimeout,
	}
	if err := env.Parse(&e); err != nil {
		return base, &Error{Code: InvalidArgumentError, Message: "invalid configuration environment", Cause: fmt.Errorf("parse env: %w", err)}
	}

	cfg := Configuration{
		Grpc: GrpcConfiguration{
			Deadline:            e.ClientTimeout,
			NumChannels:         e.NumChannels,
			KeepAliveWhileIdle:  e.KeepAliveWhileIdle,
			KeepAliveInterval:   e.KeepAliveInterval,
			KeepAliveTimeout:    e.KeepAliveTimeout,
			MaxSendMessageBytes: e.MaxSendMessageBytes,
			MaxRecvMessageBytes: e.MaxRecvMessageBytes,
		},
		EagerConnectTimeout: e.EagerConnectTimeout,
	}
	return cfg, cfg.Validate()
}
