package momento

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/pior/momento/internal/transport"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// endpoint is a channel pool to one service address with its call policy.
type endpoint struct {
	name    string
	pool    *transport.Pool
	breaker *CircuitBreaker // nil if not configured
	timeout time.Duration
	logger  zerolog.Logger
}

func dialConfig(creds CredentialProvider, cfg Configuration, client string, extra []grpc.DialOption) transport.DialConfig {
	dc := transport.DialConfig{
		MaxSendMessageBytes: cfg.Grpc.MaxSendMessageBytes,
		MaxRecvMessageBytes: cfg.Grpc.MaxRecvMessageBytes,
		Headers: transport.Headers{
			AuthToken:      creds.authToken,
			Agent:          agent(client),
			RuntimeVersion: runtime.Version(),
		},
		Extra: extra,
	}

	switch creds.security {
	case EndpointSecurityInsecure:
		dc.Security = transport.Insecure
	case EndpointSecurityUnverified:
		dc.Security = transport.UnverifiedTLS
	case EndpointSecurityTLSOverride:
		dc.Security = transport.SecureTLS
		dc.ServerName = creds.tlsServerName
	default:
		dc.Security = transport.SecureTLS
	}

	if cfg.Grpc.KeepAliveInterval > 0 {
		dc.KeepAliveTime = cfg.Grpc.KeepAliveInterval
		dc.KeepAliveTimeout = cfg.Grpc.KeepAliveTimeout
		dc.KeepAlivePermitWithoutStream = cfg.Grpc.KeepAliveWhileIdle
	}

	return dc
}

func newEndpoint(name, address string, channels int, creds CredentialProvider, cfg Configuration, client string, o options) (*endpoint, error) {
	logger := o.logger.With().Str("endpoint", name).Logger()

	pool, err := transport.NewPool(transport.Target(address), channels, dialConfig(creds, cfg, client, o.dialOptions), logger)
	if err != nil {
		return nil, &Error{Code: InvalidArgumentError, Message: "could not create channels to " + address, Cause: err}
	}

	e := &endpoint{
		name:    name,
		pool:    pool,
		timeout: cfg.ClientTimeout(),
		logger:  logger,
	}
	if o.newCircuitBreaker != nil {
		e.breaker = o.newCircuitBreaker(name)
	}

	if cfg.EagerConnectTimeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.EagerConnectTimeout)
		defer cancel()
		if err := pool.Connect(ctx); err != nil {
			// The pool stays usable; channels keep connecting in the background.
			logger.Warn().Err(err).Msg("eager connection did not complete")
		}
	}

	return e, nil
}

// conn picks a channel: by key when affinity is requested, else round-robin.
func (e *endpoint) conn(key []byte) (*grpc.ClientConn, error) {
	var (
		conn *grpc.ClientConn
		err  error
	)
	if key != nil {
		conn, err = e.pool.ForKey(key, transport.JumpSelector)
	} else {
		conn, err = e.pool.Next()
	}
	if err != nil {
		return nil, translateError(err, nil)
	}
	return conn, nil
}

// invoke performs a unary call under the client deadline, through the
// circuit breaker when one is configured.
func (e *endpoint) invoke(ctx context.Context, key []byte, method string, req, resp any) error {
	call := func() (struct{}, error) {
		conn, err := e.conn(key)
		if err != nil {
			return struct{}{}, err
		}

		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		var trailer metadata.MD
		err = conn.Invoke(ctx, method, req, resp, grpc.Trailer(&trailer))
		return struct{}{}, translateError(err, trailer)
	}

	var err error
	if e.breaker != nil {
		_, err = e.breaker.Execute(call)
		err = translateError(err, nil)
	} else {
		_, err = call()
	}

	if err != nil {
		var me *Error
		if errors.As(err, &me) {
			e.logger.Debug().Str("method", method).Str("code", string(me.Code)).Err(me.Cause).Msg("call failed")
		}
	}
	return err
}

func (e *endpoint) stats() EndpointStats {
	s := EndpointStats{
		Name:      e.name,
		Target:    e.pool.Target(),
		PoolStats: poolStatsFrom(e.pool.Stats()),
	}
	if e.breaker != nil {
		s.CircuitBreakerState = e.breaker.State()
		s.CircuitBreakerCount = e.breaker.Counts()
	}
	return s
}

func (e *endpoint) close() error {
	return e.pool.Close()
}
