package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pior/momento/wire"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

const defaultPort = "443"

// Security selects the transport credentials of a channel.
type Security int

const (
	// SecureTLS verifies the server against the system roots.
	SecureTLS Security = iota
	// Insecure sends plaintext.
	Insecure
	// UnverifiedTLS encrypts without verifying the server certificate.
	UnverifiedTLS
)

// DialConfig describes how every channel of a pool is dialed.
type DialConfig struct {
	Security Security

	// ServerName overrides the TLS server name. Empty uses the target host.
	ServerName string

	// KeepAliveTime is the ping interval. Zero disables client keepalives.
	KeepAliveTime                time.Duration
	KeepAliveTimeout             time.Duration
	KeepAlivePermitWithoutStream bool

	MaxSendMessageBytes int
	MaxRecvMessageBytes int

	Headers Headers

	// Extra options are appended last and win over the ones above.
	Extra []grpc.DialOption
}

// DialError wraps a failure to create a channel.
type DialError struct {
	Target string
	Err    error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("transport: dial %s: %v", e.Target, e.Err)
}

func (e *DialError) Unwrap() error {
	return e.Err
}

// Target turns an endpoint into a gRPC target, adding the default TLS port
// to bare host names. Targets with a resolver scheme are left alone.
func Target(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if _, _, err := net.SplitHostPort(endpoint); err == nil {
		return endpoint
	}
	return net.JoinHostPort(endpoint, defaultPort)
}

// options builds the dial options of one channel. Each call gets its own
// header attacher so the once-per-channel headers are tracked per channel.
func (c DialConfig) options() []grpc.DialOption {
	headers := &headerAttacher{headers: c.Headers}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(c.credentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(headers.unary),
		grpc.WithChainStreamInterceptor(headers.stream),
	}

	callOpts := []grpc.CallOption{grpc.CallContentSubtype(wire.CodecName)}
	if c.MaxSendMessageBytes > 0 {
		callOpts = append(callOpts, grpc.MaxCallSendMsgSize(c.MaxSendMessageBytes))
	}
	if c.MaxRecvMessageBytes > 0 {
		callOpts = append(callOpts, grpc.MaxCallRecvMsgSize(c.MaxRecvMessageBytes))
	}
	opts = append(opts, grpc.WithDefaultCallOptions(callOpts...))

	if c.KeepAliveTime > 0 {
		opts = append(opts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                c.KeepAliveTime,
			Timeout:             c.KeepAliveTimeout,
			PermitWithoutStream: c.KeepAlivePermitWithoutStream,
		}))
	}

	return append(opts, c.Extra...)
}

func (c DialConfig) credentials() credentials.TransportCredentials {
	switch c.Security {
	case Insecure:
		return insecure.NewCredentials()
	case UnverifiedTLS:
		return credentials.NewTLS(&tls.Config{
			ServerName:         c.ServerName,
			InsecureSkipVerify: true, //nolint:gosec
		})
	default:
		return credentials.NewTLS(&tls.Config{
			ServerName: c.ServerName,
			MinVersion: tls.VersionTLS12,
		})
	}
}
