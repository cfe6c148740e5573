package transport

import (
	"context"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Metadata keys sent with calls.
const (
	HeaderAuthorization  = "authorization"
	HeaderAgent          = "agent"
	HeaderRuntimeVersion = "runtime-version"
	HeaderCache          = "cache"
)

// Headers are attached to outgoing calls by every channel of a pool.
// Agent and RuntimeVersion are sent once per channel, on its first call.
type Headers struct {
	AuthToken      string
	Agent          string
	RuntimeVersion string
}

type cacheKey struct{}

// WithCacheName tags ctx so the call carries the cache header.
func WithCacheName(ctx context.Context, cache string) context.Context {
	return context.WithValue(ctx, cacheKey{}, cache)
}

// headerAttacher is created per channel.
type headerAttacher struct {
	headers  Headers
	sentOnce atomic.Bool
}

func (a *headerAttacher) attach(ctx context.Context) context.Context {
	kv := make([]string, 0, 8)
	kv = append(kv, HeaderAuthorization, a.headers.AuthToken)
	if a.sentOnce.CompareAndSwap(false, true) {
		if a.headers.Agent != "" {
			kv = append(kv, HeaderAgent, a.headers.Agent)
		}
		if a.headers.RuntimeVersion != "" {
			kv = append(kv, HeaderRuntimeVersion, a.headers.RuntimeVersion)
		}
	}
	if cache, ok := ctx.Value(cacheKey{}).(string); ok && cache != "" {
		kv = append(kv, HeaderCache, cache)
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}

func (a *headerAttacher) unary(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	return invoker(a.attach(ctx), method, req, reply, cc, opts...)
}

func (a *headerAttacher) stream(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return streamer(a.attach(ctx), desc, cc, method, opts...)
}
