// Package momentotest runs an in-process gRPC server speaking the wire
// codec, for exercising clients end to end without a network.
package momentotest

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/pior/momento/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// Target is the dial target matching DialOption.
const Target = "passthrough:///bufnet"

// Call records one request received by the server.
type Call struct {
	Method   string
	Metadata metadata.MD
}

// Server dispatches calls by full method name to registered handlers.
// Unregistered methods fail with Unimplemented.
type Server struct {
	lis *bufconn.Listener
	srv *grpc.Server

	mu       sync.Mutex
	handlers map[string]grpc.StreamHandler
	calls    []Call
}

// NewServer starts a server stopped at the end of the test.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		lis:      bufconn.Listen(1 << 20),
		handlers: make(map[string]grpc.StreamHandler),
	}
	s.srv = grpc.NewServer(grpc.UnknownServiceHandler(s.dispatch))

	go func() {
		_ = s.srv.Serve(s.lis)
	}()
	t.Cleanup(s.srv.Stop)

	return s
}

// DialOption routes a client's connections to the server.
func (s *Server) DialOption() grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return s.lis.DialContext(ctx)
	})
}

// Handle registers h for the full method name, replacing any previous one.
func (s *Server) Handle(method string, h grpc.StreamHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Calls returns the calls received for method, in arrival order.
func (s *Server) Calls(method string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Call
	for _, c := range s.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns the number of calls received for method.
func (s *Server) CallCount(method string) int {
	return len(s.Calls(method))
}

// Stop closes the listener and drops every connection.
func (s *Server) Stop() {
	s.srv.Stop()
}

func (s *Server) dispatch(srv any, stream grpc.ServerStream) error {
	method, _ := grpc.MethodFromServerStream(stream)
	md, _ := metadata.FromIncomingContext(stream.Context())

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Metadata: md.Copy()})
	h := s.handlers[method]
	s.mu.Unlock()

	if h == nil {
		return status.Errorf(codes.Unimplemented, "method %s not handled", method)
	}
	return h(srv, stream)
}

// Unary adapts fn into a handler for a unary method.
func Unary[Req, Resp any](fn func(ctx context.Context, req *Req) (*Resp, error)) grpc.StreamHandler {
	return func(_ any, stream grpc.ServerStream) error {
		req := new(Req)
		if err := stream.RecvMsg(req); err != nil {
			return err
		}
		resp, err := fn(stream.Context(), req)
		if err != nil {
			return err
		}
		return stream.SendMsg(resp)
	}
}

// Stream adapts fn into a handler for a server-streaming method. Headers
// are sent before fn runs, as the service does once a stream is accepted.
func Stream[Req, Item any](fn func(ctx context.Context, req *Req, send func(*Item) error) error) grpc.StreamHandler {
	return func(_ any, stream grpc.ServerStream) error {
		req := new(Req)
		if err := stream.RecvMsg(req); err != nil {
			return err
		}
		if err := stream.SendHeader(metadata.MD{}); err != nil {
			return err
		}
		return fn(stream.Context(), req, func(item *Item) error {
			return stream.SendMsg(item)
		})
	}
}

// Fail answers every call with the given status. Trailer is a list of
// key/value pairs sent as trailing metadata.
func Fail(code codes.Code, msg string, trailer ...string) grpc.StreamHandler {
	return FailStatus(status.New(code, msg), trailer...)
}

// FailStatus answers every call with st, which may carry details.
func FailStatus(st *status.Status, trailer ...string) grpc.StreamHandler {
	return func(_ any, stream grpc.ServerStream) error {
		var req wire.Empty
		_ = stream.RecvMsg(&req)
		if len(trailer) > 0 {
			stream.SetTrailer(metadata.Pairs(trailer...))
		}
		return st.Err()
	}
}
