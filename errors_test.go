package momento

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pior/momento/internal/transport"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestTranslateErrorStatusCodes(t *testing.T) {
	tests := []struct {
		code codes.Code
		want ErrorCode
	}{
		{codes.InvalidArgument, InvalidArgumentError},
		{codes.Unimplemented, BadRequestError},
		{codes.OutOfRange, BadRequestError},
		{codes.FailedPrecondition, FailedPreconditionError},
		{codes.Canceled, CancelledError},
		{codes.DeadlineExceeded, TimeoutError},
		{codes.PermissionDenied, PermissionError},
		{codes.Unauthenticated, AuthenticationError},
		{codes.ResourceExhausted, LimitExceededError},
		{codes.NotFound, CacheNotFoundError},
		{codes.AlreadyExists, AlreadyExistsError},
		{codes.Unknown, InternalServerError},
		{codes.Aborted, InternalServerError},
		{codes.Internal, InternalServerError},
		{codes.Unavailable, ServerUnavailableError},
		{codes.DataLoss, InternalServerError},
		{codes.Code(42), UnknownServiceError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := translateError(status.Error(tt.code, "boom"), nil)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.want, e.Code)
			assert.NotEmpty(t, e.Message)
			require.NotNil(t, e.Details)
			assert.Equal(t, tt.code, e.Details.GRPCCode)
			assert.Equal(t, "boom", e.Details.Message)
		})
	}
}

func TestTranslateErrorNil(t *testing.T) {
	require.NoError(t, translateError(nil, nil))
}

func TestTranslateErrorLocal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"deadline", context.DeadlineExceeded, TimeoutError},
		{"wrapped deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), TimeoutError},
		{"canceled", context.Canceled, CancelledError},
		{"breaker open", gobreaker.ErrOpenState, ServerUnavailableError},
		{"breaker half open", gobreaker.ErrTooManyRequests, ServerUnavailableError},
		{"pool closed", transport.ErrPoolClosed, FailedPreconditionError},
		{"foreign", errors.New("disk on fire"), UnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError(tt.err, nil)
			assert.Equal(t, tt.want, CodeOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestTranslateErrorKeepsError(t *testing.T) {
	original := invalidArgument("bad")
	assert.Same(t, original, translateError(fmt.Errorf("wrapped: %w", original), nil))
}

func TestTranslateErrorItemNotFound(t *testing.T) {
	err := translateError(status.Error(codes.NotFound, "nope"), metadata.Pairs("err", "item_not_found"))
	assert.Equal(t, ItemNotFoundError, CodeOf(err))

	st, err := status.New(codes.NotFound, "nope").WithDetails(&errdetails.ErrorInfo{Reason: "item_not_found"})
	require.NoError(t, err)
	assert.Equal(t, ItemNotFoundError, CodeOf(translateError(st.Err(), nil)))
}

func TestTranslateErrorLimitExceeded(t *testing.T) {
	tests := []struct {
		name    string
		trailer metadata.MD
		message string
		want    string
	}{
		{"subscriptions cause", metadata.Pairs("err", "topic_subscriptions_limit_exceeded"), "", msgTopicSubscriptionsLimit},
		{"operations cause", metadata.Pairs("err", "operations_rate_limit_exceeded"), "", msgOperationsRateLimit},
		{"throughput cause", metadata.Pairs("err", "throughput_rate_limit_exceeded"), "", msgThroughputRateLimit},
		{"request size cause", metadata.Pairs("err", "request_size_limit_exceeded"), "", msgRequestSizeLimit},
		{"item size cause", metadata.Pairs("err", "item_size_limit_exceeded"), "", msgItemSizeLimit},
		{"element size cause", metadata.Pairs("err", "element_size_limit_exceeded"), "", msgElementSizeLimit},
		{"subscribers keyword", nil, "Too many subscribers", msgTopicSubscriptionsLimit},
		{"operations keyword", nil, "operations per second exceeded", msgOperationsRateLimit},
		{"throughput keyword", nil, "Throughput exceeded", msgThroughputRateLimit},
		{"request keyword", nil, "request limit reached", msgRequestSizeLimit},
		{"item size keyword", nil, "item size too large", msgItemSizeLimit},
		{"element size keyword", nil, "element size too large", msgElementSizeLimit},
		{"no hint", nil, "slow down", msgLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError(status.Error(codes.ResourceExhausted, tt.message), tt.trailer)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, LimitExceededError, e.Code)
			assert.Equal(t, tt.want, e.Message)
		})
	}
}

func TestTranslateErrorMessageSize(t *testing.T) {
	err := translateError(status.Error(codes.Internal, "Received RST_STREAM: h2 protocol error"), nil)
	assert.Equal(t, LimitExceededError, CodeOf(err))
}

func TestErrorIsAndRetryable(t *testing.T) {
	err := translateError(status.Error(codes.Unavailable, "down"), nil)

	assert.ErrorIs(t, err, ErrServerUnavailable)
	assert.NotErrorIs(t, err, ErrTimeout)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.True(t, e.Retryable())
	assert.False(t, invalidArgument("x").Retryable())
	assert.Contains(t, e.Error(), string(ServerUnavailableError))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Equal(t, UnknownError, CodeOf(errors.New("x")))
	assert.Equal(t, InvalidArgumentError, CodeOf(fmt.Errorf("ctx: %w", invalidArgument("x"))))
}

func TestMaxConcurrentStreamsError(t *testing.T) {
	err := maxConcurrentStreamsError(200, 2, 100)
	assert.Equal(t, ClientResourceExhaustedError, err.Code)
	assert.Contains(t, err.Message, "Number of active streams: 200; number of grpc channels: 2; max concurrent streams: 100")
}
