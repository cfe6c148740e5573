package momento

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pior/momento/internal/transport"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ErrorCode identifies the kind of failure. The set is closed.
type ErrorCode string

const (
	InvalidArgumentError         ErrorCode = "INVALID_ARGUMENT_ERROR"
	UnknownServiceError          ErrorCode = "UNKNOWN_SERVICE_ERROR"
	AlreadyExistsError           ErrorCode = "ALREADY_EXISTS_ERROR"
	CacheNotFoundError           ErrorCode = "NOT_FOUND_ERROR"
	ItemNotFoundError            ErrorCode = "ITEM_NOT_FOUND_ERROR"
	InternalServerError          ErrorCode = "INTERNAL_SERVER_ERROR"
	PermissionError              ErrorCode = "PERMISSION_ERROR"
	AuthenticationError          ErrorCode = "AUTHENTICATION_ERROR"
	CancelledError               ErrorCode = "CANCELLED_ERROR"
	LimitExceededError           ErrorCode = "LIMIT_EXCEEDED_ERROR"
	BadRequestError              ErrorCode = "BAD_REQUEST_ERROR"
	TimeoutError                 ErrorCode = "TIMEOUT_ERROR"
	ServerUnavailableError       ErrorCode = "SERVER_UNAVAILABLE"
	ClientResourceExhaustedError ErrorCode = "CLIENT_RESOURCE_EXHAUSTED"
	FailedPreconditionError      ErrorCode = "FAILED_PRECONDITION_ERROR"
	UnknownError                 ErrorCode = "UNKNOWN_ERROR"
)

// Sentinels for errors.Is. They match any *Error with the same code.
var (
	ErrInvalidArgument         = &Error{Code: InvalidArgumentError}
	ErrAlreadyExists           = &Error{Code: AlreadyExistsError}
	ErrCacheNotFound           = &Error{Code: CacheNotFoundError}
	ErrItemNotFound            = &Error{Code: ItemNotFoundError}
	ErrPermission              = &Error{Code: PermissionError}
	ErrAuthentication          = &Error{Code: AuthenticationError}
	ErrLimitExceeded           = &Error{Code: LimitExceededError}
	ErrTimeout                 = &Error{Code: TimeoutError}
	ErrCancelled               = &Error{Code: CancelledError}
	ErrServerUnavailable       = &Error{Code: ServerUnavailableError}
	ErrClientResourceExhausted = &Error{Code: ClientResourceExhaustedError}
)

// ErrorDetails carries what the server sent along with a failed call.
type ErrorDetails struct {
	GRPCCode codes.Code
	Message  string
	Trailer  metadata.MD
}

// Error is the only error type returned by the clients.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Details *ErrorDetails // nil for errors raised locally
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Retryable reports whether the same call may succeed later. The clients
// never retry on their own.
func (e *Error) Retryable() bool {
	switch e.Code {
	case TimeoutError, ServerUnavailableError, LimitExceededError, ClientResourceExhaustedError:
		return true
	default:
		return false
	}
}

// CodeOf returns the code of err, UnknownError for foreign errors and the
// empty code for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return UnknownError
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func invalidArgument(format string, args ...any) *Error {
	return newError(InvalidArgumentError, fmt.Sprintf(format, args...))
}

func unknownError(message string, cause error) *Error {
	return &Error{Code: UnknownError, Message: message, Cause: cause}
}

func maxConcurrentStreamsError(active, channels, limit int) *Error {
	return newError(ClientResourceExhaustedError, fmt.Sprintf(
		"Number of active streams: %d; number of grpc channels: %d; max concurrent streams: %d; "+
			"Already at maximum number of concurrent grpc streams, cannot make new subscribe requests",
		active, channels, limit))
}

// Trailer values of the "err" key.
const (
	errCauseItemNotFound                    = "item_not_found"
	errCauseTopicSubscriptionsLimitExceeded = "topic_subscriptions_limit_exceeded"
	errCauseOperationsRateLimitExceeded     = "operations_rate_limit_exceeded"
	errCauseThroughputRateLimitExceeded     = "throughput_rate_limit_exceeded"
	errCauseRequestSizeLimitExceeded        = "request_size_limit_exceeded"
	errCauseItemSizeLimitExceeded           = "item_size_limit_exceeded"
	errCauseElementSizeLimitExceeded        = "element_size_limit_exceeded"
)

const (
	msgTopicSubscriptionsLimit = "Topic subscriptions limit exceeded for this account"
	msgOperationsRateLimit     = "Request rate limit exceeded for this account"
	msgThroughputRateLimit     = "Bandwidth limit exceeded for this account"
	msgRequestSizeLimit        = "Request size limit exceeded for this account"
	msgItemSizeLimit           = "Item size limit exceeded for this account"
	msgElementSizeLimit        = "Element size limit exceeded for this account"
	msgLimitExceeded           = "Limit exceeded for this account"
)

// translateError turns the outcome of a call into an *Error. trailer may be
// nil when the call did not capture one.
func translateError(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: TimeoutError, Message: "The client's configured timeout was exceeded; you may need to use a Configuration with more lenient timeouts", Cause: err}
	case errors.Is(err, context.Canceled):
		return &Error{Code: CancelledError, Message: "The request was cancelled by the caller", Cause: err}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &Error{Code: ServerUnavailableError, Message: "The endpoint circuit breaker is open; calls are rejected until it recovers", Cause: err}
	case errors.Is(err, transport.ErrPoolClosed):
		return &Error{Code: FailedPreconditionError, Message: "The client is closed", Cause: err}
	}

	st, ok := status.FromError(err)
	if !ok {
		return unknownError("Unknown error has occurred", err)
	}
	return fromStatus(st, trailer)
}

func fromStatus(st *status.Status, trailer metadata.MD) *Error {
	e := &Error{
		Cause:   st.Err(),
		Details: &ErrorDetails{GRPCCode: st.Code(), Message: st.Message(), Trailer: trailer},
	}

	switch st.Code() {
	case codes.InvalidArgument:
		e.Code, e.Message = InvalidArgumentError, "Invalid argument passed to Momento client"
	case codes.Unimplemented, codes.OutOfRange:
		e.Code, e.Message = BadRequestError, "The request was invalid; please contact us at support@momentohq.com"
	case codes.FailedPrecondition:
		e.Code, e.Message = FailedPreconditionError, "System is not in a state required for the operation's execution"
	case codes.Canceled:
		e.Code, e.Message = CancelledError, "The request was cancelled by the server; please contact us at support@momentohq.com"
	case codes.DeadlineExceeded:
		e.Code, e.Message = TimeoutError, "The client's configured timeout was exceeded; you may need to use a Configuration with more lenient timeouts"
	case codes.PermissionDenied:
		e.Code, e.Message = PermissionError, "Insufficient permissions to perform an operation on a cache"
	case codes.Unauthenticated:
		e.Code, e.Message = AuthenticationError, "Invalid authentication credentials to connect to cache service"
	case codes.ResourceExhausted:
		e.Code, e.Message = LimitExceededError, limitExceededMessage(errCause(st, trailer), st.Message())
	case codes.NotFound:
		if errCause(st, trailer) == errCauseItemNotFound {
			e.Code, e.Message = ItemNotFoundError, "An item with the specified key does not exist.  To resolve this error, make sure you have created the item before attempting to use it"
		} else {
			e.Code, e.Message = CacheNotFoundError, "A cache with the specified name does not exist.  To resolve this error, make sure you have created the cache before attempting to use it"
		}
	case codes.AlreadyExists:
		e.Code, e.Message = AlreadyExistsError, "A cache with the specified name already exists.  To resolve this error, either delete the existing cache and make a new one, or use a different name"
	case codes.Unknown:
		e.Code, e.Message = InternalServerError, "An unexpected error occurred while trying to fulfill the request, an unknown error terminated the request; please contact us at support@momentohq.com"
	case codes.Aborted:
		e.Code, e.Message = InternalServerError, "An unexpected error occurred while trying to fulfill the request, request was aborted; please contact us at support@momentohq.com"
	case codes.Internal:
		if strings.Contains(strings.ToLower(st.Message()), "h2 protocol error") {
			e.Code, e.Message = LimitExceededError, "Message size limit was exceeded; consider increasing the max send and receive message sizes in your GrpcConfiguration"
		} else {
			e.Code, e.Message = InternalServerError, "An unexpected internal error occurred while trying to fulfill the request; please contact us at support@momentohq.com"
		}
	case codes.Unavailable:
		e.Code, e.Message = ServerUnavailableError, "The server was unavailable to handle the request; consider retrying.  If the error persists, please contact Momento."
	case codes.DataLoss:
		e.Code, e.Message = InternalServerError, "An unexpected data loss error occurred while trying to fulfill the request; please contact us at support@momentohq.com"
	default:
		e.Code, e.Message = UnknownServiceError, "The service returned an unknown response; please contact us at support@momentohq.com"
	}

	return e
}

// errCause reads the "err" trailer, falling back to the reason of an
// ErrorInfo status detail.
func errCause(st *status.Status, trailer metadata.MD) string {
	if v := trailer.Get("err"); len(v) > 0 {
		return v[0]
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetReason() != "" {
			return info.GetReason()
		}
	}
	return ""
}

func limitExceededMessage(cause, message string) string {
	switch cause {
	case errCauseTopicSubscriptionsLimitExceeded:
		return msgTopicSubscriptionsLimit
	case errCauseOperationsRateLimitExceeded:
		return msgOperationsRateLimit
	case errCauseThroughputRateLimitExceeded:
		return msgThroughputRateLimit
	case errCauseRequestSizeLimitExceeded:
		return msgRequestSizeLimit
	case errCauseItemSizeLimitExceeded:
		return msgItemSizeLimit
	case errCauseElementSizeLimitExceeded:
		return msgElementSizeLimit
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "subscribers"):
		return msgTopicSubscriptionsLimit
	case strings.Contains(lower, "operations"):
		return msgOperationsRateLimit
	case strings.Contains(lower, "throughput"):
		return msgThroughputRateLimit
	case strings.Contains(lower, "request limit"):
		return msgRequestSizeLimit
	case strings.Contains(lower, "item size"):
		return msgItemSizeLimit
	case strings.Contains(lower, "element size"):
		return msgElementSizeLimit
	default:
		return msgLimitExceeded
	}
}
