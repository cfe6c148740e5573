package momento

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards the calls to one endpoint.
type CircuitBreaker = gobreaker.CircuitBreaker[struct{}]

// NewCircuitBreakerConfig returns a function that creates circuit breakers for endpoints.
// This is a helper for common use cases.
//
// The breaker trips when at least 3 calls were made in the interval and 60%
// of them failed. Only failures that point at the endpoint count: timeouts,
// unavailability and server errors. A missing cache or a rejected argument
// does not.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(endpoint string) *CircuitBreaker {
	return func(endpoint string) *CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        endpoint,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: func(err error) bool {
				return !isEndpointFailure(err)
			},
		}
		return gobreaker.NewCircuitBreaker[struct{}](settings)
	}
}

func isEndpointFailure(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return true
	}
	switch e.Code {
	case TimeoutError, ServerUnavailableError, InternalServerError, UnknownServiceError, UnknownError:
		return true
	default:
		return false
	}
}
