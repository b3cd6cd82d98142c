package domain

import (
	"context"
	"net/url"
	"time"
)

// Transport performs the actual HTTP exchange for a fully-resolved request.
//
// Implementations must treat the Request as opaque and immutable. I/O
// failures are returned as errors and are never swallowed by the layers
// above; the retry classifier sees them as-is.
type Transport interface {
	// Execute sends the request and returns the response or an I/O error.
	// The options carry the timeouts the transport is expected to enforce.
	Execute(ctx context.Context, request *Request, opts Options) (*Response, error)
}

// InstanceResolver chooses service instances for symbolic service names.
//
// Implementations must be safe for repeated and concurrent use and must not
// retain state on behalf of the caller.
type InstanceResolver interface {
	// Choose selects an instance for the given service ID, or nil when the
	// service has no available instances.
	Choose(serviceID string) *ServiceInstance

	// ReconstructURI substitutes the instance's scheme and authority into the
	// original URI, preserving path and query.
	ReconstructURI(instance *ServiceInstance, original *url.URL) *url.URL
}

// RetryPolicy decides whether a failed delivery attempt is re-executed.
type RetryPolicy interface {
	// MaxAttempts returns the total number of attempts allowed, including
	// the first one.
	MaxAttempts() int

	// ShouldRetry classifies the outcome of the given attempt (1-based).
	// Returning false for a response outcome means the response is final,
	// whether it is a success or a non-retryable failure.
	ShouldRetry(attempt int, outcome Outcome) bool
}

// BackoffPolicy is an optional extension of RetryPolicy. When a policy
// implements it, the retry loop sleeps for the returned duration before the
// next attempt. The delay schedule is entirely owned by the policy.
type BackoffPolicy interface {
	// Backoff returns how long to wait after the given failed attempt.
	Backoff(attempt int) time.Duration
}

// RetryFactory produces retry policies scoped to a service ID. Multiple
// factories may be registered; the one with the highest priority wins, with
// registration order as the tie-break.
type RetryFactory interface {
	// PolicyFor returns the policy governing calls to the given service.
	PolicyFor(serviceID string) RetryPolicy

	// Priority orders factories when several are registered. Higher wins.
	Priority() int
}
