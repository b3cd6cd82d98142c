package client

import (
	"context"
	"time"

	"github.com/mir00r/lb-http-client/internal/domain"
	"github.com/mir00r/lb-http-client/pkg/logger"
)

// PolicySource yields retry policies scoped to service IDs. It is satisfied
// by retry.FactoryRegistry.
type PolicySource interface {
	// PolicyFor returns the policy for a service, or nil when retry
	// capability is absent.
	PolicyFor(serviceID string) domain.RetryPolicy

	// HasFactories reports whether any retry factory is registered.
	HasFactories() bool
}

// RetryableLoadBalancedClient adds retry semantics around the resolution and
// forwarding flow of LoadBalancedClient.
//
// Each attempt resolves a fresh instance, so a retry can fail over to a
// different replica instead of hammering a dead one. Whether an outcome is
// retried is decided entirely by the injected policy; transport errors and
// synthetic 503 responses go through the same classification. When attempts
// are exhausted the last observed outcome is returned verbatim.
type RetryableLoadBalancedClient struct {
	client   *LoadBalancedClient
	policies PolicySource
	logger   *logger.Logger
}

// NewRetryableLoadBalancedClient creates a retrying client around an existing
// load-balanced client and a source of retry policies.
func NewRetryableLoadBalancedClient(client *LoadBalancedClient, policies PolicySource, log *logger.Logger) *RetryableLoadBalancedClient {
	return &RetryableLoadBalancedClient{
		client:   client,
		policies: policies,
		logger:   log.RetryLogger(),
	}
}

// Execute runs the resolve-rewrite-forward flow under the retry policy of the
// request's target service.
func (c *RetryableLoadBalancedClient) Execute(ctx context.Context, request *domain.Request, opts domain.Options) (*domain.Response, error) {
	originalURI, serviceID, err := serviceTarget(request)
	if err != nil {
		return nil, err
	}

	policy := c.policies.PolicyFor(serviceID)
	if policy == nil {
		// No retry capability for this service, single attempt.
		return unwrap(c.client.attempt(ctx, serviceID, originalURI, request, opts))
	}

	retryCtx := domain.NewRetryContext(serviceID)
	log := c.logger.CallLogger(retryCtx.RequestID(), serviceID, request.Method())

	maxAttempts := policy.MaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		outcome := c.client.attempt(ctx, serviceID, originalURI, request, opts)

		if !policy.ShouldRetry(attempt, outcome) {
			return unwrap(outcome)
		}

		retryCtx.RecordFailure(outcome)

		if attempt >= maxAttempts {
			log.WithField("attempts", retryCtx.Attempts()).
				Warnf("Exhausted %d attempts for service %s", maxAttempts, serviceID)
			return unwrap(retryCtx.LastOutcome())
		}

		// The failed response will not be returned, release its body before
		// the next attempt.
		if outcome.Response != nil {
			_ = outcome.Response.Close()
		}

		log.WithField("attempt", attempt).Debug("Attempt failed, retrying with a fresh instance")

		if err := c.waitBackoff(ctx, policy, attempt); err != nil {
			return nil, err
		}
	}
}

// Delegate returns the wrapped load-balanced client.
func (c *RetryableLoadBalancedClient) Delegate() *LoadBalancedClient {
	return c.client
}

// waitBackoff sleeps for the policy's backoff delay, if the policy defines
// one, honoring context cancellation.
func (c *RetryableLoadBalancedClient) waitBackoff(ctx context.Context, policy domain.RetryPolicy, attempt int) error {
	backoff, ok := policy.(domain.BackoffPolicy)
	if !ok {
		return nil
	}
	delay := backoff.Backoff(attempt)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
