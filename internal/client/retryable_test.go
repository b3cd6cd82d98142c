package client

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mir00r/lb-http-client/internal/domain"
)

// stubPolicy is a scriptable retry policy.
type stubPolicy struct {
	maxAttempts  int
	retryable    func(attempt int, outcome domain.Outcome) bool
	backoffCalls int32
	backoffDelay time.Duration
}

func (p *stubPolicy) MaxAttempts() int {
	return p.maxAttempts
}

func (p *stubPolicy) ShouldRetry(attempt int, outcome domain.Outcome) bool {
	return p.retryable(attempt, outcome)
}

func (p *stubPolicy) Backoff(attempt int) time.Duration {
	atomic.AddInt32(&p.backoffCalls, 1)
	return p.backoffDelay
}

// stubPolicies is a PolicySource serving a fixed policy for every service.
type stubPolicies struct {
	policy domain.RetryPolicy
}

func (s stubPolicies) PolicyFor(serviceID string) domain.RetryPolicy {
	return s.policy
}

func (s stubPolicies) HasFactories() bool {
	return s.policy != nil
}

func allFailuresRetryable(maxAttempts int) *stubPolicy {
	return &stubPolicy{
		maxAttempts: maxAttempts,
		retryable: func(attempt int, outcome domain.Outcome) bool {
			return outcome.Errored() || outcome.StatusCode() >= 500
		},
	}
}

func newRetryable(t *testing.T, transport *recordingTransport, resolver *scriptedResolver, policy domain.RetryPolicy) *RetryableLoadBalancedClient {
	t.Helper()
	log := testLogger(t)
	base := NewLoadBalancedClient(transport, resolver, log)
	return NewRetryableLoadBalancedClient(base, stubPolicies{policy: policy}, log)
}

func TestRetryableExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	t.Parallel()

	attemptErrs := []error{
		fmt.Errorf("attempt 1 failed"),
		fmt.Errorf("attempt 2 failed"),
		fmt.Errorf("attempt 3 failed"),
	}
	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			return nil, attemptErrs[call-1]
		},
	}
	resolver := &scriptedResolver{
		instances: []*domain.ServiceInstance{domain.NewServiceInstance("orders-1", "10.0.0.5", 8080)},
	}
	rc := newRetryable(t, transport, resolver, allFailuresRetryable(3))

	request := newRequest(t, "GET", "http://orders-service/items", nil, nil)

	response, err := rc.Execute(context.Background(), request, domain.DefaultOptions())
	assert.Nil(t, response)
	assert.Same(t, attemptErrs[2], err, "the 3rd attempt's error is what the caller receives")
	assert.Equal(t, 3, transport.calls(), "exactly maxAttempts transport invocations")
	assert.Equal(t, 3, resolver.chooseCalls, "an instance is resolved fresh for every attempt")
	assert.Equal(t, 3, resolver.reconstructCalls)
}

func TestRetryableNonRetryableFailureStopsImmediately(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			return nil, assert.AnError
		},
	}
	resolver := &scriptedResolver{
		instances: []*domain.ServiceInstance{domain.NewServiceInstance("orders-1", "10.0.0.5", 8080)},
	}
	policy := &stubPolicy{
		maxAttempts: 3,
		retryable: func(attempt int, outcome domain.Outcome) bool {
			return false // first failure is terminal
		},
	}
	rc := newRetryable(t, transport, resolver, policy)

	request := newRequest(t, "GET", "http://orders-service/items", nil, nil)

	_, err := rc.Execute(context.Background(), request, domain.DefaultOptions())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, transport.calls(), "non-retryable failure must not trigger further attempts")
}

func TestRetryableSuccessReturnsImmediately(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			return okResponse(request), nil
		},
	}
	resolver := &scriptedResolver{
		instances: []*domain.ServiceInstance{domain.NewServiceInstance("orders-1", "10.0.0.5", 8080)},
	}
	rc := newRetryable(t, transport, resolver, allFailuresRetryable(3))

	request := newRequest(t, "GET", "http://orders-service/items", nil, nil)

	response, err := rc.Execute(context.Background(), request, domain.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode())
	assert.Equal(t, 1, transport.calls())
}

func TestRetryableFailsOverToFreshInstances(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			if call < 3 {
				return nil, fmt.Errorf("instance down")
			}
			return okResponse(request), nil
		},
	}
	resolver := &scriptedResolver{
		instances: []*domain.ServiceInstance{
			domain.NewServiceInstance("orders-1", "10.0.0.5", 8080),
			domain.NewServiceInstance("orders-2", "10.0.0.6", 8080),
			domain.NewServiceInstance("orders-3", "10.0.0.7", 8080),
		},
	}
	rc := newRetryable(t, transport, resolver, allFailuresRetryable(3))

	request := newRequest(t, "GET", "http://orders-service/items", nil, nil)

	response, err := rc.Execute(context.Background(), request, domain.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode())

	require.Equal(t, 3, transport.calls())
	assert.Equal(t, "http://10.0.0.5:8080/items", transport.request(0).URL())
	assert.Equal(t, "http://10.0.0.6:8080/items", transport.request(1).URL())
	assert.Equal(t, "http://10.0.0.7:8080/items", transport.request(2).URL())
}

func TestRetryableReturnsLastResponseOnExhaustion(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			return domain.NewSyntheticResponse(503, fmt.Sprintf("attempt %d unavailable", call), request), nil
		},
	}
	resolver := &scriptedResolver{
		instances: []*domain.ServiceInstance{domain.NewServiceInstance("orders-1", "10.0.0.5", 8080)},
	}
	rc := newRetryable(t, transport, resolver, allFailuresRetryable(3))

	request := newRequest(t, "GET", "http://orders-service/items", nil, nil)

	response, err := rc.Execute(context.Background(), request, domain.DefaultOptions())
	require.NoError(t, err, "exhaustion surfaces the last response, not a synthetic wrapper")
	require.NotNil(t, response)
	defer response.Close()

	assert.Equal(t, 503, response.StatusCode())
	body, readErr := io.ReadAll(response.Body())
	require.NoError(t, readErr)
	assert.Equal(t, "attempt 3 unavailable", string(body), "the last attempt's body must remain readable")
	assert.Equal(t, 3, transport.calls())
}

func TestRetryableClassifiesSyntheticUnavailableLikeAnyFailure(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			return okResponse(request), nil
		},
	}
	// Resolver never finds an instance, so every attempt synthesizes a 503.
	resolver := &scriptedResolver{}
	rc := newRetryable(t, transport, resolver, allFailuresRetryable(3))

	request := newRequest(t, "GET", "http://orders-service/items", nil, nil)

	response, err := rc.Execute(context.Background(), request, domain.DefaultOptions())
	require.NoError(t, err)
	defer response.Close()

	assert.Equal(t, 503, response.StatusCode())
	assert.Equal(t, 3, resolver.chooseCalls, "synthetic 503s go through the same retry classification")
	assert.Equal(t, 0, transport.calls())
}

func TestRetryableMissingHostFailsWithoutAttempts(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			return okResponse(request), nil
		},
	}
	rc := newRetryable(t, transport, &scriptedResolver{}, allFailuresRetryable(3))

	request := newRequest(t, "GET", "/items", nil, nil)

	_, err := rc.Execute(context.Background(), request, domain.DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, 0, transport.calls())
}

func TestRetryableWithoutPolicyMakesSingleAttempt(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			return nil, assert.AnError
		},
	}
	resolver := &scriptedResolver{
		instances: []*domain.ServiceInstance{domain.NewServiceInstance("orders-1", "10.0.0.5", 8080)},
	}
	rc := newRetryable(t, transport, resolver, nil)

	request := newRequest(t, "GET", "http://orders-service/items", nil, nil)

	_, err := rc.Execute(context.Background(), request, domain.DefaultOptions())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, transport.calls())
}

func TestRetryableConsultsBackoffBetweenAttempts(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			return nil, assert.AnError
		},
	}
	resolver := &scriptedResolver{
		instances: []*domain.ServiceInstance{domain.NewServiceInstance("orders-1", "10.0.0.5", 8080)},
	}
	policy := allFailuresRetryable(3)
	rc := newRetryable(t, transport, resolver, policy)

	request := newRequest(t, "GET", "http://orders-service/items", nil, nil)

	_, err := rc.Execute(context.Background(), request, domain.DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&policy.backoffCalls),
		"backoff consulted between attempts but not after the last one")
}

func TestRetryableHonorsContextDuringBackoff(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			return nil, assert.AnError
		},
	}
	resolver := &scriptedResolver{
		instances: []*domain.ServiceInstance{domain.NewServiceInstance("orders-1", "10.0.0.5", 8080)},
	}
	policy := allFailuresRetryable(3)
	policy.backoffDelay = time.Hour
	rc := newRetryable(t, transport, resolver, policy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	request := newRequest(t, "GET", "http://orders-service/items", nil, nil)

	_, err := rc.Execute(ctx, request, domain.DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, transport.calls())
}

func TestRetryableConcurrentCallsAreIsolated(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{
		respond: func(call int, request *domain.Request) (*domain.Response, error) {
			// Echo the forwarded URL so each caller can verify its own rewrite.
			return domain.NewSyntheticResponse(200, request.URL(), request), nil
		},
	}
	resolver := &scriptedResolver{
		instances: []*domain.ServiceInstance{domain.NewServiceInstance("orders-1", "10.0.0.5", 8080)},
	}
	rc := newRetryable(t, transport, resolver, allFailuresRetryable(3))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			path := fmt.Sprintf("/items/%d", n)
			request := newRequest(t, "GET", "http://orders-service"+path, nil, nil)

			response, err := rc.Execute(context.Background(), request, domain.DefaultOptions())
			if !assert.NoError(t, err) {
				return
			}
			defer response.Close()

			body, readErr := io.ReadAll(response.Body())
			if assert.NoError(t, readErr) {
				assert.Equal(t, "http://10.0.0.5:8080"+path, string(body),
					"each call must see its own rewritten request")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, transport.calls())
}
