package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mir00r/lb-http-client/internal/domain"
	lberrors "github.com/mir00r/lb-http-client/internal/errors"
	"github.com/mir00r/lb-http-client/pkg/logger"
)

// LoadBalancedClient resolves the symbolic host of every outbound request to
// a concrete service instance and forwards the rewritten request to the
// underlying transport.
//
// The client is stateless across invocations and never retries: a failed
// forward surfaces as-is, and an unresolvable service produces a synthetic
// 503 response rather than an error so callers can classify every outcome
// through status codes.
type LoadBalancedClient struct {
	delegate domain.Transport
	resolver domain.InstanceResolver
	logger   *logger.Logger
}

// NewLoadBalancedClient creates a load-balanced client around the given
// transport and resolver.
func NewLoadBalancedClient(delegate domain.Transport, resolver domain.InstanceResolver, log *logger.Logger) *LoadBalancedClient {
	return &LoadBalancedClient{
		delegate: delegate,
		resolver: resolver,
		logger:   log.ClientLogger(),
	}
}

// Execute resolves an instance for the request's symbolic host, rewrites the
// URI and delegates execution. A request whose URI carries no hostname is a
// configuration error and fails immediately.
func (c *LoadBalancedClient) Execute(ctx context.Context, request *domain.Request, opts domain.Options) (*domain.Response, error) {
	originalURI, serviceID, err := serviceTarget(request)
	if err != nil {
		return nil, err
	}

	outcome := c.attempt(ctx, serviceID, originalURI, request, opts)
	return unwrap(outcome)
}

// Delegate returns the wrapped transport.
func (c *LoadBalancedClient) Delegate() domain.Transport {
	return c.delegate
}

// attempt performs one resolution and forwarding pass: choose an instance,
// rebuild the URI, derive the rewritten request and execute it. Resolution
// failure yields a synthetic 503 outcome, never an error.
func (c *LoadBalancedClient) attempt(ctx context.Context, serviceID string, originalURI *url.URL, request *domain.Request, opts domain.Options) domain.Outcome {
	instance := c.resolver.Choose(serviceID)
	if instance == nil {
		message := fmt.Sprintf("Load balancer does not contain an instance for the service %s", serviceID)
		c.logger.WithField("service_id", serviceID).Warn(message)
		return domain.ResponseOutcome(domain.NewSyntheticResponse(http.StatusServiceUnavailable, message, request))
	}

	reconstructed := c.resolver.ReconstructURI(instance, originalURI)
	rewritten := request.WithURL(reconstructed.String())

	c.logger.WithField("service_id", serviceID).
		WithField("instance_id", instance.ID).
		WithField("url", rewritten.URL()).
		Debug("Forwarding request to resolved instance")

	response, err := c.delegate.Execute(ctx, rewritten, opts)
	if err != nil {
		return domain.ErrorOutcome(err)
	}
	return domain.ResponseOutcome(response)
}

// serviceTarget parses the request URI and extracts the symbolic service ID
// from its host component.
func serviceTarget(request *domain.Request) (*url.URL, string, error) {
	originalURI, err := url.Parse(request.URL())
	if err != nil {
		return nil, "", lberrors.WrapError(err, lberrors.ErrCodeInvalidRequest,
			"load_balanced_client", fmt.Sprintf("Cannot parse request URI %s", request.URL()))
	}

	serviceID := originalURI.Hostname()
	if serviceID == "" {
		return nil, "", lberrors.NewMissingHostError(request.URL())
	}
	return originalURI, serviceID, nil
}

// unwrap converts an Outcome back into the (response, error) return shape.
func unwrap(outcome domain.Outcome) (*domain.Response, error) {
	if outcome.Errored() {
		return nil, outcome.Err
	}
	return outcome.Response, nil
}
