/*
Package client implements the load-balanced HTTP client decorators.

LoadBalancedClient intercepts a request addressed to a symbolic service name,
resolves a concrete instance, rewrites the request URI and forwards to the
underlying Transport. RetryableLoadBalancedClient wraps that flow in a retry
loop driven by an injected retry policy, re-resolving a fresh instance before
every attempt so retries can fail over to a different replica.

Both clients implement domain.Transport, so they stack transparently:

	base := client.NewLoadBalancedClient(httpTransport, res, log)
	response, err := base.Execute(ctx, request, domain.DefaultOptions())

Build selects the variant from configuration: the retrying client when retry
is enabled and a retry factory is registered, the plain client otherwise.
*/
package client
