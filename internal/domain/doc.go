/*
Package domain contains the core entities and interfaces for the load-balanced HTTP client.

This package implements the Domain layer of Clean Architecture, providing:
- Core value types (Request, Response, ServiceInstance, Options, Outcome)
- The contracts between the client and its collaborators (Transport, InstanceResolver, RetryFactory, RetryPolicy)
- Per-call retry state (RetryContext)

The domain package is independent of external frameworks and infrastructure,
ensuring the client logic remains testable and maintainable.

Key Components:

Request Value:
Request is an immutable outbound HTTP request addressed to a symbolic service
name. The client derives per-attempt requests from it without ever mutating
the original:

	req, err := domain.NewRequest("GET", "http://orders-service/api/v1/items", headers, nil, "UTF-8")
	rewritten := req.WithURL("http://10.0.0.5:8080/api/v1/items")

ServiceInstance:
A concrete replica of a service, produced by an InstanceResolver for a single
delivery attempt. Instances are ephemeral and never cached by the client:

	instance := domain.NewServiceInstance("orders-1", "10.0.0.5", 8080)
	instance.URL() // "http://10.0.0.5:8080"

Collaborator Contracts:
Transport performs the actual HTTP exchange, InstanceResolver chooses replicas
and rebuilds URIs, and RetryFactory/RetryPolicy govern whether failed attempts
are re-executed. All of them treat the domain values as opaque and immutable.
*/
package domain
