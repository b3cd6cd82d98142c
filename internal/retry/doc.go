/*
Package retry provides retry policy selection for the load-balanced client.

A FactoryRegistry holds every registered RetryFactory in priority order and
hands out policies scoped to individual service IDs, caching them per service.
The package also ships StatusCodePolicy, a policy that retries transport
errors and configurable response status codes with exponential backoff.
*/
package retry
