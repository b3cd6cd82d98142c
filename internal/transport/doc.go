/*
Package transport provides Transport implementations for the client stack.

HTTPTransport is the default implementation over net/http with HTTP/2
enabled. RateLimitedTransport is a decorator that throttles outbound calls
per target host before delegating, so a misbehaving caller cannot overrun a
backend even when retries are in play.
*/
package transport
