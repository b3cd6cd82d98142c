package domain

import (
	"io"
	"strings"
)

// Response represents the result of executing a Request.
//
// Responses normally originate from the Transport, but the client synthesizes
// one itself when no service instance can be resolved, so that callers and
// retry policies can inspect every outcome uniformly through status codes.
type Response struct {
	statusCode int
	headers    map[string][]string
	body       io.ReadCloser
	request    *Request
}

// NewResponse creates a Response for the given originating request.
func NewResponse(statusCode int, headers map[string][]string, body io.ReadCloser, request *Request) *Response {
	if headers == nil {
		headers = make(map[string][]string)
	}
	return &Response{
		statusCode: statusCode,
		headers:    headers,
		body:       body,
		request:    request,
	}
}

// NewSyntheticResponse creates a Response produced by the client itself
// rather than by the Transport, carrying a plain-text message as its body.
func NewSyntheticResponse(statusCode int, message string, request *Request) *Response {
	return &Response{
		statusCode: statusCode,
		headers: map[string][]string{
			"Content-Type": {"text/plain; charset=utf-8"},
		},
		body:    io.NopCloser(strings.NewReader(message)),
		request: request,
	}
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// Headers returns the response header multimap.
func (r *Response) Headers() map[string][]string {
	return r.headers
}

// Body returns the response body stream. The caller owns it and must close it.
func (r *Response) Body() io.ReadCloser {
	return r.body
}

// Request returns the request that produced this response.
func (r *Response) Request() *Request {
	return r.request
}

// Close releases the response body if one is present.
func (r *Response) Close() error {
	if r.body == nil {
		return nil
	}
	return r.body.Close()
}

// Outcome is the uniform result of a single delivery attempt: either a
// Response or an error, never both. Retry policies classify Outcomes without
// caring whether a failure was a transport error or an undesirable status.
type Outcome struct {
	Response *Response
	Err      error
}

// ResponseOutcome wraps a Response in an Outcome.
func ResponseOutcome(response *Response) Outcome {
	return Outcome{Response: response}
}

// ErrorOutcome wraps an error in an Outcome.
func ErrorOutcome(err error) Outcome {
	return Outcome{Err: err}
}

// Errored reports whether the attempt failed at the transport level.
func (o Outcome) Errored() bool {
	return o.Err != nil
}

// StatusCode returns the response status code, or 0 if the attempt errored
// before a response was produced.
func (o Outcome) StatusCode() int {
	if o.Response == nil {
		return 0
	}
	return o.Response.StatusCode()
}
