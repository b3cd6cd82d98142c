package domain

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultCharset is the charset assumed for request bodies when none is given.
const DefaultCharset = "UTF-8"

// RequestTemplate is an opaque reference to the template a Request was built
// from. It records the logical target so derivative requests can be traced
// back to the original symbolic URI after the authority has been rewritten.
type RequestTemplate struct {
	// Target is the symbolic service base URL, e.g. "http://orders-service".
	Target string
	// Path is the request path relative to the target.
	Path string
}

// Request represents an immutable outbound HTTP request.
//
// The target URL may name a symbolic service ("http://orders-service/api")
// rather than a concrete host. Rewriting the URL via WithURL produces a new
// Request and preserves method, headers, body, charset and template exactly.
type Request struct {
	method   string
	url      string
	headers  map[string][]string
	body     []byte
	charset  string
	template *RequestTemplate
}

// NewRequest creates a new Request. The header map is copied so later
// modifications by the caller do not leak into the request. The body slice is
// retained as-is and must not be mutated after the request is built.
func NewRequest(method, rawurl string, headers map[string][]string, body []byte, charset string) (*Request, error) {
	if method == "" {
		return nil, fmt.Errorf("request method cannot be empty")
	}
	parsed, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL %q: %w", rawurl, err)
	}
	if charset == "" {
		charset = DefaultCharset
	}
	return &Request{
		method:  method,
		url:     rawurl,
		headers: copyHeaders(headers),
		body:    body,
		charset: charset,
		template: &RequestTemplate{
			Target: parsed.Scheme + "://" + parsed.Host,
			Path:   parsed.Path,
		},
	}, nil
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	return r.method
}

// URL returns the target URL string.
func (r *Request) URL() string {
	return r.url
}

// Headers returns the header multimap. Callers must not modify the returned
// map; derivative requests share it by construction.
func (r *Request) Headers() map[string][]string {
	return r.headers
}

// Body returns the request body bytes, or nil if the request has no body.
func (r *Request) Body() []byte {
	return r.body
}

// Charset returns the charset of the request body.
func (r *Request) Charset() string {
	return r.charset
}

// Template returns the request template reference.
func (r *Request) Template() *RequestTemplate {
	return r.template
}

// WithURL returns a new Request identical to this one except for the target
// URL. The method, header multimap, body bytes, charset and template
// reference are carried over unchanged.
func (r *Request) WithURL(rawurl string) *Request {
	return &Request{
		method:   r.method,
		url:      rawurl,
		headers:  r.headers,
		body:     r.body,
		charset:  r.charset,
		template: r.template,
	}
}

// copyHeaders makes a deep copy of a header multimap.
func copyHeaders(headers map[string][]string) map[string][]string {
	copied := make(map[string][]string, len(headers))
	for name, values := range headers {
		copied[name] = append([]string(nil), values...)
	}
	return copied
}

// Options carries per-call execution options. They are threaded through to
// the Transport unchanged; the Transport is responsible for enforcing them.
type Options struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	FollowRedirects bool
}

// DefaultOptions returns the execution options used when the caller does not
// supply any.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:  10 * time.Second,
		ReadTimeout:     60 * time.Second,
		FollowRedirects: true,
	}
}
