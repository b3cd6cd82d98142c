package transport

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/mir00r/lb-http-client/internal/domain"
	lberrors "github.com/mir00r/lb-http-client/internal/errors"
	"github.com/mir00r/lb-http-client/pkg/logger"
)

// Config holds the connection-level settings of the HTTP transport. These are
// fixed per transport; per-call settings travel in domain.Options instead.
type Config struct {
	ConnectTimeout      time.Duration `yaml:"connect_timeout"`
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout"`
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// DefaultConfig returns the transport settings used when none are supplied.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:      10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// HTTPTransport implements domain.Transport over net/http.
//
// The underlying http.Transport is shared across calls so connections are
// pooled. Read timeout and redirect behavior come from the per-call Options;
// the connect timeout is a property of the shared dialer and comes from
// Config.
type HTTPTransport struct {
	transport *http.Transport
	logger    *logger.Logger
}

// NewHTTPTransport creates an HTTP transport with HTTP/2 support.
func NewHTTPTransport(cfg Config, log *logger.Logger) (*HTTPTransport, error) {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	t := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}
	if err := http2.ConfigureTransport(t); err != nil {
		return nil, lberrors.WrapError(err, lberrors.ErrCodeConfigLoad,
			"transport", "Failed to enable HTTP/2 on transport")
	}

	return &HTTPTransport{
		transport: t,
		logger:    log.TransportLogger(),
	}, nil
}

// Execute sends the request and converts the net/http response into the
// domain Response. The response body is handed to the caller unread.
func (t *HTTPTransport) Execute(ctx context.Context, request *domain.Request, opts domain.Options) (*domain.Response, error) {
	httpReq, err := t.buildHTTPRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Transport: t.transport,
		Timeout:   opts.ReadTimeout,
	}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	start := time.Now()
	httpResp, err := client.Do(httpReq)
	if err != nil {
		t.logger.WithError(err).
			WithField("url", request.URL()).
			Debug("HTTP exchange failed")
		return nil, err
	}

	t.logger.WithField("url", request.URL()).
		WithField("status", httpResp.StatusCode).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Debug("HTTP exchange completed")

	return domain.NewResponse(httpResp.StatusCode, httpResp.Header, httpResp.Body, request), nil
}

// buildHTTPRequest converts a domain Request into a net/http request.
func (t *HTTPTransport) buildHTTPRequest(ctx context.Context, request *domain.Request) (*http.Request, error) {
	var body *bytes.Reader
	if request.Body() != nil {
		body = bytes.NewReader(request.Body())
	} else {
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, request.Method(), request.URL(), body)
	if err != nil {
		return nil, lberrors.WrapError(err, lberrors.ErrCodeInvalidRequest,
			"transport", "Cannot build HTTP request")
	}

	for name, values := range request.Headers() {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}
	return httpReq, nil
}
