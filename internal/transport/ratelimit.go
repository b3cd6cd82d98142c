package transport

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"

	"github.com/mir00r/lb-http-client/internal/domain"
	"github.com/mir00r/lb-http-client/pkg/logger"
)

// RateLimitConfig defines client-side rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool    `yaml:"enabled"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	BurstSize      int     `yaml:"burst_size"`
}

// RateLimitedTransport throttles outbound requests per target host before
// delegating to the wrapped transport. Waiting honors the call context, so a
// canceled caller never blocks on the limiter.
type RateLimitedTransport struct {
	delegate domain.Transport
	config   RateLimitConfig
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	logger   *logger.Logger
}

// NewRateLimitedTransport creates a rate-limiting decorator around a
// transport.
func NewRateLimitedTransport(delegate domain.Transport, cfg RateLimitConfig, log *logger.Logger) *RateLimitedTransport {
	return &RateLimitedTransport{
		delegate: delegate,
		config:   cfg,
		limiters: make(map[string]*rate.Limiter),
		logger:   log.TransportLogger(),
	}
}

// Execute waits for the target host's limiter, then delegates.
func (t *RateLimitedTransport) Execute(ctx context.Context, request *domain.Request, opts domain.Options) (*domain.Response, error) {
	if !t.config.Enabled {
		return t.delegate.Execute(ctx, request, opts)
	}

	host := targetHost(request.URL())
	if err := t.limiterFor(host).Wait(ctx); err != nil {
		t.logger.WithField("host", host).WithError(err).
			Debug("Rate limiter wait aborted")
		return nil, err
	}

	return t.delegate.Execute(ctx, request, opts)
}

// limiterFor returns the limiter for a host, creating it on first use.
func (t *RateLimitedTransport) limiterFor(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, exists := t.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(t.config.RequestsPerSec), t.config.BurstSize)
		t.limiters[host] = limiter
	}
	return limiter
}

// targetHost extracts the host component of a request URL, falling back to
// the raw URL when it cannot be parsed.
func targetHost(rawurl string) string {
	parsed, err := url.Parse(rawurl)
	if err != nil || parsed.Host == "" {
		return rawurl
	}
	return parsed.Host
}
