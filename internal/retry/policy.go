package retry

import (
	"net/http"
	"time"

	"github.com/mir00r/lb-http-client/internal/domain"
)

// PolicyConfig describes a StatusCodePolicy.
type PolicyConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// RetryableStatuses lists response status codes treated as retryable
	// failures. Transport errors are always retryable.
	RetryableStatuses []int
	// InitialBackoff is the delay after the first failed attempt. Zero
	// disables backoff entirely.
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential delay growth.
	MaxBackoff time.Duration
}

// DefaultPolicyConfig returns the policy configuration used when none is
// supplied: three attempts, retry on 502/503/504, 100ms doubling backoff.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MaxAttempts: 3,
		RetryableStatuses: []int{
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

// StatusCodePolicy retries transport errors and configured response status
// codes, with exponential backoff owned by the policy itself.
type StatusCodePolicy struct {
	maxAttempts    int
	retryable      map[int]bool
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewStatusCodePolicy creates a StatusCodePolicy from its configuration.
func NewStatusCodePolicy(cfg PolicyConfig) *StatusCodePolicy {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	retryable := make(map[int]bool, len(cfg.RetryableStatuses))
	for _, status := range cfg.RetryableStatuses {
		retryable[status] = true
	}
	return &StatusCodePolicy{
		maxAttempts:    cfg.MaxAttempts,
		retryable:      retryable,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
	}
}

// MaxAttempts returns the total number of attempts allowed.
func (p *StatusCodePolicy) MaxAttempts() int {
	return p.maxAttempts
}

// ShouldRetry classifies an outcome: transport errors and configured status
// codes are retryable, everything else is final.
func (p *StatusCodePolicy) ShouldRetry(attempt int, outcome domain.Outcome) bool {
	if outcome.Errored() {
		return true
	}
	return p.retryable[outcome.StatusCode()]
}

// Backoff returns the delay after the given failed attempt, doubling per
// attempt and capped at the configured maximum.
func (p *StatusCodePolicy) Backoff(attempt int) time.Duration {
	if p.initialBackoff <= 0 {
		return 0
	}

	delay := p.initialBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.maxBackoff > 0 && delay >= p.maxBackoff {
			return p.maxBackoff
		}
	}
	if p.maxBackoff > 0 && delay > p.maxBackoff {
		return p.maxBackoff
	}
	return delay
}

// Factory produces StatusCodePolicies for every service. One Factory can be
// registered alongside others; priority orders the selection.
type Factory struct {
	config   PolicyConfig
	priority int
}

// NewFactory creates a retry factory with the given policy configuration and
// selection priority.
func NewFactory(cfg PolicyConfig, priority int) *Factory {
	return &Factory{
		config:   cfg,
		priority: priority,
	}
}

// PolicyFor returns the policy governing calls to the given service.
func (f *Factory) PolicyFor(serviceID string) domain.RetryPolicy {
	return NewStatusCodePolicy(f.config)
}

// Priority orders this factory among all registered factories.
func (f *Factory) Priority() int {
	return f.priority
}
