package client

import (
	"github.com/mir00r/lb-http-client/internal/domain"
	"github.com/mir00r/lb-http-client/pkg/logger"
)

// Build assembles the client stack and selects the active variant once, at
// construction time.
//
// The retrying client is returned only when retry is enabled AND at least one
// retry factory is registered; otherwise the plain load-balanced client is
// returned behind the same Transport interface, so callers never notice which
// variant is active.
func Build(delegate domain.Transport, resolver domain.InstanceResolver, policies PolicySource, retryEnabled bool, log *logger.Logger) domain.Transport {
	base := NewLoadBalancedClient(delegate, resolver, log)

	if !retryEnabled || policies == nil || !policies.HasFactories() {
		log.ClientLogger().Info("Retry capability absent or disabled, using plain load-balanced client")
		return base
	}

	log.ClientLogger().Info("Retry enabled, using retryable load-balanced client")
	return NewRetryableLoadBalancedClient(base, policies, log)
}
