package resolver

import (
	"net/url"

	"github.com/mir00r/lb-http-client/internal/domain"
	"github.com/mir00r/lb-http-client/pkg/logger"
)

// RegistryResolver implements domain.InstanceResolver on top of a Registry
// and a SelectionStrategy. It holds no per-call state, so a single resolver
// serves any number of concurrent clients.
type RegistryResolver struct {
	registry *Registry
	strategy SelectionStrategy
	logger   *logger.Logger
}

// New creates a resolver that picks instances from the given registry using
// the given strategy.
func New(registry *Registry, strategy SelectionStrategy, log *logger.Logger) *RegistryResolver {
	return &RegistryResolver{
		registry: registry,
		strategy: strategy,
		logger:   log.ResolverLogger(),
	}
}

// Choose selects an instance for the given service ID, or nil when the
// service has no registered instances.
func (r *RegistryResolver) Choose(serviceID string) *domain.ServiceInstance {
	instances := r.registry.Instances(serviceID)
	if len(instances) == 0 {
		return nil
	}

	instance := r.strategy.Select(serviceID, instances)
	if instance == nil {
		return nil
	}

	r.logger.WithField("service_id", serviceID).
		WithField("instance_id", instance.ID).
		WithField("strategy", r.strategy.Name()).
		Debug("Selected instance for service")

	return instance
}

// ReconstructURI substitutes the instance's scheme, host and port into the
// original URI. Path, query and fragment are preserved untouched. Default
// ports (80 for http, 443 for https) are elided from the authority.
func (r *RegistryResolver) ReconstructURI(instance *domain.ServiceInstance, original *url.URL) *url.URL {
	rebuilt := *original
	rebuilt.Scheme = instance.Scheme()

	if isDefaultPort(instance.Scheme(), instance.Port) {
		rebuilt.Host = instance.Host
	} else {
		rebuilt.Host = instance.Address()
	}

	return &rebuilt
}

// isDefaultPort reports whether the port is the scheme's default.
func isDefaultPort(scheme string, port int) bool {
	switch scheme {
	case "http":
		return port == 80
	case "https":
		return port == 443
	default:
		return false
	}
}
