package retry

import (
	"sort"
	"sync"

	"github.com/mir00r/lb-http-client/internal/domain"
)

// FactoryRegistry is an ordered collection of RetryFactories.
//
// Factories are kept sorted by descending priority with registration order as
// the tie-break, so selection is deterministic: the first factory after the
// sort decides every policy. Policies are cached per service ID; the cache is
// safe under concurrent lookups and is invalidated whenever the factory set
// changes.
type FactoryRegistry struct {
	mu        sync.RWMutex
	factories []registeredFactory
	policies  map[string]domain.RetryPolicy
}

// registeredFactory pairs a factory with its registration sequence for the
// stable tie-break.
type registeredFactory struct {
	factory domain.RetryFactory
	seq     int
}

// NewFactoryRegistry creates an empty factory registry.
func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{
		policies: make(map[string]domain.RetryPolicy),
	}
}

// Register adds a factory to the registry and re-sorts the selection order.
// Cached policies are dropped because a newly registered factory may now win
// the selection.
func (r *FactoryRegistry) Register(factory domain.RetryFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = append(r.factories, registeredFactory{
		factory: factory,
		seq:     len(r.factories),
	})

	sort.SliceStable(r.factories, func(i, j int) bool {
		if r.factories[i].factory.Priority() != r.factories[j].factory.Priority() {
			return r.factories[i].factory.Priority() > r.factories[j].factory.Priority()
		}
		return r.factories[i].seq < r.factories[j].seq
	})

	r.policies = make(map[string]domain.RetryPolicy)
}

// HasFactories reports whether at least one factory is registered. Retry
// capability is absent without one.
func (r *FactoryRegistry) HasFactories() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories) > 0
}

// PolicyFor returns the retry policy for a service ID, constructing and
// caching it on first use. Returns nil when no factory is registered.
func (r *FactoryRegistry) PolicyFor(serviceID string) domain.RetryPolicy {
	r.mu.RLock()
	policy, cached := r.policies[serviceID]
	r.mu.RUnlock()
	if cached {
		return policy
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if policy, cached = r.policies[serviceID]; cached {
		return policy
	}
	if len(r.factories) == 0 {
		return nil
	}

	policy = r.factories[0].factory.PolicyFor(serviceID)
	r.policies[serviceID] = policy
	return policy
}
