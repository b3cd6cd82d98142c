package resolver

import (
	"fmt"
	"sync"

	"github.com/mir00r/lb-http-client/internal/domain"
)

// Registry is an in-memory store of service instances keyed by service ID.
// It is safe for concurrent use; lookups return copies so callers can never
// observe a slice being mutated by a concurrent registration.
type Registry struct {
	mu       sync.RWMutex
	services map[string][]*domain.ServiceInstance
}

// NewRegistry creates an empty instance registry.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string][]*domain.ServiceInstance),
	}
}

// SetInstances replaces the full instance list for a service.
func (r *Registry) SetInstances(serviceID string, instances []*domain.ServiceInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.services[serviceID] = append([]*domain.ServiceInstance(nil), instances...)
}

// AddInstance registers a single instance for a service.
func (r *Registry) AddInstance(serviceID string, instance *domain.ServiceInstance) error {
	if instance == nil {
		return fmt.Errorf("instance cannot be nil")
	}
	if instance.ID == "" {
		return fmt.Errorf("instance ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.services[serviceID] = append(r.services[serviceID], instance)
	return nil
}

// RemoveInstance removes an instance from a service by its ID.
func (r *Registry) RemoveInstance(serviceID, instanceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	instances, exists := r.services[serviceID]
	if !exists {
		return fmt.Errorf("service '%s' not found", serviceID)
	}

	for i, instance := range instances {
		if instance.ID == instanceID {
			r.services[serviceID] = append(instances[:i:i], instances[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("instance '%s' not found for service '%s'", instanceID, serviceID)
}

// Instances returns a copy of the instance list for a service. The result is
// empty when the service is unknown.
func (r *Registry) Instances(serviceID string) []*domain.ServiceInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*domain.ServiceInstance(nil), r.services[serviceID]...)
}

// Services returns the IDs of all registered services.
func (r *Registry) Services() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.services))
	for id := range r.services {
		ids = append(ids, id)
	}
	return ids
}
