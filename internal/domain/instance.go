package domain

import (
	"fmt"
)

// ServiceInstance represents one concrete replica of a logical service: the
// host, port and scheme a rewritten request is actually delivered to.
//
// Instances are ephemeral. The client resolves a fresh one for every delivery
// attempt and never caches them, so a failed replica can be skipped on retry.
type ServiceInstance struct {
	ID       string            `json:"id" yaml:"id"`
	Host     string            `json:"host" yaml:"host"`
	Port     int               `json:"port" yaml:"port"`
	Secure   bool              `json:"secure" yaml:"secure"`
	Weight   int               `json:"weight" yaml:"weight"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewServiceInstance creates a ServiceInstance with default weight.
func NewServiceInstance(id, host string, port int) *ServiceInstance {
	return &ServiceInstance{
		ID:     id,
		Host:   host,
		Port:   port,
		Weight: 1,
	}
}

// Scheme returns "https" for secure instances and "http" otherwise.
func (i *ServiceInstance) Scheme() string {
	if i.Secure {
		return "https"
	}
	return "http"
}

// Address returns the host:port pair of the instance.
func (i *ServiceInstance) Address() string {
	return fmt.Sprintf("%s:%d", i.Host, i.Port)
}

// URL returns the base URL of the instance.
func (i *ServiceInstance) URL() string {
	return fmt.Sprintf("%s://%s", i.Scheme(), i.Address())
}
