/*
Package resolver provides the default InstanceResolver implementation.

A Registry holds the known instances for each logical service, and a
RegistryResolver picks one per delivery attempt using a pluggable selection
strategy (round robin, weighted round robin, random). The resolver also
rebuilds request URIs, substituting the chosen instance's scheme and
authority while preserving path and query.

	registry := resolver.NewRegistry()
	registry.SetInstances("orders-service", []*domain.ServiceInstance{
		domain.NewServiceInstance("orders-1", "10.0.0.5", 8080),
		domain.NewServiceInstance("orders-2", "10.0.0.6", 8080),
	})

	strategy, _ := resolver.NewStrategy("round_robin")
	res := resolver.New(registry, strategy, log)
*/
package resolver
