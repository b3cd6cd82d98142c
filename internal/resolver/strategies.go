package resolver

import (
	"math/rand"
	"sync"

	"github.com/mir00r/lb-http-client/internal/domain"
	lberrors "github.com/mir00r/lb-http-client/internal/errors"
)

// Strategy names accepted by NewStrategy.
const (
	StrategyRoundRobin         = "round_robin"
	StrategyWeightedRoundRobin = "weighted_round_robin"
	StrategyRandom             = "random"
)

// SelectionStrategy defines the interface for instance selection strategies.
// Selection state is keyed by service ID so a single strategy instance can
// balance many services independently.
type SelectionStrategy interface {
	Select(serviceID string, instances []*domain.ServiceInstance) *domain.ServiceInstance
	Name() string
}

// NewStrategy creates a selection strategy by its configured name.
func NewStrategy(name string) (SelectionStrategy, error) {
	switch name {
	case StrategyRoundRobin, "":
		return NewRoundRobinStrategy(), nil
	case StrategyWeightedRoundRobin:
		return NewWeightedRoundRobinStrategy(), nil
	case StrategyRandom:
		return NewRandomStrategy(), nil
	default:
		return nil, lberrors.NewInvalidStrategyError(name)
	}
}

// RoundRobinStrategy implements round-robin selection with an independent
// counter per service
type RoundRobinStrategy struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewRoundRobinStrategy creates a new round-robin strategy
func NewRoundRobinStrategy() *RoundRobinStrategy {
	return &RoundRobinStrategy{counters: make(map[string]uint64)}
}

// Select selects the next instance for the service using round-robin
func (s *RoundRobinStrategy) Select(serviceID string, instances []*domain.ServiceInstance) *domain.ServiceInstance {
	if len(instances) == 0 {
		return nil
	}

	s.mu.Lock()
	next := s.counters[serviceID]
	s.counters[serviceID] = next + 1
	s.mu.Unlock()

	return instances[next%uint64(len(instances))]
}

// Name returns the strategy name
func (s *RoundRobinStrategy) Name() string {
	return StrategyRoundRobin
}

// WeightedRoundRobinStrategy implements smooth weighted round-robin
// selection with independent weight state per service
type WeightedRoundRobinStrategy struct {
	mu             sync.Mutex
	currentWeights map[string]map[string]int
}

// NewWeightedRoundRobinStrategy creates a new weighted round-robin strategy
func NewWeightedRoundRobinStrategy() *WeightedRoundRobinStrategy {
	return &WeightedRoundRobinStrategy{
		currentWeights: make(map[string]map[string]int),
	}
}

// Select selects the next instance for the service using smooth weighted
// round-robin
func (s *WeightedRoundRobinStrategy) Select(serviceID string, instances []*domain.ServiceInstance) *domain.ServiceInstance {
	if len(instances) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	weights, exists := s.currentWeights[serviceID]
	if !exists {
		weights = make(map[string]int)
		s.currentWeights[serviceID] = weights
	}

	totalWeight := 0
	for _, instance := range instances {
		totalWeight += instance.Weight
	}

	if totalWeight == 0 {
		// All weights are zero, fall back to uniform random selection
		return instances[rand.Intn(len(instances))]
	}

	// Find instance with highest current weight
	var selected *domain.ServiceInstance
	maxWeight := -1

	for _, instance := range instances {
		weights[instance.ID] += instance.Weight
		if weights[instance.ID] > maxWeight {
			maxWeight = weights[instance.ID]
			selected = instance
		}
	}

	if selected != nil {
		weights[selected.ID] -= totalWeight
	}

	return selected
}

// Name returns the strategy name
func (s *WeightedRoundRobinStrategy) Name() string {
	return StrategyWeightedRoundRobin
}

// RandomStrategy implements uniform random selection
type RandomStrategy struct{}

// NewRandomStrategy creates a new random strategy
func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{}
}

// Select selects a uniformly random instance
func (s *RandomStrategy) Select(serviceID string, instances []*domain.ServiceInstance) *domain.ServiceInstance {
	if len(instances) == 0 {
		return nil
	}
	return instances[rand.Intn(len(instances))]
}

// Name returns the strategy name
func (s *RandomStrategy) Name() string {
	return StrategyRandom
}
