package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/mir00r/lb-http-client/internal/domain"
	"github.com/mir00r/lb-http-client/internal/resolver"
	"github.com/mir00r/lb-http-client/internal/retry"
	"github.com/mir00r/lb-http-client/internal/transport"
)

// Config represents the main configuration structure
type Config struct {
	Client    ClientConfig              `yaml:"client"`
	Retry     RetryConfig               `yaml:"retry"`
	Transport transport.Config          `yaml:"transport"`
	RateLimit transport.RateLimitConfig `yaml:"rate_limit"`
	Services  []ServiceConfig           `yaml:"services"`
	Logging   LoggingConfig             `yaml:"logging"`
}

// ClientConfig contains client-level configuration
type ClientConfig struct {
	Strategy        string        `yaml:"strategy"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	FollowRedirects bool          `yaml:"follow_redirects"`
}

// RetryConfig contains retry behavior configuration. Retry is enabled by
// default; disabling it transparently falls back to the non-retrying client.
type RetryConfig struct {
	Enabled           bool          `yaml:"enabled"`
	MaxAttempts       int           `yaml:"max_attempts"`
	RetryableStatuses []int         `yaml:"retryable_statuses"`
	InitialBackoff    time.Duration `yaml:"initial_backoff"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
}

// ServiceConfig declares the known instances of one logical service
type ServiceConfig struct {
	Name      string           `yaml:"name"`
	Instances []InstanceConfig `yaml:"instances"`
}

// InstanceConfig declares a single service instance
type InstanceConfig struct {
	ID     string `yaml:"id"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secure bool   `yaml:"secure"`
	Weight int    `yaml:"weight"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	File   string `yaml:"file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	policy := retry.DefaultPolicyConfig()
	return &Config{
		Client: ClientConfig{
			Strategy:        resolver.StrategyRoundRobin,
			ConnectTimeout:  10 * time.Second,
			ReadTimeout:     60 * time.Second,
			FollowRedirects: true,
		},
		Retry: RetryConfig{
			Enabled:           true,
			MaxAttempts:       policy.MaxAttempts,
			RetryableStatuses: policy.RetryableStatuses,
			InitialBackoff:    policy.InitialBackoff,
			MaxBackoff:        policy.MaxBackoff,
		},
		Transport: transport.DefaultConfig(),
		RateLimit: transport.RateLimitConfig{
			Enabled:        false,
			RequestsPerSec: 100,
			BurstSize:      200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Load loads configuration from the given YAML file, falling back to the
// CONFIG_FILE environment variable and then to defaults when no file is
// given. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}

	config := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config.ApplyEnvironment()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Validate validates the configuration for correctness
func (c *Config) Validate() error {
	if _, err := resolver.NewStrategy(c.Client.Strategy); err != nil {
		return err
	}

	if c.Client.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive: %v", c.Client.ReadTimeout)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1: %d", c.Retry.MaxAttempts)
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSec <= 0 {
		return fmt.Errorf("requests_per_sec must be positive when rate limiting is enabled: %v",
			c.RateLimit.RequestsPerSec)
	}

	seen := make(map[string]bool)
	for _, service := range c.Services {
		if service.Name == "" {
			return fmt.Errorf("service name cannot be empty")
		}
		if seen[service.Name] {
			return fmt.Errorf("duplicate service name: %s", service.Name)
		}
		seen[service.Name] = true

		for _, instance := range service.Instances {
			if instance.Host == "" {
				return fmt.Errorf("instance host cannot be empty for service %s", service.Name)
			}
			if instance.Port <= 0 || instance.Port > 65535 {
				return fmt.Errorf("invalid port %d for service %s", instance.Port, service.Name)
			}
		}
	}
	return nil
}

// Options converts the client configuration into per-call execution options.
func (c *Config) Options() domain.Options {
	return domain.Options{
		ConnectTimeout:  c.Client.ConnectTimeout,
		ReadTimeout:     c.Client.ReadTimeout,
		FollowRedirects: c.Client.FollowRedirects,
	}
}

// PolicyConfig converts the retry configuration into a retry policy
// configuration.
func (c *Config) PolicyConfig() retry.PolicyConfig {
	return retry.PolicyConfig{
		MaxAttempts:       c.Retry.MaxAttempts,
		RetryableStatuses: c.Retry.RetryableStatuses,
		InitialBackoff:    c.Retry.InitialBackoff,
		MaxBackoff:        c.Retry.MaxBackoff,
	}
}

// PopulateRegistry registers every configured service instance into the
// given registry.
func (c *Config) PopulateRegistry(registry *resolver.Registry) {
	for _, service := range c.Services {
		instances := make([]*domain.ServiceInstance, 0, len(service.Instances))
		for i, ic := range service.Instances {
			id := ic.ID
			if id == "" {
				id = fmt.Sprintf("%s-%d", service.Name, i+1)
			}
			weight := ic.Weight
			if weight <= 0 {
				weight = 1
			}
			instances = append(instances, &domain.ServiceInstance{
				ID:     id,
				Host:   ic.Host,
				Port:   ic.Port,
				Secure: ic.Secure,
				Weight: weight,
			})
		}
		registry.SetInstances(service.Name, instances)
	}
}
