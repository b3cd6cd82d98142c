package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvironment overrides configuration from environment variables
// This implements 12-Factor App methodology - Factor #3: Config
func (c *Config) ApplyEnvironment() {
	if strategy := getEnv("LBC_STRATEGY", ""); strategy != "" {
		c.Client.Strategy = strategy
	}

	if timeout := getEnv("LBC_CONNECT_TIMEOUT", ""); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			c.Client.ConnectTimeout = t
		}
	}

	if timeout := getEnv("LBC_READ_TIMEOUT", ""); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			c.Client.ReadTimeout = t
		}
	}

	if enabled := getEnv("LBC_RETRY_ENABLED", ""); enabled != "" {
		c.Retry.Enabled = strings.ToLower(enabled) == "true"
	}

	if attempts := getEnv("LBC_RETRY_MAX_ATTEMPTS", ""); attempts != "" {
		if a, err := strconv.Atoi(attempts); err == nil && a >= 1 {
			c.Retry.MaxAttempts = a
		}
	}

	if backoff := getEnv("LBC_RETRY_INITIAL_BACKOFF", ""); backoff != "" {
		if b, err := time.ParseDuration(backoff); err == nil {
			c.Retry.InitialBackoff = b
		}
	}

	if enabled := getEnv("LBC_RATE_LIMIT_ENABLED", ""); enabled != "" {
		c.RateLimit.Enabled = strings.ToLower(enabled) == "true"
	}

	if rps := getEnv("LBC_RATE_LIMIT_RPS", ""); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil && r > 0 {
			c.RateLimit.RequestsPerSec = r
		}
	}

	if level := getEnv("LBC_LOG_LEVEL", ""); level != "" {
		c.Logging.Level = level
	}

	if format := getEnv("LBC_LOG_FORMAT", ""); format != "" {
		c.Logging.Format = format
	}

	// LBC_SERVICES declares services inline:
	//   "orders=10.0.0.5:8080,10.0.0.6:8080;billing=10.0.1.5:9090"
	if services := getEnv("LBC_SERVICES", ""); services != "" {
		if parsed := parseServices(services); len(parsed) > 0 {
			c.Services = parsed
		}
	}
}

// parseServices parses the LBC_SERVICES inline declaration format.
func parseServices(raw string) []ServiceConfig {
	var services []ServiceConfig
	for _, entry := range strings.Split(raw, ";") {
		parts := strings.SplitN(strings.TrimSpace(entry), "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}

		service := ServiceConfig{Name: parts[0]}
		for i, addr := range strings.Split(parts[1], ",") {
			host, portStr, found := strings.Cut(strings.TrimSpace(addr), ":")
			if !found || host == "" {
				continue
			}
			port, err := strconv.Atoi(portStr)
			if err != nil || port <= 0 {
				continue
			}
			service.Instances = append(service.Instances, InstanceConfig{
				ID:     service.Name + "-" + strconv.Itoa(i+1),
				Host:   host,
				Port:   port,
				Weight: 1,
			})
		}
		if len(service.Instances) > 0 {
			services = append(services, service)
		}
	}
	return services
}

// getEnv returns the value of an environment variable or a default
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
