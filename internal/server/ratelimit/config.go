package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// DefaultLoginPerMinute bounds sign-in attempts per client.
const DefaultLoginPerMinute = 10

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig(getenv func(string) string) *Config {
	if !getEnvBool(getenv, "RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt(getenv, "RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration(getenv, "RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration(getenv, "RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(getEnvInt(getenv, "RATE_LIMIT_LOGIN_PER_MINUTE", DefaultLoginPerMinute)),
	}
}

// DefaultEndpointConfigs returns the limits of the sign-in form and the mutating
// listing endpoints.
func DefaultEndpointConfigs(loginPerMinute int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/login", Method: "POST", Limit: loginPerMinute, Window: time.Minute, Burst: min(loginPerMinute, 5)},
		{Path: "/tools/orphaned-data", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/tools/orphaned-data/screen-options", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
	}
}

func getEnvInt(getenv func(string) string, key string, defaultValue int) int {
	if value := getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(getenv func(string) string, key string, defaultValue bool) bool {
	if value := getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(getenv func(string) string, key string, defaultValue time.Duration) time.Duration {
	if value := getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
