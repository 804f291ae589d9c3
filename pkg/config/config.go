// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Backend holds the identity backend connection settings
	Backend BackendConfig

	// Credential holds the service credential settings
	Credential CredentialConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for probes)
	HealthPort string

	// PublicBaseURL is the externally reachable base URL of this service,
	// used to build hypermedia next-action links and redirect targets
	PublicBaseURL string
}

// BackendConfig holds identity backend settings
type BackendConfig struct {
	// BaseURL of the identity backend API
	BaseURL string
	// ServiceBaseURL is this service's own identity URL; only ID tokens
	// addressed to it are unpacked into claims
	ServiceBaseURL string
	// DefaultRedirectURL is handed to the backend for federation callbacks
	DefaultRedirectURL string

	OrgCacheSize int
	OrgCacheTTL  time.Duration
}

// CredentialConfig holds the API key settings for the service credential
type CredentialConfig struct {
	ClientID        string
	ClientSecret    string
	TokenURL        string
	RefreshSchedule string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string
	MetricsEnabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("GATEHOUSE_HOST", "127.0.0.1"),
			Port:            getEnv("GATEHOUSE_PORT", "8080"),
			ReadTimeout:     getEnvDuration("GATEHOUSE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("GATEHOUSE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("GATEHOUSE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("GATEHOUSE_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("GATEHOUSE_HEALTH_PORT", "9090"),
			PublicBaseURL:   getEnv("GATEHOUSE_PUBLIC_BASE_URL", "http://localhost:8080"),
		},
		Backend: BackendConfig{
			BaseURL:            getEnv("GATEHOUSE_BACKEND_URL", ""),
			ServiceBaseURL:     getEnv("GATEHOUSE_SERVICE_BASE_URL", ""),
			DefaultRedirectURL: getEnv("GATEHOUSE_DEFAULT_REDIRECT_URL", "http://localhost:8080/callback"),
			OrgCacheSize:       getEnvInt("GATEHOUSE_ORG_CACHE_SIZE", 128),
			OrgCacheTTL:        getEnvDuration("GATEHOUSE_ORG_CACHE_TTL", 5*time.Minute),
		},
		Credential: CredentialConfig{
			ClientID:        getEnv("GATEHOUSE_API_KEY_CLIENT_ID", ""),
			ClientSecret:    getEnv("GATEHOUSE_API_KEY_CLIENT_SECRET", ""),
			TokenURL:        getEnv("GATEHOUSE_TOKEN_URL", ""),
			RefreshSchedule: getEnv("GATEHOUSE_CREDENTIAL_REFRESH_SCHEDULE", "0 * * * *"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("GATEHOUSE_LOG_LEVEL", "info"),
			MetricsEnabled: getEnvBool("GATEHOUSE_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend URL is required")
	}
	if c.Backend.ServiceBaseURL == "" {
		// Claims extraction needs the service's own identity; default to
		// the backend URL, which matches single-tenant deployments.
		c.Backend.ServiceBaseURL = c.Backend.BaseURL
	}
	if c.Credential.TokenURL == "" {
		c.Credential.TokenURL = c.Backend.BaseURL + "/api/v2/oauth/token"
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
