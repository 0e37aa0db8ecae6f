// Package config provides environment-driven configuration for the health
// monitor process.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all tunables for the monitor and its ops HTTP server.
type Config struct {
	// Port is the ops HTTP server listen port.
	Port string

	// APIBaseURL is the dashboard API process to probe.
	APIBaseURL string

	// BridgeURL is the MCP bridge process to probe.
	BridgeURL string

	// CheckInterval is the period of the background monitoring loop.
	CheckInterval time.Duration

	// ProbeTimeout bounds each individual probe call.
	ProbeTimeout time.Duration

	// MaxConsecutiveFailures trips a critical service's circuit breaker.
	MaxConsecutiveFailures int

	// RecoveryTimeout is how long a tripped breaker stays open.
	RecoveryTimeout time.Duration

	// RecoveryDelay is the pause between a recovery action and its
	// verification re-probe.
	RecoveryDelay time.Duration

	// JWTSigningKey protects mutating ops endpoints when set; empty leaves
	// them open (local development).
	JWTSigningKey string

	// OTLPEndpoint is the OpenTelemetry collector address.
	OTLPEndpoint string

	// TelemetryEnabled toggles OTLP export.
	TelemetryEnabled bool

	// Environment names the deployment environment.
	Environment string
}

// FromEnv creates a Config from environment variables, applying defaults
// for anything unset.
func FromEnv() Config {
	maxFailures, _ := strconv.Atoi(getEnvOrDefault("MAX_CONSECUTIVE_FAILURES", "3"))
	checkInterval, _ := time.ParseDuration(getEnvOrDefault("CHECK_INTERVAL", "30s"))
	probeTimeout, _ := time.ParseDuration(getEnvOrDefault("PROBE_TIMEOUT", "30s"))
	recoveryTimeout, _ := time.ParseDuration(getEnvOrDefault("RECOVERY_TIMEOUT", "60s"))
	recoveryDelay, _ := time.ParseDuration(getEnvOrDefault("RECOVERY_DELAY", "1s"))

	return Config{
		Port:                   getEnvOrDefault("APP_PORT", "8080"),
		APIBaseURL:             getEnvOrDefault("API_BASE_URL", "http://127.0.0.1:11111"),
		BridgeURL:              getEnvOrDefault("BRIDGE_URL", "http://127.0.0.1:9001"),
		CheckInterval:          checkInterval,
		ProbeTimeout:           probeTimeout,
		MaxConsecutiveFailures: maxFailures,
		RecoveryTimeout:        recoveryTimeout,
		RecoveryDelay:          recoveryDelay,
		JWTSigningKey:          os.Getenv("JWT_SIGNING_KEY"),
		OTLPEndpoint:           getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled:       os.Getenv("OTEL_ENABLED") == "true",
		Environment:            getEnvOrDefault("APP_ENV", "development"),
	}
}

// Validate rejects configuration the monitor cannot start with.
func (c Config) Validate() error {
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check interval must be positive, got %s", c.CheckInterval)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.ProbeTimeout)
	}
	if c.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("max consecutive failures must be positive, got %d", c.MaxConsecutiveFailures)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url must not be empty")
	}
	if c.BridgeURL == "" {
		return fmt.Errorf("bridge url must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
