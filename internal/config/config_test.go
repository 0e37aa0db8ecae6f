package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := config.FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://127.0.0.1:11111", cfg.APIBaseURL)
	assert.Equal(t, "http://127.0.0.1:9001", cfg.BridgeURL)
	assert.Equal(t, 30*time.Second, cfg.CheckInterval)
	assert.Equal(t, 30*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 3, cfg.MaxConsecutiveFailures)
	assert.Equal(t, 60*time.Second, cfg.RecoveryTimeout)
	assert.Equal(t, time.Second, cfg.RecoveryDelay)
	assert.Empty(t, cfg.JWTSigningKey)
	assert.False(t, cfg.TelemetryEnabled)

	require.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://10.0.0.5:11111")
	t.Setenv("BRIDGE_URL", "http://10.0.0.5:9001")
	t.Setenv("CHECK_INTERVAL", "5s")
	t.Setenv("PROBE_TIMEOUT", "2s")
	t.Setenv("MAX_CONSECUTIVE_FAILURES", "5")
	t.Setenv("JWT_SIGNING_KEY", "test-key")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := config.FromEnv()

	assert.Equal(t, "http://10.0.0.5:11111", cfg.APIBaseURL)
	assert.Equal(t, "http://10.0.0.5:9001", cfg.BridgeURL)
	assert.Equal(t, 5*time.Second, cfg.CheckInterval)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 5, cfg.MaxConsecutiveFailures)
	assert.Equal(t, "test-key", cfg.JWTSigningKey)
	assert.True(t, cfg.TelemetryEnabled)
}

func TestValidate(t *testing.T) {
	valid := config.FromEnv()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "zero check interval",
			mutate:  func(c *config.Config) { c.CheckInterval = 0 },
			wantErr: "check interval",
		},
		{
			name:    "negative probe timeout",
			mutate:  func(c *config.Config) { c.ProbeTimeout = -time.Second },
			wantErr: "probe timeout",
		},
		{
			name:    "zero failure threshold",
			mutate:  func(c *config.Config) { c.MaxConsecutiveFailures = 0 },
			wantErr: "consecutive failures",
		},
		{
			name:    "empty api url",
			mutate:  func(c *config.Config) { c.APIBaseURL = "" },
			wantErr: "api base url",
		},
		{
			name:    "empty bridge url",
			mutate:  func(c *config.Config) { c.BridgeURL = "" },
			wantErr: "bridge url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
