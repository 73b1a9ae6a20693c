package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/dependable-verification-backend/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "round-robin", cfg.Balancer.Strategy)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, cfg.Ledger.StepWeights)
	assert.Equal(t, 15*time.Minute, cfg.Security.TokenTTL)
	assert.Len(t, cfg.Carriers, 2)
	assert.Equal(t, "carrier_1", cfg.Carriers[0].Name)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load("testdata/does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
environment: production
server:
  port: 8080
balancer:
  strategy: rr
ledger:
  step_weights: [2, 4, 6, 8, 10]
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "rr", cfg.Balancer.Strategy)
	assert.Equal(t, []uint32{2, 4, 6, 8, 10}, cfg.Ledger.StepWeights)
	assert.True(t, cfg.IsProduction())
	// Unspecified keys keep their defaults.
	assert.Equal(t, 15*time.Minute, cfg.Security.TokenTTL)
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: a: map"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("DVB_SERVER_PORT", "9090")
	t.Setenv("DVB_BALANCER_STRATEGY", "rr")
	t.Setenv("DVB_ENVIRONMENT", "staging")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "rr", cfg.Balancer.Strategy)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *config.Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "empty strategy",
			mutate:  func(c *config.Config) { c.Balancer.Strategy = "" },
			wantErr: "strategy must not be empty",
		},
		{
			name:    "empty step weights",
			mutate:  func(c *config.Config) { c.Ledger.StepWeights = nil },
			wantErr: "step weights must not be empty",
		},
		{
			name:    "decreasing step weights",
			mutate:  func(c *config.Config) { c.Ledger.StepWeights = []uint32{1, 2, 3, 2, 5} },
			wantErr: "non-decreasing",
		},
		{
			name:    "carrier chance above 100",
			mutate:  func(c *config.Config) { c.Carriers[0].ChanceSMS = 101 },
			wantErr: "chance_sms",
		},
		{
			name:    "negative voice chance",
			mutate:  func(c *config.Config) { c.Carriers[1].ChanceVoice = -1 },
			wantErr: "chance_voice",
		},
		{
			name:    "unnamed carrier",
			mutate:  func(c *config.Config) { c.Carriers[0].Name = "" },
			wantErr: "carrier name",
		},
		{
			name:    "empty token secret",
			mutate:  func(c *config.Config) { c.Security.TokenSecret = "" },
			wantErr: "token secret",
		},
		{
			name:    "non-positive token ttl",
			mutate:  func(c *config.Config) { c.Security.TokenTTL = 0 },
			wantErr: "token ttl",
		},
		{
			name:    "sample rate above 1",
			mutate:  func(c *config.Config) { c.Telemetry.SampleRate = 1.5 },
			wantErr: "sample rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
