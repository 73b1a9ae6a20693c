package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the root configuration for the verification backend.
// Values are resolved in order: struct defaults, optional YAML file,
// then DVB_ environment variables.
type Config struct {
	Version     string          `koanf:"version"`
	Environment string          `koanf:"environment"`
	LogLevel    string          `koanf:"log_level"`
	Server      ServerConfig    `koanf:"server"`
	Balancer    BalancerConfig  `koanf:"balancer"`
	Ledger      LedgerConfig    `koanf:"ledger"`
	Carriers    []CarrierConfig `koanf:"carriers"`
	Security    SecurityConfig  `koanf:"security"`
	Telemetry   TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Port            int             `koanf:"port"`
	ReadTimeout     time.Duration   `koanf:"read_timeout"`
	WriteTimeout    time.Duration   `koanf:"write_timeout"`
	RequestTimeout  time.Duration   `koanf:"request_timeout"`
	ShutdownTimeout time.Duration   `koanf:"shutdown_timeout"`
	RateLimit       RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool `koanf:"enabled"`
	RequestsPerSecond int  `koanf:"requests_per_second"`
	Burst             int  `koanf:"burst"`
}

type BalancerConfig struct {
	Strategy string `koanf:"strategy"`
}

type LedgerConfig struct {
	// StepWeights carries one weight per verification step, cheapest
	// step first, and must be non-decreasing.
	StepWeights []uint32 `koanf:"step_weights"`
}

type CarrierConfig struct {
	Name        string `koanf:"name"`
	ChanceSMS   int    `koanf:"chance_sms"`
	ChanceVoice int    `koanf:"chance_voice"`
}

type SecurityConfig struct {
	TokenSecret string        `koanf:"token_secret"`
	TokenIssuer string        `koanf:"token_issuer"`
	TokenTTL    time.Duration `koanf:"token_ttl"`
}

type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	ServiceName  string  `koanf:"service_name"`
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	SampleRate   float64 `koanf:"sample_rate"`
}

// DefaultConfig returns the baseline configuration used when neither a
// config file nor environment overrides are present. The two simulated
// carriers give a runnable demo setup out of the box.
func DefaultConfig() Config {
	return Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 100,
				Burst:             200,
			},
		},
		Balancer: BalancerConfig{
			Strategy: "round-robin",
		},
		Ledger: LedgerConfig{
			StepWeights: []uint32{1, 2, 3, 4, 5},
		},
		Carriers: []CarrierConfig{
			{Name: "carrier_1", ChanceSMS: 75, ChanceVoice: 40},
			{Name: "carrier_2", ChanceSMS: 85, ChanceVoice: 55},
		},
		Security: SecurityConfig{
			TokenSecret: "dev-secret-change-me",
			TokenIssuer: "dependable-verification-backend",
			TokenTTL:    15 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "verification-backend",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   0.1,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file at path,
// and DVB_ environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	// Development convenience; a missing .env file is not an error.
	_ = godotenv.Load()

	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// The file is optional, but a present-and-broken file is fatal.
			if !strings.Contains(err.Error(), "no such file") {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("DVB_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "DVB_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants that would otherwise surface as runtime
// failures deep inside the dispatcher.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Balancer.Strategy == "" {
		return fmt.Errorf("balancer strategy must not be empty")
	}
	if len(c.Ledger.StepWeights) == 0 {
		return fmt.Errorf("ledger step weights must not be empty")
	}
	for i := 1; i < len(c.Ledger.StepWeights); i++ {
		if c.Ledger.StepWeights[i] < c.Ledger.StepWeights[i-1] {
			return fmt.Errorf("ledger step weights must be non-decreasing, got %v", c.Ledger.StepWeights)
		}
	}
	for _, carrier := range c.Carriers {
		if carrier.Name == "" {
			return fmt.Errorf("carrier name must not be empty")
		}
		if carrier.ChanceSMS < 0 || carrier.ChanceSMS > 100 {
			return fmt.Errorf("carrier %s: chance_sms must be within [0, 100], got %d", carrier.Name, carrier.ChanceSMS)
		}
		if carrier.ChanceVoice < 0 || carrier.ChanceVoice > 100 {
			return fmt.Errorf("carrier %s: chance_voice must be within [0, 100], got %d", carrier.Name, carrier.ChanceVoice)
		}
	}
	if c.Security.TokenSecret == "" {
		return fmt.Errorf("security token secret must not be empty")
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("security token ttl must be positive, got %s", c.Security.TokenTTL)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry sample rate must be within [0, 1], got %f", c.Telemetry.SampleRate)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
