package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DotEnvFile is read before the environment is processed, if present.
const DotEnvFile = ".env"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Sandbox   SandboxConfig
	Generator GeneratorConfig
	Store     StoreConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string        `envconfig:"PORT" default:"8000"`
	Host        string        `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ShutdownTTL time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// SandboxConfig holds test execution limits.
type SandboxConfig struct {
	Timeout       time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"3s"`
	MaxConcurrent int           `envconfig:"SANDBOX_MAX_CONCURRENT" default:"8"`
	MaxCallStack  int           `envconfig:"SANDBOX_MAX_CALL_STACK" default:"1024"`
}

// GeneratorConfig holds AI test generation configuration.
type GeneratorConfig struct {
	Provider    string        `envconfig:"GENERATOR_PROVIDER" default:"gemini"`
	APIKey      string        `envconfig:"GENERATOR_API_KEY"`
	Model       string        `envconfig:"GENERATOR_MODEL" default:"gemini-2.0-flash"`
	BaseURL     string        `envconfig:"GENERATOR_BASE_URL"`
	Temperature float64       `envconfig:"GENERATOR_TEMPERATURE" default:"0.2"`
	Timeout     time.Duration `envconfig:"GENERATOR_TIMEOUT" default:"60s"`
}

// StoreConfig holds project persistence configuration.
type StoreConfig struct {
	Driver  string `envconfig:"STORE_DRIVER" default:"sqlite"`
	DSN     string `envconfig:"STORE_DSN" default:"testbench.db"`
	SeedDir string `envconfig:"SEED_DIR"`
}

// Load loads configuration from .env and environment variables.
// Variables already set in the environment take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", DotEnvFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	switch c.Generator.Provider {
	case "gemini", "openai", "none":
	default:
		return fmt.Errorf("unsupported generator provider %q", c.Generator.Provider)
	}
	if c.Sandbox.Timeout <= 0 {
		return fmt.Errorf("sandbox timeout must be positive, got %s", c.Sandbox.Timeout)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
			ShutdownTTL: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Sandbox: SandboxConfig{
			Timeout:       3 * time.Second,
			MaxConcurrent: 8,
			MaxCallStack:  1024,
		},
		Generator: GeneratorConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "testbench.db",
		},
	}
}
