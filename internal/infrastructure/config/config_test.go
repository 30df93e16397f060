package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTTL)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Sandbox config
	assert.Equal(t, 3*time.Second, cfg.Sandbox.Timeout)
	assert.Equal(t, 8, cfg.Sandbox.MaxConcurrent)
	assert.Equal(t, 1024, cfg.Sandbox.MaxCallStack)

	// Generator config
	assert.Equal(t, "gemini", cfg.Generator.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Generator.Model)
	assert.InDelta(t, 0.2, cfg.Generator.Temperature, 1e-9)

	// Store config
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "testbench.db", cfg.Store.DSN)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	t.Chdir(t.TempDir())

	envVars := map[string]string{
		"PORT":                   "9000",
		"HOST":                   "127.0.0.1",
		"LOG_LEVEL":              "debug",
		"LOG_DEV":                "true",
		"RATE_LIMIT_RPS":         "500",
		"RATE_LIMIT_BURST":       "1000",
		"RATE_LIMIT_ENABLED":     "false",
		"SANDBOX_TIMEOUT":        "500ms",
		"SANDBOX_MAX_CONCURRENT": "2",
		"GENERATOR_PROVIDER":     "openai",
		"GENERATOR_API_KEY":      "sk-test",
		"GENERATOR_MODEL":        "gpt-4o-mini",
		"STORE_DRIVER":           "memory",
		"SEED_DIR":               "./seeds",
		"CORS_ORIGINS":           "http://localhost:5173,http://editor.local",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Sandbox.Timeout)
	assert.Equal(t, 2, cfg.Sandbox.MaxConcurrent)
	assert.Equal(t, "openai", cfg.Generator.Provider)
	assert.Equal(t, "sk-test", cfg.Generator.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Generator.Model)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "./seeds", cfg.Store.SeedDir)
	assert.Equal(t, []string{"http://localhost:5173", "http://editor.local"}, cfg.Server.CORSOrigins)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := "PORT=7000\nGENERATOR_API_KEY=from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(content), 0o644))

	// Environment wins over the file
	t.Setenv("PORT", "7001")
	// godotenv sets variables it loads; clear them after the test
	t.Setenv("GENERATOR_API_KEY", "")
	require.NoError(t, os.Unsetenv("GENERATOR_API_KEY"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7001", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Generator.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "postgres", mutate: func(c *Config) { c.Store.Driver = "postgres" }},
		{name: "no generator", mutate: func(c *Config) { c.Generator.Provider = "none" }},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.Generator.Provider = "llama" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Sandbox.Timeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadOrDefaultOnInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "mongo")

	cfg := LoadOrDefault()
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestServerConfig(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		host     string
		wantPort string
		wantHost string
	}{
		{name: "default values", wantPort: "8000", wantHost: "0.0.0.0"},
		{name: "custom port", port: "9000", wantPort: "9000", wantHost: "0.0.0.0"},
		{name: "custom host", host: "localhost", wantPort: "8000", wantHost: "localhost"},
		{name: "custom port and host", port: "3000", host: "127.0.0.1", wantPort: "3000", wantHost: "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())

			if tt.port != "" {
				t.Setenv("PORT", tt.port)
			}
			if tt.host != "" {
				t.Setenv("HOST", tt.host)
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantPort, cfg.Server.Port)
			assert.Equal(t, tt.wantHost, cfg.Server.Host)
		})
	}
}
