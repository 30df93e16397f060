// Package config provides 12-factor configuration management for the TestBench backend.
//
// Configuration is loaded from a .env file (when present) and environment
// variables with sensible defaults. CLI flags can override environment
// variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Sandbox: Execution timeout, concurrency and call stack limits
//   - Generator: AI test generation provider
//   - Store: Project persistence driver and seed directory
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - SANDBOX_TIMEOUT, SANDBOX_MAX_CONCURRENT, SANDBOX_MAX_CALL_STACK
//   - GENERATOR_PROVIDER, GENERATOR_API_KEY, GENERATOR_MODEL, GENERATOR_BASE_URL
//   - GENERATOR_TEMPERATURE, GENERATOR_TIMEOUT
//   - STORE_DRIVER, STORE_DSN, SEED_DIR
package config
