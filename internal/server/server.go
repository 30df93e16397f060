package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/TestBench/backend/internal/api/http"
	"github.com/GriffinCanCode/TestBench/backend/internal/api/middleware"
	"github.com/GriffinCanCode/TestBench/backend/internal/domain/project"
	"github.com/GriffinCanCode/TestBench/backend/internal/generator"
	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/TestBench/backend/internal/sandbox"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router    *gin.Engine
	http      *http.Server
	host      *sandbox.Host
	store     project.Store
	generator generator.Generator
	logger    *logging.Logger
	config    *config.Config
	metrics   *monitoring.Metrics
	tracer    *tracing.Tracer
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing TestBench server",
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("generator", cfg.Generator.Provider),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("testbench", logger.Component("tracing"))

	host := sandbox.NewHost(sandbox.Config{
		Timeout:          cfg.Sandbox.Timeout,
		MaxCallStackSize: cfg.Sandbox.MaxCallStack,
		MaxConcurrent:    cfg.Sandbox.MaxConcurrent,
	}, logger.Component("sandbox"), sandbox.WithObserver(metrics))

	store, err := project.NewStore(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		host.Close()
		tracer.Close()
		return nil, fmt.Errorf("failed to open project store: %w", err)
	}
	logger.Info("Project store ready", zap.String("driver", cfg.Store.Driver))

	if cfg.Store.SeedDir != "" {
		seeder := project.NewSeeder(store, cfg.Store.SeedDir, logger.Component("seeder"))
		if _, err := seeder.Seed(ctx); err != nil {
			logger.Warn("Failed to seed projects", zap.Error(err))
		}
	}
	if count, err := store.Count(ctx); err == nil {
		metrics.SetProjects(count)
	}

	gen, err := newGenerator(cfg.Generator, logger)
	if err != nil {
		store.Close()
		host.Close()
		tracer.Close()
		return nil, err
	}
	gen = generator.Instrument(gen, metrics)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	router.Use(middleware.CORS(corsConfig))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(host, store, gen, apihttp.NewHandlerMetrics(metrics), logger.Component("api"))
	handlers.Register(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s := &Server{
		router:    router,
		host:      host,
		store:     store,
		generator: gen,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
		tracer:    tracer,
	}
	s.http = &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: s.Handler(),
	}
	return s, nil
}

// newGenerator builds the configured provider; a missing key disables generation
func newGenerator(cfg config.GeneratorConfig, logger *logging.Logger) (generator.Generator, error) {
	gen, err := generator.New(generator.Config{
		Provider:    cfg.Provider,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
		MaxRetries:  generator.DefaultConfig().MaxRetries,
		RetryWait:   generator.DefaultConfig().RetryWait,
	})
	switch {
	case errors.Is(err, generator.ErrMissingAPIKey):
		logger.Warn("Test generation disabled: no API key", zap.String("provider", cfg.Provider))
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to create generator: %w", err)
	case gen == nil:
		logger.Info("Test generation disabled")
	default:
		logger.Info("Test generation enabled", zap.String("provider", gen.Name()))
	}
	return gen, nil
}

// Handler returns the root handler with response compression
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

// Run starts the server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.http.Shutdown(ctx)
}

// Close cleans up resources
func (s *Server) Close() error {
	if err := s.host.Close(); err != nil {
		s.logger.Error("Error closing sandbox host", zap.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("Error closing project store", zap.Error(err))
	}
	s.tracer.Close()
	return nil
}
