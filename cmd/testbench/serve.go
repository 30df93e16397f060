package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/TestBench/backend/internal/server"
)

var (
	portFlag  string
	hostFlag  string
	storeFlag string
	dsnFlag   string
	seedFlag  string
	devFlag   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TestBench HTTP server",
	Long: `Start the TestBench HTTP API.

Configuration comes from the environment (and .env); flags override it.

Examples:
  testbench serve
  testbench serve --port 9090 --store memory`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&portFlag, "port", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&hostFlag, "host", "", "Host to bind (overrides HOST)")
	serveCmd.Flags().StringVar(&storeFlag, "store", "", "Project store driver: sqlite, postgres or memory")
	serveCmd.Flags().StringVar(&dsnFlag, "dsn", "", "Project store DSN (overrides STORE_DSN)")
	serveCmd.Flags().StringVar(&seedFlag, "seed", "", "Directory of project manifests to seed")
	serveCmd.Flags().BoolVar(&devFlag, "dev", false, "Development logging")
	rootCmd.AddCommand(serveCmd)
}

// applyServeFlags overlays explicitly set flags on cfg
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = portFlag
	}
	if flags.Changed("host") {
		cfg.Server.Host = hostFlag
	}
	if flags.Changed("store") {
		cfg.Store.Driver = storeFlag
	}
	if flags.Changed("dsn") {
		cfg.Store.DSN = dsnFlag
	}
	if flags.Changed("seed") {
		cfg.Store.SeedDir = seedFlag
	}
	if flags.Changed("dev") {
		cfg.Logging.Development = devFlag
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevelFlag
	}
	return cfg.Validate()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	logCfg.Level = cfg.Logging.Level
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTTL)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
		return nil
	case err := <-errCh:
		return err
	}
}
