package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/config"
	"github.com/marmos91/dittodrive/pkg/gc"
	"github.com/marmos91/dittodrive/pkg/httpd"
	"github.com/marmos91/dittodrive/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure logger
	logger.SetLevel(cfg.Logging.Level)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("DittoDrive - File Storage Service")
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Metadata store: %s", cfg.Metadata.Type)
	logger.Info("Session cache: %s", cfg.Cache.Type)
	logger.Info("Content store: %s", cfg.Content.Type)

	// The registry must exist before any backend asks for its instruments.
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	backends, err := config.InitializeBackends(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize backends: %v", err)
	}
	defer backends.Close()

	// Start the thumbnail workers. They get their own lifetime, not the
	// server context: on shutdown the queue drains via Stop instead of
	// abandoning in-flight jobs at cancellation.
	if err := backends.Pipeline.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start thumbnail pipeline: %v", err)
	}

	collector := gc.NewCollector(backends.Metadata, backends.Content, gc.Config{
		Enabled:   cfg.GC.Enabled,
		Interval:  cfg.GC.Interval,
		BatchSize: cfg.GC.BatchSize,
		DryRun:    cfg.GC.DryRun,
	})
	collector.Start()

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(metrics.ServerConfig{Port: cfg.Metrics.Port})
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	}

	srv := httpd.New(httpd.ServerConfig{
		ListenAddr:        cfg.Server.ListenAddr,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		AuthRatePerSecond: cfg.Server.AuthRateLimit,
		AuthRateBurst:     cfg.Server.AuthRateBurst,
	}, backends.Auth, backends.Files, backends.Metadata, backends.Cache, metrics.NewRequestMetrics())

	// Start server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running on %s. Press Ctrl+C to stop.", cfg.Server.ListenAddr)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error: %v", err)
			os.Exit(1)
		}

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error: %v", err)
			os.Exit(1)
		}
	}

	// Drain in-flight thumbnail jobs before the stores close
	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stopCancel()
	if err := backends.Pipeline.Stop(stopCtx); err != nil {
		logger.Warn("Thumbnail pipeline did not stop cleanly: %v", err)
	}
	if err := collector.Stop(stopCtx); err != nil {
		logger.Warn("Garbage collector did not stop cleanly: %v", err)
	}

	logger.Info("Server stopped gracefully")
}
