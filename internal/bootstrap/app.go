// Package bootstrap handles application initialization and lifecycle management
// for the content-ingestor service.
package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/api"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/handler"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/telemetry"
)

const version = "dev"

// Start initializes and starts the content-ingestor application.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Phase 1: Load config and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	profiler, err := profiling.Start(cfg.Profiling, cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	defer func() { _ = profiler.Stop() }()

	// Phase 2: Setup persistence and media boundaries
	persistence, err := SetupPersistence(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to set up persistence: %w", err)
	}
	defer func() {
		if closeErr := persistence.Close(); closeErr != nil {
			log.Error("Failed to close persistence", infralogger.Error(closeErr))
		}
	}()

	// Phase 3: Setup event publisher (optional)
	events := SetupEventPublisher(ctx, cfg, log)
	defer events.Close(log)

	// Phase 4: Assemble the pipeline
	provider := telemetry.NewProvider()
	service, err := NewIngestService(cfg, persistence, events.Publisher(), provider, log)
	if err != nil {
		return fmt.Errorf("failed to build ingest service: %w", err)
	}

	// Phase 5: Setup and run HTTP server
	batchHandler := handler.NewBatchHandler(service, log, cfg.Service.MaxUploadBytes)
	checks := append(persistence.Checks(), events.Checks()...)
	server := api.NewServer(batchHandler, cfg, provider, log, checks...)

	log.Info("Starting content-ingestor",
		infralogger.Int("port", cfg.Service.Port),
		infralogger.String("persistence", cfg.Persistence.Driver),
		infralogger.Bool("media_enabled", cfg.Media.Enabled),
		infralogger.Bool("events_enabled", events.Publisher() != nil),
		infralogger.Int("workers", cfg.Ingest.Workers),
	)

	if runErr := server.RunWithGracefulShutdown(ctx); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
