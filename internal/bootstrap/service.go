package bootstrap

import (
	"fmt"

	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/config"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/ingest"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/media"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/schedule"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/telemetry"
)

// NewIngestService assembles the resolver, binder, orchestrator and service.
// publisher and provider may be nil.
func NewIngestService(
	cfg *config.Config,
	persistence *Persistence,
	publisher ingest.ReportPublisher,
	provider *telemetry.Provider,
	log infralogger.Logger,
) (*ingest.Service, error) {
	loc, err := cfg.Ingest.Location()
	if err != nil {
		return nil, fmt.Errorf("load ingest timezone: %w", err)
	}

	resolver := schedule.NewResolver(log, schedule.WithLocation(loc))
	binder := media.NewBinder(persistence.Uploader, cfg.Media.MaxBytes, log)
	orch := ingest.NewOrchestrator(persistence.Creator, binder, resolver, log,
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithTelemetry(provider),
	)

	var metrics *telemetry.Metrics
	if provider != nil {
		metrics = provider.Metrics
	}
	return ingest.NewService(orch, resolver, publisher, metrics, log), nil
}
