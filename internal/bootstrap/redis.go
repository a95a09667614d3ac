package bootstrap

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/api"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/config"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/events"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/ingest"
)

// EventSetup is the optional batch event publisher and its client.
type EventSetup struct {
	client    *goredis.Client
	publisher *events.Publisher
}

// SetupEventPublisher connects to Redis when enabled. A failed connection
// is logged and the service runs without events.
func SetupEventPublisher(ctx context.Context, cfg *config.Config, log infralogger.Logger) *EventSetup {
	if !cfg.Redis.Enabled {
		log.Info("Redis events disabled")
		return &EventSetup{}
	}

	client, err := infraredis.NewClient(ctx, cfg.Redis.Client(), retry.DefaultConfig())
	if err != nil {
		log.Warn("Redis unavailable, batch events disabled", infralogger.Error(err))
		return &EventSetup{}
	}

	log.Info("Redis events enabled", infralogger.String("stream", cfg.Redis.Stream))
	return &EventSetup{
		client:    client,
		publisher: events.NewPublisher(client, cfg.Redis.Stream, log),
	}
}

// Publisher returns the publisher as a ReportPublisher, or nil when disabled.
func (e *EventSetup) Publisher() ingest.ReportPublisher {
	if e.publisher == nil {
		return nil
	}
	return e.publisher
}

// Checks returns the redis health check when connected.
func (e *EventSetup) Checks() []api.HealthCheck {
	if e.client == nil {
		return nil
	}
	return []api.HealthCheck{{Name: "redis", Optional: true, Check: func() error {
		ctx, cancel := context.WithTimeout(context.Background(), healthPingTimeout)
		defer cancel()
		return e.client.Ping(ctx).Err()
	}}}
}

// Close closes the redis client.
func (e *EventSetup) Close(log infralogger.Logger) {
	if e.client == nil {
		return
	}
	if err := e.client.Close(); err != nil {
		log.Error("Failed to close redis client", infralogger.Error(err))
	}
}
