// Package api assembles the content-ingestor HTTP server.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/config"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/handler"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/telemetry"
)

const defaultIdleTimeout = 60 * time.Second

// HealthCheck is a named dependency check reported by GET /health. An
// optional dependency only degrades the service when it fails.
type HealthCheck struct {
	Name     string
	Optional bool
	Check    func() error
}

// NewServer creates a new HTTP server.
func NewServer(
	batchHandler *handler.BatchHandler,
	cfg *config.Config,
	provider *telemetry.Provider,
	log infralogger.Logger,
	checks ...HealthCheck,
) *infragin.Server {
	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.CORS.AllowedOrigins).
		WithTimeouts(cfg.Service.ReadTimeout, cfg.Service.WriteTimeout, defaultIdleTimeout).
		WithMaxMultipartMemory(cfg.Service.MaxUploadBytes)

	for _, check := range checks {
		if check.Optional {
			builder = builder.WithOptionalCheck(check.Name, check.Check)
			continue
		}
		builder = builder.WithHealthCheck(check.Name, check.Check)
	}

	return builder.
		WithRoutes(func(router *gin.Engine) {
			var metrics http.Handler
			if provider != nil {
				metrics = provider.Handler()
			}
			SetupRoutes(router, batchHandler, cfg.Service.MetricsPath, metrics, cfg.Auth.JWTSecret)
		}).
		Build()
}
