package gin

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/jwt"
	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/logger"
)

// ServerBuilder assembles a Server step by step.
type ServerBuilder struct {
	config      *Config
	logger      logger.Logger
	setupRoutes func(*gin.Engine)
	checks      []HealthCheck
}

// NewServerBuilder starts a builder for the named service.
func NewServerBuilder(serviceName string, port int) *ServerBuilder {
	return &ServerBuilder{config: newConfig(serviceName, port)}
}

func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.logger = log
	return b
}

func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.config.Debug = debug
	return b
}

func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.config.ServiceVersion = version
	return b
}

func (b *ServerBuilder) WithCORSOrigins(origins []string) *ServerBuilder {
	if len(origins) > 0 {
		b.config.CORS.AllowedOrigins = origins
	}
	return b
}

// WithTimeouts overrides read, write and idle timeouts; zero keeps the default.
func (b *ServerBuilder) WithTimeouts(read, write, idle time.Duration) *ServerBuilder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.IdleTimeout = idle
	return b
}

// WithMaxMultipartMemory sets how much of a multipart upload gin keeps in
// memory before spilling to temporary files.
func (b *ServerBuilder) WithMaxMultipartMemory(n int64) *ServerBuilder {
	b.config.MaxMultipartMemory = n
	return b
}

// WithHealthCheck adds a required dependency check to GET /health.
func (b *ServerBuilder) WithHealthCheck(name string, ping func() error) *ServerBuilder {
	b.checks = append(b.checks, HealthCheck{Name: name, Ping: ping})
	return b
}

// WithOptionalCheck adds a dependency whose failure only degrades the service.
func (b *ServerBuilder) WithOptionalCheck(name string, ping func() error) *ServerBuilder {
	b.checks = append(b.checks, HealthCheck{Name: name, Optional: true, Ping: ping})
	return b
}

func (b *ServerBuilder) WithRoutes(setupRoutes func(*gin.Engine)) *ServerBuilder {
	b.setupRoutes = setupRoutes
	return b
}

// Build creates the server with every configured option.
func (b *ServerBuilder) Build() *Server {
	if b.logger == nil {
		b.logger = logger.NewNop()
	}
	b.config.SetDefaults()

	checks := b.checks
	setup := func(router *gin.Engine) {
		RegisterHealthRoutes(router, b.config.ServiceName, b.config.ServiceVersion, checks)
		if b.setupRoutes != nil {
			b.setupRoutes(router)
		}
	}

	return NewServer(b.config, b.logger, setup)
}

// ProtectedGroup creates a router group guarded by JWT authentication.
// An empty secret leaves the group open.
func ProtectedGroup(router *gin.Engine, path, jwtSecret string) *gin.RouterGroup {
	group := router.Group(path)
	if jwtSecret != "" {
		group.Use(jwt.Middleware(jwtSecret))
	}
	return group
}
