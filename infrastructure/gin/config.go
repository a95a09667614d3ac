// Package gin holds the HTTP server plumbing for the ingestion API:
// middleware order, health endpoints, and lifecycle management.
package gin

import (
	"net/http"
	"time"
)

// Writes get extra room because a batch request returns only after every
// record has been submitted.
const (
	DefaultReadTimeout        = 30 * time.Second
	DefaultWriteTimeout       = 120 * time.Second
	DefaultIdleTimeout        = 120 * time.Second
	DefaultShutdownTimeout    = 30 * time.Second
	DefaultCORSMaxAge         = 12 * time.Hour
	DefaultMaxMultipartMemory = 32 << 20
)

// Config holds the HTTP server configuration.
type Config struct {
	Port            int
	Debug           bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// MaxMultipartMemory caps the part of a multipart upload held in memory.
	MaxMultipartMemory int64
	CORS               CORSConfig
	ServiceName        string
	ServiceVersion     string
}

// CORSConfig holds the CORS middleware configuration. An origin of "*"
// allows every origin.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

func newConfig(serviceName string, port int) *Config {
	return &Config{Port: port, ServiceName: serviceName}
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.MaxMultipartMemory == 0 {
		c.MaxMultipartMemory = DefaultMaxMultipartMemory
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	c.CORS.setDefaults()
}

func (c *CORSConfig) setDefaults() {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader}
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultCORSMaxAge
	}
}
