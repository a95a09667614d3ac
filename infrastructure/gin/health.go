package gin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the state reported for the service or one dependency.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  HealthStatus  `json:"status"`
	Service string        `json:"service"`
	Version string        `json:"version"`
	Uptime  string        `json:"uptime"`
	Checks  []CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Name     string       `json:"name"`
	Status   HealthStatus `json:"status"`
	Optional bool         `json:"optional,omitempty"`
	Message  string       `json:"message,omitempty"`
	Latency  string       `json:"latency,omitempty"`
}

// HealthCheck pings one dependency. A failing optional check degrades the
// service instead of marking it unhealthy.
type HealthCheck struct {
	Name     string
	Optional bool
	Ping     func() error
}

func (h HealthCheck) run() CheckResult {
	start := time.Now()
	err := h.Ping()
	result := CheckResult{
		Name:     h.Name,
		Status:   HealthStatusHealthy,
		Optional: h.Optional,
		Latency:  time.Since(start).String(),
	}
	if err != nil {
		result.Status = HealthStatusUnhealthy
		result.Message = h.Name + " unreachable: " + err.Error()
	}
	return result
}

// RegisterHealthRoutes adds GET and HEAD /health. Checks run in order on
// every GET; HEAD answers without touching dependencies.
func RegisterHealthRoutes(router *gin.Engine, service, version string, checks []HealthCheck) {
	started := time.Now()

	router.GET("/health", func(c *gin.Context) {
		response := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: service,
			Version: version,
			Uptime:  time.Since(started).Truncate(time.Second).String(),
		}

		for _, check := range checks {
			result := check.run()
			response.Checks = append(response.Checks, result)
			response.Status = worse(response.Status, result)
		}

		statusCode := http.StatusOK
		if response.Status == HealthStatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, response)
	})

	router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

func worse(current HealthStatus, result CheckResult) HealthStatus {
	if result.Status == HealthStatusHealthy || current == HealthStatusUnhealthy {
		return current
	}
	if result.Optional {
		return HealthStatusDegraded
	}
	return HealthStatusUnhealthy
}
