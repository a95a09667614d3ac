package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/handler"
)

// SetupRoutes configures all API routes.
// Health routes are registered by the infrastructure gin builder.
func SetupRoutes(
	router *gin.Engine,
	batchHandler *handler.BatchHandler,
	metricsPath string,
	metrics http.Handler,
	jwtSecret string,
) {
	if metrics != nil {
		router.GET(metricsPath, gin.WrapH(metrics))
	}

	v1 := infragin.ProtectedGroup(router, "/api/v1", jwtSecret)

	batches := v1.Group("/batches")
	batches.POST("", batchHandler.Submit)
	batches.POST("/preview", batchHandler.Preview)
	batches.GET("/template", batchHandler.Template)
}
