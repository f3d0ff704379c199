package endpoint

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/diard/component"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// PipelineStatus reports whether the diarization pipeline is loaded.
type PipelineStatus func() bool

// Health returns a handler that reports service liveness and whether the
// diarization pipeline is loaded. The endpoint always answers 200: a service
// running without a pipeline is alive, it just cannot process yet, and
// /process reports that as 503.
func Health(serviceName string, loaded PipelineStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		pipelineLoaded := false
		if loaded != nil {
			pipelineLoaded = loaded()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"service":         serviceName,
			"pipeline_loaded": pipelineLoaded,
		})
	}
}
