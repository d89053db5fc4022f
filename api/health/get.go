package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
)

// Get handles health check requests
// @Summary      Health check
// @Description  Reports database and synthesis queue status
// @Tags         health
// @Produce      json
// @Success      200 {object} types.HealthResponse
// @Failure      503 {object} types.HealthResponse
// @Router       /health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := types.HealthResponse{
			Status:    types.StatusOK,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Services:  map[string]interface{}{},
		}
		if deps != nil {
			response.Version = deps.Version
		}

		database := getDatabaseStatus(deps)
		response.Services["database"] = database
		response.Services["queue"] = getQueueStatus(deps)

		status := http.StatusOK
		if database["status"] == "unhealthy" {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, response)
	}
}

// getDatabaseStatus returns the database connection status
func getDatabaseStatus(deps *types.Dependencies) gin.H {
	if deps == nil || deps.DB == nil || deps.DB.DB == nil {
		return gin.H{"status": "not configured"}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return gin.H{"status": "unhealthy", "error": err.Error()}
	}

	return gin.H{"status": "healthy"}
}

// getQueueStatus returns synthesis queue and worker counts
func getQueueStatus(deps *types.Dependencies) gin.H {
	if deps == nil || deps.JobService == nil {
		return gin.H{"status": "not configured"}
	}

	status := gin.H{
		"status":  "healthy",
		"pending": deps.JobService.Pending(),
		"running": deps.JobService.Running(),
	}
	if deps.WorkerPool != nil {
		status["workers"] = deps.WorkerPool.Size()
	}
	return status
}
