package stories

import (
	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
)

// RegisterRoutes registers story routes. createMiddleware guards story
// creation, which schedules synthesis.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, createMiddleware gin.HandlerFunc) {
	if createMiddleware != nil {
		router.POST("", createMiddleware, Create(deps))
	} else {
		router.POST("", Create(deps))
	}
	router.GET("", List(deps))
	router.GET("/:id", GetStatus(deps))
	router.GET("/:id/chunks/:index", GetChunk(deps))
}
