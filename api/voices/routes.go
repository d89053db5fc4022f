package voices

import (
	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
)

// RegisterRoutes registers voice routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, uploadMiddleware gin.HandlerFunc) {
	if uploadMiddleware != nil {
		router.POST("", uploadMiddleware, Post(deps))
	} else {
		router.POST("", Post(deps))
	}
	router.GET("", List(deps))
	router.GET("/:id", Get(deps))
}
