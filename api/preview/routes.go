package preview

import (
	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
)

// RegisterRoutes registers preview synthesis routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, middleware ...gin.HandlerFunc) {
	handlers := append(middleware, Post(deps))
	router.POST("/preview", handlers...)
}
