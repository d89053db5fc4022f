package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
)

// Name is reported by the version endpoint
const Name = "Story Teller API"

// Get handles version requests
// @Summary      Service version
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       / [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	version := "dev"
	backend := ""
	if deps != nil {
		if deps.Version != "" {
			version = deps.Version
		}
		if deps.Backend != nil {
			backend = deps.Backend.Name()
		}
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        Name,
			"version":     version,
			"description": "Splits stories into chunks and narrates them with a reference voice",
			"tts_backend": backend,
			"status":      "running",
		})
	}
}
