package stories

import (
	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
)

// GetStatus reports story and per-chunk progress
// @Summary      Story status
// @Description  progress counts ready chunks only; attempted_progress also counts failed chunks.
// @Tags         stories
// @Produce      json
// @Param        id path string true "Story ID"
// @Success      200 {object} stories.StoryStatus
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/stories/{id} [get]
func GetStatus(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.StoryService == nil {
			types.SendError(c, apperrors.Internal("story service not available", nil))
			return
		}

		status, err := deps.StoryService.GetStatus(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, status)
	}
}
