package stories

import (
	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// List returns stories newest first
// @Summary      List stories
// @Tags         stories
// @Produce      json
// @Param        limit  query int false "Page size (1-100)" default(20)
// @Param        offset query int false "Number of stories to skip" default(0)
// @Success      200 {object} types.StoriesResponse
// @Failure      400 {object} types.ErrorResponse
// @Router       /api/v1/stories [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.StoryService == nil {
			types.SendError(c, apperrors.Internal("story service not available", nil))
			return
		}

		limit, ok := types.ParseIntQuery(c, "limit", defaultListLimit, 1, maxListLimit)
		if !ok {
			return
		}
		offset, ok := types.ParseIntQuery(c, "offset", 0, 0, int(^uint32(0)>>1))
		if !ok {
			return
		}

		summaries, total, err := deps.StoryService.ListStories(c.Request.Context(), limit, offset)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.StoriesResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Stories:      summaries,
			Count:        len(summaries),
			Total:        total,
			Limit:        limit,
			Offset:       offset,
		})
	}
}
