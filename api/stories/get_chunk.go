package stories

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
)

// GetChunk serves the audio of a ready chunk
// @Summary      Chunk audio
// @Tags         stories
// @Produce      audio/wav
// @Param        id    path string true "Story ID"
// @Param        index path int    true "Chunk index"
// @Success      200 {file} binary
// @Failure      404 {object} types.ErrorResponse "Unknown story or chunk"
// @Failure      409 {object} types.ErrorResponse "Chunk not ready yet"
// @Failure      500 {object} types.ErrorResponse "Chunk generation failed"
// @Router       /api/v1/stories/{id}/chunks/{index} [get]
func GetChunk(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.StoryService == nil {
			types.SendError(c, apperrors.Internal("story service not available", nil))
			return
		}

		index, ok := types.ParseIntParam(c, "index")
		if !ok {
			return
		}

		id := c.Param("id")
		path, err := deps.StoryService.GetChunkAudio(c.Request.Context(), id, index)
		if err != nil {
			types.SendError(c, err)
			return
		}

		c.Header("Content-Type", "audio/wav")
		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", fmt.Sprintf("%s_%d.wav", id, index)))
		c.File(path)
	}
}
