package stories

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	storysvc "github.com/xiaotaozi1127/story-teller-backend/internal/services/stories"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// Create accepts a story for narration
// @Summary      Create a story
// @Description  Splits the text into chunks and schedules synthesis with a reference voice.
// @Description  Pass voice_id of a registered voice, or upload a voice sample as "voice".
// @Tags         stories
// @Accept       multipart/form-data
// @Produce      json
// @Param        text        formData string true  "Story text"
// @Param        title       formData string false "Story title"
// @Param        language    formData string false "Language code" default(en)
// @Param        chunk_size  formData int    false "Maximum characters per chunk"
// @Param        voice_id    formData string false "Registered voice id"
// @Param        voice       formData file   false "Reference voice sample (3-30 seconds)"
// @Success      202 {object} types.StoryCreatedResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      503 {object} types.ErrorResponse "Synthesis queue is full"
// @Router       /api/v1/stories [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.StoryService == nil {
			types.SendError(c, apperrors.Internal("story service not available", nil))
			return
		}

		text := c.PostForm("text")
		if strings.TrimSpace(text) == "" {
			types.SendError(c, apperrors.InvalidInput("text", "must not be empty"))
			return
		}

		chunkSize, err := types.FormInt(c, "chunk_size")
		if err != nil {
			types.SendError(c, err)
			return
		}

		req := storysvc.CreateStoryRequest{
			Text:      text,
			Title:     c.PostForm("title"),
			Language:  c.PostForm("language"),
			ChunkSize: chunkSize,
			VoiceID:   strings.TrimSpace(c.PostForm("voice_id")),
		}

		// An uploaded voice is only registered for a story that will be accepted
		var uploaded string
		if req.VoiceID == "" {
			if err := deps.StoryService.Validate(req); err != nil {
				types.SendError(c, err)
				return
			}
			voice, err := types.RegisterUpload(c, deps.VoiceService, req.Title, req.Language)
			if err != nil {
				types.SendError(c, err)
				return
			}
			if voice != nil {
				uploaded = voice.ID
				req.VoiceID = voice.ID
			}
		}

		story, err := deps.StoryService.CreateStory(c.Request.Context(), req)
		if err != nil {
			if uploaded != "" {
				if delErr := deps.VoiceService.Delete(c.Request.Context(), uploaded); delErr != nil {
					logger.Warnf(c.Request.Context(), "Failed to remove voice %s of rejected story: %v", uploaded, delErr)
				}
			}
			types.SendError(c, err)
			return
		}

		types.SendAccepted(c, types.StoryCreatedResponse{
			StoryID:     story.ID,
			Status:      story.Status,
			TotalChunks: story.TotalChunks,
		})
	}
}
