package voices

import (
	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
)

// Post registers a reference voice sample
// @Summary      Register a voice
// @Description  Stores a 3-30 second reference sample that stories can be narrated with.
// @Tags         voices
// @Accept       multipart/form-data
// @Produce      json
// @Param        name     formData string false "Display name"
// @Param        language formData string false "Language of the sample"
// @Param        voice    formData file   true  "Reference voice sample"
// @Success      201 {object} types.VoiceResponse
// @Failure      400 {object} types.ErrorResponse
// @Router       /api/v1/voices [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.VoiceService == nil {
			types.SendError(c, apperrors.Internal("voice service not available", nil))
			return
		}

		voice, err := types.RegisterUpload(c, deps.VoiceService, c.PostForm("name"), c.PostForm("language"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		if voice == nil {
			types.SendError(c, apperrors.InvalidInput("voice", "a voice sample file is required"))
			return
		}

		types.SendCreated(c, types.VoiceResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "voice registered"},
			Voice:        voice,
		})
	}
}
