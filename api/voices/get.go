package voices

import (
	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
)

// List returns every registered voice
// @Summary      List voices
// @Tags         voices
// @Produce      json
// @Success      200 {object} types.VoicesResponse
// @Router       /api/v1/voices [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.VoiceService == nil {
			types.SendError(c, apperrors.Internal("voice service not available", nil))
			return
		}

		list, err := deps.VoiceService.List(c.Request.Context())
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.VoicesResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Voices:       list,
			Count:        len(list),
		})
	}
}

// Get returns one voice
// @Summary      Get a voice
// @Tags         voices
// @Produce      json
// @Param        id path string true "Voice ID"
// @Success      200 {object} types.VoiceResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/voices/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.VoiceService == nil {
			types.SendError(c, apperrors.Internal("voice service not available", nil))
			return
		}

		voice, err := deps.VoiceService.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.VoiceResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Voice:        voice,
		})
	}
}
