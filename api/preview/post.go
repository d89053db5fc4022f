package preview

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/audio"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/tts"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// VoiceHeader carries the id of the voice used for a preview
const VoiceHeader = "X-Voice-ID"

// Post synthesizes a short text immediately and returns the audio
// @Summary      Preview synthesis
// @Description  Synthesizes one short text with a reference voice without creating a story.
// @Tags         tts
// @Accept       multipart/form-data
// @Produce      audio/wav
// @Param        text     formData string true  "Text, at most the maximum chunk size"
// @Param        language formData string false "Language code" default(en)
// @Param        voice_id formData string false "Registered voice id"
// @Param        voice    formData file   false "Reference voice sample"
// @Success      200 {file} binary
// @Failure      400 {object} types.ErrorResponse
// @Failure      502 {object} types.ErrorResponse "Synthesis backend failed"
// @Router       /api/v1/tts/preview [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Backend == nil || deps.VoiceService == nil {
			types.SendError(c, apperrors.Internal("synthesis not available", nil))
			return
		}
		ctx := c.Request.Context()
		cfg := deps.StoriesConfig()

		text := strings.TrimSpace(c.PostForm("text"))
		if text == "" {
			types.SendError(c, apperrors.InvalidInput("text", "must not be empty"))
			return
		}
		if cfg.MaxChunkSize > 0 && utf8.RuneCountInString(text) > cfg.MaxChunkSize {
			types.SendError(c, apperrors.InvalidInput("text", fmt.Sprintf("longer than %d characters", cfg.MaxChunkSize)))
			return
		}

		language := strings.TrimSpace(c.PostForm("language"))
		if language == "" {
			language = "en"
		}
		if len(cfg.Languages) > 0 && !slices.Contains(cfg.Languages, language) {
			types.SendError(c, apperrors.InvalidInput("language", fmt.Sprintf("unsupported language %q", language)))
			return
		}

		voiceID, err := types.ResolveVoice(c, deps.VoiceService, "", language)
		if err != nil {
			types.SendError(c, err)
			return
		}
		if voiceID == "" {
			types.SendError(c, apperrors.InvalidInput("voice_id", "a reference voice is required"))
			return
		}
		voice, err := deps.VoiceService.Get(ctx, voiceID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrCodeNotFound) {
				err = apperrors.InvalidInput("voice_id", fmt.Sprintf("unknown voice %q", voiceID))
			}
			types.SendError(c, err)
			return
		}

		start := time.Now()
		result, err := synthesize(c, deps.Backend, tts.Request{Text: text, VoicePath: voice.AudioPath, Language: language})
		if err != nil {
			types.SendError(c, apperrors.BackendFailure(deps.Backend.Name(), err))
			return
		}

		f, err := os.CreateTemp(deps.TempDir(), "preview_*.wav")
		if err != nil {
			types.SendError(c, apperrors.Internal("failed to create preview file", err))
			return
		}
		defer os.Remove(f.Name())

		if err := audio.EncodeWAV(f, result.Samples, result.SampleRate); err != nil {
			f.Close()
			types.SendError(c, apperrors.Internal("failed to encode preview", err))
			return
		}
		if err := f.Close(); err != nil {
			types.SendError(c, apperrors.Internal("failed to write preview", err))
			return
		}

		logger.Debugf(ctx, "Preview of %d characters synthesized in %s", utf8.RuneCountInString(text), time.Since(start))

		c.Header(VoiceHeader, voice.ID)
		c.Header("Content-Type", "audio/wav")
		c.File(f.Name())
	}
}

func synthesize(c *gin.Context, backend types.SynthesisBackend, req tts.Request) (*tts.Result, error) {
	synth, err := backend.Get()
	if err != nil {
		return nil, err
	}
	result, err := synth.Synthesize(c.Request.Context(), req)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Samples) == 0 {
		return nil, fmt.Errorf("backend returned no audio")
	}
	return result, nil
}
