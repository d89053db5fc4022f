package types

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/voices"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// Handler utility functions to reduce duplication across handlers

// ParseIntParam extracts and parses a URL parameter as a non-negative int
// Returns the parsed value and sends error response if parsing fails
func ParseIntParam(c *gin.Context, paramName string) (int, bool) {
	value, err := strconv.Atoi(c.Param(paramName))
	if err != nil || value < 0 {
		SendError(c, apperrors.InvalidInput(paramName, "must be a non-negative integer"))
		return 0, false
	}
	return value, true
}

// ParseIntQuery reads an optional integer query parameter within [min, max]
func ParseIntQuery(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min || value > max {
		SendError(c, apperrors.InvalidInput(name, "must be an integer between "+strconv.Itoa(min)+" and "+strconv.Itoa(max)))
		return 0, false
	}
	return value, true
}

// SendError writes err as an ErrorResponse with the status of its code.
// Errors that are not AppErrors become opaque 500s.
func SendError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal("internal server error", err)
	}

	code := appErr.GetHTTPCode()
	fields := logrus.Fields{
		"code":   appErr.Code,
		"path":   c.Request.URL.Path,
		"status": code,
	}
	if code >= http.StatusInternalServerError {
		logger.WithFields(c.Request.Context(), fields).WithError(err).Error("Request failed")
	} else {
		logger.WithFields(c.Request.Context(), fields).Debug(appErr.Message)
	}

	c.AbortWithStatusJSON(code, ErrorResponse{
		Status:  StatusError,
		Message: appErr.Message,
		Error:   string(appErr.Code),
		Details: appErr.Details,
	})
}

// SendSuccess sends a standardized success response with data
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendCreated sends a standardized created response with data
func SendCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendAccepted sends a standardized accepted response with data
func SendAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, data)
}

// FormInt reads an optional integer form field
func FormInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(name, "must be an integer")
	}
	return value, nil
}

// ResolveVoice returns the voice id of the request: the voice_id form field,
// or a new voice registered from the uploaded voice file. An empty result
// means the request named no voice.
func ResolveVoice(c *gin.Context, svc VoiceService, name, language string) (string, error) {
	if id := strings.TrimSpace(c.PostForm("voice_id")); id != "" {
		return id, nil
	}

	voice, err := RegisterUpload(c, svc, name, language)
	if err != nil || voice == nil {
		return "", err
	}
	return voice.ID, nil
}

// RegisterUpload registers the uploaded voice file as a new voice. It
// returns nil without error when the request carries no voice file.
func RegisterUpload(c *gin.Context, svc VoiceService, name, language string) (*models.Voice, error) {
	header, err := c.FormFile("voice")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.InvalidInput("voice", "could not read upload").WithCause(err)
	}
	if svc == nil {
		return nil, apperrors.Internal("voice service not available", nil)
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperrors.Internal("failed to open uploaded voice", err)
	}
	defer file.Close()

	return svc.Register(c.Request.Context(), voices.RegisterRequest{
		Name:     name,
		Language: language,
		Filename: header.Filename,
		Content:  file,
	})
}
