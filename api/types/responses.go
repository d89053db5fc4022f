package types

import (
	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/stories"
)

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Error   string                 `json:"error,omitempty"`   // Error code
	Details map[string]interface{} `json:"details,omitempty"` // Additional error details
}

// StoryCreatedResponse is returned when a story is accepted
type StoryCreatedResponse struct {
	StoryID     string             `json:"story_id"`
	Status      models.StoryStatus `json:"status"`
	TotalChunks int                `json:"total_chunks"`
}

// StoriesResponse for story lists
type StoriesResponse struct {
	BaseResponse
	Stories []stories.StorySummary `json:"stories"`
	Count   int                    `json:"count"` // Number of results in this response
	Total   int64                  `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}

// VoiceResponse for a single voice
type VoiceResponse struct {
	BaseResponse
	Voice *models.Voice `json:"voice"`
}

// VoicesResponse for voice lists
type VoicesResponse struct {
	BaseResponse
	Voices []models.Voice `json:"voices"`
	Count  int            `json:"count"`
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Services  map[string]interface{} `json:"services"`
}
