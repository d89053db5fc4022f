package stories

import (
	"math"
	"time"

	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
)

// CreateStoryRequest is the input of CreateStory. ChunkSize 0 selects the
// configured default.
type CreateStoryRequest struct {
	Text      string
	Title     string
	Language  string
	ChunkSize int
	VoiceID   string
}

// ChunkStatus is the client view of one chunk
type ChunkStatus struct {
	Index           int                `json:"index"`
	Status          models.ChunkStatus `json:"status"`
	Progress        float64            `json:"progress"`
	DurationSeconds float64            `json:"duration_seconds,omitempty"`
	Error           string             `json:"error,omitempty"`
}

// StoryStatus is the client view of a story.
//
// Progress counts only ready chunks, so a story with failures never reaches
// 100 even once it is ready. AttemptedProgress counts ready and failed
// chunks.
type StoryStatus struct {
	ID                   string             `json:"story_id"`
	Status               models.StoryStatus `json:"status"`
	Title                string             `json:"title"`
	Language             string             `json:"language"`
	TotalChunks          int                `json:"total_chunks"`
	CompletedChunks      int                `json:"completed_chunks"`
	FailedChunks         int                `json:"failed_chunks"`
	Progress             float64            `json:"progress"`
	AttemptedProgress    float64            `json:"attempted_progress"`
	TotalDurationSeconds float64            `json:"total_duration_seconds"`
	CreatedAt            time.Time          `json:"created_at"`
	CompletedAt          *time.Time         `json:"completed_at,omitempty"`
	Chunks               []ChunkStatus      `json:"chunks"`
}

// StorySummary is one entry of the story list
type StorySummary struct {
	ID                   string             `json:"story_id"`
	Status               models.StoryStatus `json:"status"`
	Title                string             `json:"title"`
	Language             string             `json:"language"`
	TotalChunks          int                `json:"total_chunks"`
	CompletedChunks      int                `json:"completed_chunks"`
	Progress             float64            `json:"progress"`
	TotalDurationSeconds float64            `json:"total_duration_seconds"`
	CreatedAt            time.Time          `json:"created_at"`
}

// round2 rounds to two decimals
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Project builds the status view of story
func Project(story *models.Story) *StoryStatus {
	status := &StoryStatus{
		ID:                   story.ID,
		Status:               story.Status,
		Title:                story.Title,
		Language:             story.Language,
		TotalChunks:          story.TotalChunks,
		CompletedChunks:      story.CountChunks(models.ChunkStatusReady),
		FailedChunks:         story.CountChunks(models.ChunkStatusFailed),
		TotalDurationSeconds: story.TotalDurationSeconds,
		CreatedAt:            story.CreatedAt,
		CompletedAt:          story.CompletedAt,
		Chunks:               make([]ChunkStatus, len(story.Chunks)),
	}

	var sum float64
	for i, c := range story.Chunks {
		sum += c.Progress
		status.Chunks[i] = ChunkStatus{
			Index:           c.Index,
			Status:          c.Status,
			Progress:        round2(100 * c.Progress),
			DurationSeconds: c.DurationSeconds,
			Error:           c.Error,
		}
	}

	if story.TotalChunks > 0 {
		total := float64(story.TotalChunks)
		status.Progress = round2(100 * sum / total)
		status.AttemptedProgress = round2(100 * float64(status.CompletedChunks+status.FailedChunks) / total)
	}

	return status
}

// Summarize builds the list view of story
func Summarize(story *models.Story) StorySummary {
	p := Project(story)
	return StorySummary{
		ID:                   p.ID,
		Status:               p.Status,
		Title:                p.Title,
		Language:             p.Language,
		TotalChunks:          p.TotalChunks,
		CompletedChunks:      p.CompletedChunks,
		Progress:             p.Progress,
		TotalDurationSeconds: p.TotalDurationSeconds,
		CreatedAt:            p.CreatedAt,
	}
}
