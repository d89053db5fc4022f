package types

import (
	"context"
	"net/http"

	"github.com/xiaotaozi1127/story-teller-backend/internal/database"
	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/jobs"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/stories"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/tts"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/voices"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/workers"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
)

// StoryService is the story API used by handlers
type StoryService interface {
	Validate(req stories.CreateStoryRequest) error
	CreateStory(ctx context.Context, req stories.CreateStoryRequest) (*models.Story, error)
	GetStatus(ctx context.Context, id string) (*stories.StoryStatus, error)
	GetChunkAudio(ctx context.Context, id string, index int) (string, error)
	ListStories(ctx context.Context, limit, offset int) ([]stories.StorySummary, int64, error)
}

// VoiceService is the voice registry used by handlers
type VoiceService interface {
	Register(ctx context.Context, req voices.RegisterRequest) (*models.Voice, error)
	Get(ctx context.Context, id string) (*models.Voice, error)
	List(ctx context.Context) ([]models.Voice, error)
	Delete(ctx context.Context, id string) error
}

// SynthesisBackend hands out the configured synthesizer
type SynthesisBackend interface {
	Name() string
	Get() (tts.Synthesizer, error)
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB             *database.DB
	Config         *config.Config
	Version        string
	StoryService   StoryService
	VoiceService   VoiceService
	Backend        SynthesisBackend
	JobService     jobs.Service
	WorkerPool     *workers.WorkerPool
	MetricsHandler http.Handler
}

// StoriesConfig returns the story limits, falling back to zero values
func (d *Dependencies) StoriesConfig() config.StoriesConfig {
	if d == nil || d.Config == nil {
		return config.StoriesConfig{}
	}
	return d.Config.Stories
}

// TempDir returns the directory for scratch files
func (d *Dependencies) TempDir() string {
	if d == nil || d.Config == nil || d.Config.Storage.TempDir == "" {
		return ""
	}
	return d.Config.Storage.TempDir
}
