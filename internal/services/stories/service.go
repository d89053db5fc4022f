package stories

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/audio"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/segmenter"
)

// Service creates stories and projects their status
type Service struct {
	repo   Repository
	voices VoiceLookup
	queue  Enqueuer
	audio  audio.Store
	cfg    config.StoriesConfig

	newID func() string
	now   func() time.Time
}

// NewService creates a story service
func NewService(repo Repository, voices VoiceLookup, queue Enqueuer, store audio.Store, cfg config.StoriesConfig) *Service {
	return &Service{
		repo:   repo,
		voices: voices,
		queue:  queue,
		audio:  store,
		cfg:    cfg,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) supportsLanguage(language string) bool {
	for _, l := range s.cfg.Languages {
		if l == language {
			return true
		}
	}
	return false
}

func (s *Service) chunkSize(requested int) (int, error) {
	if requested == 0 {
		return s.cfg.DefaultChunkSize, nil
	}
	if requested < 1 || (s.cfg.MaxChunkSize > 0 && requested > s.cfg.MaxChunkSize) {
		return 0, apperrors.InvalidInput("chunk_size", fmt.Sprintf("must be between 1 and %d", s.cfg.MaxChunkSize))
	}
	return requested, nil
}

// storyPlan is a validated request: its language and chunk texts
type storyPlan struct {
	language string
	maxLen   int
	texts    []string
}

func (s *Service) plan(req CreateStoryRequest) (*storyPlan, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperrors.InvalidInput("text", "must not be empty")
	}
	if s.cfg.MaxTextLength > 0 && utf8.RuneCountInString(req.Text) > s.cfg.MaxTextLength {
		return nil, apperrors.InvalidInput("text", fmt.Sprintf("longer than %d characters", s.cfg.MaxTextLength))
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = "en"
	}
	if !s.supportsLanguage(language) {
		return nil, apperrors.InvalidInput("language", fmt.Sprintf("unsupported language %q", language))
	}

	maxLen, err := s.chunkSize(req.ChunkSize)
	if err != nil {
		return nil, err
	}

	texts := segmenter.SplitWithOptions(req.Text, segmenter.Options{
		MaxLength: maxLen,
		MinLength: s.cfg.MinChunkLength,
	})
	if len(texts) == 0 {
		return nil, apperrors.InvalidInput("text", "no valid text chunks")
	}

	return &storyPlan{language: language, maxLen: maxLen, texts: texts}, nil
}

// Validate runs every check of CreateStory except the voice lookup and
// stores nothing. Callers that register an uploaded voice for the story
// run it first.
func (s *Service) Validate(req CreateStoryRequest) error {
	if _, err := s.plan(req); err != nil {
		return err
	}
	return s.queue.CheckCapacity()
}

// CreateStory segments the text and stores the story with every chunk
// pending, then schedules synthesis
func (s *Service) CreateStory(ctx context.Context, req CreateStoryRequest) (*models.Story, error) {
	plan, err := s.plan(req)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.VoiceID) == "" {
		return nil, apperrors.InvalidInput("voice_id", "a reference voice is required")
	}
	voice, err := s.voices.Get(ctx, req.VoiceID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeNotFound) {
			return nil, apperrors.InvalidInput("voice_id", fmt.Sprintf("unknown voice %q", req.VoiceID))
		}
		return nil, err
	}

	if err := s.queue.CheckCapacity(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = s.cfg.DefaultTitle
	}

	story := models.NewStory(s.newID(), title, plan.language, plan.maxLen, plan.texts, s.now())
	story.VoiceID = voice.ID
	story.VoicePath = voice.AudioPath

	if err := s.repo.Create(ctx, story); err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(ctx, story.ID); err != nil {
		if delErr := s.repo.Delete(ctx, story.ID); delErr != nil {
			logger.Errorf(ctx, "Failed to roll back story %s: %v", story.ID, delErr)
		}
		return nil, err
	}

	logger.WithFields(ctx, logrus.Fields{
		"story_id": story.ID,
		"chunks":   story.TotalChunks,
		"language": story.Language,
	}).Info("Story created")

	return story, nil
}

// GetStatus returns the status view of a story
func (s *Service) GetStatus(ctx context.Context, id string) (*StoryStatus, error) {
	story, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Project(story), nil
}

// GetChunkAudio returns the audio path of a ready chunk
func (s *Service) GetChunkAudio(ctx context.Context, id string, index int) (string, error) {
	story, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	chunk := story.Chunk(index)
	if chunk == nil {
		return "", apperrors.NotFound("chunk", index).WithDetail("story_id", id)
	}

	switch chunk.Status {
	case models.ChunkStatusPending, models.ChunkStatusProcessing:
		return "", apperrors.Conflict(fmt.Sprintf("chunk %d", index), string(chunk.Status))
	case models.ChunkStatusFailed:
		return "", apperrors.Internal("chunk generation failed", fmt.Errorf("%s", chunk.Error)).
			WithDetail("index", index)
	}

	exists, err := s.audio.Exists(ctx, chunk.AudioPath)
	if err != nil {
		return "", apperrors.Internal("failed to check chunk audio", err)
	}
	if !exists {
		return "", apperrors.Internal("audio file missing", nil).WithDetail("index", index)
	}
	return chunk.AudioPath, nil
}

// ListStories returns stories newest first
func (s *Service) ListStories(ctx context.Context, limit, offset int) ([]StorySummary, int64, error) {
	stories, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]StorySummary, len(stories))
	for i := range stories {
		summaries[i] = Summarize(&stories[i])
	}
	return summaries, total, nil
}

// ResumeUnfinished schedules synthesis for every story that is still
// processing and returns how many were scheduled
func (s *Service) ResumeUnfinished(ctx context.Context) (int, error) {
	ids, err := s.repo.ListUnfinished(ctx)
	if err != nil {
		return 0, err
	}

	resumed := 0
	for _, id := range ids {
		if err := s.queue.Resume(ctx, id); err != nil {
			if ctx.Err() != nil {
				return resumed, ctx.Err()
			}
			logger.Warnf(ctx, "Failed to resume story %s: %v", id, err)
			continue
		}
		resumed++
	}

	if resumed > 0 {
		logger.Infof(ctx, "Resumed %d unfinished stories", resumed)
	}
	return resumed, nil
}
