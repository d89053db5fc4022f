package workers

import (
	"context"
	"fmt"

	"github.com/xiaotaozi1127/story-teller-backend/internal/services/jobs"
)

// StorySynthesizer runs synthesis for one story
type StorySynthesizer interface {
	ProcessStory(ctx context.Context, storyID string) error
}

// StoryProcessor handles story_synthesis tasks
type StoryProcessor struct {
	coordinator StorySynthesizer
}

// NewStoryProcessor creates a processor backed by coordinator
func NewStoryProcessor(coordinator StorySynthesizer) *StoryProcessor {
	return &StoryProcessor{coordinator: coordinator}
}

// CanProcess returns true for story synthesis tasks
func (p *StoryProcessor) CanProcess(taskType jobs.TaskType) bool {
	return taskType == jobs.TaskTypeStorySynthesis
}

// ProcessTask synthesizes the story named by the task
func (p *StoryProcessor) ProcessTask(ctx context.Context, task *jobs.Task) error {
	if task.StoryID == "" {
		return fmt.Errorf("task %d has no story id", task.ID)
	}
	return p.coordinator.ProcessStory(ctx, task.StoryID)
}
