package stories

import (
	"context"

	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
)

// Repository stores stories together with their ordered chunks.
//
// Reads return deep copies. Create is atomic: the story and every chunk
// become visible together or not at all. The update callbacks run while the
// story is locked; returning an error discards every change the callback
// made.
type Repository interface {
	// Create operations
	Create(ctx context.Context, story *models.Story) error

	// Read operations
	Get(ctx context.Context, id string) (*models.Story, error)
	List(ctx context.Context, limit, offset int) ([]models.Story, int64, error)
	ListUnfinished(ctx context.Context) ([]string, error)

	// Update operations
	UpdateChunk(ctx context.Context, id string, index int, fn func(*models.Chunk) error) (*models.Chunk, error)
	UpdateStory(ctx context.Context, id string, fn func(*models.Story) error) (*models.Story, error)

	// Delete operations
	Delete(ctx context.Context, id string) error
}

// VoiceLookup resolves a registered reference voice
type VoiceLookup interface {
	Get(ctx context.Context, id string) (*models.Voice, error)
}

// Enqueuer schedules synthesis for a story. CheckCapacity fails with
// QUEUE_FULL when no more work is accepted. Resume schedules a story that was
// accepted earlier and ignores that limit.
type Enqueuer interface {
	Enqueue(ctx context.Context, storyID string) error
	Resume(ctx context.Context, storyID string) error
	CheckCapacity() error
}
