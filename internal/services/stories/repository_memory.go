package stories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
)

// storyEntry guards one story. Updates to different stories never contend.
type storyEntry struct {
	mu    sync.RWMutex
	story *models.Story
}

// MemoryRepository keeps stories in process memory
type MemoryRepository struct {
	mu      sync.RWMutex
	stories map[string]*storyEntry
}

// Ensure MemoryRepository implements Repository interface
var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{stories: make(map[string]*storyEntry)}
}

func (r *MemoryRepository) Create(ctx context.Context, story *models.Story) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stories[story.ID]; ok {
		return apperrors.Conflict("story "+story.ID, "already created")
	}
	r.stories[story.ID] = &storyEntry{story: story.Clone()}
	return nil
}

func (r *MemoryRepository) entry(id string) (*storyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.stories[id]
	if !ok {
		return nil, apperrors.NotFound("story", id)
	}
	return e, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Story, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.story.Clone(), nil
}

func (r *MemoryRepository) snapshot() []*models.Story {
	r.mu.RLock()
	entries := make([]*storyEntry, 0, len(r.stories))
	for _, e := range r.stories {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]*models.Story, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		out = append(out, e.story.Clone())
		e.mu.RUnlock()
	}
	return out
}

func (r *MemoryRepository) List(ctx context.Context, limit, offset int) ([]models.Story, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	all := r.snapshot()
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []models.Story{}, total, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]models.Story, 0, end-offset)
	for _, s := range all[offset:end] {
		page = append(page, *s)
	}
	return page, total, nil
}

func (r *MemoryRepository) ListUnfinished(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	for _, s := range r.snapshot() {
		if !s.IsReady() {
			ids = append(ids, s.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemoryRepository) UpdateChunk(ctx context.Context, id string, index int, fn func(*models.Chunk) error) (*models.Chunk, error) {
	var updated models.Chunk
	_, err := r.UpdateStory(ctx, id, func(story *models.Story) error {
		chunk := story.Chunk(index)
		if chunk == nil {
			return apperrors.NotFound("chunk", index)
		}
		if err := fn(chunk); err != nil {
			return err
		}
		story.UpdatedAt = time.Now().UTC()
		updated = *chunk
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MemoryRepository) UpdateStory(ctx context.Context, id string, fn func(*models.Story) error) (*models.Story, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Work on a copy so a failing callback leaves no partial change behind
	working := e.story.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	e.story = working
	return working.Clone(), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stories[id]; !ok {
		return apperrors.NotFound("story", id)
	}
	delete(r.stories, id)
	return nil
}
