package stories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaotaozi1127/story-teller-backend/internal/database"
	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newGormRepo(t *testing.T) Repository {
	t.Helper()
	db, err := database.Initialize(database.Options{Path: ":memory:", EnableForeignKeys: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return NewGormRepository(db.DB)
}

// repositories runs each test against every Repository implementation
func repositories(t *testing.T) map[string]func(t *testing.T) Repository {
	return map[string]func(t *testing.T) Repository{
		"memory": func(t *testing.T) Repository { return NewMemoryRepository() },
		"gorm":   newGormRepo,
	}
}

func testStory(id string, created time.Time, texts ...string) *models.Story {
	if len(texts) == 0 {
		texts = []string{"first chunk", "second chunk", "third chunk"}
	}
	return models.NewStory(id, "Title "+id, "en", 40, texts, created)
}

func TestRepository_CreateAndGet(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			require.NoError(t, repo.Create(ctx, testStory("s1", baseTime)))

			got, err := repo.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, models.StoryStatusProcessing, got.Status)
			assert.Equal(t, 3, got.TotalChunks)
			require.Len(t, got.Chunks, 3)
			for i, c := range got.Chunks {
				assert.Equal(t, i, c.Index)
				assert.Equal(t, models.ChunkStatusPending, c.Status)
			}
			assert.Equal(t, "second chunk", got.Chunks[1].Text)

			// Snapshots are detached from the store
			got.Chunks[0].Status = models.ChunkStatusReady
			got.Title = "changed"
			again, err := repo.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, models.ChunkStatusPending, again.Chunks[0].Status)
			assert.Equal(t, "Title s1", again.Title)

			err = repo.Create(ctx, testStory("s1", baseTime))
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeConflict))

			_, err = repo.Get(ctx, "missing")
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
		})
	}
}

func TestRepository_UpdateChunk(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			require.NoError(t, repo.Create(ctx, testStory("s1", baseTime)))

			chunk, err := repo.UpdateChunk(ctx, "s1", 1, func(c *models.Chunk) error {
				return c.Start(baseTime)
			})
			require.NoError(t, err)
			assert.Equal(t, models.ChunkStatusProcessing, chunk.Status)

			chunk, err = repo.UpdateChunk(ctx, "s1", 1, func(c *models.Chunk) error {
				return c.Complete("out/s1_1.wav", 1.5, baseTime)
			})
			require.NoError(t, err)
			assert.Equal(t, models.ChunkStatusReady, chunk.Status)
			assert.Equal(t, 1.0, chunk.Progress)

			// A rejected transition leaves the chunk untouched
			_, err = repo.UpdateChunk(ctx, "s1", 1, func(c *models.Chunk) error {
				c.Error = "scribbled"
				return c.Fail("late", baseTime)
			})
			assert.True(t, errors.Is(err, models.ErrInvalidTransition))

			story, err := repo.Get(ctx, "s1")
			require.NoError(t, err)
			got := story.Chunks[1]
			assert.Equal(t, models.ChunkStatusReady, got.Status)
			assert.Equal(t, "out/s1_1.wav", got.AudioPath)
			assert.Equal(t, 1.5, got.DurationSeconds)
			assert.Empty(t, got.Error)
			assert.Equal(t, models.ChunkStatusPending, story.Chunks[0].Status)
			assert.Equal(t, models.ChunkStatusPending, story.Chunks[2].Status)

			_, err = repo.UpdateChunk(ctx, "s1", 3, func(c *models.Chunk) error { return nil })
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))

			_, err = repo.UpdateChunk(ctx, "missing", 0, func(c *models.Chunk) error { return nil })
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
		})
	}
}

func TestRepository_UpdateStory(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			require.NoError(t, repo.Create(ctx, testStory("s1", baseTime, "only chunk")))

			_, err := repo.UpdateStory(ctx, "s1", func(s *models.Story) error {
				return s.MarkReady(3, baseTime)
			})
			assert.True(t, errors.Is(err, models.ErrChunksPending))

			_, err = repo.UpdateChunk(ctx, "s1", 0, func(c *models.Chunk) error { return c.Start(baseTime) })
			require.NoError(t, err)
			_, err = repo.UpdateChunk(ctx, "s1", 0, func(c *models.Chunk) error { return c.Fail("boom", baseTime) })
			require.NoError(t, err)

			story, err := repo.UpdateStory(ctx, "s1", func(s *models.Story) error {
				return s.MarkReady(0, baseTime)
			})
			require.NoError(t, err)
			assert.True(t, story.IsReady())

			got, err := repo.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, models.StoryStatusReady, got.Status)
			require.NotNil(t, got.CompletedAt)
			assert.Equal(t, "boom", got.Chunks[0].Error)

			_, err = repo.UpdateStory(ctx, "missing", func(s *models.Story) error { return nil })
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
		})
	}
}

func TestRepository_ListAndUnfinished(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			for i := 0; i < 4; i++ {
				id := fmt.Sprintf("s%d", i)
				require.NoError(t, repo.Create(ctx, testStory(id, baseTime.Add(time.Duration(i)*time.Minute), "one")))
			}

			_, err := repo.UpdateChunk(ctx, "s2", 0, func(c *models.Chunk) error { return c.Start(baseTime) })
			require.NoError(t, err)
			_, err = repo.UpdateChunk(ctx, "s2", 0, func(c *models.Chunk) error { return c.Complete("a.wav", 1, baseTime) })
			require.NoError(t, err)
			_, err = repo.UpdateStory(ctx, "s2", func(s *models.Story) error { return s.MarkReady(1, baseTime) })
			require.NoError(t, err)

			page, total, err := repo.List(ctx, 2, 0)
			require.NoError(t, err)
			assert.Equal(t, int64(4), total)
			require.Len(t, page, 2)
			assert.Equal(t, "s3", page[0].ID)
			assert.Equal(t, "s2", page[1].ID)
			assert.Len(t, page[0].Chunks, 1)

			page, _, err = repo.List(ctx, 2, 2)
			require.NoError(t, err)
			require.Len(t, page, 2)
			assert.Equal(t, "s1", page[0].ID)
			assert.Equal(t, "s0", page[1].ID)

			page, _, err = repo.List(ctx, 10, 10)
			require.NoError(t, err)
			assert.Empty(t, page)

			unfinished, err := repo.ListUnfinished(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"s0", "s1", "s3"}, unfinished)
		})
	}
}

func TestRepository_Delete(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			require.NoError(t, repo.Create(ctx, testStory("s1", baseTime)))

			require.NoError(t, repo.Delete(ctx, "s1"))
			_, err := repo.Get(ctx, "s1")
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))

			assert.True(t, apperrors.Is(repo.Delete(ctx, "s1"), apperrors.ErrCodeNotFound))

			// The id can be reused once deleted
			assert.NoError(t, repo.Create(ctx, testStory("s1", baseTime)))
		})
	}
}

func TestMemoryRepository_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	texts := make([]string, 20)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %d", i)
	}
	require.NoError(t, repo.Create(ctx, testStory("s1", baseTime, texts...)))

	var wg sync.WaitGroup
	for i := range texts {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := repo.UpdateChunk(ctx, "s1", i, func(c *models.Chunk) error { return c.Start(baseTime) })
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			story, err := repo.Get(ctx, "s1")
			assert.NoError(t, err)
			assert.Len(t, story.Chunks, len(texts))
		}()
	}
	wg.Wait()

	story, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, len(texts), story.CountChunks(models.ChunkStatusProcessing))
}
