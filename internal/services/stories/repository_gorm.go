package stories

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository stores stories in the sqlite database. Every update runs in
// a transaction.
type GormRepository struct {
	db *gorm.DB
}

// Ensure GormRepository implements Repository interface
var _ Repository = (*GormRepository)(nil)

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func orderedChunks(db *gorm.DB) *gorm.DB {
	return db.Order("chunk_index ASC")
}

func (r *GormRepository) Create(ctx context.Context, story *models.Story) error {
	record := story.Clone()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Story{}).Where("id = ?", record.ID).Count(&count).Error; err != nil {
			return apperrors.DatabaseError("create story", err)
		}
		if count > 0 {
			return apperrors.Conflict("story "+record.ID, "already created")
		}
		if err := tx.Create(record).Error; err != nil {
			return apperrors.DatabaseError("create story", err)
		}
		return nil
	})
}

func (r *GormRepository) load(tx *gorm.DB, id string) (*models.Story, error) {
	var story models.Story
	if err := tx.Preload("Chunks", orderedChunks).First(&story, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("story", id)
		}
		return nil, apperrors.DatabaseError("get story", err)
	}
	return &story, nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*models.Story, error) {
	return r.load(r.db.WithContext(ctx), id)
}

func (r *GormRepository) List(ctx context.Context, limit, offset int) ([]models.Story, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.Story{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.DatabaseError("count stories", err)
	}

	page := r.db.WithContext(ctx).Preload("Chunks", orderedChunks).Order("created_at DESC, id DESC")
	if limit > 0 {
		page = page.Limit(limit)
	}
	if offset > 0 {
		page = page.Offset(offset)
	}

	stories := []models.Story{}
	if err := page.Find(&stories).Error; err != nil {
		return nil, 0, apperrors.DatabaseError("list stories", err)
	}
	return stories, total, nil
}

func (r *GormRepository) ListUnfinished(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("status <> ?", models.StoryStatusReady).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.DatabaseError("list unfinished stories", err)
	}
	return ids, nil
}

func (r *GormRepository) UpdateChunk(ctx context.Context, id string, index int, fn func(*models.Chunk) error) (*models.Chunk, error) {
	var updated models.Chunk
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chunk models.Chunk
		err := tx.Where("story_id = ? AND chunk_index = ?", id, index).
			First(&chunk).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, storyErr := r.load(tx, id); storyErr != nil {
				return storyErr
			}
			return apperrors.NotFound("chunk", index)
		}
		if err != nil {
			return apperrors.DatabaseError("get chunk", err)
		}

		if err := fn(&chunk); err != nil {
			return err
		}

		if err := tx.Save(&chunk).Error; err != nil {
			return apperrors.DatabaseError("update chunk", err)
		}
		if err := tx.Model(&models.Story{}).Where("id = ?", id).Update("updated_at", time.Now().UTC()).Error; err != nil {
			return apperrors.DatabaseError("update story", err)
		}
		updated = chunk
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *GormRepository) UpdateStory(ctx context.Context, id string, fn func(*models.Story) error) (*models.Story, error) {
	var updated *models.Story
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		story, err := r.load(tx, id)
		if err != nil {
			return err
		}
		before := story.Clone()

		if err := fn(story); err != nil {
			return err
		}
		if story.ID != id || len(story.Chunks) != len(before.Chunks) {
			return fmt.Errorf("story %s: identity and chunk count are immutable", id)
		}

		if err := tx.Omit(clause.Associations).Save(story).Error; err != nil {
			return apperrors.DatabaseError("update story", err)
		}
		for i := range story.Chunks {
			if reflect.DeepEqual(story.Chunks[i], before.Chunks[i]) {
				continue
			}
			if err := tx.Save(&story.Chunks[i]).Error; err != nil {
				return apperrors.DatabaseError("update chunk", err)
			}
		}
		updated = story
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", id).Delete(&models.Chunk{}).Error; err != nil {
			return apperrors.DatabaseError("delete chunks", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Story{})
		if result.Error != nil {
			return apperrors.DatabaseError("delete story", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("story", id)
		}
		return nil
	})
}
