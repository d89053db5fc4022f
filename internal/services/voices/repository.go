package voices

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
	"gorm.io/gorm"
)

// MemoryRepository keeps voices in process memory
type MemoryRepository struct {
	mu     sync.RWMutex
	voices map[string]models.Voice
}

// Ensure MemoryRepository implements Repository interface
var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{voices: make(map[string]models.Voice)}
}

func (r *MemoryRepository) Create(ctx context.Context, voice *models.Voice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.voices[voice.ID]; ok {
		return apperrors.Conflict("voice "+voice.ID, "already registered")
	}
	r.voices[voice.ID] = *voice
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Voice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	voice, ok := r.voices[id]
	if !ok {
		return nil, apperrors.NotFound("voice", id)
	}
	return &voice, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]models.Voice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Voice, 0, len(r.voices))
	for _, v := range r.voices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.voices[id]; !ok {
		return apperrors.NotFound("voice", id)
	}
	delete(r.voices, id)
	return nil
}

// GormRepository stores voices in the sqlite database
type GormRepository struct {
	db *gorm.DB
}

// Ensure GormRepository implements Repository interface
var _ Repository = (*GormRepository)(nil)

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, voice *models.Voice) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Voice{}).Where("id = ?", voice.ID).Count(&count).Error; err != nil {
		return apperrors.DatabaseError("create voice", err)
	}
	if count > 0 {
		return apperrors.Conflict("voice "+voice.ID, "already registered")
	}
	if err := r.db.WithContext(ctx).Create(voice).Error; err != nil {
		return apperrors.DatabaseError("create voice", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*models.Voice, error) {
	var voice models.Voice
	if err := r.db.WithContext(ctx).First(&voice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("voice", id)
		}
		return nil, apperrors.DatabaseError("get voice", err)
	}
	return &voice, nil
}

func (r *GormRepository) List(ctx context.Context) ([]models.Voice, error) {
	voices := []models.Voice{}
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&voices).Error; err != nil {
		return nil, apperrors.DatabaseError("list voices", err)
	}
	return voices, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Voice{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.DatabaseError("delete voice", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("voice", id)
	}
	return nil
}
