package voices

import (
	"context"

	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
)

// Repository stores registered voices
type Repository interface {
	Create(ctx context.Context, voice *models.Voice) error
	Get(ctx context.Context, id string) (*models.Voice, error)
	List(ctx context.Context) ([]models.Voice, error)
	Delete(ctx context.Context, id string) error
}

// Prober reads the duration of an audio file in any container format
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Transcoder is implemented by probers that can also rewrite a sample as
// mono PCM WAV
type Transcoder interface {
	ConvertToWAV(ctx context.Context, input, output string, sampleRate int) error
}
