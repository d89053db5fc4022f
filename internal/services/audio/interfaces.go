package audio

import (
	"context"
)

// Store persists synthesized waveforms and reads them back
type Store interface {
	// Save encodes samples as a WAV file called name and returns its locator
	Save(ctx context.Context, samples []float32, sampleRate int, name string) (string, error)

	// Duration returns the playback length in seconds of a stored file
	Duration(ctx context.Context, path string) (float64, error)

	// Exists checks if a stored file is present
	Exists(ctx context.Context, path string) (bool, error)
}
