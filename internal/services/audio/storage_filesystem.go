package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore implements Store on a local directory
type FilesystemStore struct {
	basePath string
}

// NewFilesystemStore creates the base directory and returns a store rooted there
func NewFilesystemStore(basePath string) (*FilesystemStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FilesystemStore{
		basePath: basePath,
	}, nil
}

// ChunkFileName names the output file of one chunk
func ChunkFileName(storyID string, index int) string {
	return fmt.Sprintf("%s_%d.wav", storyID, index)
}

// BasePath returns the directory files are written to
func (fs *FilesystemStore) BasePath() string {
	return fs.basePath
}

// Save writes the waveform to a temporary file and renames it into place,
// so a reader never sees a partially written file
func (fs *FilesystemStore) Save(ctx context.Context, samples []float32, sampleRate int, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, "..") {
		return "", fmt.Errorf("invalid file name: %q", name)
	}
	fullPath := filepath.Join(fs.basePath, name)

	file, err := os.CreateTemp(fs.basePath, ".tmp_*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := file.Name()

	if err := EncodeWAV(file, samples, sampleRate); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return fullPath, nil
}

// Duration reads the length of a stored WAV file
func (fs *FilesystemStore) Duration(ctx context.Context, path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return WAVDuration(file)
}

// Exists checks if a file exists
func (fs *FilesystemStore) Exists(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}
