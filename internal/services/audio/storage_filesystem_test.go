package audio

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, rate int) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
	}
	return samples
}

func TestFilesystemStore_SaveAndDuration(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystemStore(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		samples  int
		rate     int
		duration float64
	}{
		{name: "one second", samples: 24000, rate: 24000, duration: 1.0},
		{name: "fractional", samples: 11025, rate: 22050, duration: 0.5},
		{name: "short", samples: 160, rate: 16000, duration: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := store.Save(ctx, sine(tt.samples, tt.rate), tt.rate, ChunkFileName("story", tt.samples))
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(store.BasePath(), ChunkFileName("story", tt.samples)), path)

			exists, err := store.Exists(ctx, path)
			require.NoError(t, err)
			assert.True(t, exists)

			got, err := store.Duration(ctx, path)
			require.NoError(t, err)
			assert.InDelta(t, tt.duration, got, 1e-9)
		})
	}
}

func TestFilesystemStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), sine(100, 8000), 8000, "a.wav")
	require.NoError(t, err)
	_, err = store.Save(context.Background(), sine(100, 8000), 0, "b.wav")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.wav", entries[0].Name())
}

func TestFilesystemStore_SaveStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)

	path, err := store.Save(context.Background(), sine(10, 8000), 8000, "../../escape.wav")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.wav"), path)
}

func TestFilesystemStore_SaveCancelled(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Save(ctx, sine(10, 8000), 8000, "a.wav")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilesystemStore_MissingAndInvalidFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	require.NoError(t, err)

	missing := filepath.Join(dir, "missing.wav")
	exists, err := store.Exists(ctx, missing)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.Exists(ctx, "")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Duration(ctx, missing)
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a wav file"), 0644))
	_, err = store.Duration(ctx, garbage)
	assert.ErrorIs(t, err, ErrInvalidWAV)
}

func TestEncodeDecodeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	in := []float32{0, 0.5, -0.5, 1, -1, 2, -2}
	require.NoError(t, EncodeWAV(f, in, 16000))
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	out, rate, err := DecodeWAV(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	require.Len(t, out, len(in))

	want := []float32{0, 0.5, -0.5, 1, -1, 1, -1}
	for i := range want {
		assert.InDelta(t, want[i], out[i], 1e-3, "sample %d", i)
	}

	_, _, err = DecodeWAV(bytes.NewReader([]byte("nope")))
	assert.ErrorIs(t, err, ErrInvalidWAV)
}
