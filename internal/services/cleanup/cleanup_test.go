package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	mod := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestService_Sweep(t *testing.T) {
	root := t.TempDir()
	tmp := filepath.Join(root, "tmp")
	outputs := filepath.Join(root, "outputs")

	touch(t, filepath.Join(tmp, "voice_old.wav"), 2*time.Hour)
	touch(t, filepath.Join(tmp, "voice_new.wav"), time.Minute)
	touch(t, filepath.Join(tmp, "keep_me.wav"), 2*time.Hour)
	touch(t, filepath.Join(tmp, "nested", "voice_deep.wav"), 2*time.Hour)
	touch(t, filepath.Join(outputs, ".tmp_123.wav"), 2*time.Hour)
	touch(t, filepath.Join(outputs, "story_0.wav"), 2*time.Hour)

	svc := NewService(time.Hour, time.Hour,
		Target{Dir: tmp, Prefix: "voice_"},
		Target{Dir: outputs, Prefix: ".tmp_"},
		Target{Dir: filepath.Join(root, "missing"), Prefix: "x"},
	)

	assert.Equal(t, 2, svc.Sweep(context.Background()))

	assert.NoFileExists(t, filepath.Join(tmp, "voice_old.wav"))
	assert.NoFileExists(t, filepath.Join(outputs, ".tmp_123.wav"))
	assert.FileExists(t, filepath.Join(tmp, "voice_new.wav"))
	assert.FileExists(t, filepath.Join(tmp, "keep_me.wav"))
	assert.FileExists(t, filepath.Join(tmp, "nested", "voice_deep.wav"))
	assert.FileExists(t, filepath.Join(outputs, "story_0.wav"))
}

func TestService_StartStop(t *testing.T) {
	tmp := t.TempDir()
	touch(t, filepath.Join(tmp, "voice_old.wav"), 2*time.Hour)

	svc := NewService(time.Hour, 10*time.Millisecond, Target{Dir: tmp, Prefix: "voice_"})
	svc.Start(context.Background())

	// Start sweeps synchronously once
	assert.NoFileExists(t, filepath.Join(tmp, "voice_old.wav"))

	touch(t, filepath.Join(tmp, "voice_later.wav"), 2*time.Hour)
	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(tmp, "voice_later.wav"))
		return os.IsNotExist(err)
	}, time.Second, 5*time.Millisecond)

	svc.Stop()
}
