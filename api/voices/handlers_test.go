package voices

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/audio"
	voicesvc "github.com/xiaotaozi1127/story-teller-backend/internal/services/voices"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
)

const testRate = 8000

func wavBytes(t *testing.T, seconds float64) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, audio.EncodeWAV(f, make([]float32, int(seconds*testRate)), testRate))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func setupRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	voiceDir := filepath.Join(root, "voices")
	svc, err := voicesvc.NewService(voicesvc.NewMemoryRepository(), nil, filepath.Join(root, "tmp"), voiceDir, config.VoicesConfig{
		MinDuration:   3 * time.Second,
		MaxDuration:   30 * time.Second,
		MaxUploadSize: 10 * 1024 * 1024,
	})
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1/voices"), &types.Dependencies{VoiceService: svc}, nil)
	return router, voiceDir
}

func upload(t *testing.T, router *gin.Engine, fields map[string]string, file []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if file != nil {
		part, err := writer.CreateFormFile("voice", "narrator.wav")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/voices", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPost(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		seconds        float64
		noFile         bool
		expectedStatus int
		expectedName   string
	}{
		{name: "valid sample", fields: map[string]string{"name": "Grandma", "language": "en"}, seconds: 5, expectedStatus: http.StatusCreated, expectedName: "Grandma"},
		{name: "name from filename", seconds: 3, expectedStatus: http.StatusCreated, expectedName: "narrator"},
		{name: "too short", seconds: 1, expectedStatus: http.StatusBadRequest},
		{name: "too long", seconds: 31, expectedStatus: http.StatusBadRequest},
		{name: "missing file", fields: map[string]string{"voice_id": "abc"}, noFile: true, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, voiceDir := setupRouter(t)

			var file []byte
			if !tt.noFile {
				file = wavBytes(t, tt.seconds)
			}
			w := upload(t, router, tt.fields, file)
			assert.Equal(t, tt.expectedStatus, w.Code)

			entries, err := os.ReadDir(voiceDir)
			require.NoError(t, err)

			if tt.expectedStatus != http.StatusCreated {
				var resp types.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "INVALID_INPUT", resp.Error)
				assert.Empty(t, entries)
				return
			}

			var resp types.VoiceResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Voice)
			assert.Equal(t, tt.expectedName, resp.Voice.Name)
			assert.InDelta(t, tt.seconds, resp.Voice.DurationSec, 1e-6)
			assert.Len(t, entries, 1)
		})
	}
}

func TestListAndGet(t *testing.T) {
	router, _ := setupRouter(t)

	w := upload(t, router, map[string]string{"name": "First"}, wavBytes(t, 4))
	require.Equal(t, http.StatusCreated, w.Code)
	var created types.VoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/voices", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list types.VoicesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	require.Len(t, list.Voices, 1)
	assert.Equal(t, created.Voice.ID, list.Voices[0].ID)
	assert.Empty(t, list.Voices[0].AudioPath, "audio path is not exposed")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/voices/"+created.Voice.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/voices/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
