package version

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/tts"
)

func TestGet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		deps         *types.Dependencies
		expectedBody map[string]interface{}
	}{
		{
			name: "without dependencies",
			expectedBody: map[string]interface{}{
				"name":        Name,
				"version":     "dev",
				"tts_backend": "",
				"status":      "running",
			},
		},
		{
			name: "with version and backend",
			deps: &types.Dependencies{
				Version: "1.4.0",
				Backend: tts.NewProvider("tone", func() (tts.Synthesizer, error) { return tts.NewToneSynth(24000), nil }),
			},
			expectedBody: map[string]interface{}{
				"name":        Name,
				"version":     "1.4.0",
				"tts_backend": "tone",
				"status":      "running",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Get(tt.deps)(c)

			assert.Equal(t, http.StatusOK, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			for key, expectedValue := range tt.expectedBody {
				assert.Equal(t, expectedValue, response[key], "Key: %s", key)
			}
		})
	}
}
