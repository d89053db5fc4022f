package types

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
)

func TestDependencies(t *testing.T) {
	var nilDeps *Dependencies
	assert.Equal(t, config.StoriesConfig{}, nilDeps.StoriesConfig())
	assert.Empty(t, nilDeps.TempDir())

	deps := &Dependencies{Config: &config.Config{
		Stories: config.StoriesConfig{MaxChunkSize: 500},
		Storage: config.StorageConfig{TempDir: "/tmp/st"},
	}}
	assert.Equal(t, 500, deps.StoriesConfig().MaxChunkSize)
	assert.Equal(t, "/tmp/st", deps.TempDir())
}

func TestSendError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "invalid input",
			err:         apperrors.InvalidInput("text", "must not be empty"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "INVALID_INPUT",
			wantMessage: "invalid text: must not be empty",
		},
		{
			name:        "not found",
			err:         apperrors.NotFound("story", "abc"),
			wantStatus:  http.StatusNotFound,
			wantCode:    "NOT_FOUND",
			wantMessage: "story not found",
		},
		{
			name:        "conflict",
			err:         apperrors.Conflict("chunk", "processing"),
			wantStatus:  http.StatusConflict,
			wantCode:    "CONFLICT",
			wantMessage: "chunk is processing",
		},
		{
			name:        "queue full",
			err:         apperrors.QueueFull(10),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    "QUEUE_FULL",
			wantMessage: "synthesis queue is full, try again later",
		},
		{
			name:        "backend failure",
			err:         apperrors.BackendFailure("tone", errors.New("boom")),
			wantStatus:  http.StatusBadGateway,
			wantCode:    "BACKEND_FAILURE",
			wantMessage: "synthesis backend 'tone' failed",
		},
		{
			name:        "plain error hides message",
			err:         errors.New("disk on fire"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL",
			wantMessage: "internal server error",
		},
		{
			name:        "database error",
			err:         apperrors.DatabaseError("insert", errors.New("locked")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "DATABASE_QUERY",
			wantMessage: "database insert failed",
		},
		{
			name:        "failed chunk keeps its message",
			err:         apperrors.Internal("chunk generation failed", errors.New("oom")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL",
			wantMessage: "chunk generation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			SendError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, c.IsAborted())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestParseIntQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		query  string
		want   int
		wantOK bool
	}{
		{name: "missing uses default", query: "", want: 20, wantOK: true},
		{name: "valid", query: "?limit=5", want: 5, wantOK: true},
		{name: "below min", query: "?limit=0", wantOK: false},
		{name: "above max", query: "?limit=101", wantOK: false},
		{name: "not a number", query: "?limit=abc", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/stories"+tt.query, nil)

			got, ok := ParseIntQuery(c, "limit", 20, 1, 100)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestParseIntParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tt := range []struct {
		value  string
		want   int
		wantOK bool
	}{
		{value: "0", want: 0, wantOK: true},
		{value: "12", want: 12, wantOK: true},
		{value: "-1", wantOK: false},
		{value: "x", wantOK: false},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Params = gin.Params{{Key: "index", Value: tt.value}}

		got, ok := ParseIntParam(c, "index")
		assert.Equal(t, tt.wantOK, ok, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}
}
