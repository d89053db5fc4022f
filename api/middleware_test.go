package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
	"golang.org/x/time/rate"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		cfg             config.SecurityConfig
		method          string
		expectedStatus  int
		expectedHeaders map[string]string
	}{
		{
			name:           "preflight request",
			method:         http.MethodOptions,
			expectedStatus: http.StatusNoContent,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type, Authorization",
			},
		},
		{
			name:           "regular GET request",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin": "*",
			},
		},
		{
			name: "configured origins",
			cfg: config.SecurityConfig{
				CORSOrigins: []string{"https://app.example.com"},
				CORSMethods: []string{"GET"},
			},
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":  "https://app.example.com",
				"Access-Control-Allow-Methods": "GET",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORS(tt.cfg))
			router.Any("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", "https://example.com")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for header, expectedValue := range tt.expectedHeaders {
				assert.Equal(t, expectedValue, w.Header().Get(header), "Header: %s", header)
			}
		})
	}
}

func TestRequestSizeLimitWithSize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	customLimit := int64(512 * 1024)

	tests := []struct {
		name           string
		method         string
		bodySize       int
		expectedStatus int
	}{
		{name: "request under limit", method: http.MethodPost, bodySize: 256 * 1024, expectedStatus: http.StatusOK},
		{name: "request at limit", method: http.MethodPost, bodySize: 512 * 1024, expectedStatus: http.StatusOK},
		{name: "request over limit", method: http.MethodPost, bodySize: 1024 * 1024, expectedStatus: http.StatusRequestEntityTooLarge},
		{name: "GET is not limited", method: http.MethodGet, bodySize: 1024 * 1024, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestSizeLimitWithSize(customLimit))
			router.Handle(tt.method, "/test", func(c *gin.Context) {
				body, err := io.ReadAll(c.Request.Body)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				c.JSON(http.StatusOK, gin.H{"received": len(body)})
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/test", strings.NewReader(strings.Repeat("a", tt.bodySize)))
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPerClientRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name              string
		requestCount      int
		perMinute         int
		burstSize         int
		expectSomeBlocked bool
	}{
		{name: "requests under burst", requestCount: 3, perMinute: 60, burstSize: 5},
		{name: "burst exhausted", requestCount: 6, perMinute: 1, burstSize: 3, expectSomeBlocked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rateLimiters := &sync.Map{}
			cleanupStop := make(chan struct{})
			defer close(cleanupStop)

			router := gin.New()
			router.Use(PerClientRateLimit(rateLimiters, cleanupStop, &sync.Once{}, "test", tt.perMinute, tt.burstSize))
			router.GET("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			successCount, blockedCount := 0, 0
			for i := 0; i < tt.requestCount; i++ {
				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				req.RemoteAddr = "127.0.0.1:12345"
				router.ServeHTTP(w, req)

				switch w.Code {
				case http.StatusOK:
					successCount++
				case http.StatusTooManyRequests:
					blockedCount++
				}
			}

			if tt.expectSomeBlocked {
				assert.Equal(t, tt.burstSize, successCount)
				assert.Equal(t, tt.requestCount-tt.burstSize, blockedCount)
			} else {
				assert.Zero(t, blockedCount)
				assert.Equal(t, tt.requestCount, successCount)
			}
		})
	}
}

func TestPerClientRateLimit_SeparateClientsAndGroups(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rateLimiters := &sync.Map{}
	cleanupStop := make(chan struct{})
	defer close(cleanupStop)
	once := &sync.Once{}

	router := gin.New()
	router.GET("/a", PerClientRateLimit(rateLimiters, cleanupStop, once, "a", 1, 1), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/b", PerClientRateLimit(rateLimiters, cleanupStop, once, "b", 1, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(path, addr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = addr
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("/a", "127.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, do("/a", "127.0.0.1:1"))
	assert.Equal(t, http.StatusOK, do("/a", "192.168.1.1:1"), "other client")
	assert.Equal(t, http.StatusOK, do("/b", "127.0.0.1:1"), "other group")
}

func TestPruneRateLimiters(t *testing.T) {
	rateLimiters := &sync.Map{}
	now := time.Now()

	fresh := newClientLimiter(rate.Inf, 1)
	stale := newClientLimiter(rate.Inf, 1)
	stale.lastSeen.Store(now.Add(-time.Hour).UnixNano())

	rateLimiters.Store("fresh", fresh)
	rateLimiters.Store("stale", stale)
	rateLimiters.Store("garbage", "not a limiter")

	assert.Equal(t, 2, pruneRateLimiters(rateLimiters, now, rateLimiterMaxIdle))

	_, ok := rateLimiters.Load("fresh")
	assert.True(t, ok)
	_, ok = rateLimiters.Load("stale")
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.StdLogger().SetFormatter(&logrus.JSONFormatter{})
	t.Cleanup(func() {
		logger.Init(logger.Config{Level: "info", Format: "text"})
	})

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing?x=1", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	out := buf.String()
	assert.Contains(t, out, `"path":"/missing?x=1"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"level":"warning"`)
}
