package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	rateLimiterCleanupInterval = 5 * time.Minute
	rateLimiterMaxIdle         = 10 * time.Minute
)

// clientLimiter holds a rate limiter and its last accessed time
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	cl := &clientLimiter{limiter: rate.NewLimiter(limit, burst)}
	cl.lastSeen.Store(time.Now().UnixNano())
	return cl
}

// CORS sets the configured cross-origin headers and answers preflight requests
func CORS(cfg config.SecurityConfig) gin.HandlerFunc {
	origins := strings.Join(orDefault(cfg.CORSOrigins, []string{"*"}), ", ")
	methods := strings.Join(orDefault(cfg.CORSMethods, []string{"GET", "POST", "OPTIONS"}), ", ")
	headers := strings.Join(orDefault(cfg.CORSHeaders, []string{"Content-Type", "Authorization"}), ", ")

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origins)
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func orDefault(values, def []string) []string {
	if len(values) == 0 {
		return def
	}
	return values
}

// RequestSizeLimitWithSize rejects request bodies larger than maxBytes
func RequestSizeLimitWithSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost ||
			c.Request.Method == http.MethodPut ||
			c.Request.Method == http.MethodPatch {
			if c.Request.ContentLength > maxBytes {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{
					Status:  types.StatusError,
					Message: fmt.Sprintf("request body exceeds %d bytes", maxBytes),
					Error:   "INVALID_INPUT",
				})
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// PerClientRateLimit allows perMinute requests per client IP within the named
// group, with the given burst
func PerClientRateLimit(rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once, name string, perMinute int, burst int) gin.HandlerFunc {
	cleanupInitialized.Do(func() {
		go cleanupOldRateLimiters(rateLimiters, cleanupStop)
	})

	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))

	return func(c *gin.Context) {
		key := name + "|" + c.ClientIP()

		limiterInterface, _ := rateLimiters.LoadOrStore(key, newClientLimiter(limit, burst))
		cl := limiterInterface.(*clientLimiter)
		cl.lastSeen.Store(time.Now().UnixNano())

		if !cl.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{
				Status:  types.StatusError,
				Message: "Rate limit exceeded. Please slow down your requests.",
				Error:   "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}

func cleanupOldRateLimiters(rateLimiters *sync.Map, cleanupStop chan struct{}) {
	ticker := time.NewTicker(rateLimiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pruneRateLimiters(rateLimiters, time.Now(), rateLimiterMaxIdle)
		case <-cleanupStop:
			return
		}
	}
}

// pruneRateLimiters drops limiters idle for longer than maxIdle
func pruneRateLimiters(rateLimiters *sync.Map, now time.Time, maxIdle time.Duration) int {
	removed := 0
	rateLimiters.Range(func(key, value interface{}) bool {
		cl, ok := value.(*clientLimiter)
		if !ok || now.Sub(time.Unix(0, cl.lastSeen.Load())) > maxIdle {
			rateLimiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// RequestLogger writes one logrus entry per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(c.Request.Context(), logrus.Fields{
			"method":    c.Request.Method,
			"path":      path,
			"status":    status,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
			"bytes":     c.Writer.Size(),
		})

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("HTTP request")
		case status >= http.StatusBadRequest:
			entry.Warn("HTTP request")
		default:
			entry.Info("HTTP request")
		}
	}
}
