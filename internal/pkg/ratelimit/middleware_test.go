package ratelimit

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRouter(lim *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(lim))
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return r
}

func TestMiddleware_RateLimitExceeded(t *testing.T) {
	lim := New(0, time.Minute) // limit 0 -> always deny
	r := newRouter(lim)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, 429, w.Code)
	var body map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	require.Equal(t, false, body["success"])
	require.Equal(t, float64(429), body["statusCode"])
	require.Equal(t, "Rate limit exceeded. Try again later.", body["message"])
	data := body["data"].(map[string]any)
	require.Contains(t, data, "retry_after")
	require.Contains(t, data, "reset_time")
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestMiddleware_HeadersCountDown(t *testing.T) {
	r := newRouter(New(2, time.Minute))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, 200, w.Code)
	require.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, 200, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, 429, w.Code)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	lim := New(1, time.Minute)
	lim.now = func() time.Time { return now }

	require.True(t, lim.Allow("a"))
	require.False(t, lim.Allow("a"))
	require.True(t, lim.Allow("b"))
	require.Equal(t, now.Add(time.Minute), lim.GetResetTime("a"))

	now = now.Add(61 * time.Second)
	require.Equal(t, 1, lim.GetRemaining("a"))
	require.True(t, lim.Allow("a"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	lim := New(5, time.Minute)
	lim.now = func() time.Time { return now }

	lim.Allow("a")
	lim.Allow("b")
	require.Equal(t, 2, lim.keys())

	now = now.Add(2 * time.Minute)
	lim.Allow("b")
	lim.Cleanup()
	require.Equal(t, 1, lim.keys())
}

func TestRateLimiter_StartCleanupStops(t *testing.T) {
	lim := New(5, time.Millisecond)
	lim.Allow("a")

	ctx, cancel := context.WithCancel(context.Background())
	lim.StartCleanup(ctx, 5*time.Millisecond)
	require.Eventually(t, func() bool { return lim.keys() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
}
