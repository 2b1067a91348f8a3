package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitedRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := gin.New()
	router.POST("/api/orders",
		IPRateLimitMiddleware(ctx, rps, burst, slog.New(slog.NewTextHandler(io.Discard, nil))),
		func(c *gin.Context) { c.Status(http.StatusCreated) },
	)
	return router
}

func postFrom(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.RemoteAddr = ip + ":12345"
	router.ServeHTTP(w, req)
	return w
}

func TestIPRateLimitMiddleware(t *testing.T) {
	t.Run("AllowsBurstThenRejects", func(t *testing.T) {
		router := newRateLimitedRouter(t, 0.5, 2)

		assert.Equal(t, http.StatusCreated, postFrom(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusCreated, postFrom(router, "10.0.0.1").Code)

		w := postFrom(router, "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

		retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, retryAfter, 1)
	})

	t.Run("LimitsAreIndependentPerIP", func(t *testing.T) {
		router := newRateLimitedRouter(t, 0.1, 1)

		assert.Equal(t, http.StatusCreated, postFrom(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, postFrom(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusCreated, postFrom(router, "10.0.0.2").Code)
	})
}

func TestIPRateLimiterStore_EvictIdle(t *testing.T) {
	store := &ipRateLimiterStore{rps: 1, burst: 1}
	store.getLimiter("10.0.0.1")
	store.getLimiter("10.0.0.2")

	store.evictIdle(time.Now().Add(time.Minute))

	_, ok := store.limiters.Load("10.0.0.1")
	assert.False(t, ok)
	_, ok = store.limiters.Load("10.0.0.2")
	assert.False(t, ok)

	store.getLimiter("10.0.0.3")
	store.evictIdle(time.Now().Add(-time.Minute))
	_, ok = store.limiters.Load("10.0.0.3")
	assert.True(t, ok)
}
