package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kjsb_flow_app_go/services/i18n"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
	})

	assert.NotNil(t, rl)
	assert.Equal(t, 10, rl.config.Requests)
	assert.Equal(t, time.Minute, rl.config.Window)
	assert.NotNil(t, rl.config.KeyFunc)
	assert.Equal(t, "rate_limit.exceeded", rl.config.MessageKey)
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Requests: 2, Window: 50 * time.Millisecond})

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are counted separately")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("a"), "window resets")
}

func TestRateLimiterMiddleware(t *testing.T) {
	require.NoError(t, i18n.Load())
	e := echo.New()

	handler := func(rl *RateLimiter) echo.HandlerFunc {
		return rl.Middleware()(func(c echo.Context) error {
			return c.String(http.StatusOK, "success")
		})
	}

	t.Run("WithinLimit", func(t *testing.T) {
		h := handler(NewRateLimiter(RateLimitConfig{Requests: 2, Window: time.Second}))

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			assert.NoError(t, h(c))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("ExceededLimit", func(t *testing.T) {
		h := handler(NewRateLimiter(RateLimitConfig{Requests: 1, Window: time.Second}))

		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.NoError(t, h(c))

		c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		err := h(c)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusTooManyRequests, he.Code)
	})

	t.Run("HXRequestExceeded", func(t *testing.T) {
		h := handler(NewRateLimiter(RateLimitConfig{Requests: 1, Window: time.Second, MessageKey: "auth.too_many_attempts"}))

		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.NoError(t, h(c))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		c = e.NewContext(req, rec)

		assert.NoError(t, h(c))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "Terlalu banyak percobaan")
	})
}
