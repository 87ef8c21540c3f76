package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSPNonce(t *testing.T) {
	e := echo.New()
	e.Use(CSPNonce())
	var seen []string
	e.GET("/", func(c echo.Context) error {
		nonce := GetNonce(c.Request().Context())
		assert.Equal(t, nonce, c.Get(string(NonceKey)))
		seen = append(seen, nonce)
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "'nonce-"+seen[i]+"'")
	}
	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.NotEqual(t, seen[0], seen[1], "nonce must change per request")
}

func TestContentSecurityPolicy(t *testing.T) {
	csp := ContentSecurityPolicy("abc")
	assert.Contains(t, csp, "script-src 'self' 'nonce-abc' https://unpkg.com")
	assert.Contains(t, csp, "tile.openstreetmap.org")
	assert.Contains(t, csp, "frame-ancestors 'none'")
	assert.NotContains(t, csp, "unsafe-eval")
}

func TestGetNonce(t *testing.T) {
	assert.Equal(t, "n1", GetNonce(context.WithValue(context.Background(), NonceKey, "n1")))
	assert.Empty(t, GetNonce(context.Background()))
}
