package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

// NonceKey stores the per-request script nonce
const NonceKey contextKey = "csp_nonce"

// Third-party origins used by the map page: htmx and Leaflet from unpkg,
// base tiles from OpenStreetMap.
const (
	scriptCDN = "https://unpkg.com"
	tileHosts = "https://tile.openstreetmap.org https://*.tile.openstreetmap.org"
)

func newNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ContentSecurityPolicy builds the policy header for one nonce
func ContentSecurityPolicy(nonce string) string {
	return fmt.Sprintf("default-src 'self'; script-src 'self' 'nonce-%s' %s; style-src 'self' 'unsafe-inline' %s; img-src 'self' data: blob: %s %s; font-src 'self'; connect-src 'self'; frame-ancestors 'none'",
		nonce, scriptCDN, scriptCDN, scriptCDN, tileHosts)
}

// CSPNonce issues a fresh nonce per request. The views read it from the
// request context and put it on every inline script tag.
func CSPNonce() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			nonce, err := newNonce()
			if err != nil {
				zap.L().Error("failed to generate nonce", zap.Error(err))
				return echo.NewHTTPError(http.StatusInternalServerError)
			}

			c.Set(string(NonceKey), nonce)
			ctx := context.WithValue(c.Request().Context(), NonceKey, nonce)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("Content-Security-Policy", ContentSecurityPolicy(nonce))

			return next(c)
		}
	}
}

// GetNonce returns the request's nonce, or "" outside CSPNonce
func GetNonce(ctx context.Context) string {
	nonce, _ := ctx.Value(NonceKey).(string)
	return nonce
}
