package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// SessionCookieName is the name of the office session cookie
	SessionCookieName = "kjsb_session"
	// ContextKeyOffice is set to true once the office session is verified
	ContextKeyOffice = "office"
)

// publicPrefixes are reachable without an office session
var publicPrefixes = []string{"/login", "/health", "/static/"}

// RequireOfficeAuth guards every page behind the shared office password.
// It is a no-op when no password hash is configured.
func RequireOfficeAuth(cfg *config.Config, signer *services.SessionSigner) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.OfficeAuthEnabled() || isPublicPath(c.Request().URL.Path) {
				return next(c)
			}

			cookie, err := c.Cookie(SessionCookieName)
			if err != nil {
				return redirectToLogin(c)
			}

			if err := signer.Verify(cookie.Value); err != nil {
				if !errors.Is(err, services.ErrSessionExpired) {
					zap.L().Warn("rejected office session", zap.String("ip", c.RealIP()), zap.Error(err))
				}
				ClearSessionCookie(c)
				return redirectToLogin(c)
			}

			c.Set(ContextKeyOffice, true)
			return next(c)
		}
	}
}

func isPublicPath(p string) bool {
	for _, prefix := range publicPrefixes {
		if p == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func redirectToLogin(c echo.Context) error {
	if IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/login")
		return c.NoContent(http.StatusUnauthorized)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// IsHTMX reports whether the request was issued by htmx
func IsHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// SetSessionCookie stores a freshly issued office session token
func SetSessionCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}

func isProduction(c echo.Context) bool {
	cfg, ok := c.Get("config").(*config.Config)
	return ok && cfg.IsProduction()
}

// IsOfficeSession reports whether the request carried a verified session
func IsOfficeSession(c echo.Context) bool {
	ok, _ := c.Get(ContextKeyOffice).(bool)
	return ok
}
