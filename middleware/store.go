package middleware

import (
	"net/http"

	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/backend"

	"github.com/labstack/echo/v4"
)

// ContextKeyStore is the context key for the data backend of a request
const ContextKeyStore = "store"

// RequireBackend makes the configured backend available to handlers and
// answers 503 while none is configured.
func RequireBackend(store backend.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := store
			if s == nil {
				s = services.Backend
			}
			if s == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "backend not configured")
			}
			c.Set(ContextKeyStore, s)
			return next(c)
		}
	}
}

// GetStore returns the backend set by RequireBackend, falling back to the
// process-wide one.
func GetStore(c echo.Context) backend.Store {
	if s, ok := c.Get(ContextKeyStore).(backend.Store); ok {
		return s
	}
	return services.Backend
}
