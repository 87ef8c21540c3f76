package middleware

import (
	"net/http"

	"kjsb_flow_app_go/config"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Names shared by the CSRF check and the views that echo the token back
const (
	CSRFContextKey = "csrf"
	CSRFHeader     = "X-CSRF-Token"
	CSRFFormField  = "_csrf"
)

// CSRF checks the token on every unsafe method. Forms post it as _csrf and
// htmx sends it in X-CSRF-Token through hx-headers.
func CSRF(cfg *config.Config) echo.MiddlewareFunc {
	return echomw.CSRFWithConfig(CSRFConfig(cfg))
}

// CSRFConfig is the echo configuration behind CSRF
func CSRFConfig(cfg *config.Config) echomw.CSRFConfig {
	return echomw.CSRFConfig{
		TokenLookup:    "header:" + CSRFHeader + ",form:" + CSRFFormField,
		CookieName:     CSRFFormField,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
		CookieSameSite: http.SameSiteLaxMode,
		ContextKey:     CSRFContextKey,
	}
}

// GetCSRFToken returns the token the CSRF middleware stored for this request
func GetCSRFToken(c echo.Context) string {
	token, _ := c.Get(CSRFContextKey).(string)
	return token
}
