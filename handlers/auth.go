package handlers

import (
	"net/http"

	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/i18n"
	"kjsb_flow_app_go/templates/pages"
	"kjsb_flow_app_go/templates/partials"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoginHandler renders the office login page
func LoginHandler(c echo.Context) error {
	if !getConfig(c).OfficeAuthEnabled() {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	ctx := c.Request().Context()
	return render(c, http.StatusOK, pages.Login(pages.LoginPageData{Chrome: chrome(c, i18n.T(ctx, "auth.title"))}))
}

// LoginPostHandler checks the office password and issues a session cookie
func LoginPostHandler(signer *services.SessionSigner) echo.HandlerFunc {
	return func(c echo.Context) error {
		cfg := getConfig(c)
		if !cfg.OfficeAuthEnabled() {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		ctx := c.Request().Context()

		if !services.CheckPassword(c.FormValue("password"), cfg.OfficePasswordHash) {
			zap.L().Warn("office login failed", zap.String("ip", c.RealIP()))
			services.Monitor.TrackFailedLogin(c.RealIP())
			return render(c, http.StatusUnauthorized, pages.Login(pages.LoginPageData{
				Chrome:  chrome(c, i18n.T(ctx, "auth.title")),
				Message: partials.Error(i18n.T(ctx, "auth.invalid_password")),
			}))
		}

		token, expires, err := signer.Issue()
		if err != nil {
			zap.L().Error("failed to issue office session", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
		}
		middleware.SetSessionCookie(c, token, expires)
		zap.L().Info("office login", zap.String("ip", c.RealIP()))

		if middleware.IsHTMX(c) {
			c.Response().Header().Set("HX-Redirect", "/")
			return c.NoContent(http.StatusOK)
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}
}

// LogoutHandler clears the office session
func LogoutHandler(c echo.Context) error {
	middleware.ClearSessionCookie(c)

	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/login")
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}
