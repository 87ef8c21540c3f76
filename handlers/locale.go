package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// LanguageHandler stores the chosen language in the lang cookie and goes
// back to the page the switch was clicked on
func LanguageHandler(c echo.Context) error {
	lang := c.Param("lang")
	if !i18n.Supported(lang) {
		lang = i18n.DefaultLang
	}
	middleware.SetLanguageCookie(c, lang)
	return c.Redirect(http.StatusSeeOther, localReturnPath(c.Request().Referer()))
}

// localReturnPath keeps the path and query of referer, so the redirect
// never leaves the site. An explicit ?lang= is dropped.
func localReturnPath(referer string) string {
	u, err := url.Parse(referer)
	if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.HasPrefix(u.Path, "/\\") {
		return "/"
	}
	q := u.Query()
	q.Del("lang")
	if len(q) == 0 {
		return u.Path
	}
	return u.Path + "?" + q.Encode()
}
