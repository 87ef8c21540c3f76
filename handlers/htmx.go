package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/backend"
	"kjsb_flow_app_go/services/i18n"
	"kjsb_flow_app_go/templates/components"
	"kjsb_flow_app_go/templates/partials"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// render writes an HTML component with the given status
func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// renderMessage answers an HTMX request with an inline message. htmx only
// swaps 2xx responses, so failures are sent with 200 like the forms do.
func renderMessage(c echo.Context, msg *partials.Message) error {
	return render(c, http.StatusOK, partials.MessageBox(msg))
}

// wantsJSON reports whether the caller asked for JSON rather than a partial
func wantsJSON(c echo.Context) bool {
	if middleware.IsHTMX(c) {
		return false
	}
	if c.QueryParam("format") == "json" {
		return true
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// getConfig returns the config set on the context by the server
func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

func chrome(c echo.Context, title string) components.Chrome {
	return components.Chrome{
		Title:      title,
		CSRF:       middleware.GetCSRFToken(c),
		OfficeAuth: getConfig(c).OfficeAuthEnabled(),
	}
}

// errorStatus maps a service error to an HTTP status for JSON callers
func errorStatus(err error) int {
	switch {
	case services.IsValidationError(err):
		return http.StatusBadRequest
	case backend.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// caseErrorMessage is the text shown when a case lookup fails
func caseErrorMessage(c echo.Context, err error) string {
	if backend.IsNotFound(err) {
		return i18n.T(c.Request().Context(), "proyek.not_found")
	}
	return services.UserMessage(err)
}

// stageParam parses :tahap, answering 404 for anything but 1..5
func stageParam(c echo.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("tahap"))
	if err != nil || n < 1 || n > 5 {
		return 0, echo.ErrNotFound
	}
	return n, nil
}
