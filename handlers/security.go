package handlers

import (
	"net/http"

	"kjsb_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// SecurityAlertsHandler lists the recent failed-login alerts, newest first.
// Without an office password there is no session to protect the list, so
// the route answers 404.
func SecurityAlertsHandler(c echo.Context) error {
	if !getConfig(c).OfficeAuthEnabled() {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	alerts := services.Monitor.GetRecentAlerts()
	if alerts == nil {
		alerts = []services.SecurityAlert{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts": alerts,
	})
}
