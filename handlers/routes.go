package handlers

import (
	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/backend"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires every page and API endpoint. store may be nil to use
// the process-wide backend.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, signer *services.SessionSigner, store backend.Store) {
	e.GET("/health", HealthHandler, middleware.RequireBackend(store))
	e.GET("/login", LoginHandler)
	e.POST("/login", LoginPostHandler(signer), middleware.LoginRateLimiter.Middleware())
	e.POST("/logout", LogoutHandler)
	e.GET("/lang/:lang", LanguageHandler)

	app := e.Group("")
	app.Use(middleware.RequireOfficeAuth(cfg, signer))
	app.Use(middleware.RequireBackend(store))
	{
		app.GET("/", MapPageHandler)
		app.GET("/api/features", FeaturesHandler)
		app.GET("/api/features/zoom", ZoomHandler)

		suggest := middleware.SuggestionRateLimiter.Middleware()
		app.GET("/api/suggestions/pemohon", SuggestApplicantNamesHandler, suggest)
		app.GET("/api/suggestions/kode", SuggestCodesHandler, suggest)
		app.GET("/api/klien", SearchClientsHandler, suggest)
		app.GET("/api/pemohon", SearchApplicantsHandler, suggest)
		app.GET("/api/surveyors", ListSurveyorsHandler)
		app.POST("/api/surveyors", CreateSurveyorHandler)
		app.GET("/api/security/alerts", SecurityAlertsHandler)

		app.GET("/proyek/:kode", CaseDetailHandler)
		app.GET("/proyek/:kode/geojson", CaseGeoJSONHandler)
		app.GET("/proyek/:kode/geojson/original", CaseOriginalGeoJSONHandler)
		app.GET("/proyek/:kode/pdf", CasePDFHandler)
		app.GET("/export/proyek.xlsx", ExportCasesHandler)
		app.POST("/import/proyek.xlsx", ImportCasesHandler)

		app.GET("/tahap/:tahap", StagePageHandler)
		app.GET("/tahap/:tahap/lookup", StageLookupHandler)
		app.POST("/tahap/:tahap", StageSubmitHandler, middleware.UploadRateLimiter.Middleware())
	}
}
