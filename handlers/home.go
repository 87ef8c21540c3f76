package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/geo"
	"kjsb_flow_app_go/services/i18n"
	"kjsb_flow_app_go/templates/pages"
	"kjsb_flow_app_go/templates/partials"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MapPageHandler renders the map. ?zoomTo= embeds the bounds of one case
// so the page can frame it on first load.
func MapPageHandler(c echo.Context) error {
	ctx := c.Request().Context()
	data := pages.MapPageData{
		Chrome: chrome(c, i18n.T(ctx, "app.map")),
		Nama:   strings.TrimSpace(c.QueryParam("nama")),
		ZoomTo: strings.TrimSpace(c.QueryParam("zoomTo")),
	}

	if data.ZoomTo != "" {
		bounds, ok, err := services.ZoomBounds(ctx, middleware.GetStore(c), data.ZoomTo, func() {
			data.ZoomOnce = true
		})
		if err != nil {
			zap.L().Warn("zoom bounds failed", zap.String("kode_kjsb", data.ZoomTo), zap.Error(err))
		}
		data.ZoomBounds = bounds
		data.ZoomMissing = err == nil && !ok
	}

	return render(c, http.StatusOK, pages.Map(data))
}

// FeaturesHandler serves the case boundaries as a FeatureCollection
func FeaturesHandler(c echo.Context) error {
	payload, err := services.MapFeaturesJSON(c.Request().Context(), middleware.GetStore(c), c.QueryParam("nama"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, services.UserMessage(err))
	}
	return c.JSONBlob(http.StatusOK, payload)
}

// ZoomHandler returns the Leaflet bounds of one case
func ZoomHandler(c echo.Context) error {
	kode := strings.TrimSpace(c.QueryParam("kode"))
	bounds, ok, err := services.ZoomBounds(c.Request().Context(), middleware.GetStore(c), kode, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, services.UserMessage(err))
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, i18n.T(c.Request().Context(), "map.zoom_missing", map[string]interface{}{"kode": kode}))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"kode_kjsb": kode,
		"bounds":    bounds,
		"fit":       geo.ZoomToFit,
	})
}

// CaseDetailHandler renders the sidebar of one case, or its summary as JSON
func CaseDetailHandler(c echo.Context) error {
	ctx := c.Request().Context()
	found, err := services.LookupCase(ctx, middleware.GetStore(c), c.Param("kode"))
	if err != nil {
		if wantsJSON(c) {
			return echo.NewHTTPError(errorStatus(err), caseErrorMessage(c, err))
		}
		return renderMessage(c, partials.Error(caseErrorMessage(c, err)))
	}

	summary := services.BuildCaseSummary(found)
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, summary)
	}
	return render(c, http.StatusOK, partials.CaseDetail(summary))
}

// CaseGeoJSONHandler downloads the stored boundary of one case
func CaseGeoJSONHandler(c echo.Context) error {
	found, err := services.LookupCase(c.Request().Context(), middleware.GetStore(c), c.Param("kode"))
	if err != nil {
		return echo.NewHTTPError(errorStatus(err), caseErrorMessage(c, err))
	}
	feature, ok := services.CaseFeature(found)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, i18n.T(c.Request().Context(), "map.zoom_missing", map[string]interface{}{"kode": found.Code()}))
	}

	body, err := feature.MarshalJSON()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to encode geometry")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.geojson"`, found.Code()))
	return c.Blob(http.StatusOK, services.GeoJSONContentType, body)
}

// CaseOriginalGeoJSONHandler downloads the file last accepted on stage 4,
// as uploaded and before any reprojection
func CaseOriginalGeoJSONHandler(c echo.Context) error {
	ctx := c.Request().Context()
	found, err := services.LookupCase(ctx, middleware.GetStore(c), c.Param("kode"))
	if err != nil {
		return echo.NewHTTPError(errorStatus(err), caseErrorMessage(c, err))
	}

	rc, err := services.OpenArchivedGeoJSON(ctx, found.Code())
	if err != nil {
		if errors.Is(err, services.ErrArchiveNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, i18n.T(ctx, "map.archive_missing", map[string]interface{}{"kode": found.Code()}))
		}
		zap.L().Error("archived geojson read failed", zap.String("kode_kjsb", found.Code()), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read archived file")
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s-original.geojson"`, found.Code()))
	return c.Stream(http.StatusOK, services.GeoJSONContentType, rc)
}

// CasePDFHandler renders the case summary to PDF
func CasePDFHandler(c echo.Context) error {
	ctx := c.Request().Context()
	found, err := services.LookupCase(ctx, middleware.GetStore(c), c.Param("kode"))
	if err != nil {
		return echo.NewHTTPError(errorStatus(err), caseErrorMessage(c, err))
	}

	pdf, err := services.GenerateCaseSummaryPDF(ctx, found)
	if err != nil {
		zap.L().Error("case pdf failed", zap.String("kode_kjsb", found.Code()), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s.pdf"`, found.Code()))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// HealthHandler reports whether the backend answers
func HealthHandler(c echo.Context) error {
	store := middleware.GetStore(c)
	if store == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": "backend not configured"})
	}
	if err := store.Ping(c.Request().Context()); err != nil {
		zap.L().Warn("health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
