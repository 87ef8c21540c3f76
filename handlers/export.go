package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/i18n"
	"kjsb_flow_app_go/templates/partials"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportCasesHandler downloads every case as a workbook
func ExportCasesHandler(c echo.Context) error {
	buf, err := services.ExportCasesXLSX(c.Request().Context(), middleware.GetStore(c))
	if err != nil {
		zap.L().Error("case export failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate export")
	}

	filename := fmt.Sprintf("proyek_kjsb_%s.xlsx", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportCasesHandler creates cases from an uploaded workbook laid out like
// the export
func ImportCasesHandler(c echo.Context) error {
	ctx := c.Request().Context()

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to open file"})
	}
	defer src.Close()

	result, err := services.ImportCasesXLSX(ctx, middleware.GetStore(c), src)
	if err != nil {
		if wantsJSON(c) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return renderMessage(c, partials.Error(err.Error()))
	}

	if result.SuccessCount > 0 {
		services.Cache.Invalidate(ctx)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, result)
	}

	text := i18n.T(ctx, "import.done", map[string]interface{}{"ok": result.SuccessCount, "total": result.TotalProcessed})
	if len(result.Errors) > 0 {
		return renderMessage(c, partials.Error(text+" "+strings.Join(result.Errors, "; ")))
	}
	return renderMessage(c, partials.Success(text))
}
