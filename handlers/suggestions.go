package handlers

import (
	"net/http"
	"strconv"

	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/templates/partials"

	"github.com/labstack/echo/v4"
)

// SuggestSeqHeader echoes the request seq on HTMX suggestion responses
const SuggestSeqHeader = "X-Suggest-Seq"

// firstParam returns the first non-empty query value among names
func firstParam(c echo.Context, names ...string) string {
	for _, n := range names {
		if v := c.QueryParam(n); v != "" {
			return v
		}
	}
	return ""
}

func respondSuggestions(c echo.Context, res *services.Suggestions, err error) error {
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, services.UserMessage(err))
	}
	if middleware.IsHTMX(c) {
		c.Response().Header().Set(SuggestSeqHeader, strconv.FormatInt(res.Seq, 10))
		return render(c, http.StatusOK, partials.SuggestionOptions(res.Items))
	}
	return c.JSON(http.StatusOK, res)
}

// SuggestApplicantNamesHandler answers the map search box
func SuggestApplicantNamesHandler(c echo.Context) error {
	q := firstParam(c, "q", "nama")
	res, err := services.SuggestApplicantNames(c.Request().Context(), middleware.GetStore(c), q, services.ParseSeq(c.QueryParam("seq")))
	return respondSuggestions(c, res, err)
}

// SuggestCodesHandler answers the stage page code lookup
func SuggestCodesHandler(c echo.Context) error {
	q := firstParam(c, "q", "kode")
	res, err := services.SuggestCodes(c.Request().Context(), middleware.GetStore(c), q, services.ParseSeq(c.QueryParam("seq")))
	return respondSuggestions(c, res, err)
}

func respondContacts(c echo.Context, options []partials.ContactOption) error {
	if middleware.IsHTMX(c) {
		return render(c, http.StatusOK, partials.ContactOptionList(options))
	}
	return c.JSON(http.StatusOK, options)
}

// SearchClientsHandler autocompletes the stage 1 client name
func SearchClientsHandler(c echo.Context) error {
	clients, err := services.SearchClients(c.Request().Context(), middleware.GetStore(c), firstParam(c, "q", "nama_klien"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, services.UserMessage(err))
	}
	return respondContacts(c, partials.ClientOptions(clients))
}

// SearchApplicantsHandler autocompletes the stage 1 applicant name
func SearchApplicantsHandler(c echo.Context) error {
	applicants, err := services.SearchApplicants(c.Request().Context(), middleware.GetStore(c), firstParam(c, "q", "nama_pemohon"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, services.UserMessage(err))
	}
	return respondContacts(c, partials.ApplicantOptions(applicants))
}

// ListSurveyorsHandler returns the surveyors as JSON or select options
func ListSurveyorsHandler(c echo.Context) error {
	surveyors, err := middleware.GetStore(c).ListSurveyors(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, services.UserMessage(err))
	}
	if middleware.IsHTMX(c) {
		return render(c, http.StatusOK, partials.SurveyorOptions(partials.SurveyorOptionsData{
			Surveyors: surveyors,
			Selected:  c.QueryParam("selected"),
		}))
	}
	return c.JSON(http.StatusOK, surveyors)
}

// CreateSurveyorHandler adds a surveyor. HTMX callers get the refreshed
// select options with the new surveyor selected.
func CreateSurveyorHandler(c echo.Context) error {
	ctx := c.Request().Context()
	store := middleware.GetStore(c)
	created, err := services.CreateSurveyor(ctx, store, services.SurveyorInput{
		Name:    c.FormValue("nama"),
		Phone:   c.FormValue("hp"),
		License: c.FormValue("lisensi"),
	})
	if err != nil {
		if middleware.IsHTMX(c) {
			return renderMessage(c, partials.Error(services.UserMessage(err)))
		}
		return echo.NewHTTPError(errorStatus(err), services.UserMessage(err))
	}

	if !middleware.IsHTMX(c) {
		return c.JSON(http.StatusCreated, created)
	}
	surveyors, err := store.ListSurveyors(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, services.UserMessage(err))
	}
	return render(c, http.StatusOK, partials.SurveyorOptions(partials.SurveyorOptionsData{Surveyors: surveyors, Selected: created.ID}))
}
