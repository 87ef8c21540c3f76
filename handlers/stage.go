package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/backend"
	"kjsb_flow_app_go/services/i18n"
	"kjsb_flow_app_go/templates/pages"
	"kjsb_flow_app_go/templates/partials"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// stageForm builds the form view of a stage for c (nil for a new case)
func stageForm(c echo.Context, store backend.Store, found *models.Case, draft *services.Draft) *partials.StageFormData {
	opts := partials.StageFormOptions{
		CSRF:           middleware.GetCSRFToken(c),
		MaxUploadBytes: getConfig(c).MaxUploadBytes,
	}
	if draft.Stage() == 3 {
		surveyors, err := store.ListSurveyors(c.Request().Context())
		if err != nil {
			zap.L().Warn("failed to list surveyors", zap.Error(err))
		}
		opts.Surveyors = surveyors
	}
	return partials.NewStageForm(found, draft, opts)
}

// StagePageHandler renders /tahap/:tahap. ?kode= pre-loads a case; stage 1
// without a code shows the empty creation form.
func StagePageHandler(c echo.Context) error {
	stage, err := stageParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	store := middleware.GetStore(c)

	data := pages.StagePageData{
		Chrome:      chrome(c, i18n.T(ctx, "tahap.title", map[string]interface{}{"tahap": stage})),
		Stage:       stage,
		Description: models.StageDescriptions[stage],
		Kode:        strings.TrimSpace(c.QueryParam("kode")),
	}

	switch {
	case data.Kode != "":
		found, err := services.LookupCase(ctx, store, data.Kode)
		if err != nil {
			data.Message = partials.Error(caseErrorMessage(c, err))
			break
		}
		data.Form = stageForm(c, store, found, services.NewDraft(stage, found))
	case stage == 1:
		data.Form = stageForm(c, store, nil, services.NewDraft(1, nil))
	}

	return render(c, http.StatusOK, pages.Stage(data))
}

// StageLookupHandler swaps in the pre-filled form of the looked up case
func StageLookupHandler(c echo.Context) error {
	stage, err := stageParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	store := middleware.GetStore(c)
	kode := strings.TrimSpace(c.QueryParam("kode"))

	if kode == "" && stage == 1 {
		return render(c, http.StatusOK, partials.StageForm(stageForm(c, store, nil, services.NewDraft(1, nil))))
	}
	found, err := services.LookupCase(ctx, store, kode)
	if err != nil {
		return renderMessage(c, partials.Error(caseErrorMessage(c, err)))
	}
	return render(c, http.StatusOK, partials.StageForm(stageForm(c, store, found, services.NewDraft(stage, found))))
}

// StageSubmitHandler applies a stage form. Failures re-render the form with
// what was typed and the error above it; success re-renders it from the
// stored case.
func StageSubmitHandler(c echo.Context) error {
	stage, err := stageParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	store := middleware.GetStore(c)
	cfg := getConfig(c)

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form")
	}

	kode := strings.TrimSpace(form.Get("kode_kjsb"))

	// A bad stage 4 file is rejected before the case is even looked up
	var upload services.Stage4Upload
	if stage == 4 {
		upload, err = readUpload(c, cfg.MaxUploadBytes)
		if err == nil {
			err = services.CheckStage4Upload(ctx, &upload, cfg.MaxUploadBytes)
		}
		if err != nil {
			draft := services.NewDraft(stage, nil)
			draft.BindForm(form)
			data := stageForm(c, store, nil, draft)
			data.Kode = kode
			data.Message = partials.Error(services.UserMessage(err))
			return respondStage(c, stageView{form: data, stage: stage})
		}
	}

	var existing *models.Case
	if kode != "" {
		existing, err = services.LookupCase(ctx, store, kode)
		if err != nil {
			return respondStage(c, stageView{message: partials.Error(caseErrorMessage(c, err)), stage: stage})
		}
	}

	draft := services.NewDraft(stage, existing)
	draft.BindForm(form)

	stage1 := stage1Input(form)
	var result *services.StageResult
	switch stage {
	case 1:
		result, err = services.SubmitStage1(ctx, store, existing, draft, stage1)
	case 3:
		result, err = services.SubmitStage3(ctx, store, existing, draft, services.SurveyorInput{
			SelectedID: form.Get("surveyor_id"),
			Name:       form.Get("surveyor_nama"),
			Phone:      form.Get("surveyor_hp"),
			License:    form.Get("surveyor_lisensi"),
		})
	case 4:
		result, err = services.UploadStage4(ctx, store, existing, draft, upload, cfg.MaxUploadBytes)
	default:
		result, err = services.SubmitStage(ctx, store, existing, draft)
	}

	if err != nil {
		if !services.IsValidationError(err) {
			zap.L().Warn("stage submit failed", zap.Int("tahap", stage), zap.String("kode_kjsb", kode), zap.Error(err))
		}
		if existing == nil && stage != 1 {
			return respondStage(c, stageView{message: partials.Error(services.UserMessage(err)), stage: stage})
		}
		data := stageForm(c, store, existing, draft)
		if stage == 1 {
			data.Client, data.Applicant = stage1.Client, stage1.Applicant
		}
		data.Message = partials.Error(services.UserMessage(err))
		return respondStage(c, stageView{form: data, stage: stage})
	}

	saved, err := services.LookupCase(ctx, store, result.KodeKJSB)
	if err != nil {
		return respondStage(c, stageView{message: partials.Error(caseErrorMessage(c, err)), stage: stage})
	}
	if result.Completed {
		services.NotifyCaseCompleted(cfg, saved, i18n.GetLocale(ctx))
	}

	if result.Redirect != "" {
		if middleware.IsHTMX(c) {
			c.Response().Header().Set("HX-Redirect", result.Redirect)
			return renderMessage(c, partials.Success(result.Message))
		}
		return c.Redirect(http.StatusSeeOther, result.Redirect)
	}

	data := stageForm(c, store, saved, services.NewDraft(stage, saved))
	data.Message = partials.Success(result.Message)
	return respondStage(c, stageView{form: data, stage: stage})
}

type stageView struct {
	stage   int
	form    *partials.StageFormData
	message *partials.Message
}

// respondStage swaps the form area for HTMX and renders the full page
// for plain form posts.
func respondStage(c echo.Context, v stageView) error {
	if middleware.IsHTMX(c) {
		if v.form != nil {
			return render(c, http.StatusOK, partials.StageForm(v.form))
		}
		return renderMessage(c, v.message)
	}

	ctx := c.Request().Context()
	data := pages.StagePageData{
		Chrome:      chrome(c, i18n.T(ctx, "tahap.title", map[string]interface{}{"tahap": v.stage})),
		Stage:       v.stage,
		Description: models.StageDescriptions[v.stage],
		Form:        v.form,
		Message:     v.message,
	}
	if v.form != nil {
		data.Kode = v.form.Kode
	}
	return render(c, http.StatusOK, pages.Stage(data))
}

func stage1Input(form url.Values) services.Stage1Input {
	return services.Stage1Input{
		KodeKJSB: form.Get("kode_kjsb"),
		Client: services.ContactInput{
			ID:    form.Get("klien_id"),
			Name:  form.Get("nama_klien"),
			Phone: form.Get("nomor_telepon_klien"),
		},
		Applicant: services.ContactInput{
			ID:      form.Get("pemohon_id"),
			Name:    form.Get("nama_pemohon"),
			Phone:   form.Get("nomor_telepon_pemohon"),
			NIK:     form.Get("nik_pemohon"),
			Address: form.Get("alamat_pemohon"),
		},
	}
}

// readUpload hands the optional geojson part to the upload checks
func readUpload(c echo.Context, maxBytes int64) (services.Stage4Upload, error) {
	fh, err := c.FormFile("geojson")
	if err != nil {
		fh = nil
	}
	return services.ReadGeoJSONUpload(c.Request().Context(), fh, c.FormValue("input_srid"), maxBytes)
}
