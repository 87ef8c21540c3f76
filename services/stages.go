package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services/backend"
	"kjsb_flow_app_go/services/geo"
	"kjsb_flow_app_go/services/i18n"

	"go.uber.org/zap"
)

// SurveyorNewOption is the select value asking for a new surveyor row
const SurveyorNewOption = "__new__"

// StageResult is what a successful submit reports back to the page
type StageResult struct {
	Message  string
	KodeKJSB string
	Redirect string
	// NoChange is set when the draft had nothing to submit
	NoChange bool
	// Completed is set when this submit closed the case at BPN
	Completed bool
}

// ContactInput is a client or applicant picked or typed on the stage 1 form
type ContactInput struct {
	ID      string
	Name    string
	Phone   string
	NIK     string
	Address string
}

func (in ContactInput) clean() ContactInput {
	return ContactInput{
		ID:      strings.TrimSpace(in.ID),
		Name:    SanitizeText(in.Name),
		Phone:   SanitizeText(in.Phone),
		NIK:     SanitizeText(in.NIK),
		Address: SanitizeText(in.Address),
	}
}

// Stage1Input carries the stage 1 inputs that are not case columns
type Stage1Input struct {
	KodeKJSB  string
	Client    ContactInput
	Applicant ContactInput
}

// SurveyorInput is the stage 3 surveyor selection
type SurveyorInput struct {
	SelectedID string
	Name       string
	Phone      string
	License    string
}

// Stage4Upload is the file part of a stage 4 submit
type Stage4Upload struct {
	FileName string
	Data     []byte
	SRID     string

	// geometry is the re-encoded GeoJSON once CheckStage4Upload passed
	geometry []byte
}

// CheckStage4Upload validates the stage 4 file without touching the backend:
// it must be present, within maxBytes and hold one usable geometry.
func CheckStage4Upload(ctx context.Context, upload *Stage4Upload, maxBytes int64) error {
	if upload.FileName == "" || len(upload.Data) == 0 {
		return NewValidationError("geojson", i18n.T(ctx, "upload.missing_file"))
	}
	if maxBytes > 0 && int64(len(upload.Data)) > maxBytes {
		return NewValidationError("geojson", i18n.T(ctx, "upload.too_large", map[string]interface{}{"max": maxBytes}))
	}

	_, encoded, err := geo.ExtractGeometry(upload.Data)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidJSON) {
			return NewValidationError("geojson", i18n.T(ctx, "upload.invalid_json"))
		}
		return NewValidationError("geojson", i18n.T(ctx, "upload.invalid_shape"))
	}
	upload.geometry = encoded
	return nil
}

// LookupCase loads a case by code. An empty code fails validation without
// calling the backend.
func LookupCase(ctx context.Context, store backend.Store, kode string) (*models.Case, error) {
	kode = strings.TrimSpace(kode)
	if kode == "" {
		return nil, NewValidationError("kode_kjsb", i18n.T(ctx, "validation.kode_required"))
	}
	c, err := store.GetCase(ctx, kode)
	if err != nil {
		if !backend.IsNotFound(err) {
			zap.L().Error("case lookup failed", zap.String("kode_kjsb", kode), zap.Error(err))
		}
		return nil, fmt.Errorf("lookup %s: %w", kode, err)
	}
	return c, nil
}

// SubmitStage1 creates a case when draft has no loaded case, otherwise it
// updates the stage 1 columns and contact links of existing.
func SubmitStage1(ctx context.Context, store backend.Store, existing *models.Case, draft *Draft, in Stage1Input) (*StageResult, error) {
	if err := draft.Validate(ctx); err != nil {
		return nil, err
	}
	client := in.Client.clean()
	applicant := in.Applicant.clean()

	if existing == nil {
		return createCase(ctx, store, draft.Filled(), strings.TrimSpace(in.KodeKJSB), client, applicant)
	}

	patch := draft.Diff()

	clientID, err := ensureClient(ctx, store, client)
	if err != nil {
		return nil, err
	}
	if clientID != "" && clientID != ptrValue(existing.KlienID) {
		patch["klien_id"] = clientID
	}
	applicantID, err := ensureApplicant(ctx, store, applicant)
	if err != nil {
		return nil, err
	}
	if applicantID != "" && applicantID != ptrValue(existing.PemohonID) {
		patch["pemohon_id"] = applicantID
	}

	return applyPatch(ctx, store, existing, 1, patch)
}

// createCase resolves both contacts and creates them with the case in one
// backend operation
func createCase(ctx context.Context, store backend.Store, fields map[string]any, kode string, client, applicant ContactInput) (*StageResult, error) {
	req := backend.Stage1Create{KodeKJSB: kode, Fields: fields}

	id, isNew, err := resolveClient(ctx, store, client)
	if err != nil {
		return nil, err
	}
	req.ClientID = id
	if isNew {
		req.NewClient = &models.Client{NamaKlien: client.Name, NomorTeleponKlien: optional(client.Phone)}
	}

	id, isNew, err = resolveApplicant(ctx, store, applicant)
	if err != nil {
		return nil, err
	}
	req.ApplicantID = id
	if isNew {
		req.NewApplicant = &models.Applicant{
			NamaPemohon:         applicant.Name,
			NomorTeleponPemohon: optional(applicant.Phone),
			NIKPemohon:          optional(applicant.NIK),
			AlamatPemohon:       optional(applicant.Address),
		}
	}

	ref, err := store.CreateCase(ctx, req)
	if err != nil {
		zap.L().Error("create case failed", zap.String("kode_kjsb", kode), zap.Error(err))
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	Cache.Invalidate(ctx)

	return &StageResult{
		Message:  i18n.T(ctx, "proyek.created"),
		KodeKJSB: ref.KodeKJSB,
	}, nil
}

// resolveClient picks the selected row, else an exact name+phone match,
// else asks for a new row. A blank name without a selection means no client.
func resolveClient(ctx context.Context, store backend.Store, in ContactInput) (string, bool, error) {
	if in.ID != "" {
		return in.ID, false, nil
	}
	if in.Name == "" {
		return "", false, nil
	}
	found, err := store.FindClient(ctx, in.Name, in.Phone)
	if err == nil {
		return found.ID, false, nil
	}
	if !errors.Is(err, backend.ErrNotFound) {
		return "", false, fmt.Errorf("failed to find client: %w", err)
	}
	return "", true, nil
}

func resolveApplicant(ctx context.Context, store backend.Store, in ContactInput) (string, bool, error) {
	if in.ID != "" {
		return in.ID, false, nil
	}
	if in.Name == "" {
		return "", false, nil
	}
	found, err := store.FindApplicant(ctx, in.Name, in.Phone)
	if err == nil {
		return found.ID, false, nil
	}
	if !errors.Is(err, backend.ErrNotFound) {
		return "", false, fmt.Errorf("failed to find applicant: %w", err)
	}
	return "", true, nil
}

// ensureClient resolves a contact for an update, creating it right away
// when new.
func ensureClient(ctx context.Context, store backend.Store, in ContactInput) (string, error) {
	id, isNew, err := resolveClient(ctx, store, in)
	if err != nil || !isNew {
		return id, err
	}
	created, err := store.CreateClient(ctx, &models.Client{NamaKlien: in.Name, NomorTeleponKlien: optional(in.Phone)})
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}
	return created.ID, nil
}

func ensureApplicant(ctx context.Context, store backend.Store, in ContactInput) (string, error) {
	id, isNew, err := resolveApplicant(ctx, store, in)
	if err != nil || !isNew {
		return id, err
	}
	created, err := store.CreateApplicant(ctx, &models.Applicant{
		NamaPemohon:         in.Name,
		NomorTeleponPemohon: optional(in.Phone),
		NIKPemohon:          optional(in.NIK),
		AlamatPemohon:       optional(in.Address),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create applicant: %w", err)
	}
	return created.ID, nil
}

// SubmitStage updates stage 2 or 5 from the draft diff. Stage 5 reports
// Completed the first time tgl_selesai_bpn is filled in.
func SubmitStage(ctx context.Context, store backend.Store, existing *models.Case, draft *Draft) (*StageResult, error) {
	if existing == nil {
		return nil, NewValidationError("kode_kjsb", i18n.T(ctx, "validation.kode_required"))
	}
	if err := draft.Validate(ctx); err != nil {
		return nil, err
	}
	result, err := applyPatch(ctx, store, existing, draft.Stage(), draft.Diff())
	if err != nil {
		return nil, err
	}
	if draft.Stage() == 5 && !existing.IsCompleted() && draft.Value("tgl_selesai_bpn") != "" {
		result.Completed = true
	}
	return result, nil
}

// SubmitStage3 updates stage 3 and links the surveyor. A new surveyor is
// created before the case update.
func SubmitStage3(ctx context.Context, store backend.Store, existing *models.Case, draft *Draft, surveyor SurveyorInput) (*StageResult, error) {
	if existing == nil {
		return nil, NewValidationError("kode_kjsb", i18n.T(ctx, "validation.kode_required"))
	}
	if err := draft.Validate(ctx); err != nil {
		return nil, err
	}
	selected := strings.TrimSpace(surveyor.SelectedID)
	name := SanitizeText(surveyor.Name)
	if selected == SurveyorNewOption && name == "" {
		return nil, NewValidationError("surveyor_nama", i18n.T(ctx, "validation.surveyor_name_required"))
	}

	patch := draft.Diff()
	current := ptrValue(existing.SurveyorID)

	switch selected {
	case SurveyorNewOption:
		created, err := CreateSurveyor(ctx, store, surveyor)
		if err != nil {
			return nil, err
		}
		patch["surveyor_id"] = created.ID
	case "":
		if current != "" {
			patch["surveyor_id"] = nil
		}
	default:
		if selected != current {
			patch["surveyor_id"] = selected
		}
	}

	return applyPatch(ctx, store, existing, 3, patch)
}

// CreateSurveyor adds a surveyor row. The name is required.
func CreateSurveyor(ctx context.Context, store backend.Store, in SurveyorInput) (*models.Surveyor, error) {
	name := SanitizeText(in.Name)
	if name == "" {
		return nil, NewValidationError("surveyor_nama", i18n.T(ctx, "validation.surveyor_name_required"))
	}
	created, err := store.CreateSurveyor(ctx, &models.Surveyor{
		Nama:    name,
		HP:      optional(SanitizeText(in.Phone)),
		Lisensi: optional(SanitizeText(in.License)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create surveyor: %w", err)
	}
	return created, nil
}

func applyPatch(ctx context.Context, store backend.Store, existing *models.Case, stage int, patch map[string]any) (*StageResult, error) {
	kode := existing.Code()
	if len(patch) == 0 {
		return &StageResult{Message: i18n.T(ctx, "proyek.no_changes"), KodeKJSB: kode, NoChange: true}, nil
	}
	if err := store.UpdateCase(ctx, kode, patch); err != nil {
		zap.L().Error("case update failed", zap.String("kode_kjsb", kode), zap.Int("tahap", stage), zap.Error(err))
		return nil, fmt.Errorf("failed to update stage %d: %w", stage, err)
	}
	if stage == 1 {
		Cache.Invalidate(ctx)
	}
	return &StageResult{
		Message:  i18n.T(ctx, "tahap.updated", map[string]interface{}{"tahap": stage}),
		KodeKJSB: kode,
	}, nil
}

// UploadStage4 validates the uploaded boundary and stage 4 fields, then
// applies both through the stored procedure in a single call. The file is
// archived afterwards. A failed archive is logged and the previous archive
// of the case is removed.
func UploadStage4(ctx context.Context, store backend.Store, existing *models.Case, draft *Draft, upload Stage4Upload, maxBytes int64) (*StageResult, error) {
	if existing == nil {
		return nil, NewValidationError("kode_kjsb", i18n.T(ctx, "validation.kode_required"))
	}
	if upload.geometry == nil {
		if err := CheckStage4Upload(ctx, &upload, maxBytes); err != nil {
			return nil, err
		}
	}
	if err := draft.Validate(ctx); err != nil {
		return nil, err
	}

	kode := existing.Code()
	call := backend.Stage4Call{
		KodeKJSB:  kode,
		GeoJSON:   string(upload.geometry),
		InputSRID: geo.ParseSRID(upload.SRID),
		Fields:    draft.Typed(),
	}
	if err := store.UpdateStage4WithGeometry(ctx, call); err != nil {
		zap.L().Error("stage 4 procedure failed", zap.String("kode_kjsb", kode), zap.Error(err))
		return nil, fmt.Errorf("failed to save stage 4: %w", err)
	}

	archiveUpload(ctx, kode, upload)
	Cache.Invalidate(ctx)

	return &StageResult{
		Message:  i18n.T(ctx, "tahap.stage4_saved"),
		KodeKJSB: kode,
		Redirect: "/?zoomTo=" + url.QueryEscape(kode),
	}, nil
}

func archiveUpload(ctx context.Context, kode string, upload Stage4Upload) {
	if Storage == nil || !Storage.IsConfigured() {
		return
	}
	key := GeoJSONArchiveKey(kode)
	if _, err := Storage.UploadReader(ctx, bytes.NewReader(upload.Data), key, GeoJSONContentType, int64(len(upload.Data))); err != nil {
		zap.L().Warn("geojson archive failed", zap.String("kode_kjsb", kode), zap.String("key", key), zap.Error(err))
		// the previous original no longer matches the stored boundary
		if err := Storage.Delete(ctx, key); err != nil {
			zap.L().Warn("stale geojson archive kept", zap.String("kode_kjsb", kode), zap.String("key", key), zap.Error(err))
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
