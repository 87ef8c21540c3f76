// Package backend talks to the data store behind the case tracker. The
// production store is a Supabase/PostgREST project; a GORM implementation
// emulates it for development, the CLI and tests.
package backend

import (
	"context"

	"kjsb_flow_app_go/models"
)

// Row limits shared by both implementations
const (
	SearchLimit          = 10
	SuggestionFetchLimit = 20
	SuggestionLimit      = 10
)

// Store is every backend operation the application performs
type Store interface {
	SearchClients(ctx context.Context, query string) ([]models.Client, error)
	SearchApplicants(ctx context.Context, query string) ([]models.Applicant, error)
	FindClient(ctx context.Context, name, phone string) (*models.Client, error)
	FindApplicant(ctx context.Context, name, phone string) (*models.Applicant, error)
	CreateClient(ctx context.Context, c *models.Client) (*models.Client, error)
	CreateApplicant(ctx context.Context, a *models.Applicant) (*models.Applicant, error)
	CreateSurveyor(ctx context.Context, s *models.Surveyor) (*models.Surveyor, error)
	ListSurveyors(ctx context.Context) ([]models.Surveyor, error)

	CreateCase(ctx context.Context, in Stage1Create) (*CaseRef, error)
	GetCase(ctx context.Context, code string) (*models.Case, error)
	UpdateCase(ctx context.Context, code string, patch map[string]any) error
	UpdateStage4WithGeometry(ctx context.Context, call Stage4Call) error
	ListCases(ctx context.Context) ([]models.Case, error)

	SuggestCodes(ctx context.Context, query string) ([]string, error)
	SuggestApplicantNames(ctx context.Context, query string) ([]string, error)
	ListMapFeatures(ctx context.Context, applicantName string) ([]models.MapFeature, error)

	Ping(ctx context.Context) error
}

// Stage1Create is a new case together with its contacts. Each contact is
// either an existing row (ID set), a new row (NewClient/NewApplicant) or
// absent. New contacts and the case are created atomically.
type Stage1Create struct {
	KodeKJSB     string
	ClientID     string
	NewClient    *models.Client
	ApplicantID  string
	NewApplicant *models.Applicant
	Fields       map[string]any
}

// CaseRef identifies a freshly created case
type CaseRef struct {
	ID       string `json:"id"`
	KodeKJSB string `json:"kode_kjsb"`
}

// Stage4Call holds the arguments of update_proyek_tahap4_with_geom. Fields
// is keyed by column name; missing keys are sent as null.
type Stage4Call struct {
	KodeKJSB  string
	GeoJSON   string
	InputSRID int
	Fields    map[string]any
}

// Stage4Procedure is the stored procedure applying a stage 4 upload
const Stage4Procedure = "update_proyek_tahap4_with_geom"

// Params renders the call with the procedure's p_* parameter names
func (c Stage4Call) Params() map[string]any {
	params := map[string]any{
		"p_kode_kjsb":  c.KodeKJSB,
		"p_geojson":    c.GeoJSON,
		"p_input_srid": c.InputSRID,
	}
	for _, f := range models.FieldsForStage(4) {
		params["p_"+f.Name] = c.Fields[f.Name]
	}
	return params
}
