// Package partials holds the HTMX fragments swapped into the pages
package partials

import (
	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services"
)

// Message kinds
const (
	MessageSuccess = "success"
	MessageError   = "error"
)

// Message is an inline status line above a form
type Message struct {
	Kind string
	Text string
}

// Success creates a success message
func Success(text string) *Message {
	return &Message{Kind: MessageSuccess, Text: text}
}

// Error creates an error message
func Error(text string) *Message {
	return &Message{Kind: MessageError, Text: text}
}

// FormField is one input of a stage form
type FormField struct {
	Name    string
	Label   string
	Kind    string
	Value   string
	Options []models.Option
}

// FormSection groups fields under a legend
type FormSection struct {
	Title  string
	Fields []FormField
}

// SurveyorOptionsData fills the surveyor select
type SurveyorOptionsData struct {
	Surveyors []models.Surveyor
	Selected  string
}

// StageFormData is the view model of a stage form
type StageFormData struct {
	Stage           int
	CSRF            string
	Kode            string
	Sections        []FormSection
	Client          services.ContactInput
	Applicant       services.ContactInput
	SurveyorID      string
	SurveyorOptions SurveyorOptionsData
	HasGeometry     bool
	MaxUpload       string
	Message         *Message
}

// StageFormOptions carries the request-scoped inputs of NewStageForm
type StageFormOptions struct {
	CSRF           string
	Surveyors      []models.Surveyor
	MaxUploadBytes int64
}

// NewStageForm builds the form of draft's stage for c (nil while creating
// a stage 1 case). Field values come from the draft so a failed submit
// re-renders what the user typed.
func NewStageForm(c *models.Case, draft *services.Draft, opts StageFormOptions) *StageFormData {
	data := &StageFormData{
		Stage:       draft.Stage(),
		CSRF:        opts.CSRF,
		Kode:        c.Code(),
		Sections:    sections(draft),
		HasGeometry: c != nil && c.HasGeometry(),
		MaxUpload:   formatFileSize(opts.MaxUploadBytes),
	}

	if c != nil {
		if c.Klien != nil {
			data.Client = services.ContactInput{ID: c.Klien.ID, Name: c.Klien.NamaKlien, Phone: c.Klien.Phone()}
		}
		if c.Pemohon != nil {
			data.Applicant = services.ContactInput{
				ID:      c.Pemohon.ID,
				Name:    c.Pemohon.NamaPemohon,
				Phone:   c.Pemohon.Phone(),
				NIK:     deref(c.Pemohon.NIKPemohon),
				Address: deref(c.Pemohon.AlamatPemohon),
			}
		}
		data.SurveyorID = deref(c.SurveyorID)
	}
	data.SurveyorOptions = SurveyorOptionsData{Surveyors: opts.Surveyors, Selected: data.SurveyorID}
	return data
}

// ContactOption is one autocomplete entry for a client or applicant
type ContactOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	NIK     string `json:"nik,omitempty"`
	Address string `json:"address,omitempty"`
}

// ClientOptions converts clients to autocomplete entries
func ClientOptions(clients []models.Client) []ContactOption {
	out := make([]ContactOption, 0, len(clients))
	for i := range clients {
		out = append(out, ContactOption{ID: clients[i].ID, Name: clients[i].NamaKlien, Phone: clients[i].Phone()})
	}
	return out
}

// ApplicantOptions converts applicants to autocomplete entries
func ApplicantOptions(applicants []models.Applicant) []ContactOption {
	out := make([]ContactOption, 0, len(applicants))
	for i := range applicants {
		a := &applicants[i]
		out = append(out, ContactOption{
			ID:      a.ID,
			Name:    a.NamaPemohon,
			Phone:   a.Phone(),
			NIK:     deref(a.NIKPemohon),
			Address: deref(a.AlamatPemohon),
		})
	}
	return out
}
