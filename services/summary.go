package services

import (
	"strconv"

	"kjsb_flow_app_go/models"
)

// SummaryRow is one filled field of a case
type SummaryRow struct {
	Label string
	Value string
}

// SummarySection groups the filled fields of one stage
type SummarySection struct {
	Stage int
	Rows  []SummaryRow
}

// CaseSummary is the read-only view of a case shared by the map sidebar
// and the PDF.
type CaseSummary struct {
	ID          string
	KodeKJSB    string
	NamaPemohon string
	NamaKlien   string
	Surveyor    string
	LuasHitung  string
	HasGeometry bool
	Completed   bool
	// Stage is the last stage with any field filled in, 0 for none
	Stage    int
	Sections []SummarySection
}

// BuildCaseSummary collects the filled fields of c per stage
func BuildCaseSummary(c *models.Case) *CaseSummary {
	s := &CaseSummary{
		ID:          c.ID,
		KodeKJSB:    c.Code(),
		NamaPemohon: c.ApplicantName(),
		HasGeometry: c.HasGeometry(),
		Completed:   c.IsCompleted(),
	}
	if c.Klien != nil {
		s.NamaKlien = c.Klien.NamaKlien
	}
	if c.Surveyor != nil {
		s.Surveyor = c.Surveyor.Nama
	}
	if c.LuasHitungOtomatis != nil {
		s.LuasHitung = strconv.FormatFloat(*c.LuasHitungOtomatis, 'f', 2, 64)
	}

	values := c.FieldValues()
	for stage := 1; stage <= models.StageCount; stage++ {
		section := SummarySection{Stage: stage}
		for _, f := range models.FieldsForStage(stage) {
			v := values[f.Name]
			if v == "" {
				continue
			}
			if f.Kind == models.FieldDate {
				v = FormatDateID(v)
			}
			section.Rows = append(section.Rows, SummaryRow{Label: f.Label, Value: f.DisplayValue(v)})
		}
		if len(section.Rows) > 0 {
			s.Sections = append(s.Sections, section)
			s.Stage = stage
		}
	}
	return s
}
