package partials

import (
	"bytes"
	"context"
	"testing"

	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/i18n"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	require.NoError(t, i18n.Load())
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func strPtr(s string) *string { return &s }

func TestNewStageForm(t *testing.T) {
	c := &models.Case{
		KodeKJSB:         strPtr("BKS-2024-0001"),
		Klien:            &models.Client{ID: "k1", NamaKlien: "PT Maju"},
		Pemohon:          &models.Applicant{ID: "p1", NamaPemohon: "Budi", NIKPemohon: strPtr("3201")},
		SurveyorID:       strPtr("s2"),
		PenggunaanTanahA: strPtr(models.LandUseHunian),
	}
	surveyors := []models.Surveyor{{ID: "s1", Nama: "Andi"}, {ID: "s2", Nama: "Joko"}}

	form := NewStageForm(c, services.NewDraft(1, c), StageFormOptions{CSRF: "tok", Surveyors: surveyors, MaxUploadBytes: 5 << 20})
	assert.Equal(t, 1, form.Stage)
	assert.Equal(t, "BKS-2024-0001", form.Kode)
	assert.Equal(t, "k1", form.Client.ID)
	assert.Equal(t, "3201", form.Applicant.NIK)
	assert.Equal(t, "s2", form.SurveyorOptions.Selected)
	assert.Equal(t, "5.00 MB", form.MaxUpload)

	require.Len(t, form.Sections, 2)
	assert.Equal(t, "Data Klien & Pemohon", form.Sections[0].Title)
	assert.Equal(t, "hunian", form.Sections[0].Fields[2].Value)

	html := render(t, StageForm(form))
	assert.Contains(t, html, `hx-post="/tahap/1"`)
	assert.Contains(t, html, `name="_csrf" value="tok"`)
	assert.Contains(t, html, `<option value="hunian" selected>Hunian</option>`)
	assert.Contains(t, html, `name="nama_klien" value="PT Maju"`)
	assert.NotContains(t, html, `name="geojson"`)
}

func TestStageFormForNewCase(t *testing.T) {
	form := NewStageForm(nil, services.NewDraft(1, nil), StageFormOptions{})
	form.Message = Error("Nama klien wajib diisi.")

	html := render(t, StageForm(form))
	assert.Contains(t, html, `name="kode_kjsb" value=""`)
	assert.Contains(t, html, "Kosongkan Kode KJSB")
	assert.Contains(t, html, `class="alert alert-error"`)
}

func TestStageFormUploadAndSurveyor(t *testing.T) {
	c := &models.Case{KodeKJSB: strPtr("BKS-2024-0002"), SurveyorID: strPtr("s1")}
	surveyors := []models.Surveyor{{ID: "s1", Nama: "Andi", Lisensi: strPtr("L-9")}}

	html := render(t, StageForm(NewStageForm(c, services.NewDraft(3, c), StageFormOptions{Surveyors: surveyors})))
	assert.Contains(t, html, `<option value="s1" selected>Andi · L-9</option>`)
	assert.Contains(t, html, `value="__new__"`)

	html = render(t, StageForm(NewStageForm(c, services.NewDraft(4, c), StageFormOptions{MaxUploadBytes: 2048})))
	assert.Contains(t, html, `hx-encoding="multipart/form-data"`)
	assert.Contains(t, html, `name="geojson"`)
	assert.Contains(t, html, `value="23835"`)
	assert.Contains(t, html, "2.00 KB")
}

func TestCaseDetail(t *testing.T) {
	summary := &services.CaseSummary{
		KodeKJSB:    "BKS-2024-0003",
		NamaPemohon: "Siti <b>",
		Stage:       2,
		HasGeometry: true,
		Sections: []services.SummarySection{
			{Stage: 2, Rows: []services.SummaryRow{{Label: "No. Berkas Spasial", Value: "SP-1"}}},
		},
	}

	html := render(t, CaseDetail(summary))
	assert.Contains(t, html, "Siti &lt;b&gt;")
	assert.Contains(t, html, "/proyek/BKS-2024-0003/pdf")
	assert.Contains(t, html, "/proyek/BKS-2024-0003/geojson")
	assert.Contains(t, html, `/tahap/3?kode=BKS-2024-0003`)
	assert.Contains(t, html, "SP-1")
}

func TestOptionLists(t *testing.T) {
	html := render(t, SuggestionOptions([]string{"Budi", "Bu\"di"}))
	assert.Contains(t, html, `<option value="Budi"></option>`)
	assert.Contains(t, html, `value="Bu&#34;di"`)

	phone := "0812"
	opts := ClientOptions([]models.Client{{ID: "k1", NamaKlien: "PT Maju", NomorTeleponKlien: &phone}})
	html = render(t, ContactOptionList(opts))
	assert.Contains(t, html, `data-id="k1"`)
	assert.Contains(t, html, `data-phone="0812"`)
	assert.Contains(t, html, "PT Maju (0812)")

	assert.Equal(t, []ContactOption{{ID: "p1", Name: "Ani", NIK: "1"}},
		ApplicantOptions([]models.Applicant{{ID: "p1", NamaPemohon: "Ani", NIKPemohon: strPtr("1")}}))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", formatFileSize(512))
	assert.Equal(t, "1.50 KB", formatFileSize(1536))
	assert.Equal(t, "5.00 MB", formatFileSize(5<<20))
}

func TestMessageBox(t *testing.T) {
	assert.Empty(t, render(t, MessageBox(nil)))
	assert.Equal(t, `<div class="alert alert-error" role="alert">Gagal &amp; batal</div>`,
		render(t, MessageBox(Error("Gagal & batal"))))
	assert.Contains(t, render(t, MessageBox(Success("Tersimpan"))), `role="status"`)
}
