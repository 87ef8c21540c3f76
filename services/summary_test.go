package services

import (
	"testing"

	"kjsb_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestBuildCaseSummary(t *testing.T) {
	area := 99.999
	c := &models.Case{
		ID:                 "id-1",
		KodeKJSB:           stringPtr("BKS-2024-0010"),
		Klien:              &models.Client{NamaKlien: "PT Sentosa"},
		Pemohon:            &models.Applicant{NamaPemohon: "Ani"},
		Surveyor:           &models.Surveyor{Nama: "Joko"},
		LuasHitungOtomatis: &area,
		Geom:               datatypes.JSON(`{"type":"Polygon","coordinates":[]}`),
		PenggunaanTanahA:   stringPtr(models.LandUsePertambangan),
		NoST:               stringPtr("ST-1"),
		TglST:              stringPtr("2024-05-02"),
	}

	s := BuildCaseSummary(c)
	assert.Equal(t, "BKS-2024-0010", s.KodeKJSB)
	assert.Equal(t, "PT Sentosa", s.NamaKlien)
	assert.Equal(t, "Ani", s.NamaPemohon)
	assert.Equal(t, "Joko", s.Surveyor)
	assert.Equal(t, "100.00", s.LuasHitung)
	assert.True(t, s.HasGeometry)
	assert.False(t, s.Completed)
	assert.Equal(t, 3, s.Stage)

	require.Len(t, s.Sections, 2)
	assert.Equal(t, 1, s.Sections[0].Stage)
	assert.Equal(t, []SummaryRow{{Label: "Penggunaan Tanah A", Value: "Pertambangan"}}, s.Sections[0].Rows)
	assert.Equal(t, 3, s.Sections[1].Stage)
	assert.Equal(t, []SummaryRow{{Label: "No. ST", Value: "ST-1"}, {Label: "Tgl. ST", Value: "2 Mei 2024"}}, s.Sections[1].Rows)

	empty := BuildCaseSummary(&models.Case{})
	assert.Equal(t, 0, empty.Stage)
	assert.Empty(t, empty.Sections)
	assert.False(t, empty.HasGeometry)
}
