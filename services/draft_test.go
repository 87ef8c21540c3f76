package services

import (
	"context"
	"net/url"
	"testing"

	"kjsb_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftCreate(t *testing.T) {
	d := NewDraft(1, nil)
	assert.True(t, d.IsCreate())
	assert.Equal(t, 1, d.Stage())
	assert.Len(t, d.Fields(), len(models.FieldsForStage(1)))
	assert.False(t, d.Dirty())

	d.Set("luas_permohonan", " 250.5 ")
	d.Set("no_invoice", "<b>INV-01</b>")
	d.Set("not_a_field", "x")

	assert.Equal(t, "250.5", d.Value("luas_permohonan"))
	assert.Equal(t, "INV-01", d.Value("no_invoice"))
	assert.NotContains(t, d.Values(), "not_a_field")

	filled := d.Filled()
	assert.Equal(t, map[string]any{"luas_permohonan": 250.5, "no_invoice": "INV-01"}, filled)

	typed := d.Typed()
	assert.Len(t, typed, len(models.FieldsForStage(1)))
	assert.Nil(t, typed["tgl_sla"])
}

func TestDraftDiff(t *testing.T) {
	c := &models.Case{
		KodeKJSB:        stringPtr("BKS-2024-0001"),
		NoBerkasSpasial: stringPtr("SP-1"),
		BiayaSPSSpasial: func() *float64 { f := 150000.0; return &f }(),
	}
	d := NewDraft(2, c)
	assert.False(t, d.IsCreate())
	assert.Equal(t, "SP-1", d.Value("no_berkas_spasial"))
	assert.Equal(t, "150000", d.Value("biaya_sps_spasial"))

	t.Run("unchanged values are not sent", func(t *testing.T) {
		d.Set("no_berkas_spasial", "SP-1")
		d.Set("biaya_sps_spasial", "150000.00")
		assert.False(t, d.Dirty())
		assert.Empty(t, d.Diff())
	})

	t.Run("changes and clears", func(t *testing.T) {
		d.BindForm(url.Values{
			"no_berkas_spasial":  {""},
			"tgl_berkas_spasial": {"2024-03-01"},
			"kode_kjsb":          {"ignored"},
		})
		diff := d.Diff()
		assert.Equal(t, map[string]any{
			"no_berkas_spasial":  nil,
			"tgl_berkas_spasial": "2024-03-01",
		}, diff)
		assert.True(t, d.Dirty())
	})
}

func TestDraftValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		stage int
		field string
		value string
		msg   string
	}{
		{"bad date", 2, "tgl_download", "03/01/2024", "Tgl. Download: format tanggal harus YYYY-MM-DD."},
		{"bad number", 2, "biaya_sps_spasial", "sejuta", "Biaya SPS Spasial: harus berupa angka."},
		{"infinite number", 4, "luas_hasil_ukur", "Inf", "Luas Hasil Ukur (m²): harus berupa angka."},
		{"bad option", 4, "penggunaan_tanah_b", "hunian", "Penggunaan Tanah B: pilihan tidak valid."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft(tt.stage, nil)
			d.Set(tt.field, tt.value)
			err := d.Validate(ctx)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.msg, ve.Message)
		})
	}

	d := NewDraft(4, nil)
	d.Set("penggunaan_tanah_b", models.LandUseBNonPertanian)
	d.Set("tgl_gu", "2024-02-29")
	d.Set("luas_hasil_ukur", "1200")
	assert.NoError(t, d.Validate(ctx))
}
