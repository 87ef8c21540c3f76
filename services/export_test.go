package services

import (
	"bytes"
	"context"
	"testing"

	"kjsb_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportHeaders(t *testing.T) {
	headers := ExportHeaders()
	assert.Equal(t, "Kode KJSB", headers[0])
	assert.Len(t, headers, len(exportLeading)+len(models.AllFields())+2)
	assert.Contains(t, headers, "Tgl. Selesai BPN")
}

func TestExportCasesXLSX(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	c := seedCase(t, store, map[string]any{"nominal_bayar": 2500000.0, "no_gu": "GU-1"})

	buf, err := ExportCasesXLSX(ctx, store)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	headers := rows[0]
	col := func(name string) string {
		for i, h := range headers {
			if h == name && i < len(rows[1]) {
				return rows[1][i]
			}
		}
		return ""
	}
	assert.Equal(t, c.Code(), col("Kode KJSB"))
	assert.Equal(t, "Budi Santoso", col("Pemohon"))
	assert.Equal(t, "GU-1", col("No. GU"))
	assert.Equal(t, "2500000", col("Nominal Bayar"))
	assert.Equal(t, "Tidak", col("Ada Geometri"))
}

func TestImportCasesXLSX(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", ExportSheet)
	f.SetSheetRow(ExportSheet, "A1", &[]interface{}{"Kode KJSB", "Pemohon", "HP Pemohon", "Tgl. Permohonan", "Luas Hasil Ukur (m²)", "Kolom Lain"})
	f.SetSheetRow(ExportSheet, "A2", &[]interface{}{"IMP-1", "Rina", "0815", "2024-01-15", "450", "abaikan"})
	f.SetSheetRow(ExportSheet, "A3", &[]interface{}{"", "Tono", "", "15/01/2024", "", ""})
	f.SetSheetRow(ExportSheet, "A5", &[]interface{}{"", "Wati", "", "", "", ""})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	f.Close()

	result, err := ImportCasesXLSX(ctx, store, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "baris 3")
	assert.Contains(t, result.Errors[0], "Tanggal Permohonan")

	c, err := store.GetCase(ctx, "IMP-1")
	require.NoError(t, err)
	assert.Equal(t, "Rina", c.ApplicantName())
	assert.Equal(t, "2024-01-15", *c.TglPermohonan)
	assert.Equal(t, 450.0, *c.LuasHasilUkur)

	_, err = ImportCasesXLSX(ctx, store, bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}
