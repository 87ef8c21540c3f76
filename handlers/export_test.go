package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kjsb_flow_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportCasesHandler(t *testing.T) {
	store := setupTestStore(t)
	c := seedCase(t, store, "Siti Aminah", map[string]any{"no_sla": "SLA-1"})
	e := newTestServer(testConfig(), store)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/export/proyek.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment; filename=proyek_kjsb_"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(services.ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kode KJSB", rows[0][0])
	assert.Equal(t, c.Code(), rows[1][0])
	assert.Contains(t, rows[1], "SLA-1")
}

func TestImportCasesHandler(t *testing.T) {
	ctx := context.Background()

	workbook := func(t *testing.T, rows ...[]interface{}) []byte {
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, f.SetSheetName("Sheet1", services.ExportSheet))
		headers := []interface{}{"Kode KJSB", "Pemohon", "Tgl. SLA"}
		require.NoError(t, f.SetSheetRow(services.ExportSheet, "A1", &headers))
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			r := row
			require.NoError(t, f.SetSheetRow(services.ExportSheet, cell, &r))
		}
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)
		return buf.Bytes()
	}

	t.Run("json summary with row errors", func(t *testing.T) {
		store := setupTestStore(t)
		e := newTestServer(testConfig(), store)
		data := workbook(t,
			[]interface{}{"IMP-1", "Dewi", "2024-01-02"},
			[]interface{}{"IMP-2", "Rina", "bukan tanggal"},
		)
		req := multipartRequest(t, "/import/proyek.xlsx", nil, "file", "proyek.xlsx", data)
		req.Header.Set("Accept", "application/json")
		rec := serve(e, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var res services.ImportResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 2, res.TotalProcessed)
		assert.Equal(t, 1, res.SuccessCount)
		assert.Equal(t, []string{"IMP-1"}, res.Codes)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "baris 3")

		got, err := store.GetCase(ctx, "IMP-1")
		require.NoError(t, err)
		assert.Equal(t, "Dewi", got.ApplicantName())
	})

	t.Run("htmx message", func(t *testing.T) {
		store := setupTestStore(t)
		e := newTestServer(testConfig(), store)
		req := multipartRequest(t, "/import/proyek.xlsx", nil, "file", "proyek.xlsx", workbook(t, []interface{}{"IMP-9", "Dewi", ""}))
		rec := serve(e, htmx(req))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "1 dari 1 baris berhasil diimpor.")
		assert.Contains(t, rec.Body.String(), "alert-success")
	})

	t.Run("missing file", func(t *testing.T) {
		store := setupTestStore(t)
		e := newTestServer(testConfig(), store)
		rec := serve(e, multipartRequest(t, "/import/proyek.xlsx", nil, "", "", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
