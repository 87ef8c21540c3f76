package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services/backend"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportSheet is the sheet holding one row per case
const ExportSheet = "Proyek"

// Fixed leading columns of the export, before the catalogue fields
const (
	colKode        = "Kode KJSB"
	colKlien       = "Klien"
	colHPKlien     = "HP Klien"
	colPemohon     = "Pemohon"
	colHPPemohon   = "HP Pemohon"
	colNIKPemohon  = "NIK Pemohon"
	colSurveyor    = "Surveyor"
	colLuasHitung  = "Luas Hitung Otomatis (m²)"
	colAdaGeometri = "Ada Geometri"
)

var exportLeading = []string{colKode, colKlien, colHPKlien, colPemohon, colHPPemohon, colNIKPemohon, colSurveyor}

// ImportResult summarises a bulk import
type ImportResult struct {
	TotalProcessed int
	SuccessCount   int
	FailedCount    int
	Codes          []string
	Errors         []string
}

// ExportHeaders returns the header row of the export workbook
func ExportHeaders() []string {
	headers := append([]string{}, exportLeading...)
	for _, f := range models.AllFields() {
		headers = append(headers, f.Label)
	}
	return append(headers, colLuasHitung, colAdaGeometri)
}

func exportRow(c *models.Case) []interface{} {
	row := []interface{}{c.Code()}
	if c.Klien != nil {
		row = append(row, c.Klien.NamaKlien, c.Klien.Phone())
	} else {
		row = append(row, "", "")
	}
	if c.Pemohon != nil {
		row = append(row, c.Pemohon.NamaPemohon, c.Pemohon.Phone(), ptrValue(c.Pemohon.NIKPemohon))
	} else {
		row = append(row, "", "", "")
	}
	if c.Surveyor != nil {
		row = append(row, c.Surveyor.Nama)
	} else {
		row = append(row, "")
	}

	values := c.FieldValues()
	for _, f := range models.AllFields() {
		v := values[f.Name]
		if v != "" && f.Kind == models.FieldNumber {
			if n, ok := parseNumber(v); ok {
				row = append(row, n)
				continue
			}
		}
		row = append(row, v)
	}

	if c.LuasHitungOtomatis != nil {
		row = append(row, *c.LuasHitungOtomatis)
	} else {
		row = append(row, "")
	}
	if c.HasGeometry() {
		row = append(row, "Ya")
	} else {
		row = append(row, "Tidak")
	}
	return row
}

// ExportCasesXLSX writes every case to a workbook, one column per field
func ExportCasesXLSX(ctx context.Context, store backend.Store) (*bytes.Buffer, error) {
	cases, err := store.ListCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := ExportHeaders()
	if err := f.SetSheetRow(ExportSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i := range cases {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := exportRow(&cases[i])
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(ExportSheet, "A1", last, headerStyle)
	f.SetPanes(ExportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// ImportCasesXLSX creates one case per row of a workbook laid out like the
// export. Columns are matched by header; unknown columns are ignored. Each
// row goes through the same validation as the stage forms, and a failing
// row does not stop the import.
func ImportCasesXLSX(ctx context.Context, store backend.Store, file io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("invalid excel format: no sheets")
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if s == ExportSheet {
			sheet = s
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("invalid excel format: missing header row")
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	cell := func(row []string, header string) string {
		i, ok := index[header]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &ImportResult{Codes: []string{}, Errors: []string{}}
	for n, row := range rows[1:] {
		line := n + 2
		if strings.Join(row, "") == "" {
			continue
		}
		result.TotalProcessed++

		ref, err := importRow(ctx, store, row, cell)
		if err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("baris %d: %s", line, UserMessage(err)))
			zap.L().Warn("import row failed", zap.Int("row", line), zap.Error(err))
			continue
		}
		result.SuccessCount++
		result.Codes = append(result.Codes, ref)
	}
	return result, nil
}

func importRow(ctx context.Context, store backend.Store, row []string, cell func([]string, string) string) (string, error) {
	fields := make(map[string]any)
	for stage := 1; stage <= models.StageCount; stage++ {
		d := NewDraft(stage, nil)
		for _, f := range d.Fields() {
			d.Set(f.Name, cell(row, f.Label))
		}
		if err := d.Validate(ctx); err != nil {
			return "", err
		}
		for k, v := range d.Filled() {
			fields[k] = v
		}
	}

	client := ContactInput{Name: cell(row, colKlien), Phone: cell(row, colHPKlien)}
	applicant := ContactInput{Name: cell(row, colPemohon), Phone: cell(row, colHPPemohon), NIK: cell(row, colNIKPemohon)}
	res, err := createCase(ctx, store, fields, cell(row, colKode), client.clean(), applicant.clean())
	if err != nil {
		return "", err
	}
	return res.KodeKJSB, nil
}
