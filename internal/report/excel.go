package report

import (
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lox/climatedss/internal/models"
	"github.com/lox/climatedss/internal/pipeline"
)

const (
	SheetDaily   = "Hasil DSS"
	SheetMonthly = "Bulanan"
	SheetSummary = "Ringkasan"
)

// Workbook is everything one analysis run exports.
type Workbook struct {
	RunID         string
	Location      string
	TrendVariable models.Variable
	TrendWindow   int
	Labeled       []models.LabeledObservation
	Monthly       []models.MonthlySummary
	Summary       pipeline.Summary
}

var dailyHeader = []string{
	"Tanggal", "Tn", "Tx", "Tavg", "kelembaban", "curah_hujan", "matahari", "kecepatan_angin",
	"Prediksi Cuaca", "Risiko Kekeringan", "Hujan Ekstrem", "Status Angin", "Data Hilang",
}

var monthlyHeader = []string{
	"Periode", "Hari", "Tn", "Tx", "Tavg", "kelembaban", "curah_hujan", "matahari", "kecepatan_angin", "Tren",
}

func WriteWorkbook(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDaily); err != nil {
		return err
	}
	for _, name := range []string{SheetMonthly, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeDaily(f, wb.Labeled, bold); err != nil {
		return fmt.Errorf("sheet %s: %w", SheetDaily, err)
	}
	if err := writeMonthly(f, wb, bold); err != nil {
		return fmt.Errorf("sheet %s: %w", SheetMonthly, err)
	}
	if err := writeSummary(f, wb, bold); err != nil {
		return fmt.Errorf("sheet %s: %w", SheetSummary, err)
	}

	f.SetActiveSheet(0)
	_, err = f.WriteTo(w)
	return err
}

func writeDaily(f *excelize.File, labeled []models.LabeledObservation, style int) error {
	if err := writeHeader(f, SheetDaily, dailyHeader, style); err != nil {
		return err
	}
	for i, l := range labeled {
		row := []any{
			l.Date.Format("02-01-2006"),
			cellValue(l.TempMin), cellValue(l.TempMax), cellValue(l.TempAvg),
			cellValue(l.Humidity), cellValue(l.Rainfall), cellValue(l.Sunshine), cellValue(l.WindSpeed),
		}
		for _, s := range resultLabels(l) {
			row = append(row, s)
		}
		row = append(row, strings.Join(l.Missing, ","))
		if err := setRow(f, SheetDaily, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetDaily, "I", "M", 18)
}

func writeMonthly(f *excelize.File, wb Workbook, style int) error {
	header := append([]string(nil), monthlyHeader...)
	if wb.TrendVariable != "" && wb.TrendWindow > 0 {
		header[len(header)-1] = fmt.Sprintf("Tren %s (%d bln)", wb.TrendVariable, wb.TrendWindow)
	}
	if err := writeHeader(f, SheetMonthly, header, style); err != nil {
		return err
	}
	for i, m := range wb.Monthly {
		row := []any{
			m.Period(), m.Days,
			cellValue(m.TempMin), cellValue(m.TempMax), cellValue(m.TempAvg),
			cellValue(m.Humidity), cellValue(m.Rainfall), cellValue(m.Sunshine), cellValue(m.WindSpeed),
			cellValue(m.Trend),
		}
		if err := setRow(f, SheetMonthly, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, wb Workbook, style int) error {
	s := wb.Summary
	rows := [][]any{
		{"Run ID", wb.RunID},
		{"Lokasi", wb.Location},
		{"Hari", s.Days},
		{"Hari tidak lengkap", s.Incomplete},
		{"Hari hujan ekstrem", s.ExtremeRainDays},
		{"Total curah hujan (mm)", cellValue(s.TotalRainfall)},
		{"Curah hujan harian maks (mm)", cellValue(s.MaxDailyRainfall)},
		{"Rata-rata Tavg (°C)", cellValue(s.MeanTempAvg)},
	}
	if s.First.Valid {
		rows = append(rows, []any{"Dari", s.First.Time.Format("02-01-2006")})
	}
	if s.Last.Valid {
		rows = append(rows, []any{"Sampai", s.Last.Time.Format("02-01-2006")})
	}
	rows = append(rows, countRows("Cuaca", s.Conditions, conditionLabels)...)
	rows = append(rows, countRows("Kekeringan", s.Drought, droughtLabels)...)
	rows = append(rows, countRows("Angin", s.Wind, windLabels)...)

	for i, row := range rows {
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(rows)), style); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "A", 30)
}

func countRows[K ~string](prefix string, counts map[K]int, labels map[K]string) [][]any {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	rows := make([][]any, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []any{prefix + ": " + lookup(labels, K(k)), counts[K(k)]})
	}
	return rows
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", end, style)
}

func setRow(f *excelize.File, sheet string, rowNum int, row []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &row)
}

// cellValue leaves null values as empty cells.
func cellValue(v sql.NullFloat64) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}
