package ingest

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lox/climatedss/internal/models"
)

// Result is the outcome of reading one table.
type Result struct {
	Observations []models.DailyObservation
	// Flags maps a date (2006-01-02) to the quality flags raised for it.
	Flags map[string][]string
}

// BMKG marks unmeasured values with 8888 and absent records with 9999.
var missingMarkers = map[string]bool{
	"":     true,
	"-":    true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"8888": true,
	"9999": true,
}

var dateLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"02/01/2006",
	"2-1-2006",
	"2/1/2006",
	"2006-01-02 15:04:05",
}

// ParseDate accepts the day-first layouts used by BMKG exports, ISO dates
// and Excel serial numbers.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOnly(t), nil
		}
	}
	// Workbook date cells are read raw and come through as serial numbers.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return models.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseValue(s string) (sql.NullFloat64, error) {
	s = strings.TrimSpace(s)
	if missingMarkers[strings.ToLower(s)] {
		return sql.NullFloat64{}, nil
	}
	// Decimal commas are common in Indonesian locale exports.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}, fmt.Errorf("invalid number %q", s)
	}
	if v == 8888 || v == 9999 {
		return sql.NullFloat64{}, nil
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}

// parseTable turns header + rows into sorted observations. Row numbers in
// errors are 1-based including the header, matching spreadsheet rows.
func parseTable(rows [][]string, opts Options) (*Result, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty table")
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	dateCol, ok := index[opts.Columns.Date]
	if !ok {
		return nil, fmt.Errorf("date column %q not found in header", opts.Columns.Date)
	}
	valueCols := make(map[models.Variable]int)
	for v, header := range opts.Columns.variables() {
		if header == "" {
			continue
		}
		col, ok := index[header]
		if !ok {
			return nil, fmt.Errorf("column %q for %s not found in header", header, v)
		}
		valueCols[v] = col
	}

	res := &Result{Flags: make(map[string][]string)}
	seen := make(map[string]int)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}
		date, err := ParseDate(cell(row, dateCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		key := date.Format("2006-01-02")
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("row %d: duplicate date %s (first seen on row %d)", rowNum, key, prev)
		}
		seen[key] = rowNum

		obs := models.DailyObservation{Location: opts.Location, Date: date}
		for v, col := range valueCols {
			val, err := parseValue(cell(row, col))
			if err != nil {
				return nil, fmt.Errorf("row %d %s: %w", rowNum, v, err)
			}
			if v == models.VarWindSpeed && val.Valid {
				val.Float64 = opts.WindUnit.ToKMH(val.Float64)
			}
			obs.SetValue(v, val)
		}

		if flags := ValidateObservation(&obs); len(flags) > 0 {
			res.Flags[key] = flags
		}
		res.Observations = append(res.Observations, obs)
	}

	sort.Slice(res.Observations, func(i, j int) bool {
		return res.Observations[i].Date.Before(res.Observations[j].Date)
	})
	return res, nil
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
