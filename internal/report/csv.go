package report

import (
	"database/sql"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/lox/climatedss/internal/models"
)

// WriteCSV writes the labeled days with the same columns as the workbook's
// daily sheet. Dates are ISO formatted and labels are in Indonesian.
func WriteCSV(w io.Writer, labeled []models.LabeledObservation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dailyHeader); err != nil {
		return err
	}
	for _, l := range labeled {
		record := []string{
			l.Date.Format("2006-01-02"),
			formatValue(l.TempMin), formatValue(l.TempMax), formatValue(l.TempAvg),
			formatValue(l.Humidity), formatValue(l.Rainfall), formatValue(l.Sunshine), formatValue(l.WindSpeed),
		}
		record = append(record, resultLabels(l)...)
		record = append(record, strings.Join(l.Missing, ","))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
