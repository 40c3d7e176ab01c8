package main

import (
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/lox/climatedss/internal/classify"
	"github.com/lox/climatedss/internal/models"
)

type ClassifyCmd struct {
	Rainfall *float64 `help:"Daily rainfall in mm."`
	Sunshine *float64 `help:"Sunshine duration in hours."`
	Wind     *float64 `help:"Wind speed in km/h."`
}

func (c *ClassifyCmd) Run(app *App) error {
	obs := models.DailyObservation{
		Rainfall:  optional(c.Rainfall),
		Sunshine:  optional(c.Sunshine),
		WindSpeed: optional(c.Wind),
	}
	l := classify.New(app.Config.Thresholds).Label(obs)
	printResult(app.Stdout, l)
	return nil
}

func optional(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func printResult(w io.Writer, l models.LabeledObservation) {
	fmt.Fprintf(w, "Weather:      %s\n", l.Result.WeatherCondition)
	fmt.Fprintf(w, "Drought risk: %s\n", l.Result.DroughtRisk)
	fmt.Fprintf(w, "Extreme rain: %s\n", l.ExtremeRainLabel())
	fmt.Fprintf(w, "Wind:         %s\n", l.Result.WindStatus)
	if len(l.Missing) > 0 {
		fmt.Fprintf(w, "Missing:      %s\n", strings.Join(l.Missing, ", "))
	}
}

func formatNull(v sql.NullFloat64, unit string) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%g %s", v.Float64, unit)
}

func formatNum(v sql.NullFloat64) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.1f", v.Float64)
}
