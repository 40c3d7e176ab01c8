package ingest

import (
	"database/sql"

	"github.com/lox/climatedss/internal/models"
)

const (
	FlagTempOutOfRange    = "temp_out_of_range"
	FlagTempMinAboveMax   = "temp_min_above_max"
	FlagHumidityInvalid   = "humidity_invalid"
	FlagRainfallNegative  = "rainfall_negative"
	FlagSunshineInvalid   = "sunshine_invalid"
	FlagWindSpeedUnlikely = "wind_speed_unlikely"
)

// ValidateObservation flags implausible values and nulls them so they can
// never reach a classification rule.
func ValidateObservation(obs *models.DailyObservation) []string {
	var flags []string

	for _, t := range []*sql.NullFloat64{&obs.TempMin, &obs.TempMax, &obs.TempAvg} {
		if t.Valid && (t.Float64 < -10 || t.Float64 > 50) {
			*t = sql.NullFloat64{}
			if !contains(flags, FlagTempOutOfRange) {
				flags = append(flags, FlagTempOutOfRange)
			}
		}
	}

	// Either reading could be the wrong one, so both go.
	if obs.TempMin.Valid && obs.TempMax.Valid && obs.TempMin.Float64 > obs.TempMax.Float64 {
		obs.TempMin = sql.NullFloat64{}
		obs.TempMax = sql.NullFloat64{}
		flags = append(flags, FlagTempMinAboveMax)
	}

	if obs.Humidity.Valid && (obs.Humidity.Float64 < 0 || obs.Humidity.Float64 > 100) {
		obs.Humidity = sql.NullFloat64{}
		flags = append(flags, FlagHumidityInvalid)
	}

	if obs.Rainfall.Valid && obs.Rainfall.Float64 < 0 {
		obs.Rainfall = sql.NullFloat64{}
		flags = append(flags, FlagRainfallNegative)
	}

	if obs.Sunshine.Valid && (obs.Sunshine.Float64 < 0 || obs.Sunshine.Float64 > 24) {
		obs.Sunshine = sql.NullFloat64{}
		flags = append(flags, FlagSunshineInvalid)
	}

	if obs.WindSpeed.Valid && (obs.WindSpeed.Float64 < 0 || obs.WindSpeed.Float64 > 200) {
		obs.WindSpeed = sql.NullFloat64{}
		flags = append(flags, FlagWindSpeedUnlikely)
	}

	return flags
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
