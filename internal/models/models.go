package models

import (
	"database/sql"
	"fmt"
	"time"
)

// DailyObservation is one location-day record. Absent measurements stay
// invalid; they are never coerced to zero.
type DailyObservation struct {
	Location  string
	Date      time.Time
	TempMin   sql.NullFloat64
	TempMax   sql.NullFloat64
	TempAvg   sql.NullFloat64
	Humidity  sql.NullFloat64 // percent
	Rainfall  sql.NullFloat64 // mm
	Sunshine  sql.NullFloat64 // hours
	WindSpeed sql.NullFloat64 // km/h
}

// Value returns the measurement for v.
func (o DailyObservation) Value(v Variable) sql.NullFloat64 {
	switch v {
	case VarTempMin:
		return o.TempMin
	case VarTempMax:
		return o.TempMax
	case VarTempAvg:
		return o.TempAvg
	case VarHumidity:
		return o.Humidity
	case VarRainfall:
		return o.Rainfall
	case VarSunshine:
		return o.Sunshine
	case VarWindSpeed:
		return o.WindSpeed
	}
	return sql.NullFloat64{}
}

// SetValue stores val into the field for v.
func (o *DailyObservation) SetValue(v Variable, val sql.NullFloat64) {
	switch v {
	case VarTempMin:
		o.TempMin = val
	case VarTempMax:
		o.TempMax = val
	case VarTempAvg:
		o.TempAvg = val
	case VarHumidity:
		o.Humidity = val
	case VarRainfall:
		o.Rainfall = val
	case VarSunshine:
		o.Sunshine = val
	case VarWindSpeed:
		o.WindSpeed = val
	}
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type Variable string

const (
	VarTempMin   Variable = "temp_min"
	VarTempMax   Variable = "temp_max"
	VarTempAvg   Variable = "temp_avg"
	VarHumidity  Variable = "humidity"
	VarRainfall  Variable = "rainfall"
	VarSunshine  Variable = "sunshine"
	VarWindSpeed Variable = "wind_speed"
)

// Variables lists every tracked measurement in display order.
var Variables = []Variable{VarTempMin, VarTempMax, VarTempAvg, VarHumidity, VarRainfall, VarSunshine, VarWindSpeed}

func ParseVariable(s string) (Variable, error) {
	for _, v := range Variables {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown variable %q", s)
}

type WeatherCondition string

const (
	ConditionClearSky  WeatherCondition = "clear_sky"
	ConditionOvercast  WeatherCondition = "overcast"
	ConditionRain      WeatherCondition = "rain"
	ConditionHeavyRain WeatherCondition = "heavy_rain"
	ConditionUnknown   WeatherCondition = "unknown"
)

type DroughtRisk string

const (
	DroughtLow     DroughtRisk = "low"
	DroughtMedium  DroughtRisk = "medium"
	DroughtHigh    DroughtRisk = "high"
	DroughtUnknown DroughtRisk = "unknown"
)

type WindStatus string

const (
	WindNormal  WindStatus = "normal"
	WindStrong  WindStatus = "strong"
	WindStorm   WindStatus = "storm"
	WindUnknown WindStatus = "unknown"
)

type ClassificationResult struct {
	WeatherCondition WeatherCondition
	DroughtRisk      DroughtRisk
	ExtremeRain      bool
	WindStatus       WindStatus
}

// LabeledObservation pairs a day with its labels. Missing names the input
// fields that were absent; labels depending on them read "unknown".
type LabeledObservation struct {
	DailyObservation
	Result  ClassificationResult
	Missing []string
}

// Complete reports whether every label was computed from present inputs.
func (l LabeledObservation) Complete() bool {
	return len(l.Missing) == 0
}

// ExtremeRainLabel renders the extreme-rain flag, which has no unknown
// state of its own.
func (l LabeledObservation) ExtremeRainLabel() string {
	if !l.Rainfall.Valid {
		return "unknown"
	}
	if l.Result.ExtremeRain {
		return "yes"
	}
	return "no"
}

// MonthlySummary aggregates one (year, month) for a location. Rainfall is a
// sum, the remaining fields are means.
type MonthlySummary struct {
	Location  string
	Year      int
	Month     time.Month
	Days      int
	TempMin   sql.NullFloat64
	TempMax   sql.NullFloat64
	TempAvg   sql.NullFloat64
	Humidity  sql.NullFloat64
	Rainfall  sql.NullFloat64
	Sunshine  sql.NullFloat64
	WindSpeed sql.NullFloat64
	Trend     sql.NullFloat64
}

func (m MonthlySummary) Period() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m MonthlySummary) Value(v Variable) sql.NullFloat64 {
	switch v {
	case VarTempMin:
		return m.TempMin
	case VarTempMax:
		return m.TempMax
	case VarTempAvg:
		return m.TempAvg
	case VarHumidity:
		return m.Humidity
	case VarRainfall:
		return m.Rainfall
	case VarSunshine:
		return m.Sunshine
	case VarWindSpeed:
		return m.WindSpeed
	}
	return sql.NullFloat64{}
}
