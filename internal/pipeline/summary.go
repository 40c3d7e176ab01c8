package pipeline

import (
	"database/sql"

	"github.com/lox/climatedss/internal/models"
)

// Summary is the headline view of a labeled period.
type Summary struct {
	Days             int
	Incomplete       int
	ExtremeRainDays  int
	Conditions       map[models.WeatherCondition]int
	Drought          map[models.DroughtRisk]int
	Wind             map[models.WindStatus]int
	First            sql.NullTime
	Last             sql.NullTime
	TotalRainfall    sql.NullFloat64
	MaxDailyRainfall sql.NullFloat64
	MeanTempAvg      sql.NullFloat64
}

func Summarize(labeled []models.LabeledObservation) Summary {
	s := Summary{
		Days:       len(labeled),
		Conditions: make(map[models.WeatherCondition]int),
		Drought:    make(map[models.DroughtRisk]int),
		Wind:       make(map[models.WindStatus]int),
	}

	var tempSum float64
	var tempN int
	for _, l := range labeled {
		if !l.Complete() {
			s.Incomplete++
		}
		if l.Result.ExtremeRain {
			s.ExtremeRainDays++
		}
		s.Conditions[l.Result.WeatherCondition]++
		s.Drought[l.Result.DroughtRisk]++
		s.Wind[l.Result.WindStatus]++

		if !s.First.Valid || l.Date.Before(s.First.Time) {
			s.First = sql.NullTime{Time: l.Date, Valid: true}
		}
		if !s.Last.Valid || l.Date.After(s.Last.Time) {
			s.Last = sql.NullTime{Time: l.Date, Valid: true}
		}

		if l.Rainfall.Valid {
			s.TotalRainfall.Float64 += l.Rainfall.Float64
			s.TotalRainfall.Valid = true
			if !s.MaxDailyRainfall.Valid || l.Rainfall.Float64 > s.MaxDailyRainfall.Float64 {
				s.MaxDailyRainfall = l.Rainfall
			}
		}
		if l.TempAvg.Valid {
			tempSum += l.TempAvg.Float64
			tempN++
		}
	}
	if tempN > 0 {
		s.MeanTempAvg = sql.NullFloat64{Float64: tempSum / float64(tempN), Valid: true}
	}
	return s
}
