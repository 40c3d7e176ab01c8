package aggregate

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lox/climatedss/internal/models"
)

var (
	ErrMixedLocations       = errors.New("observations span more than one location")
	ErrDuplicateObservation = errors.New("duplicate observation")
)

type period struct {
	year  int
	month time.Month
}

// accumulator keeps a sum and count per variable, skipping missing values.
type accumulator struct {
	sum   map[models.Variable]float64
	count map[models.Variable]int
	days  int
}

func newAccumulator() *accumulator {
	return &accumulator{
		sum:   make(map[models.Variable]float64),
		count: make(map[models.Variable]int),
	}
}

func (a *accumulator) add(obs models.DailyObservation) {
	a.days++
	for _, v := range models.Variables {
		val := obs.Value(v)
		if !val.Valid {
			continue
		}
		a.sum[v] += val.Float64
		a.count[v]++
	}
}

// mean for instantaneous quantities.
func (a *accumulator) mean(v models.Variable) sql.NullFloat64 {
	if a.count[v] == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: a.sum[v] / float64(a.count[v]), Valid: true}
}

// total for cumulative quantities.
func (a *accumulator) total(v models.Variable) sql.NullFloat64 {
	if a.count[v] == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: a.sum[v], Valid: true}
}

// Monthly folds daily observations for one location into monthly
// summaries ordered by period. Rainfall is summed; the other variables are
// averaged. Months without observations are not emitted.
func Monthly(obs []models.DailyObservation) ([]models.MonthlySummary, error) {
	if len(obs) == 0 {
		return nil, nil
	}

	// Summing in date order keeps results bit-identical for any input order.
	ordered := make([]models.DailyObservation, len(obs))
	copy(ordered, obs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	location := obs[0].Location
	seen := make(map[string]bool, len(obs))
	groups := make(map[period]*accumulator)

	for _, o := range ordered {
		if o.Location != location {
			return nil, fmt.Errorf("%w: %q and %q", ErrMixedLocations, location, o.Location)
		}
		day := models.DateOnly(o.Date).Format("2006-01-02")
		if seen[day] {
			return nil, fmt.Errorf("%w: %s on %s", ErrDuplicateObservation, location, day)
		}
		seen[day] = true

		key := period{year: o.Date.Year(), month: o.Date.Month()}
		acc, ok := groups[key]
		if !ok {
			acc = newAccumulator()
			groups[key] = acc
		}
		acc.add(o)
	}

	keys := make([]period, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	summaries := make([]models.MonthlySummary, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		summaries = append(summaries, models.MonthlySummary{
			Location:  location,
			Year:      k.year,
			Month:     k.month,
			Days:      acc.days,
			TempMin:   acc.mean(models.VarTempMin),
			TempMax:   acc.mean(models.VarTempMax),
			TempAvg:   acc.mean(models.VarTempAvg),
			Humidity:  acc.mean(models.VarHumidity),
			Rainfall:  acc.total(models.VarRainfall),
			Sunshine:  acc.mean(models.VarSunshine),
			WindSpeed: acc.mean(models.VarWindSpeed),
		})
	}
	return summaries, nil
}
