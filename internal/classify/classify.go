package classify

import (
	"errors"
	"strings"

	"github.com/lox/climatedss/internal/models"
)

// ErrMissingInput is matched by every *MissingInputError.
var ErrMissingInput = errors.New("missing input")

// MissingInputError names the fields a rule needed but did not get.
type MissingInputError struct {
	Fields []string
}

func (e *MissingInputError) Error() string {
	return "missing input: " + strings.Join(e.Fields, ", ")
}

func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

const (
	FieldRainfall  = "rainfall"
	FieldSunshine  = "sunshine"
	FieldWindSpeed = "wind_speed"
)

// Classifier applies one threshold set. It holds no other state.
type Classifier struct {
	t Thresholds
}

func New(t Thresholds) *Classifier {
	return &Classifier{t: t}
}

// Classify labels fully-present inputs. Rules are evaluated in order and
// the first match wins.
func (c *Classifier) Classify(rainfall, sunshine, wind float64) models.ClassificationResult {
	return models.ClassificationResult{
		WeatherCondition: c.WeatherCondition(rainfall, sunshine),
		DroughtRisk:      c.DroughtRisk(rainfall, sunshine),
		ExtremeRain:      c.IsExtremeRain(rainfall),
		WindStatus:       c.WindStatus(wind),
	}
}

// Classify uses the default thresholds.
func Classify(rainfall, sunshine, wind float64) models.ClassificationResult {
	return New(DefaultThresholds()).Classify(rainfall, sunshine, wind)
}

func (c *Classifier) WeatherCondition(rainfall, sunshine float64) models.WeatherCondition {
	switch {
	case rainfall > c.t.HeavyRain:
		return models.ConditionHeavyRain
	case rainfall > c.t.Rain:
		return models.ConditionRain
	case rainfall > c.t.Cloudy:
		return models.ConditionOvercast
	case sunshine > c.t.SunnyHours:
		return models.ConditionClearSky
	default:
		return models.ConditionOvercast
	}
}

func (c *Classifier) DroughtRisk(rainfall, sunshine float64) models.DroughtRisk {
	switch {
	case rainfall < c.t.DroughtDry && sunshine > c.t.DroughtSunHours:
		return models.DroughtHigh
	case rainfall < c.t.DroughtModerate:
		return models.DroughtMedium
	default:
		return models.DroughtLow
	}
}

func (c *Classifier) IsExtremeRain(rainfall float64) bool {
	return rainfall > c.t.ExtremeRain
}

func (c *Classifier) WindStatus(wind float64) models.WindStatus {
	switch {
	case wind > c.t.WindStorm:
		return models.WindStorm
	case wind > c.t.WindStrong:
		return models.WindStrong
	default:
		return models.WindNormal
	}
}

// ClassifyObservation fails with a *MissingInputError when rainfall,
// sunshine or wind speed is absent.
func (c *Classifier) ClassifyObservation(obs models.DailyObservation) (models.ClassificationResult, error) {
	if missing := missingFields(obs); len(missing) > 0 {
		return models.ClassificationResult{}, &MissingInputError{Fields: missing}
	}
	return c.Classify(obs.Rainfall.Float64, obs.Sunshine.Float64, obs.WindSpeed.Float64), nil
}

// Label computes every label whose inputs are present and marks the rest
// unknown.
func (c *Classifier) Label(obs models.DailyObservation) models.LabeledObservation {
	l := models.LabeledObservation{
		DailyObservation: obs,
		Missing:          missingFields(obs),
		Result: models.ClassificationResult{
			WeatherCondition: models.ConditionUnknown,
			DroughtRisk:      models.DroughtUnknown,
			WindStatus:       models.WindUnknown,
		},
	}

	rain, sun := obs.Rainfall, obs.Sunshine
	if rain.Valid {
		l.Result.ExtremeRain = c.IsExtremeRain(rain.Float64)
		// Rain tiers decide the condition without sunshine.
		if rain.Float64 > c.t.Cloudy {
			l.Result.WeatherCondition = c.WeatherCondition(rain.Float64, 0)
		} else if sun.Valid {
			l.Result.WeatherCondition = c.WeatherCondition(rain.Float64, sun.Float64)
		}
		if sun.Valid {
			l.Result.DroughtRisk = c.DroughtRisk(rain.Float64, sun.Float64)
		} else if rain.Float64 >= c.t.DroughtModerate {
			l.Result.DroughtRisk = models.DroughtLow
		} else if rain.Float64 >= c.t.DroughtDry {
			l.Result.DroughtRisk = models.DroughtMedium
		}
	}
	if obs.WindSpeed.Valid {
		l.Result.WindStatus = c.WindStatus(obs.WindSpeed.Float64)
	}
	return l
}

func missingFields(obs models.DailyObservation) []string {
	var missing []string
	if !obs.Rainfall.Valid {
		missing = append(missing, FieldRainfall)
	}
	if !obs.Sunshine.Valid {
		missing = append(missing, FieldSunshine)
	}
	if !obs.WindSpeed.Valid {
		missing = append(missing, FieldWindSpeed)
	}
	return missing
}
