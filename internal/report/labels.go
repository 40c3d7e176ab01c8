package report

import "github.com/lox/climatedss/internal/models"

const labelUnknown = "Tidak Diketahui"

var conditionLabels = map[models.WeatherCondition]string{
	models.ConditionClearSky:  "Cerah",
	models.ConditionOvercast:  "Berawan",
	models.ConditionRain:      "Hujan",
	models.ConditionHeavyRain: "Hujan Lebat",
}

var droughtLabels = map[models.DroughtRisk]string{
	models.DroughtHigh:   "Risiko Tinggi",
	models.DroughtMedium: "Risiko Sedang",
	models.DroughtLow:    "Risiko Rendah",
}

var windLabels = map[models.WindStatus]string{
	models.WindNormal: "Normal",
	models.WindStrong: "Angin Kencang",
	models.WindStorm:  "Badai",
}

// resultLabels renders a day's labels in the language of the export headers:
// weather, drought risk, extreme rain and wind, in column order.
func resultLabels(l models.LabeledObservation) []string {
	extreme := labelUnknown
	if l.Rainfall.Valid {
		extreme = "Tidak"
		if l.Result.ExtremeRain {
			extreme = "Ya"
		}
	}
	return []string{
		lookup(conditionLabels, l.Result.WeatherCondition),
		lookup(droughtLabels, l.Result.DroughtRisk),
		extreme,
		lookup(windLabels, l.Result.WindStatus),
	}
}

func lookup[K comparable](labels map[K]string, k K) string {
	if s, ok := labels[k]; ok {
		return s
	}
	return labelUnknown
}
