package pipeline

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/climatedss/internal/aggregate"
	"github.com/lox/climatedss/internal/classify"
	"github.com/lox/climatedss/internal/metrics"
	"github.com/lox/climatedss/internal/models"
)

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func obs(m time.Month, d int, rain, sun, wind float64) models.DailyObservation {
	return models.DailyObservation{
		Location:  "sorong",
		Date:      time.Date(2024, m, d, 0, 0, 0, 0, time.UTC),
		TempAvg:   nf(27),
		Rainfall:  nf(rain),
		Sunshine:  nf(sun),
		WindSpeed: nf(wind),
	}
}

func sample() []models.DailyObservation {
	incomplete := obs(time.February, 2, 0, 0, 0)
	incomplete.Sunshine = sql.NullFloat64{}
	return []models.DailyObservation{
		obs(time.January, 1, 55, 2, 35),
		obs(time.January, 2, 0.5, 7, 10),
		obs(time.February, 1, 30, 1, 20),
		incomplete,
		obs(time.March, 1, 5, 8, 5),
	}
}

func newPipeline(t *testing.T) (*Pipeline, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	p, err := New(classify.DefaultThresholds(), WithMetrics(m))
	require.NoError(t, err)
	return p, m
}

func TestRun_Labels(t *testing.T) {
	p, m := newPipeline(t)

	res, err := p.Run(sample(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Labeled, 5)
	assert.Empty(t, res.Skipped)
	assert.Nil(t, res.Monthly)

	first := res.Labeled[0].Result
	assert.Equal(t, models.ClassificationResult{
		WeatherCondition: models.ConditionHeavyRain,
		DroughtRisk:      models.DroughtLow,
		ExtremeRain:      true,
		WindStatus:       models.WindStorm,
	}, first)

	assert.Equal(t, models.ConditionUnknown, res.Labeled[3].Result.WeatherCondition)
	assert.Equal(t, []string{classify.FieldSunshine}, res.Labeled[3].Missing)

	assert.Equal(t, 5, res.Stats.Days)
	assert.Equal(t, 1, res.Stats.Incomplete)
	assert.Equal(t, 1, res.Stats.ExtremeRainDays)
	assert.Equal(t, 1, res.Stats.Conditions[models.ConditionClearSky])
	assert.Equal(t, nf(55), res.Stats.MaxDailyRainfall)
	assert.Equal(t, nf(90.5), res.Stats.TotalRainfall)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MissingInputs.WithLabelValues(classify.FieldSunshine)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Labels.WithLabelValues("weather_condition", "heavy_rain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Labels.WithLabelValues("wind_status", "storm")))
}

func TestRun_SkipPolicy(t *testing.T) {
	p, m := newPipeline(t)

	res, err := p.Run(sample(), Options{MissingPolicy: MissingSkip})
	require.NoError(t, err)
	assert.Len(t, res.Labeled, 4)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, time.February, res.Skipped[0].Date.Month())
	assert.Equal(t, 0, res.Stats.Incomplete)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ObservationsRejected.WithLabelValues("sorong", "missing_input")))
}

func TestRun_AbortPolicy(t *testing.T) {
	p, _ := newPipeline(t)

	_, err := p.Run(sample(), Options{MissingPolicy: MissingAbort})
	require.Error(t, err)
	assert.True(t, errors.Is(err, classify.ErrMissingInput))
	assert.Contains(t, err.Error(), "2024-02-02")
}

func TestRun_MonthlyTrend(t *testing.T) {
	p, m := newPipeline(t)

	res, err := p.Run(sample(), Options{
		Monthly:       true,
		TrendVariable: models.VarRainfall,
		TrendWindow:   2,
	})
	require.NoError(t, err)
	require.Len(t, res.Monthly, 3)

	assert.Equal(t, nf(55.5), res.Monthly[0].Rainfall)
	assert.Equal(t, nf(30), res.Monthly[1].Rainfall)
	assert.False(t, res.Monthly[0].Trend.Valid)
	assert.Equal(t, nf(42.75), res.Monthly[1].Trend)
	assert.Equal(t, nf(17.5), res.Monthly[2].Trend)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.MonthsAggregated.WithLabelValues("sorong")))
}

func TestRun_InvalidWindow(t *testing.T) {
	p, _ := newPipeline(t)

	_, err := p.Run(sample(), Options{Monthly: true, TrendWindow: -1})
	assert.ErrorIs(t, err, aggregate.ErrInvalidWindow)
}

func TestNew_RejectsBadThresholds(t *testing.T) {
	th := classify.DefaultThresholds()
	th.WindStrong = 50
	_, err := New(th)
	assert.Error(t, err)
}

func TestParseMissingPolicy(t *testing.T) {
	p, err := ParseMissingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MissingUnknown, p)

	p, err = ParseMissingPolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, MissingSkip, p)

	_, err = ParseMissingPolicy("zero")
	assert.Error(t, err)
}
