package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/climatedss/internal/classify"
	"github.com/lox/climatedss/internal/ingest"
)

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_PresetFromFile(t *testing.T) {
	cfg, err := Parse([]byte("preset: papua\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "papua", cfg.Preset)
	assert.True(t, math.IsInf(cfg.Thresholds.HeavyRain, 1))
	assert.Equal(t, 4.0, cfg.Thresholds.SunnyHours)
}

func TestParse_FlagPresetWins(t *testing.T) {
	cfg, err := Parse([]byte("preset: papua\n"), "sunny6")
	require.NoError(t, err)
	assert.Equal(t, "sunny6", cfg.Preset)
	assert.Equal(t, 6.0, cfg.Thresholds.SunnyHours)
	assert.Equal(t, 50.0, cfg.Thresholds.HeavyRain)
}

func TestParse_FileOverlaysPreset(t *testing.T) {
	data := []byte(`
preset: sunny5
thresholds:
  extreme_rain_mm: 80
ingest:
  location: manokwari
  wind_unit: ms
  columns:
    date: Date
analysis:
  trend_window: 6
`)
	cfg, err := Parse(data, "")
	require.NoError(t, err)

	want := classify.DefaultThresholds()
	want.SunnyHours = 5
	want.ExtremeRain = 80
	assert.Equal(t, want, cfg.Thresholds)

	assert.Equal(t, "manokwari", cfg.Ingest.Location)
	assert.Equal(t, "ms", cfg.Ingest.WindUnit)
	assert.Equal(t, ingest.DefaultSheet, cfg.Ingest.Sheet)
	assert.Equal(t, "Date", cfg.Ingest.Columns.Date)
	assert.Equal(t, "curah_hujan", cfg.Ingest.Columns.Rainfall, "unset columns keep their defaults")
	assert.Equal(t, 6, cfg.Analysis.TrendWindow)
	assert.Equal(t, "rainfall", cfg.Analysis.TrendVariable)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("preset: tropical\n"), "")
	assert.ErrorContains(t, err, "tropical")

	_, err = Parse([]byte("thresholds: [1, 2]\n"), "")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "climatedss.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  sunny_hours: 4.5\n"), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 4.5, cfg.Thresholds.SunnyHours)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	cfg, err = Load("", "sunny6")
	require.NoError(t, err)
	assert.Equal(t, 6.0, cfg.Thresholds.SunnyHours)
}

func TestApply(t *testing.T) {
	cfg := Default()
	sunny, storm := 5.5, 40.0
	require.NoError(t, cfg.Apply(Overrides{SunnyHours: &sunny, WindStorm: &storm}))
	assert.Equal(t, 5.5, cfg.Thresholds.SunnyHours)
	assert.Equal(t, 40.0, cfg.Thresholds.WindStorm)
	assert.Equal(t, 20.0, cfg.Thresholds.Rain)

	rain := 80.0
	err := cfg.Apply(Overrides{Rain: &rain})
	assert.Error(t, err, "rain tier above heavy rain must be rejected")
}

func TestApply_Drought(t *testing.T) {
	cfg := Default()
	dry, sun, moderate := 2.0, 8.0, 10.0
	require.NoError(t, cfg.Apply(Overrides{DroughtDry: &dry, DroughtSunHours: &sun, DroughtModerate: &moderate}))
	assert.Equal(t, 2.0, cfg.Thresholds.DroughtDry)
	assert.Equal(t, 8.0, cfg.Thresholds.DroughtSunHours)
	assert.Equal(t, 10.0, cfg.Thresholds.DroughtModerate)

	dry = 12
	err := cfg.Apply(Overrides{DroughtDry: &dry})
	assert.ErrorContains(t, err, "drought_dry_mm")
}
