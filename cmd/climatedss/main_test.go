package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/climatedss/internal/classify"
	"github.com/lox/climatedss/internal/config"
	"github.com/lox/climatedss/internal/models"
)

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	parser, err := kong.New(cli,
		kong.Name("climatedss"),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	require.NoError(t, err)
	return parser
}

func TestParseAnalyze(t *testing.T) {
	file := filepath.Join(t.TempDir(), "manokwari.csv")
	require.NoError(t, os.WriteFile(file, []byte("Tanggal\n"), 0o644))

	var cli CLI
	kctx, err := newParser(t, &cli).Parse([]string{
		"--sunny-hours=5", "--preset=papua",
		"analyze", file, "--wind-unit=ms", "--window=0", "--xlsx",
	})
	require.NoError(t, err)

	assert.Equal(t, "analyze <file>", kctx.Command())
	require.NotNil(t, cli.SunnyHours)
	assert.Equal(t, 5.0, *cli.SunnyHours)
	assert.Nil(t, cli.HeavyRain)
	assert.Equal(t, "papua", cli.Preset)
	assert.Equal(t, file, cli.Analyze.File)
	assert.Equal(t, "ms", cli.Analyze.WindUnit)
	require.NotNil(t, cli.Analyze.Window)
	assert.Equal(t, 0, *cli.Analyze.Window)
	assert.True(t, cli.Analyze.XLSX)
}

func TestParseClassify(t *testing.T) {
	var cli CLI
	_, err := newParser(t, &cli).Parse([]string{"classify", "--rainfall=55", "--sunshine=2"})
	require.NoError(t, err)
	require.NotNil(t, cli.Classify.Rainfall)
	assert.Equal(t, 55.0, *cli.Classify.Rainfall)
	assert.Nil(t, cli.Classify.Wind)
}

func TestParseDroughtThresholds(t *testing.T) {
	var cli CLI
	_, err := newParser(t, &cli).Parse([]string{
		"--drought-dry=2", "--drought-sun-hours=8", "--drought-moderate=10",
		"classify", "--rainfall=1.5", "--sunshine=9",
	})
	require.NoError(t, err)
	require.NotNil(t, cli.DroughtDry)
	require.NotNil(t, cli.DroughtSunHours)
	require.NotNil(t, cli.DroughtModerate)

	cfg := config.Default()
	require.NoError(t, cfg.Apply(config.Overrides{
		DroughtDry:      cli.DroughtDry,
		DroughtSunHours: cli.DroughtSunHours,
		DroughtModerate: cli.DroughtModerate,
	}))
	l := classify.New(cfg.Thresholds).Label(models.DailyObservation{
		Rainfall: optional(cli.Classify.Rainfall),
		Sunshine: optional(cli.Classify.Sunshine),
	})
	assert.Equal(t, models.DroughtHigh, l.Result.DroughtRisk, "1.5mm is dry under a 2mm cutoff")
}

func TestPrintResult(t *testing.T) {
	obs := models.DailyObservation{
		Rainfall: sql.NullFloat64{Float64: 55, Valid: true},
		Sunshine: sql.NullFloat64{Float64: 2, Valid: true},
	}
	var buf bytes.Buffer
	printResult(&buf, classify.New(classify.DefaultThresholds()).Label(obs))

	out := buf.String()
	assert.Contains(t, out, "Weather:      heavy_rain")
	assert.Contains(t, out, "Extreme rain: yes")
	assert.Contains(t, out, "Wind:         unknown")
	assert.Contains(t, out, "Missing:      wind_speed")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
