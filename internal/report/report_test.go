package report

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lox/climatedss/internal/classify"
	"github.com/lox/climatedss/internal/models"
	"github.com/lox/climatedss/internal/pipeline"
)

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func sampleLabeled() []models.LabeledObservation {
	var out []models.LabeledObservation
	start := time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC)
	rain := []float64{0, 12.5, 62, 3}
	for i, r := range rain {
		l := models.LabeledObservation{
			DailyObservation: models.DailyObservation{
				Location: "manokwari",
				Date:     start.AddDate(0, 0, i),
				TempMin:  nf(23),
				TempMax:  nf(31),
				TempAvg:  nf(27.5),
				Humidity: nf(85),
				Rainfall: nf(r),
				Sunshine: nf(5),
			},
			Result: models.ClassificationResult{
				WeatherCondition: models.ConditionOvercast,
				DroughtRisk:      models.DroughtMedium,
				ExtremeRain:      r > 50,
				WindStatus:       models.WindUnknown,
			},
			Missing: []string{"wind_speed"},
		}
		out = append(out, l)
	}
	return out
}

func sampleMonthly() []models.MonthlySummary {
	return []models.MonthlySummary{
		{Location: "manokwari", Year: 2024, Month: time.January, Days: 2, Rainfall: nf(12.5)},
		{Location: "manokwari", Year: 2024, Month: time.February, Days: 2, Rainfall: nf(65), Trend: nf(38.75)},
	}
}

func TestWriteWorkbook(t *testing.T) {
	labeled := sampleLabeled()
	var buf bytes.Buffer
	err := WriteWorkbook(&buf, Workbook{
		RunID:         "run-1",
		Location:      "manokwari",
		TrendVariable: models.VarRainfall,
		TrendWindow:   2,
		Labeled:       labeled,
		Monthly:       sampleMonthly(),
		Summary:       pipeline.Summarize(labeled),
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetDaily, SheetMonthly, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetDaily)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, dailyHeader, rows[0])
	assert.Equal(t, "01-02-2024", rows[3][0])
	assert.Equal(t, "62", rows[3][5])
	assert.Equal(t, "Ya", rows[3][10])
	assert.Equal(t, "Berawan", rows[3][8])
	assert.Equal(t, "Risiko Sedang", rows[3][9])
	assert.Equal(t, "Tidak Diketahui", rows[3][11])
	assert.Equal(t, "", rows[3][7], "null wind speed should be an empty cell")

	monthly, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	require.Len(t, monthly, 3)
	assert.Equal(t, "Tren rainfall (2 bln)", monthly[0][9])
	assert.Equal(t, "2024-02", monthly[2][0])
	assert.Equal(t, "38.75", monthly[2][9])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Run ID", "run-1"}, summary[0])
	assert.Equal(t, []string{"Hari hujan ekstrem", "1"}, summary[4])
	assert.Contains(t, summary, []string{"Cuaca: Berawan", "4"})
	assert.Contains(t, summary, []string{"Kekeringan: Risiko Sedang", "4"})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleLabeled()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, dailyHeader, records[0])
	assert.Equal(t, "2024-01-31", records[2][0])
	assert.Equal(t, "12.5", records[2][5])
	assert.Equal(t, "", records[2][7])
	assert.Equal(t, "Tidak", records[2][10])
	assert.Equal(t, "Berawan", records[2][8])
	assert.Equal(t, "wind_speed", records[2][12])
}

func TestGenerateAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	cg := NewChartGenerator(dir, classify.DefaultThresholds(), nil)

	paths, err := cg.GenerateAll(context.Background(), sampleLabeled(), sampleMonthly(), models.VarRainfall)
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "%s is not a PNG", p)
	}
	assert.Equal(t, filepath.Join(dir, "monthly_rainfall.png"), paths[2])
}

func TestGenerateAll_SkipsSparseCharts(t *testing.T) {
	cg := NewChartGenerator(t.TempDir(), classify.DefaultThresholds(), nil)

	// One day cannot make a line, but it still makes a histogram.
	paths, err := cg.GenerateAll(context.Background(), sampleLabeled()[:1], nil, models.VarRainfall)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "rainfall_histogram.png", filepath.Base(paths[0]))
}

func TestRainfallBins(t *testing.T) {
	bins := newRainfallBins(classify.DefaultThresholds())
	require.Equal(t, 5, bins.count())

	tests := []struct {
		rain float64
		want string
	}{
		{0, "<=1"},
		{1, "<=1"},
		{1.1, "1-5"},
		{20, "5-20"},
		{50, "20-50"},
		{50.1, ">50"},
		{120, ">50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bins.label(bins.index(tt.rain)), "rain %v", tt.rain)
	}
}

func TestRainfallBins_FollowThresholds(t *testing.T) {
	th := classify.DefaultThresholds()
	th.ExtremeRain = 100
	bins := newRainfallBins(th)
	assert.Equal(t, "50-100", bins.label(bins.index(75)))

	// The top bin holds exactly the extreme rain days.
	c := classify.New(th)
	for _, rain := range []float64{0, 50, 99.9, 100, 100.1, 250} {
		top := bins.index(rain) == bins.count()-1
		assert.Equal(t, c.IsExtremeRain(rain), top, "rain %v", rain)
	}

	papua, err := classify.Preset("papua")
	require.NoError(t, err)
	assert.Equal(t, rainfallBins{1, 5, 20, 50}, newRainfallBins(papua))
}
