package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"github.com/lox/climatedss/internal/classify"
	"github.com/lox/climatedss/internal/logging"
	"github.com/lox/climatedss/internal/models"
)

// ErrNotEnoughData is returned for charts that need at least two points.
var ErrNotEnoughData = errors.New("not enough data to chart")

// ChartGenerator renders PNG charts into outputDir.
type ChartGenerator struct {
	outputDir string
	bins      rainfallBins
	logger    *slog.Logger
}

// NewChartGenerator bins the rainfall histogram on the rainfall cutoffs in t.
func NewChartGenerator(outputDir string, t classify.Thresholds, logger *slog.Logger) *ChartGenerator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ChartGenerator{
		outputDir: outputDir,
		bins:      newRainfallBins(t),
		logger:    logger.With("component", "charts"),
	}
}

// GenerateAll renders every chart concurrently. Charts without enough data
// are skipped. The returned paths are in a fixed order.
func (cg *ChartGenerator) GenerateAll(ctx context.Context, labeled []models.LabeledObservation, monthly []models.MonthlySummary, trend models.Variable) ([]string, error) {
	if err := os.MkdirAll(cg.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	renders := []func() (string, error){
		func() (string, error) { return cg.TemperatureChart(labeled) },
		func() (string, error) { return cg.RainfallChart(labeled) },
		func() (string, error) { return cg.MonthlyChart(monthly, trend) },
		func() (string, error) { return cg.RainfallHistogram(labeled) },
	}

	paths := make([]string, len(renders))
	g, ctx := errgroup.WithContext(ctx)
	for i, render := range renders {
		i, render := i, render
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := render()
			if errors.Is(err, ErrNotEnoughData) {
				cg.logger.Warn("skipping chart", "error", err)
				return nil
			}
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// TemperatureChart draws daily Tn, Tx and Tavg lines.
func (cg *ChartGenerator) TemperatureChart(labeled []models.LabeledObservation) (string, error) {
	var series []chart.Series
	for _, s := range []chart.TimeSeries{
		dailySeries("Tn", labeled, models.VarTempMin, chart.ColorBlue),
		dailySeries("Tx", labeled, models.VarTempMax, chart.ColorRed),
		dailySeries("Tavg", labeled, models.VarTempAvg, chart.ColorOrange),
	} {
		if len(s.XValues) > 0 {
			series = append(series, s)
		}
	}
	if !hasSpan(series) {
		return "", fmt.Errorf("temperature: %w", ErrNotEnoughData)
	}

	graph := timeChart("Tren Suhu Harian", "°C", series)
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return cg.render("temperature.png", graph)
}

// RainfallChart draws the daily rainfall line.
func (cg *ChartGenerator) RainfallChart(labeled []models.LabeledObservation) (string, error) {
	s := dailySeries("curah_hujan", labeled, models.VarRainfall, chart.ColorBlue)
	if len(s.XValues) < 2 {
		return "", fmt.Errorf("rainfall: %w", ErrNotEnoughData)
	}
	s.Style.FillColor = chart.ColorBlue.WithAlpha(64)

	graph := timeChart("Tren Curah Hujan Harian", "mm", []chart.Series{s})
	graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: niceMax(maxOf(s.YValues))}
	return cg.render("rainfall.png", graph)
}

// MonthlyChart draws one bar per month for v. Months where v is null are
// left out.
func (cg *ChartGenerator) MonthlyChart(monthly []models.MonthlySummary, v models.Variable) (string, error) {
	var bars []chart.Value
	var top float64
	for _, m := range monthly {
		val := m.Value(v)
		if !val.Valid {
			continue
		}
		bars = append(bars, chart.Value{Label: m.Period(), Value: val.Float64})
		top = math.Max(top, val.Float64)
	}
	if len(bars) == 0 {
		return "", fmt.Errorf("monthly %s: %w", v, ErrNotEnoughData)
	}

	graph := barChart(fmt.Sprintf("Bulanan: %s", v), bars, top)
	return cg.render("monthly_"+string(v)+".png", graph)
}

// RainfallHistogram counts days per rainfall bin.
func (cg *ChartGenerator) RainfallHistogram(labeled []models.LabeledObservation) (string, error) {
	counts := make([]int, cg.bins.count())
	var total int
	for _, l := range labeled {
		if !l.Rainfall.Valid {
			continue
		}
		counts[cg.bins.index(l.Rainfall.Float64)]++
		total++
	}
	if total == 0 {
		return "", fmt.Errorf("rainfall histogram: %w", ErrNotEnoughData)
	}

	bars := make([]chart.Value, len(counts))
	var top float64
	for i, c := range counts {
		bars[i] = chart.Value{Label: cg.bins.label(i), Value: float64(c)}
		top = math.Max(top, float64(c))
	}
	graph := barChart("Distribusi Curah Hujan Harian (hari)", bars, top)
	return cg.render("rainfall_histogram.png", graph)
}

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func (cg *ChartGenerator) render(name string, r renderer) (string, error) {
	filename := filepath.Join(cg.outputDir, name)
	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if err := r.Render(chart.PNG, f); err != nil {
		f.Close()
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	cg.logger.Debug("rendered chart", "file", filename)
	return filename, nil
}

func dailySeries(name string, labeled []models.LabeledObservation, v models.Variable, color drawing.Color) chart.TimeSeries {
	s := chart.TimeSeries{
		Name: name,
		Style: chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
		},
	}
	for _, l := range labeled {
		val := l.Value(v)
		if !val.Valid {
			continue
		}
		s.XValues = append(s.XValues, l.Date)
		s.YValues = append(s.YValues, val.Float64)
	}
	return s
}

func timeChart(title, unit string, series []chart.Series) chart.Chart {
	return chart.Chart{
		Title: title,
		TitleStyle: chart.Style{
			FontSize:  16,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Height: 400,
		Width:  900,
		XAxis: chart.XAxis{
			Name:           "Tanggal",
			Style:          chart.Style{FontSize: 9},
			ValueFormatter: chart.TimeValueFormatterWithFormat("02-01-2006"),
		},
		YAxis: chart.YAxis{
			Name:  unit,
			Style: chart.Style{FontSize: 10},
		},
		Series: series,
	}
}

func barChart(title string, bars []chart.Value, top float64) chart.BarChart {
	const barWidth, spacing = 40, 20
	width := len(bars)*(barWidth+spacing) + 120
	if width < 600 {
		width = 600
	}
	return chart.BarChart{
		Title: title,
		TitleStyle: chart.Style{
			FontSize:  16,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Height:     400,
		Width:      width,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Bars:       bars,
		XAxis:      chart.Style{FontSize: 9},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 10},
			Range: &chart.ContinuousRange{Min: 0, Max: niceMax(top)},
		},
	}
}

// hasSpan reports whether any series covers at least two distinct dates.
func hasSpan(series []chart.Series) bool {
	for _, s := range series {
		ts, ok := s.(chart.TimeSeries)
		if !ok || len(ts.XValues) < 2 {
			continue
		}
		first, last := ts.XValues[0], ts.XValues[len(ts.XValues)-1]
		if !first.Equal(last) {
			return true
		}
	}
	return false
}

// rainfallBins are the ascending edges of the histogram. A value lands in
// the first bin whose edge it does not exceed; the last bin holds values
// above every edge.
type rainfallBins []float64

func newRainfallBins(t classify.Thresholds) rainfallBins {
	var edges []float64
	for _, v := range []float64{t.DroughtDry, t.Cloudy, t.Rain, t.HeavyRain, t.ExtremeRain} {
		if v > 0 && !math.IsInf(v, 0) {
			edges = append(edges, v)
		}
	}
	slices.Sort(edges)
	return slices.Compact(edges)
}

func (b rainfallBins) count() int {
	return len(b) + 1
}

func (b rainfallBins) index(v float64) int {
	for i, edge := range b {
		if v <= edge {
			return i
		}
	}
	return len(b)
}

func (b rainfallBins) label(i int) string {
	switch {
	case len(b) == 0:
		return ">=0"
	case i == 0:
		return fmt.Sprintf("<=%g", b[0])
	case i == len(b):
		return fmt.Sprintf(">%g", b[len(b)-1])
	default:
		return fmt.Sprintf("%g-%g", b[i-1], b[i])
	}
}

func maxOf(vs []float64) float64 {
	m := 0.0
	for _, v := range vs {
		m = math.Max(m, v)
	}
	return m
}

// niceMax pads the axis top so a flat zero series still has a range.
func niceMax(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return math.Ceil(v * 1.1)
}
