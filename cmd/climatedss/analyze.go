package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/lox/climatedss/internal/ingest"
	"github.com/lox/climatedss/internal/models"
	"github.com/lox/climatedss/internal/pipeline"
	"github.com/lox/climatedss/internal/report"
	"github.com/lox/climatedss/internal/store"
)

// InputFlags select and interpret the daily data file.
type InputFlags struct {
	File     string `arg:"" type:"existingfile" help:"Daily data file (.xlsx or .csv)."`
	Sheet    string `help:"Sheet holding the daily table."`
	Location string `help:"Location name. Defaults to the file name."`
	WindUnit string `help:"Unit wind speed is recorded in (kmh or ms)."`
}

func (f InputFlags) read(app *App) (*ingest.Result, error) {
	ic := app.Config.Ingest
	opts := ingest.Options{
		Sheet:    firstNonEmpty(f.Sheet, ic.Sheet),
		Location: firstNonEmpty(f.Location, ic.Location, strings.TrimSuffix(filepath.Base(f.File), filepath.Ext(f.File))),
		Columns:  ic.Columns,
	}
	if unit := firstNonEmpty(f.WindUnit, ic.WindUnit); unit != "" {
		u, err := ingest.ParseWindUnit(unit)
		if err != nil {
			return nil, err
		}
		opts.WindUnit = u
	}

	res, err := ingest.ReadFile(f.File, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.File, err)
	}
	app.Metrics.RecordIngest(opts.Location, len(res.Observations), res.Flags)
	app.Logger.Info("loaded observations", "file", f.File, "location", opts.Location,
		"days", len(res.Observations), "flagged_days", len(res.Flags))
	for date, flags := range res.Flags {
		app.Logger.Debug("quality flags", "date", date, "flags", flags)
	}
	return res, nil
}

type AnalyzeCmd struct {
	InputFlags

	Missing  string `help:"What to do with days missing classifier inputs (unknown, skip, abort)."`
	TrendVar string `help:"Monthly variable to smooth (temp_min, temp_max, temp_avg, humidity, rainfall, sunshine, wind_speed)."`
	Window   *int   `help:"Moving average window in months. 0 disables the trend."`
	Date     string `help:"Show the data and analysis for one day."`
	From     string `help:"First day of a daily listing."`
	To       string `help:"Last day of a daily listing. Defaults to the last observed day."`

	OutDir string `help:"Directory for written outputs." default:"." type:"path"`
	XLSX   bool   `help:"Write hasil_dss_iklim.xlsx."`
	CSV    bool   `help:"Write hasil_dss_iklim.csv."`
	Charts bool   `help:"Render PNG charts."`
}

func (c *AnalyzeCmd) Run(app *App) error {
	ac := app.Config.Analysis
	policy, err := pipeline.ParseMissingPolicy(firstNonEmpty(c.Missing, ac.Missing))
	if err != nil {
		return err
	}
	trendVar, err := models.ParseVariable(firstNonEmpty(c.TrendVar, ac.TrendVariable, string(models.VarRainfall)))
	if err != nil {
		return err
	}
	window := ac.TrendWindow
	if c.Window != nil {
		window = *c.Window
	}

	in, err := c.read(app)
	if err != nil {
		return err
	}

	p, err := pipeline.New(app.Config.Thresholds, pipeline.WithLogger(app.Logger), pipeline.WithMetrics(app.Metrics))
	if err != nil {
		return err
	}
	res, err := p.Run(in.Observations, pipeline.Options{
		MissingPolicy: policy,
		Monthly:       true,
		TrendVariable: trendVar,
		TrendWindow:   window,
	})
	if err != nil {
		return err
	}

	st, err := store.OpenMemory(app.Logger)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.InsertLabeled(res.Labeled); err != nil {
		return fmt.Errorf("store observations: %w", err)
	}
	locations, err := st.Locations()
	if err != nil {
		return err
	}
	location := ""
	if len(locations) > 0 {
		location = locations[0]
		if err := st.ReplaceMonthly(location, res.Monthly); err != nil {
			return fmt.Errorf("store monthly: %w", err)
		}
	}

	out := app.Stdout
	if err := printOverview(out, st, location, res); err != nil {
		return err
	}
	if c.Date != "" {
		if err := printDay(out, st, location, c.Date); err != nil {
			return err
		}
	}
	if c.From != "" || c.To != "" {
		if err := printRange(out, st, location, c.From, c.To); err != nil {
			return err
		}
	}
	monthly, err := st.GetMonthly(location)
	if err != nil {
		return err
	}
	printMonthly(out, monthly, trendVar, window)

	return c.writeOutputs(app, res, trendVar, window)
}

func (c *AnalyzeCmd) writeOutputs(app *App, res *pipeline.Result, trendVar models.Variable, window int) error {
	if !c.XLSX && !c.CSV && !c.Charts {
		return nil
	}
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return err
	}

	location := ""
	if len(res.Labeled) > 0 {
		location = res.Labeled[0].Location
	}

	if c.XLSX {
		path := filepath.Join(c.OutDir, "hasil_dss_iklim.xlsx")
		err := writeFile(path, func(w io.Writer) error {
			return report.WriteWorkbook(w, report.Workbook{
				RunID:         app.RunID,
				Location:      location,
				TrendVariable: trendVar,
				TrendWindow:   window,
				Labeled:       res.Labeled,
				Monthly:       res.Monthly,
				Summary:       res.Stats,
			})
		})
		if err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		app.Logger.Info("wrote workbook", "path", path)
	}

	if c.CSV {
		path := filepath.Join(c.OutDir, "hasil_dss_iklim.csv")
		if err := writeFile(path, func(w io.Writer) error { return report.WriteCSV(w, res.Labeled) }); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		app.Logger.Info("wrote csv", "path", path)
	}

	if c.Charts {
		cg := report.NewChartGenerator(filepath.Join(c.OutDir, "charts"), app.Config.Thresholds, app.Logger)
		paths, err := cg.GenerateAll(app.Context, res.Labeled, res.Monthly, trendVar)
		if err != nil {
			return fmt.Errorf("render charts: %w", err)
		}
		app.Logger.Info("rendered charts", "count", len(paths))
	}
	return nil
}

func printOverview(w io.Writer, st *store.Store, location string, res *pipeline.Result) error {
	first, last, ok, err := st.DateRange(location)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Location: %s\n", location)
	if ok {
		fmt.Fprintf(w, "Period:   %s to %s (%d days, %d skipped)\n",
			first.Format("02-01-2006"), last.Format("02-01-2006"), res.Stats.Days, len(res.Skipped))
	}
	counts, err := st.CountByCondition(location)
	if err != nil {
		return err
	}
	for _, cond := range []models.WeatherCondition{
		models.ConditionClearSky, models.ConditionOvercast, models.ConditionRain,
		models.ConditionHeavyRain, models.ConditionUnknown,
	} {
		if n := counts[cond]; n > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cond, n)
		}
	}
	fmt.Fprintf(w, "Extreme rain days: %d\n", res.Stats.ExtremeRainDays)
	fmt.Fprintf(w, "Total rainfall:    %s\n\n", formatNull(res.Stats.TotalRainfall, "mm"))
	return nil
}

func printDay(w io.Writer, st *store.Store, location, date string) error {
	d, err := ingest.ParseDate(date)
	if err != nil {
		return fmt.Errorf("--date: %w", err)
	}
	day, err := st.GetDay(location, d)
	if err != nil {
		return err
	}
	if day == nil {
		fmt.Fprintf(w, "No data for %s.\n\n", d.Format("02 January 2006"))
		return nil
	}

	fmt.Fprintf(w, "Climate data, %s\n", d.Format("02 January 2006"))
	fmt.Fprintf(w, "  Mean temperature: %s\n", formatNull(day.TempAvg, "°C"))
	fmt.Fprintf(w, "  Humidity:         %s\n", formatNull(day.Humidity, "%"))
	fmt.Fprintf(w, "  Rainfall:         %s\n", formatNull(day.Rainfall, "mm"))
	fmt.Fprintf(w, "  Sunshine:         %s\n", formatNull(day.Sunshine, "h"))
	fmt.Fprintf(w, "  Wind speed:       %s\n", formatNull(day.WindSpeed, "km/h"))
	fmt.Fprintln(w)
	printResult(w, *day)
	fmt.Fprintln(w)
	return nil
}

// printRange lists labeled days between from and to inclusive. A missing
// bound is taken from the observed date range.
func printRange(w io.Writer, st *store.Store, location, from, to string) error {
	first, last, ok, err := st.DateRange(location)
	if err != nil || !ok {
		return err
	}
	if from != "" {
		if first, err = ingest.ParseDate(from); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	}
	if to != "" {
		if last, err = ingest.ParseDate(to); err != nil {
			return fmt.Errorf("--to: %w", err)
		}
	}
	days, err := st.GetRange(location, first, last)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Fprintf(w, "No data from %s to %s.\n\n", first.Format("02-01-2006"), last.Format("02-01-2006"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "DATE\tRAINFALL\tSUNSHINE\tWIND\tWEATHER\tDROUGHT\tEXTREME\n")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", d.Date.Format("02-01-2006"),
			formatNum(d.Rainfall), formatNum(d.Sunshine), formatNum(d.WindSpeed),
			d.Result.WeatherCondition, d.Result.DroughtRisk, d.ExtremeRainLabel())
	}
	tw.Flush()
	fmt.Fprintln(w)
	return nil
}

func printMonthly(w io.Writer, monthly []models.MonthlySummary, v models.Variable, window int) {
	if len(monthly) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	trendHeader := "TREND"
	if window > 0 {
		trendHeader = fmt.Sprintf("%s MA(%d)", strings.ToUpper(string(v)), window)
	}
	fmt.Fprintf(tw, "MONTH\tDAYS\tTAVG\tRAINFALL\tSUNSHINE\t%s\n", trendHeader)
	for _, m := range monthly {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", m.Period(), m.Days,
			formatNum(m.TempAvg), formatNum(m.Rainfall), formatNum(m.Sunshine), formatNum(m.Trend))
	}
	tw.Flush()
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
