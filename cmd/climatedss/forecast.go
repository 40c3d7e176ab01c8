package main

import (
	"fmt"

	"github.com/lox/climatedss/internal/classify"
	"github.com/lox/climatedss/internal/forecast"
)

type ForecastCmd struct {
	InputFlags

	Model string `required:"" type:"existingfile" help:"Linear model JSON file."`
}

func (c *ForecastCmd) Run(app *App) error {
	model, err := forecast.LoadModelFile(c.Model)
	if err != nil {
		return err
	}

	in, err := c.read(app)
	if err != nil {
		return err
	}
	if len(in.Observations) == 0 {
		return fmt.Errorf("%s has no observations", c.File)
	}
	last := in.Observations[len(in.Observations)-1]

	next, err := model.Predict(last)
	if err != nil {
		return fmt.Errorf("predict from %s: %w", last.Date.Format("2006-01-02"), err)
	}
	app.Logger.Info("predicted next day", "model", model.Name, "from", last.Date.Format("2006-01-02"))

	out := app.Stdout
	fmt.Fprintf(out, "Forecast for %s (%s)\n", next.Date.Format("02 January 2006"), next.Location)
	fmt.Fprintf(out, "  Rainfall:   %s\n", formatNull(next.Rainfall, "mm"))
	fmt.Fprintf(out, "  Sunshine:   %s\n", formatNull(next.Sunshine, "h"))
	fmt.Fprintf(out, "  Wind speed: %s\n", formatNull(next.WindSpeed, "km/h"))
	fmt.Fprintln(out)
	printResult(out, classify.New(app.Config.Thresholds).Label(next))
	return nil
}
