package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/lox/climatedss/internal/config"
	"github.com/lox/climatedss/internal/logging"
	"github.com/lox/climatedss/internal/metrics"
)

type CLI struct {
	Config      string `help:"YAML file with thresholds, column mapping and analysis defaults." type:"path"`
	Preset      string `help:"Threshold preset (default, papua, sunny5, sunny6). Overrides the config file's preset."`
	LogLevel    string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat   string `help:"Log format." enum:"text,json" default:"text"`
	MetricsFile string `help:"Write run counters in Prometheus textfile format to this path." type:"path"`
	EnvFile     string `help:"Environment file loaded before flags are parsed." default:".env" type:"path"`

	HeavyRain   *float64 `help:"Heavy rain cutoff in mm." group:"Thresholds"`
	Rain        *float64 `help:"Rain cutoff in mm." group:"Thresholds"`
	Cloudy      *float64 `help:"Overcast rain cutoff in mm." group:"Thresholds"`
	SunnyHours  *float64 `help:"Clear sky sunshine cutoff in hours." group:"Thresholds"`
	ExtremeRain *float64 `help:"Extreme rain cutoff in mm." group:"Thresholds"`
	WindStrong  *float64 `help:"Strong wind cutoff in km/h." group:"Thresholds"`
	WindStorm   *float64 `help:"Storm wind cutoff in km/h." group:"Thresholds"`

	DroughtDry      *float64 `help:"High drought risk rain cutoff in mm." group:"Thresholds"`
	DroughtSunHours *float64 `help:"High drought risk sunshine cutoff in hours." group:"Thresholds"`
	DroughtModerate *float64 `help:"Medium drought risk rain cutoff in mm." group:"Thresholds"`

	Classify ClassifyCmd `cmd:"" help:"Classify a single day from entered values."`
	Analyze  AnalyzeCmd  `cmd:"" help:"Classify and aggregate a daily data file."`
	Forecast ForecastCmd `cmd:"" help:"Predict and classify the day after a data file ends."`
}

// App is what every command runs against.
type App struct {
	Context context.Context
	Stdout  io.Writer
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Config  config.Config
	RunID   string
}

func main() {
	loadEnvFile(os.Args[1:])

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("climatedss"),
		kong.Description("Rule-based daily climate classification and monthly trend analysis."),
		kong.UsageOnError(),
		kong.DefaultEnvars("CLIMATEDSS"),
	)

	level, err := logging.ParseLevel(cli.LogLevel)
	kctx.FatalIfErrorf(err)
	logger, err := logging.New(os.Stderr, level, cli.LogFormat)
	kctx.FatalIfErrorf(err)

	cfg, err := config.Load(cli.Config, cli.Preset)
	kctx.FatalIfErrorf(err)
	kctx.FatalIfErrorf(cfg.Apply(config.Overrides{
		HeavyRain:   cli.HeavyRain,
		Rain:        cli.Rain,
		Cloudy:      cli.Cloudy,
		SunnyHours:  cli.SunnyHours,
		ExtremeRain: cli.ExtremeRain,
		WindStrong:  cli.WindStrong,
		WindStorm:   cli.WindStorm,

		DroughtDry:      cli.DroughtDry,
		DroughtSunHours: cli.DroughtSunHours,
		DroughtModerate: cli.DroughtModerate,
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := uuid.NewString()
	app := &App{
		Context: ctx,
		Stdout:  os.Stdout,
		Logger:  logger.With("run_id", runID),
		Metrics: metrics.New(),
		Config:  cfg,
		RunID:   runID,
	}
	app.Logger.Debug("configuration loaded", "preset", cfg.Preset, "config", cli.Config)

	runErr := kctx.Run(app)

	if cli.MetricsFile != "" {
		if err := app.Metrics.WriteTextfile(cli.MetricsFile); err != nil {
			app.Logger.Error("metrics", "error", err)
		}
	}
	kctx.FatalIfErrorf(runErr)
}

// loadEnvFile loads the --env-file (or .env) before kong reads the
// environment. A missing default file is not an error.
func loadEnvFile(args []string) {
	path, explicit := ".env", false
	for i, a := range args {
		switch {
		case strings.HasPrefix(a, "--env-file="):
			path, explicit = strings.TrimPrefix(a, "--env-file="), true
		case a == "--env-file" && i+1 < len(args):
			path, explicit = args[i+1], true
		}
	}
	if v := os.Getenv("CLIMATEDSS_ENV_FILE"); v != "" && !explicit {
		path, explicit = v, true
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return
		}
		slog.Warn("could not load env file", "path", path, "error", err)
	}
}
