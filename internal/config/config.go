package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lox/climatedss/internal/classify"
	"github.com/lox/climatedss/internal/ingest"
)

// Config is the analysis setup. Thresholds start from a named preset and
// any keys present in the YAML file replace the preset's values.
type Config struct {
	Preset     string              `yaml:"preset"`
	Thresholds classify.Thresholds `yaml:"thresholds"`
	Ingest     Ingest              `yaml:"ingest"`
	Analysis   Analysis            `yaml:"analysis"`
}

type Ingest struct {
	Sheet    string         `yaml:"sheet"`
	Location string         `yaml:"location"`
	WindUnit string         `yaml:"wind_unit"`
	Columns  ingest.Columns `yaml:"columns"`
}

type Analysis struct {
	Missing       string `yaml:"missing"`
	TrendVariable string `yaml:"trend_variable"`
	TrendWindow   int    `yaml:"trend_window"`
}

// Overrides are command-line values. Nil fields leave the config alone.
type Overrides struct {
	HeavyRain   *float64
	Rain        *float64
	Cloudy      *float64
	SunnyHours  *float64
	ExtremeRain *float64
	WindStrong  *float64
	WindStorm   *float64

	DroughtDry      *float64
	DroughtSunHours *float64
	DroughtModerate *float64
}

func Default() Config {
	return Config{
		Preset:     "default",
		Thresholds: classify.DefaultThresholds(),
		Ingest: Ingest{
			Sheet:   ingest.DefaultSheet,
			Columns: ingest.DefaultColumns(),
		},
		Analysis: Analysis{
			Missing:       "unknown",
			TrendVariable: "rainfall",
			TrendWindow:   3,
		},
	}
}

// Parse layers data over the named preset. An empty preset uses the one
// named in data, or "default".
func Parse(data []byte, preset string) (Config, error) {
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if preset == "" {
		preset = head.Preset
	}

	cfg := Default()
	if preset != "" {
		t, err := classify.Preset(preset)
		if err != nil {
			return Config{}, err
		}
		cfg.Preset = preset
		cfg.Thresholds = t
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Preset = preset
	if cfg.Preset == "" {
		cfg.Preset = "default"
	}
	return cfg, nil
}

// Load reads path, or only applies the preset when path is empty.
func Load(path, preset string) (Config, error) {
	if path == "" {
		return Parse(nil, preset)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, preset)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Apply sets any overridden thresholds and validates the result.
func (c *Config) Apply(o Overrides) error {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.Thresholds.HeavyRain, o.HeavyRain)
	set(&c.Thresholds.Rain, o.Rain)
	set(&c.Thresholds.Cloudy, o.Cloudy)
	set(&c.Thresholds.SunnyHours, o.SunnyHours)
	set(&c.Thresholds.ExtremeRain, o.ExtremeRain)
	set(&c.Thresholds.WindStrong, o.WindStrong)
	set(&c.Thresholds.WindStorm, o.WindStorm)
	set(&c.Thresholds.DroughtDry, o.DroughtDry)
	set(&c.Thresholds.DroughtSunHours, o.DroughtSunHours)
	set(&c.Thresholds.DroughtModerate, o.DroughtModerate)
	return c.Thresholds.Validate()
}
