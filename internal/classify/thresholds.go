package classify

import (
	"fmt"
	"math"
	"sort"
)

// Thresholds holds every cutoff used by the rules. All comparisons against
// them are strict. Wind cutoffs are in km/h.
type Thresholds struct {
	HeavyRain       float64 `yaml:"heavy_rain_mm"`
	Rain            float64 `yaml:"rain_mm"`
	Cloudy          float64 `yaml:"cloudy_rain_mm"`
	SunnyHours      float64 `yaml:"sunny_hours"`
	ExtremeRain     float64 `yaml:"extreme_rain_mm"`
	DroughtDry      float64 `yaml:"drought_dry_mm"`
	DroughtSunHours float64 `yaml:"drought_sun_hours"`
	DroughtModerate float64 `yaml:"drought_moderate_mm"`
	WindStrong      float64 `yaml:"wind_strong_kmh"`
	WindStorm       float64 `yaml:"wind_storm_kmh"`
}

// DefaultThresholds returns the default rule set. HeavyRain and ExtremeRain
// share a value but are independent settings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HeavyRain:       50,
		Rain:            20,
		Cloudy:          5,
		SunnyHours:      7,
		ExtremeRain:     50,
		DroughtDry:      1,
		DroughtSunHours: 6,
		DroughtModerate: 5,
		WindStrong:      15,
		WindStorm:       30,
	}
}

var presets = map[string]func() Thresholds{
	"default": DefaultThresholds,
	// Regional dashboard: no heavy-rain tier, clear sky above 4h sunshine.
	"papua": func() Thresholds {
		t := DefaultThresholds()
		t.HeavyRain = math.Inf(1)
		t.SunnyHours = 4
		return t
	},
	"sunny5": func() Thresholds {
		t := DefaultThresholds()
		t.SunnyHours = 5
		return t
	},
	"sunny6": func() Thresholds {
		t := DefaultThresholds()
		t.SunnyHours = 6
		return t
	},
}

// Preset returns a named threshold set.
func Preset(name string) (Thresholds, error) {
	fn, ok := presets[name]
	if !ok {
		return Thresholds{}, fmt.Errorf("unknown threshold preset %q (available: %v)", name, PresetNames())
	}
	return fn(), nil
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate rejects negative cutoffs and tiers that would make a later rule
// unreachable.
func (t Thresholds) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"heavy_rain_mm", t.HeavyRain},
		{"rain_mm", t.Rain},
		{"cloudy_rain_mm", t.Cloudy},
		{"sunny_hours", t.SunnyHours},
		{"extreme_rain_mm", t.ExtremeRain},
		{"drought_dry_mm", t.DroughtDry},
		{"drought_sun_hours", t.DroughtSunHours},
		{"drought_moderate_mm", t.DroughtModerate},
		{"wind_strong_kmh", t.WindStrong},
		{"wind_storm_kmh", t.WindStorm},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || f.value < 0 {
			return fmt.Errorf("threshold %s must be a non-negative number, got %v", f.name, f.value)
		}
	}
	if t.Rain > t.HeavyRain {
		return fmt.Errorf("rain_mm (%v) must not exceed heavy_rain_mm (%v)", t.Rain, t.HeavyRain)
	}
	if t.Cloudy > t.Rain {
		return fmt.Errorf("cloudy_rain_mm (%v) must not exceed rain_mm (%v)", t.Cloudy, t.Rain)
	}
	if t.DroughtDry > t.DroughtModerate {
		return fmt.Errorf("drought_dry_mm (%v) must not exceed drought_moderate_mm (%v)", t.DroughtDry, t.DroughtModerate)
	}
	if t.WindStrong > t.WindStorm {
		return fmt.Errorf("wind_strong_kmh (%v) must not exceed wind_storm_kmh (%v)", t.WindStrong, t.WindStorm)
	}
	return nil
}
