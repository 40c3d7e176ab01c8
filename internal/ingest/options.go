package ingest

import (
	"fmt"
	"strings"

	"github.com/lox/climatedss/internal/models"
)

// DefaultSheet is the daily-data sheet name used by the regional workbooks.
const DefaultSheet = "Data Harian - Table"

// WindUnit is the unit wind speed is recorded in at the source. Stored
// values are always km/h.
type WindUnit string

const (
	WindKMH WindUnit = "kmh"
	WindMS  WindUnit = "ms"
)

func ParseWindUnit(s string) (WindUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kmh", "km/h", "km/jam":
		return WindKMH, nil
	case "ms", "m/s":
		return WindMS, nil
	}
	return "", fmt.Errorf("invalid wind unit %q (allowed: kmh, ms)", s)
}

// ToKMH converts a speed in u to km/h.
func (u WindUnit) ToKMH(v float64) float64 {
	if u == WindMS {
		return v * 3.6
	}
	return v
}

// Columns maps each field to its header in the source sheet.
type Columns struct {
	Date      string `yaml:"date"`
	TempMin   string `yaml:"temp_min"`
	TempMax   string `yaml:"temp_max"`
	TempAvg   string `yaml:"temp_avg"`
	Humidity  string `yaml:"humidity"`
	Rainfall  string `yaml:"rainfall"`
	Sunshine  string `yaml:"sunshine"`
	WindSpeed string `yaml:"wind_speed"`
}

// DefaultColumns are the BMKG daily export headers.
func DefaultColumns() Columns {
	return Columns{
		Date:      "Tanggal",
		TempMin:   "Tn",
		TempMax:   "Tx",
		TempAvg:   "Tavg",
		Humidity:  "kelembaban",
		Rainfall:  "curah_hujan",
		Sunshine:  "matahari",
		WindSpeed: "kecepatan_angin",
	}
}

func (c Columns) variables() map[models.Variable]string {
	return map[models.Variable]string{
		models.VarTempMin:   c.TempMin,
		models.VarTempMax:   c.TempMax,
		models.VarTempAvg:   c.TempAvg,
		models.VarHumidity:  c.Humidity,
		models.VarRainfall:  c.Rainfall,
		models.VarSunshine:  c.Sunshine,
		models.VarWindSpeed: c.WindSpeed,
	}
}

type Options struct {
	Sheet    string
	Location string
	WindUnit WindUnit
	Columns  Columns
}

func (o Options) withDefaults() (Options, error) {
	if o.WindUnit == "" {
		return o, fmt.Errorf("wind unit must be declared (kmh or ms)")
	}
	if _, err := ParseWindUnit(string(o.WindUnit)); err != nil {
		return o, err
	}
	if o.Columns == (Columns{}) {
		o.Columns = DefaultColumns()
	}
	if o.Columns.Date == "" {
		return o, fmt.Errorf("date column must be set")
	}
	if o.Sheet == "" {
		o.Sheet = DefaultSheet
	}
	return o, nil
}
